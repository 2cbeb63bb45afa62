package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotConfigured        = errors.New("feature is not configured")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrInvalidImage         = errors.New("file is not a readable image")
)

// ConfigError names the settings a feature is missing.
type ConfigError struct {
	Feature string
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not configured: missing %s", e.Feature, strings.Join(e.Missing, ", "))
}

func (e *ConfigError) Unwrap() error {
	return ErrNotConfigured
}

type Stage string

const (
	StageFetching     Stage = "fetching"
	StageTransforming Stage = "transforming"
	StageUploading    Stage = "uploading"
	StageRecording    Stage = "recording"
	StageDone         Stage = "done"
)

// StageError is returned by a pipeline that stopped at Stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
