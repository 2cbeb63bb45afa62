package models

import (
	"encoding/json"
	"time"
)

// Job kinds recorded in the type column.
const (
	KindFaceSwap            = "face_swap"
	KindFaceSwapCartoon     = "face_swap_cartoon"
	KindCartoonifyOnly      = "cartoonify_only"
	KindBackgroundRemoval   = "background_removal"
	KindCharacterDescribe   = "describe"
	KindCharacterCartoonize = "cartoonize"
)

// Statuses derived from a job row.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job is one row of the job table. A row without url is still in flight.
type Job struct {
	JobID            string          `json:"job_id"`
	URL              *string         `json:"url,omitempty"`
	OriginalFilename *string         `json:"original_filename,omitempty"`
	ResultFilename   *string         `json:"result_filename,omitempty"`
	Type             *string         `json:"type,omitempty"`
	Result           json.RawMessage `json:"result,omitempty"`
	ErrorMessage     *string         `json:"error_message,omitempty"`
	CreatedAt        *time.Time      `json:"created_at,omitempty"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
}

func (j *Job) Status() string {
	switch {
	case j.URL != nil && *j.URL != "":
		return StatusCompleted
	case j.ErrorMessage != nil && *j.ErrorMessage != "":
		return StatusFailed
	default:
		return StatusProcessing
	}
}

// JobUpdate is a partial update; nil fields are left untouched.
type JobUpdate struct {
	URL            *string         `json:"url,omitempty"`
	ResultFilename *string         `json:"result_filename,omitempty"`
	Result         json.RawMessage `json:"result,omitempty"`
	ErrorMessage   *string         `json:"error_message,omitempty"`
}

func (u JobUpdate) IsEmpty() bool {
	return u.URL == nil && u.ResultFilename == nil && u.Result == nil && u.ErrorMessage == nil
}

// Apply merges the update into the job in place.
func (u JobUpdate) Apply(j *Job) {
	if u.URL != nil {
		j.URL = u.URL
	}
	if u.ResultFilename != nil {
		j.ResultFilename = u.ResultFilename
	}
	if u.Result != nil {
		j.Result = u.Result
	}
	if u.ErrorMessage != nil {
		j.ErrorMessage = u.ErrorMessage
	}
}

// StringPtr returns nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
