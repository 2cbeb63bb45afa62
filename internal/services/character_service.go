package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"face-swap-backend/internal/jobs"
	"face-swap-backend/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CharacterService answers the synchronous character endpoints: face
// description and character cartoon generation.
type CharacterService struct {
	jobs      *jobs.Service
	p         Providers
	pipelines *PipelineService
	log       zerolog.Logger
}

func NewCharacterService(jobService *jobs.Service, providers Providers, pipelines *PipelineService, log zerolog.Logger) *CharacterService {
	return &CharacterService{
		jobs:      jobService,
		p:         providers,
		pipelines: pipelines,
		log:       log.With().Str("component", "characters").Logger(),
	}
}

func (s *CharacterService) Describe(ctx context.Context, req models.DescribeRequest) (*models.DescribeResponse, error) {
	if err := checkConfigured("describe", s.p.gemini()); err != nil {
		return nil, err
	}

	start := time.Now()
	description, err := s.p.Describer.DescribeFace(ctx, req.ImageURL, req.CustomPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to describe face: %w", err)
	}

	resp := &models.DescribeResponse{
		Success:     true,
		Description: description,
	}

	if req.CharacterID != "" && s.p.Characters != nil {
		url, err := s.p.Characters.RandomCharacterImage(ctx, req.CharacterID)
		if err != nil {
			s.log.Warn().Err(err).Str("character_id", req.CharacterID).Msg("character lookup failed")
		} else {
			resp.CharacterImageURL = &url
		}
	}

	resp.ProcessingTime = seconds(time.Since(start))
	s.saveResult(ctx, req.JobID, resp)
	return resp, nil
}

// Cartoonize builds a character cartoon from the face at req.ImageURL. Step
// failures are reported in the response rather than as an error; only
// missing configuration returns an error.
func (s *CharacterService) Cartoonize(ctx context.Context, req models.CartoonizeRequest) (*models.CartoonizeResponse, error) {
	if err := checkConfigured("cartoonize", s.p.gemini(), s.p.replicate(), s.p.characters(), s.p.storage()); err != nil {
		return nil, err
	}

	start := time.Now()
	resp := &models.CartoonizeResponse{StepTimes: map[string]float64{}}
	log := s.log.With().Str("character_id", req.CharacterID).Logger()

	timed := func(name string, fn func() error) error {
		t := time.Now()
		err := fn()
		resp.StepTimes[name] = seconds(time.Since(t))
		if err != nil {
			log.Error().Err(err).Str("step", name).Msg("cartoonize step failed")
		}
		return err
	}
	fail := func(err error) (*models.CartoonizeResponse, error) {
		resp.Success = false
		resp.Error = err.Error()
		resp.TotalTime = seconds(time.Since(start))
		s.saveResult(ctx, req.JobID, resp)
		return resp, nil
	}

	err := timed("character_lookup", func() error {
		url, err := s.p.Characters.RandomCharacterImage(ctx, req.CharacterID)
		resp.CharacterImageURL = url
		return err
	})
	if err != nil {
		return fail(fmt.Errorf("character lookup: %w", err))
	}

	err = timed("describe", func() error {
		desc, err := s.p.Describer.DescribeFace(ctx, req.ImageURL, "")
		resp.Description = desc
		return err
	})
	if err != nil {
		return fail(fmt.Errorf("describe face: %w", err))
	}

	err = timed("translate", func() error {
		translated, err := s.p.Describer.Translate(ctx, req.CustomPrompt)
		resp.TranslatedPrompt = translated
		return err
	})
	if err != nil {
		return fail(fmt.Errorf("translate prompt: %w", err))
	}

	prompt := characterPrompt(resp.Description, resp.TranslatedPrompt)
	err = timed("generate", func() error {
		url, err := s.pipelines.withRetry(ctx, log, func(ctx context.Context) (string, error) {
			return s.p.Generator.GenerateCharacter(ctx, resp.CharacterImageURL, prompt)
		})
		resp.GeneratedImageURL = url
		return err
	})
	if err != nil {
		return fail(fmt.Errorf("generate character: %w", err))
	}

	// background removal is optional and never fails the request
	if s.p.Remover != nil {
		_ = timed("remove_background", func() error {
			data, err := s.p.Remover.RemoveBackground(ctx, resp.GeneratedImageURL)
			if err != nil {
				return err
			}
			name := fmt.Sprintf("cartoon_bg_removed_%s.png", strings.ReplaceAll(uuid.New().String(), "-", ""))
			url, err := s.p.Storage.Upload(s.pipelines.cfg.StorageBucket, name, data, "image/png")
			if err != nil {
				return err
			}
			resp.BackgroundRemovedURL = &url
			return nil
		})
	}

	resp.Success = true
	resp.TotalTime = seconds(time.Since(start))
	s.saveResult(ctx, req.JobID, resp)
	return resp, nil
}

func (s *CharacterService) saveResult(ctx context.Context, jobID string, result any) {
	if jobID == "" {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("failed to marshal result")
		return
	}
	if err := s.jobs.SaveResult(ctx, jobID, data); err != nil {
		s.log.Warn().Err(err).Str("job_id", jobID).Msg("failed to save result on job")
	}
}

func characterPrompt(description, translated string) string {
	parts := []string{"he " + strings.TrimSpace(description)}
	if t := strings.TrimSpace(translated); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, "white background")
	return strings.Join(parts, " and ")
}

func seconds(d time.Duration) float64 {
	return float64(d.Milliseconds()) / 1000
}
