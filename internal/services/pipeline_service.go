package services

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"face-swap-backend/internal/imageutil"
	"face-swap-backend/internal/jobs"
	"face-swap-backend/internal/models"
	"face-swap-backend/internal/workspace"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

var allowedExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

type PipelineConfig struct {
	StorageBucket    string
	BackgroundBucket string
	WorkDir          string
	Retries          int
	RetryDelay       time.Duration
	MaxSide          int
}

type PipelineService struct {
	jobs *jobs.Service
	p    Providers
	cfg  PipelineConfig
	log  zerolog.Logger
}

func NewPipelineService(jobService *jobs.Service, providers Providers, cfg PipelineConfig, log zerolog.Logger) *PipelineService {
	if cfg.MaxSide <= 0 {
		cfg.MaxSide = imageutil.DefaultMaxSide
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Millisecond
	}
	return &PipelineService{
		jobs: jobService,
		p:    providers,
		cfg:  cfg,
		log:  log.With().Str("component", "pipelines").Logger(),
	}
}

// BackgroundResult describes a finished synchronous background removal.
type BackgroundResult struct {
	JobID            string
	OriginalFilename string
	ResultFilename   string
	ImageURL         string
}

// SubmitFaceSwap queues a job that puts the face from faceURL onto the image at baseURL.
func (s *PipelineService) SubmitFaceSwap(ctx context.Context, baseURL, faceURL string) (string, *jobs.Future, error) {
	if err := checkConfigured("face swap", s.p.openai(), s.p.storage()); err != nil {
		return "", nil, err
	}
	return s.jobs.Submit(ctx, jobs.Submission{Kind: models.KindFaceSwap}, func(ctx context.Context, jobID string) error {
		return s.runFaceSwap(ctx, jobID, baseURL, faceURL)
	})
}

// SubmitFaceSwapCartoon cartoonifies the face first and then merges it onto the base image.
func (s *PipelineService) SubmitFaceSwapCartoon(ctx context.Context, baseURL, faceURL string) (string, *jobs.Future, error) {
	if err := checkConfigured("face swap with cartoon", s.p.openai(), s.p.replicate(), s.p.storage()); err != nil {
		return "", nil, err
	}
	return s.jobs.Submit(ctx, jobs.Submission{Kind: models.KindFaceSwapCartoon}, func(ctx context.Context, jobID string) error {
		return s.runFaceSwapCartoon(ctx, jobID, baseURL, faceURL)
	})
}

func (s *PipelineService) SubmitCartoonify(ctx context.Context, imageURL string) (string, *jobs.Future, error) {
	if err := checkConfigured("cartoonify", s.p.replicate(), s.p.storage()); err != nil {
		return "", nil, err
	}
	return s.jobs.Submit(ctx, jobs.Submission{Kind: models.KindCartoonifyOnly}, func(ctx context.Context, jobID string) error {
		return s.runCartoonify(ctx, jobID, imageURL)
	})
}

// SubmitBackgroundRemoval stages the upload in storage, creates the job and
// removes the background asynchronously.
func (s *PipelineService) SubmitBackgroundRemoval(ctx context.Context, filename string, data []byte) (string, *jobs.Future, error) {
	stem, ext, err := validateUpload(filename, data)
	if err != nil {
		return "", nil, err
	}
	if err := checkConfigured("background removal", s.p.rapidapi(), s.p.storage()); err != nil {
		return "", nil, err
	}

	id8 := shortID()
	tempName := fmt.Sprintf("temp_%s_%s%s", stem, id8, ext)
	tempURL, err := s.p.Storage.Upload(s.cfg.BackgroundBucket, tempName, data, imageutil.ContentType(ext))
	if err != nil {
		return "", nil, fmt.Errorf("failed to stage upload: %w", err)
	}

	resultName := fmt.Sprintf("%s_%s_post%s", stem, id8, ext)
	jobID, future, err := s.jobs.Submit(ctx,
		jobs.Submission{Kind: models.KindBackgroundRemoval, OriginalFilename: filename},
		func(ctx context.Context, jobID string) error {
			return s.runBackgroundRemoval(ctx, jobID, tempName, tempURL, resultName)
		})
	if err != nil {
		s.removeStaged(tempName)
		return "", nil, err
	}
	return jobID, future, nil
}

// RemoveBackground runs background removal inline and records a completed job.
func (s *PipelineService) RemoveBackground(ctx context.Context, filename string, data []byte) (*BackgroundResult, error) {
	stem, ext, err := validateUpload(filename, data)
	if err != nil {
		return nil, err
	}
	if err := checkConfigured("background removal", s.p.rapidapi(), s.p.storage()); err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	id8 := jobID[:8]
	log := s.log.With().Str("job_id", jobID).Str("kind", models.KindBackgroundRemoval).Logger()

	ws, err := workspace.New(s.cfg.WorkDir, jobID)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	tempName := fmt.Sprintf("%s_%s%s", stem, id8, ext)
	if _, err := ws.Write(tempName, data); err != nil {
		return nil, &StageError{Stage: StageFetching, Err: err}
	}
	tempURL, err := s.p.Storage.Upload(s.cfg.BackgroundBucket, tempName, data, imageutil.ContentType(ext))
	if err != nil {
		return nil, &StageError{Stage: StageFetching, Err: err}
	}
	defer s.removeStaged(tempName)

	log.Debug().Str("stage", string(StageTransforming)).Msg("stage started")
	removed, err := s.p.Remover.RemoveBackground(ctx, tempURL)
	if err != nil {
		return nil, &StageError{Stage: StageTransforming, Err: err}
	}

	resultFilename := fmt.Sprintf("%s_%s_post%s", stem, id8, ext)
	log.Debug().Str("stage", string(StageUploading)).Msg("stage started")
	imageURL, err := s.p.Storage.Upload(s.cfg.BackgroundBucket, resultFilename, removed, http.DetectContentType(removed))
	if err != nil {
		return nil, &StageError{Stage: StageUploading, Err: err}
	}

	err = s.jobs.Record(ctx, &models.Job{
		JobID:            jobID,
		URL:              &imageURL,
		OriginalFilename: &filename,
		ResultFilename:   &resultFilename,
		Type:             models.StringPtr(models.KindBackgroundRemoval),
	})
	if err != nil {
		return nil, &StageError{Stage: StageRecording, Err: err}
	}

	log.Info().Str("image_url", imageURL).Msg("background removed")
	return &BackgroundResult{
		JobID:            jobID,
		OriginalFilename: filename,
		ResultFilename:   resultFilename,
		ImageURL:         imageURL,
	}, nil
}

func (s *PipelineService) runFaceSwap(ctx context.Context, jobID, baseURL, faceURL string) error {
	r, err := s.start(jobID, models.KindFaceSwap)
	if err != nil {
		return err
	}
	defer r.close()

	var base, face, merged []byte
	err = r.step(StageFetching, func() error {
		if base, err = r.fetchNormalized(ctx, baseURL, "base.png"); err != nil {
			return err
		}
		face, err = r.fetchNormalized(ctx, faceURL, "face.png")
		return err
	})
	if err != nil {
		return err
	}

	err = r.step(StageTransforming, func() error {
		merged, err = s.p.Merger.MergeFace(ctx, base, face)
		if err != nil {
			return err
		}
		_, err = r.ws.Write("result.png", merged)
		return err
	})
	if err != nil {
		return err
	}

	return r.finish(ctx, fmt.Sprintf("face_swapped_result_%s.png", jobID), merged)
}

func (s *PipelineService) runFaceSwapCartoon(ctx context.Context, jobID, baseURL, faceURL string) error {
	r, err := s.start(jobID, models.KindFaceSwapCartoon)
	if err != nil {
		return err
	}
	defer r.close()

	var base, cartoon, merged []byte
	err = r.step(StageFetching, func() error {
		base, err = r.fetchNormalized(ctx, baseURL, "base.png")
		return err
	})
	if err != nil {
		return err
	}

	err = r.step(StageTransforming, func() error {
		cartoonURL, err := s.withRetry(ctx, r.log, func(ctx context.Context) (string, error) {
			return s.p.Cartoons.Cartoonify(ctx, faceURL)
		})
		if err != nil {
			return err
		}
		if cartoon, err = r.fetchNormalized(ctx, cartoonURL, "cartoon.png"); err != nil {
			return err
		}
		if merged, err = s.p.Merger.MergeFace(ctx, base, cartoon); err != nil {
			return err
		}
		_, err = r.ws.Write("result.png", merged)
		return err
	})
	if err != nil {
		return err
	}

	return r.finish(ctx, fmt.Sprintf("face_swapped_cartoon_%s.png", jobID), merged)
}

func (s *PipelineService) runCartoonify(ctx context.Context, jobID, imageURL string) error {
	r, err := s.start(jobID, models.KindCartoonifyOnly)
	if err != nil {
		return err
	}
	defer r.close()

	var cartoonURL string
	var cartoon []byte
	err = r.step(StageTransforming, func() error {
		cartoonURL, err = s.withRetry(ctx, r.log, func(ctx context.Context) (string, error) {
			return s.p.Cartoons.Cartoonify(ctx, imageURL)
		})
		return err
	})
	if err != nil {
		return err
	}

	err = r.step(StageFetching, func() error {
		if cartoon, err = s.p.Downloader.Download(ctx, cartoonURL); err != nil {
			return err
		}
		_, err = r.ws.Write("cartoon.png", cartoon)
		return err
	})
	if err != nil {
		return err
	}

	return r.finish(ctx, fmt.Sprintf("cartoon_only_%s.png", jobID), cartoon)
}

// runBackgroundRemoval reads the staged upload back from storage, removes its
// background and records the result object name on the job. The staged
// object is removed on every exit path.
func (s *PipelineService) runBackgroundRemoval(ctx context.Context, jobID, tempName, tempURL, resultName string) error {
	r, err := s.start(jobID, models.KindBackgroundRemoval)
	if err != nil {
		return err
	}
	defer r.close()
	defer s.removeStaged(tempName)

	err = r.step(StageFetching, func() error {
		source, err := s.p.Storage.Download(s.cfg.BackgroundBucket, tempName)
		if err != nil {
			return err
		}
		if _, err := imageutil.Probe(source); err != nil {
			return err
		}
		_, err = r.ws.Write(tempName, source)
		return err
	})
	if err != nil {
		return err
	}

	var removed []byte
	err = r.step(StageTransforming, func() error {
		removed, err = s.p.Remover.RemoveBackground(ctx, tempURL)
		return err
	})
	if err != nil {
		return err
	}

	var imageURL string
	path := fmt.Sprintf("bg_removed_%s_%s", jobID, resultName)
	err = r.step(StageUploading, func() error {
		imageURL, err = s.p.Storage.Upload(s.cfg.BackgroundBucket, path, removed, http.DetectContentType(removed))
		return err
	})
	if err != nil {
		return err
	}

	err = r.step(StageRecording, func() error {
		return s.jobs.Complete(ctx, jobID, r.kind, imageURL, path)
	})
	if err != nil {
		return err
	}

	r.log.Info().Str("stage", string(StageDone)).Str("image_url", imageURL).Msg("pipeline finished")
	return nil
}

// withRetry retries a generation call up to cfg.Retries extra times with a constant delay.
func (s *PipelineService) withRetry(ctx context.Context, log zerolog.Logger, fn func(context.Context) (string, error)) (string, error) {
	var out string
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(s.cfg.Retries), retry.NewConstant(s.cfg.RetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		result, err := fn(ctx)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("generation attempt failed")
			return retry.RetryableError(err)
		}
		out = result
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generation failed after %d attempts: %w", attempt, err)
	}
	return out, nil
}

func (s *PipelineService) removeStaged(name string) {
	if err := s.p.Storage.Remove(s.cfg.BackgroundBucket, name); err != nil {
		s.log.Warn().Err(err).Str("path", name).Msg("failed to remove staged upload")
	}
}

// pipelineRun carries the per-job state of one pipeline execution.
type pipelineRun struct {
	s     *PipelineService
	jobID string
	kind  string
	ws    *workspace.Workspace
	log   zerolog.Logger
}

func (s *PipelineService) start(jobID, kind string) (*pipelineRun, error) {
	ws, err := workspace.New(s.cfg.WorkDir, jobID)
	if err != nil {
		return nil, &StageError{Stage: StageFetching, Err: err}
	}
	return &pipelineRun{
		s:     s,
		jobID: jobID,
		kind:  kind,
		ws:    ws,
		log:   s.log.With().Str("job_id", jobID).Str("kind", kind).Logger(),
	}, nil
}

func (r *pipelineRun) close() {
	if err := r.ws.Close(); err != nil {
		r.log.Warn().Err(err).Msg("failed to remove workspace")
	}
}

func (r *pipelineRun) step(stage Stage, fn func() error) error {
	r.log.Debug().Str("stage", string(stage)).Msg("stage started")
	if err := fn(); err != nil {
		r.log.Error().Err(err).Str("stage", string(stage)).Msg("stage failed")
		return &StageError{Stage: stage, Err: err}
	}
	return nil
}

func (r *pipelineRun) fetchNormalized(ctx context.Context, url, name string) ([]byte, error) {
	raw, err := r.s.p.Downloader.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	normalized, err := imageutil.NormalizePNG(raw, r.s.cfg.MaxSide)
	if err != nil {
		return nil, err
	}
	if _, err := r.ws.Write(name, normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

// finish uploads the final artifact to the results bucket and records it on the job row.
func (r *pipelineRun) finish(ctx context.Context, filename string, data []byte) error {
	var imageURL string
	var err error
	err = r.step(StageUploading, func() error {
		imageURL, err = r.s.p.Storage.Upload(r.s.cfg.StorageBucket, filename, data, "image/png")
		return err
	})
	if err != nil {
		return err
	}

	err = r.step(StageRecording, func() error {
		return r.s.jobs.Complete(ctx, r.jobID, r.kind, imageURL, filename)
	})
	if err != nil {
		return err
	}

	r.log.Info().Str("stage", string(StageDone)).Str("image_url", imageURL).Msg("pipeline finished")
	return nil
}

func validateUpload(filename string, data []byte) (stem, ext string, err error) {
	base := filepath.Base(filename)
	ext = strings.ToLower(filepath.Ext(base))
	if !allowedExtensions[ext] {
		return "", "", fmt.Errorf("%w: %q (allowed: .png, .jpg, .jpeg)", ErrUnsupportedExtension, ext)
	}
	if _, err := imageutil.Probe(data); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	stem = strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "image"
	}
	return stem, ext, nil
}

func shortID() string {
	return uuid.New().String()[:8]
}
