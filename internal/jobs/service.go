package jobs

import (
	"context"
	"fmt"

	"face-swap-backend/internal/events"
	"face-swap-backend/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Submission describes a job row to create before its task is dispatched.
type Submission struct {
	Kind             string
	OriginalFilename string
}

// JobTask receives the id of the row created for it.
type JobTask func(ctx context.Context, jobID string) error

// Service ties the job store to the dispatcher: rows are created
// synchronously, work happens asynchronously, and completion is a single
// row update.
type Service struct {
	store          Store
	dispatcher     *Dispatcher
	publisher      events.Publisher
	recordFailures bool
	log            zerolog.Logger
}

func NewService(store Store, dispatcher *Dispatcher, publisher events.Publisher, recordFailures bool, log zerolog.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	s := &Service{
		store:          store,
		dispatcher:     dispatcher,
		publisher:      publisher,
		recordFailures: recordFailures,
		log:            log.With().Str("component", "jobs").Logger(),
	}
	dispatcher.OnResult(s.handleResult)
	return s
}

// Submit creates the job row and dispatches the task. If the row cannot be
// created nothing is dispatched. A closed dispatcher is refused before any
// row exists; if it closes in between, the row is marked failed.
func (s *Service) Submit(ctx context.Context, sub Submission, task JobTask) (string, *Future, error) {
	if s.dispatcher.Closed() {
		return "", nil, ErrDispatcherClosed
	}

	jobID := uuid.New().String()

	job := &models.Job{
		JobID:            jobID,
		Type:             models.StringPtr(sub.Kind),
		OriginalFilename: models.StringPtr(sub.OriginalFilename),
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return "", nil, fmt.Errorf("failed to create job: %w", err)
	}
	s.publish(ctx, events.JobCreated(jobID, sub.Kind))

	future, err := s.dispatcher.Submit(ctx, jobID, sub.Kind, func(ctx context.Context) error {
		return task(ctx, jobID)
	})
	if err != nil {
		s.fail(context.WithoutCancel(ctx), jobID, sub.Kind, err)
		return "", nil, fmt.Errorf("failed to dispatch job: %w", err)
	}

	s.log.Info().Str("job_id", jobID).Str("kind", sub.Kind).Msg("job submitted")
	return jobID, future, nil
}

// Complete records the final artifact URL on the job row.
func (s *Service) Complete(ctx context.Context, jobID, kind, imageURL, resultFilename string) error {
	update := models.JobUpdate{
		URL:            models.StringPtr(imageURL),
		ResultFilename: models.StringPtr(resultFilename),
	}
	if err := s.store.UpdateJob(ctx, jobID, update); err != nil {
		return fmt.Errorf("failed to record job result: %w", err)
	}
	s.publish(ctx, events.JobCompleted(jobID, kind, imageURL))
	return nil
}

// Record inserts a job that finished before any row existed, as the synchronous endpoints do.
func (s *Service) Record(ctx context.Context, job *models.Job) error {
	if err := s.store.CreateJob(ctx, job); err != nil {
		return fmt.Errorf("failed to record job: %w", err)
	}
	s.publish(ctx, events.JobCompleted(job.JobID, models.Deref(job.Type), models.Deref(job.URL)))
	return nil
}

// SaveResult stores a JSON document in the job's result column.
func (s *Service) SaveResult(ctx context.Context, jobID string, result []byte) error {
	if err := s.store.UpdateJob(ctx, jobID, models.JobUpdate{Result: result}); err != nil {
		return fmt.Errorf("failed to save job result: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, jobID string) (*models.Job, error) {
	return s.store.GetJob(ctx, jobID)
}

func (s *Service) Stats() models.WorkerStats {
	return s.dispatcher.Stats()
}

func (s *Service) handleResult(r Result) {
	if r.Err == nil {
		s.log.Info().Str("job_id", r.JobID).Str("kind", r.Kind).Dur("duration", r.Duration).Msg("job completed")
		return
	}

	s.log.Error().Err(r.Err).Str("job_id", r.JobID).Str("kind", r.Kind).Dur("duration", r.Duration).Msg("job failed")
	if !s.recordFailures {
		return
	}

	s.fail(context.Background(), r.JobID, r.Kind, r.Err)
}

// fail writes the error onto the row and publishes job.failed.
func (s *Service) fail(ctx context.Context, jobID, kind string, cause error) {
	msg := cause.Error()
	if err := s.store.UpdateJob(ctx, jobID, models.JobUpdate{ErrorMessage: &msg}); err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("failed to record job failure")
	}
	s.publish(ctx, events.JobFailed(jobID, kind, cause))
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Warn().Err(err).Str("job_id", e.JobID).Str("event", e.Type).Msg("failed to publish job event")
	}
}
