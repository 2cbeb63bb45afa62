package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"face-swap-backend/internal/models"
)

var ErrJobNotFound = errors.New("job not found")

// Store persists job rows. UpdateJob applies a partial update and must
// return ErrJobNotFound for unknown ids.
type Store interface {
	CreateJob(ctx context.Context, job *models.Job) error
	UpdateJob(ctx context.Context, jobID string, update models.JobUpdate) error
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
}

// MemoryStore keeps jobs in process memory. Rows are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*models.Job)}
}

func (s *MemoryStore) CreateJob(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.JobID]; exists {
		return errors.New("job already exists")
	}

	now := time.Now().UTC()
	row := *job
	if row.CreatedAt == nil {
		row.CreatedAt = &now
	}
	row.UpdatedAt = &now
	s.jobs[job.JobID] = &row
	return nil
}

func (s *MemoryStore) UpdateJob(_ context.Context, jobID string, update models.JobUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	update.Apply(row)
	now := time.Now().UTC()
	row.UpdatedAt = &now
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, jobID string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	job := *row
	return &job, nil
}
