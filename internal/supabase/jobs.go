package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"face-swap-backend/internal/jobs"
	"face-swap-backend/internal/models"
	"github.com/supabase-community/supabase-go"
)

// JobTable stores job rows in a Supabase table through PostgREST.
type JobTable struct {
	client *supabase.Client
	table  string
}

func NewJobTable(client *supabase.Client, table string) *JobTable {
	return &JobTable{client: client, table: table}
}

func (t *JobTable) CreateJob(_ context.Context, job *models.Job) error {
	if _, _, err := t.client.From(t.table).Insert(job, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("failed to insert job %s: %w", job.JobID, err)
	}
	return nil
}

func (t *JobTable) UpdateJob(_ context.Context, jobID string, update models.JobUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	data, _, err := t.client.From(t.table).
		Update(update, "representation", "").
		Eq("job_id", jobID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", jobID, err)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to parse update response: %w", err)
	}
	if len(rows) == 0 {
		return jobs.ErrJobNotFound
	}
	return nil
}

func (t *JobTable) GetJob(_ context.Context, jobID string) (*models.Job, error) {
	data, _, err := t.client.From(t.table).
		Select("*", "", false).
		Eq("job_id", jobID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}

	var rows []models.Job
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse job row: %w", err)
	}
	if len(rows) == 0 {
		return nil, jobs.ErrJobNotFound
	}
	return &rows[0], nil
}
