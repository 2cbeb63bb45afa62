package events

import (
	"context"
	"time"
)

const (
	TypeJobCreated   = "job.created"
	TypeJobCompleted = "job.completed"
	TypeJobFailed    = "job.failed"
)

type Event struct {
	Type      string    `json:"type"`
	JobID     string    `json:"job_id"`
	Kind      string    `json:"kind"`
	ImageURL  string    `json:"image_url,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }

// Event payloads
func JobCreated(jobID, kind string) Event {
	return Event{Type: TypeJobCreated, JobID: jobID, Kind: kind, Timestamp: time.Now().UTC()}
}

func JobCompleted(jobID, kind, imageURL string) Event {
	return Event{Type: TypeJobCompleted, JobID: jobID, Kind: kind, ImageURL: imageURL, Timestamp: time.Now().UTC()}
}

func JobFailed(jobID, kind string, err error) Event {
	e := Event{Type: TypeJobFailed, JobID: jobID, Kind: kind, Timestamp: time.Now().UTC()}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}
