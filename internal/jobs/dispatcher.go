package jobs

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"face-swap-backend/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

var ErrDispatcherClosed = errors.New("dispatcher is shut down")

type Task func(ctx context.Context) error

// Result is handed to the result hook once per finished task.
type Result struct {
	JobID    string
	Kind     string
	Err      error
	Duration time.Duration
}

// Future completes when its task has finished, successfully or not.
type Future struct {
	JobID string
	done  chan struct{}
	err   error
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err returns the task error once Done is closed, nil before.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatcher runs tasks on a fixed number of slots. Submit never blocks;
// tasks beyond the slot count wait in the semaphore's FIFO queue. There is
// no cancellation: a submitted task runs to completion.
type Dispatcher struct {
	size     int
	sem      *semaphore.Weighted
	log      zerolog.Logger
	onResult func(Result)

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	running atomic.Int64
	queued  atomic.Int64
}

func NewDispatcher(size int, log zerolog.Logger) *Dispatcher {
	if size < 1 {
		size = 1
	}
	return &Dispatcher{
		size: size,
		sem:  semaphore.NewWeighted(int64(size)),
		log:  log.With().Str("component", "dispatcher").Logger(),
	}
}

// OnResult registers the hook called after every task. Set it before the first Submit.
func (d *Dispatcher) OnResult(fn func(Result)) {
	d.onResult = fn
}

// Closed reports whether Shutdown has been called.
func (d *Dispatcher) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Dispatcher) Size() int {
	return d.size
}

// Submit enqueues the task. The request context only contributes values;
// its cancellation does not reach the task.
func (d *Dispatcher) Submit(ctx context.Context, jobID, kind string, task Task) (*Future, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrDispatcherClosed
	}
	d.wg.Add(1)
	d.mu.Unlock()

	future := &Future{JobID: jobID, done: make(chan struct{})}
	taskCtx := context.WithoutCancel(ctx)

	d.queued.Add(1)
	go func() {
		defer d.wg.Done()

		// Background never cancels, so Acquire only returns once a slot is free.
		_ = d.sem.Acquire(context.Background(), 1)
		d.queued.Add(-1)
		d.running.Add(1)

		start := time.Now()
		err := d.run(taskCtx, jobID, kind, task)

		d.running.Add(-1)
		d.sem.Release(1)

		if d.onResult != nil {
			d.onResult(Result{JobID: jobID, Kind: kind, Err: err, Duration: time.Since(start)})
		}

		future.err = err
		close(future.done)
	}()

	d.log.Debug().Str("job_id", jobID).Str("kind", kind).Msg("task submitted")
	return future, nil
}

func (d *Dispatcher) run(ctx context.Context, jobID, kind string, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Str("job_id", jobID).
				Str("kind", kind).
				Str("stack", string(debug.Stack())).
				Msgf("task panicked: %v", r)
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task(ctx)
}

// Shutdown stops accepting tasks and waits for running and queued ones.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatcher shutdown: %w", ctx.Err())
	}
}

func (d *Dispatcher) Stats() models.WorkerStats {
	return models.WorkerStats{
		Size:    d.size,
		Running: d.running.Load(),
		Queued:  d.queued.Load(),
	}
}
