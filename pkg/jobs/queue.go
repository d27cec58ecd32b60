package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrQueueClosed is returned by Enqueue when the queue is not accepting work.
var ErrQueueClosed = errors.New("queue closed")

// Job is a unit of background work. Attempt counts failed deliveries so far.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	// RetryDelay is the first backoff step; it doubles on every further failure.
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue runs jobs on a fixed pool of goroutines. A worker keeps a failing job
// until it succeeds or runs out of retries.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs chan Job

	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// NewQueue builds an idle queue. Call Start before enqueueing.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  logger.With(zap.String("queue", name)),
	}
}

// Start launches the workers. Calling it on a running queue is a no-op.
// Cancelling ctx rejects further jobs and aborts in-flight ones.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.jobs = make(chan Job, q.cfg.BufferSize)
	q.running = true
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.work(q.ctx, q.jobs)
	}
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop drains buffered jobs and waits for the workers without a deadline.
func (q *Queue) Stop() {
	_ = q.Shutdown(context.Background())
}

// Shutdown stops accepting jobs and lets the workers finish everything already
// buffered. When ctx expires first, in-flight jobs are cancelled and the rest
// are logged as dropped.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	jobs, cancel := q.jobs, q.cancel
	close(jobs)
	q.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(finished)
	}()

	var err error
	select {
	case <-finished:
	case <-ctx.Done():
		err = ctx.Err()
	}
	cancel()
	<-finished

	dropped := 0
	for job := range jobs {
		dropped++
		q.drop(job)
	}
	q.logger.Info("queue stopped", zap.Int("dropped", dropped))
	return err
}

func (q *Queue) drop(job Job) {
	q.logger.Warn("job dropped on shutdown", zap.String("job_id", job.ID), zap.String("type", job.Type))
}

// Enqueue hands a job to the pool without waiting for it to run.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running || q.ctx.Err() != nil {
		return fmt.Errorf("%s: %w", q.name, ErrQueueClosed)
	}

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case q.jobs <- job:
		return nil
	case <-q.ctx.Done():
		return fmt.Errorf("%s: %w", q.name, ErrQueueClosed)
	}
}

func (q *Queue) work(ctx context.Context, jobs <-chan Job) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				q.drop(job)
				return
			}
			q.run(ctx, job)
		}
	}
}

// run retries job in place with exponential backoff.
func (q *Queue) run(ctx context.Context, job Job) {
	delay := q.cfg.RetryDelay
	for {
		err := q.handler(ctx, job)
		if err == nil {
			return
		}
		if job.Attempt >= q.cfg.MaxRetries {
			q.logger.Error("job exceeded retries",
				zap.String("job_id", job.ID),
				zap.String("type", job.Type),
				zap.Int("attempts", job.Attempt+1),
				zap.Error(err))
			return
		}
		job.Attempt++
		q.logger.Warn("job failed, retrying",
			zap.String("job_id", job.ID),
			zap.Int("attempt", job.Attempt),
			zap.Duration("backoff", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		delay *= 2
	}
}
