package mail

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Igor-Vicente/English.Registration.API/pkg/jobs"
)

const jobType = "mail.send"

// Dispatcher hands messages to a background queue so requests never wait on SMTP.
type Dispatcher struct {
	queue     *jobs.Queue
	onAttempt func(error)
}

// NewDispatcher wires a queue whose workers deliver through sender.
func NewDispatcher(sender Sender, workers, retries int, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{}
	handler := func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(Message)
		if !ok {
			return fmt.Errorf("unexpected mail payload %T", job.Payload)
		}
		err := sender.Send(ctx, msg)
		if d.onAttempt != nil {
			d.onAttempt(err)
		}
		return err
	}
	d.queue = jobs.NewQueue("mail", handler, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: retries,
		RetryDelay: 5 * time.Second,
		Logger:     logger,
	})
	return d
}

// OnAttempt registers a callback invoked after every delivery attempt. Call before Start.
func (d *Dispatcher) OnAttempt(fn func(error)) {
	d.onAttempt = fn
}

// Start launches the delivery workers. Cancelling ctx aborts pending deliveries,
// so pass a context that outlives request handling.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Shutdown stops accepting messages and delivers the ones already queued
// until ctx expires. Whatever is left after that is dropped and logged.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	return d.queue.Shutdown(ctx)
}

// Stop delivers every queued message before returning.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Send enqueues the message for delivery.
func (d *Dispatcher) Send(_ context.Context, msg Message) error {
	return d.queue.Enqueue(jobs.Job{Type: jobType, Payload: msg})
}
