package ports

import (
	"context"
	"time"

	"splitship/internal/core/domain/model/job"
	"splitship/internal/core/domain/model/kernel"
)

// JobQueueRepository persists the durable retry queue and the dead-letter
// set behind the queue consumer.
type JobQueueRepository interface {
	// Enqueue inserts or refreshes a retry job keyed by its event id, so a
	// redelivered event never produces two retry rows.
	Enqueue(ctx context.Context, retryJob *job.RetryJob) error

	// DueJobs returns up to limit jobs whose next attempt is due at or
	// before now, oldest first.
	DueJobs(ctx context.Context, now time.Time, limit int) ([]*job.RetryJob, error)

	// Reschedule persists an updated attempt counter and due time.
	Reschedule(ctx context.Context, retryJob *job.RetryJob) error

	// Remove deletes a retry job after success or dead-lettering.
	Remove(ctx context.Context, id kernel.UUID) error

	// AddDeadLetter records a job that exhausted its retry budget.
	AddDeadLetter(ctx context.Context, deadLetter *job.DeadLetter) error
}
