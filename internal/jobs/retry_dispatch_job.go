package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"splitship/internal/core/domain/model/job"
	"splitship/internal/core/ports"
)

// sweepBatchSize caps how many due jobs one sweep re-dispatches.
const sweepBatchSize = 50

// EventDispatch re-runs a stored event through the same path a live
// delivery takes. Implemented by the queue dispatcher.
type EventDispatch interface {
	Dispatch(ctx context.Context, shopDomain, topic, eventID string, payload []byte) error
}

// SkipClassifier reports whether a dispatch outcome needs no retry.
type SkipClassifier func(error) bool

// RetryDispatchJob sweeps the durable retry queue every second and
// re-dispatches due jobs. Successes and skips are removed, failures are
// rescheduled with backoff, and jobs past the retry budget move to the
// dead-letter set.
type RetryDispatchJob struct {
	dispatch EventDispatch
	isSkip   SkipClassifier
	jobQueue ports.JobQueueRepository
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewRetryDispatchJob creates a new job for sweeping the retry queue.
func NewRetryDispatchJob(
	dispatch EventDispatch,
	isSkip SkipClassifier,
	jobQueue ports.JobQueueRepository,
	logger *slog.Logger,
) *RetryDispatchJob {
	return &RetryDispatchJob{
		dispatch: dispatch,
		isSkip:   isSkip,
		jobQueue: jobQueue,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "retry_dispatch_job"),
	}
}

// Start begins the retry sweep to run every second.
func (j *RetryDispatchJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		j.sweep(context.Background())
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Retry dispatch job started (running every second)")
	return nil
}

// Stop stops the retry sweep.
func (j *RetryDispatchJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Retry dispatch job stopped")
}

func (j *RetryDispatchJob) sweep(ctx context.Context) {
	dueJobs, err := j.jobQueue.DueJobs(ctx, time.Now().UTC(), sweepBatchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Cannot load due retry jobs", "error", err)
		return
	}

	for _, retryJob := range dueJobs {
		j.attempt(ctx, retryJob)
	}
}

func (j *RetryDispatchJob) attempt(ctx context.Context, retryJob *job.RetryJob) {
	err := j.dispatch.Dispatch(ctx, retryJob.ShopDomain, retryJob.Topic, retryJob.EventID, retryJob.Payload)
	if err == nil || j.isSkip(err) {
		if removeErr := j.jobQueue.Remove(ctx, retryJob.ID); removeErr != nil {
			j.logger.ErrorContext(ctx, "Cannot remove finished retry job",
				"event_id", retryJob.EventID, "error", removeErr)
		}
		return
	}

	retryJob.RecordFailure(err.Error(), time.Now().UTC())

	if retryJob.Exhausted() {
		j.deadLetter(ctx, retryJob)
		return
	}

	if err := j.jobQueue.Reschedule(ctx, retryJob); err != nil {
		j.logger.ErrorContext(ctx, "Cannot reschedule retry job",
			"event_id", retryJob.EventID, "error", err)
		return
	}
	j.logger.WarnContext(ctx, "Retry attempt failed, rescheduled",
		"event_id", retryJob.EventID, "topic", retryJob.Topic,
		"attempts", retryJob.Attempts, "next_attempt_at", retryJob.NextAttemptAt)
}

func (j *RetryDispatchJob) deadLetter(ctx context.Context, retryJob *job.RetryJob) {
	if err := j.jobQueue.AddDeadLetter(ctx, job.NewDeadLetter(retryJob)); err != nil {
		j.logger.ErrorContext(ctx, "Cannot record dead letter, keeping retry job",
			"event_id", retryJob.EventID, "error", err)
		return
	}
	if err := j.jobQueue.Remove(ctx, retryJob.ID); err != nil {
		j.logger.ErrorContext(ctx, "Cannot remove dead-lettered retry job",
			"event_id", retryJob.EventID, "error", err)
		return
	}
	j.logger.ErrorContext(ctx, "Event exhausted its retry budget, dead-lettered",
		"event_id", retryJob.EventID, "topic", retryJob.Topic,
		"attempts", retryJob.Attempts, "last_error", retryJob.LastError)
}
