package jobs

import (
	"fmt"
	"log/slog"

	"splitship/internal/core/ports"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	retryDispatchJob *RetryDispatchJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	dispatch EventDispatch,
	isSkip SkipClassifier,
	jobQueue ports.JobQueueRepository,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		retryDispatchJob: NewRetryDispatchJob(dispatch, isSkip, jobQueue, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.retryDispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start retry dispatch job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.retryDispatchJob.Stop()
}
