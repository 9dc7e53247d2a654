// Package job contains the durable retry and dead-letter records backing the
// queue consumer. A failed delivery is persisted as a RetryJob with a due
// time; attempts beyond the retry budget become DeadLetter rows for manual
// inspection.
package job

import (
	"time"

	"splitship/internal/core/domain/model/kernel"
	"splitship/internal/pkg/errs"
)

// MaxAttempts is the retry budget per event before dead-lettering.
const MaxAttempts = 8

const (
	baseRetryDelay = 5 * time.Second
	maxRetryDelay  = time.Hour
)

// RetryJob is one failed event delivery waiting for its next attempt.
// EventID is the natural key: redeliveries of the same event collapse into
// one retry row.
type RetryJob struct {
	ID            kernel.UUID
	EventID       string
	ShopDomain    string
	Topic         string
	Payload       []byte
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
}

// NewRetryJob records the first failed attempt for an event.
func NewRetryJob(eventID, shopDomain, topic string, payload []byte, lastError string) (*RetryJob, error) {
	if eventID == "" {
		return nil, errs.NewValueIsRequiredError("eventID")
	}
	if topic == "" {
		return nil, errs.NewValueIsRequiredError("topic")
	}

	j := &RetryJob{
		ID:         kernel.NewUUID(),
		EventID:    eventID,
		ShopDomain: shopDomain,
		Topic:      topic,
		Payload:    payload,
		Attempts:   1,
		LastError:  lastError,
	}
	j.NextAttemptAt = time.Now().UTC().Add(j.delay())
	return j, nil
}

// RecordFailure bumps the attempt counter and schedules the next attempt
// with a capped exponential delay.
func (j *RetryJob) RecordFailure(lastError string, now time.Time) {
	j.Attempts++
	j.LastError = lastError
	j.NextAttemptAt = now.UTC().Add(j.delay())
}

// Exhausted reports whether the retry budget has been spent.
func (j *RetryJob) Exhausted() bool {
	return j.Attempts >= MaxAttempts
}

// delay doubles per attempt: 5s, 10s, 20s, ... capped at one hour.
func (j *RetryJob) delay() time.Duration {
	d := baseRetryDelay
	for i := 1; i < j.Attempts; i++ {
		d *= 2
		if d >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return d
}

// DeadLetter is a job that exhausted its retry budget. Dead letters are kept
// for operator inspection and manual requeueing.
type DeadLetter struct {
	ID         kernel.UUID
	EventID    string
	ShopDomain string
	Topic      string
	Payload    []byte
	Attempts   int
	LastError  string
	FailedAt   time.Time
}

// NewDeadLetter converts an exhausted retry job into a dead letter.
func NewDeadLetter(retryJob *RetryJob) *DeadLetter {
	return &DeadLetter{
		ID:         kernel.NewUUID(),
		EventID:    retryJob.EventID,
		ShopDomain: retryJob.ShopDomain,
		Topic:      retryJob.Topic,
		Payload:    retryJob.Payload,
		Attempts:   retryJob.Attempts,
		LastError:  retryJob.LastError,
		FailedAt:   time.Now().UTC(),
	}
}
