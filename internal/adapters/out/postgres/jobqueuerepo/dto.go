// Package jobqueuerepo persists the durable retry queue and the dead-letter
// table behind the queue consumer. A retry row survives process restarts, so
// the retry schedule lives in the database rather than in memory.
package jobqueuerepo

import (
	"time"

	"splitship/internal/core/domain/model/job"
	"splitship/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// RetryJobDTO represents one failed event delivery waiting for a retry.
// EventID is unique: redeliveries of the same event collapse into one row.
type RetryJobDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID       string    `gorm:"uniqueIndex"`
	ShopDomain    string
	Topic         string
	Payload       []byte
	Attempts      int
	NextAttemptAt time.Time `gorm:"index"`
	LastError     string
	CreatedAt     time.Time
}

// TableName overrides GORM's default naming convention.
func (RetryJobDTO) TableName() string {
	return "retry_jobs"
}

// DeadLetterDTO represents a job that exhausted its retry budget.
type DeadLetterDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID    string    `gorm:"index"`
	ShopDomain string
	Topic      string
	Payload    []byte
	Attempts   int
	LastError  string
	FailedAt   time.Time `gorm:"index"`
}

// TableName overrides GORM's default naming convention.
func (DeadLetterDTO) TableName() string {
	return "dead_letters"
}

func retryJobFromDomain(retryJob *job.RetryJob) RetryJobDTO {
	return RetryJobDTO{
		ID:            retryJob.ID.Bytes(),
		EventID:       retryJob.EventID,
		ShopDomain:    retryJob.ShopDomain,
		Topic:         retryJob.Topic,
		Payload:       retryJob.Payload,
		Attempts:      retryJob.Attempts,
		NextAttemptAt: retryJob.NextAttemptAt,
		LastError:     retryJob.LastError,
	}
}

func retryJobToDomain(dto RetryJobDTO) (*job.RetryJob, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return &job.RetryJob{
		ID:            id,
		EventID:       dto.EventID,
		ShopDomain:    dto.ShopDomain,
		Topic:         dto.Topic,
		Payload:       dto.Payload,
		Attempts:      dto.Attempts,
		NextAttemptAt: dto.NextAttemptAt,
		LastError:     dto.LastError,
	}, nil
}

func deadLetterFromDomain(deadLetter *job.DeadLetter) DeadLetterDTO {
	return DeadLetterDTO{
		ID:         deadLetter.ID.Bytes(),
		EventID:    deadLetter.EventID,
		ShopDomain: deadLetter.ShopDomain,
		Topic:      deadLetter.Topic,
		Payload:    deadLetter.Payload,
		Attempts:   deadLetter.Attempts,
		LastError:  deadLetter.LastError,
		FailedAt:   deadLetter.FailedAt,
	}
}
