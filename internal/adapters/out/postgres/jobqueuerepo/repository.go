package jobqueuerepo

import (
	"context"
	"time"

	"splitship/internal/core/domain/model/job"
	"splitship/internal/core/domain/model/kernel"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormJobQueueRepository implements JobQueueRepository using GORM. It is
// used outside the unit of work: every operation is a single statement, so
// no surrounding transaction is needed.
type GormJobQueueRepository struct {
	db *gorm.DB
}

// NewGormJobQueueRepository creates a new GORM job queue repository.
func NewGormJobQueueRepository(db *gorm.DB) *GormJobQueueRepository {
	return &GormJobQueueRepository{db: db}
}

// Enqueue inserts or refreshes a retry job keyed by its event id.
func (r *GormJobQueueRepository) Enqueue(ctx context.Context, retryJob *job.RetryJob) error {
	dto := retryJobFromDomain(retryJob)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"attempts", "next_attempt_at", "last_error",
		}),
	}).Create(&dto).Error
}

// DueJobs returns up to limit jobs due at or before now, oldest first.
func (r *GormJobQueueRepository) DueJobs(ctx context.Context, now time.Time, limit int) ([]*job.RetryJob, error) {
	var dtos []RetryJobDTO
	err := r.db.WithContext(ctx).
		Where("next_attempt_at <= ?", now).
		Order("next_attempt_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	jobs := make([]*job.RetryJob, 0, len(dtos))
	for _, dto := range dtos {
		retryJob, convErr := retryJobToDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		jobs = append(jobs, retryJob)
	}
	return jobs, nil
}

// Reschedule persists an updated attempt counter and due time.
func (r *GormJobQueueRepository) Reschedule(ctx context.Context, retryJob *job.RetryJob) error {
	dto := retryJobFromDomain(retryJob)
	result := r.db.WithContext(ctx).Model(&RetryJobDTO{}).
		Where("id = ?", dto.ID).
		Select("attempts", "next_attempt_at", "last_error").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Remove deletes a retry job after success or dead-lettering.
func (r *GormJobQueueRepository) Remove(ctx context.Context, id kernel.UUID) error {
	return r.db.WithContext(ctx).Delete(&RetryJobDTO{}, "id = ?", id.Bytes()).Error
}

// AddDeadLetter records a job that exhausted its retry budget.
func (r *GormJobQueueRepository) AddDeadLetter(ctx context.Context, deadLetter *job.DeadLetter) error {
	dto := deadLetterFromDomain(deadLetter)
	return r.db.WithContext(ctx).Create(&dto).Error
}
