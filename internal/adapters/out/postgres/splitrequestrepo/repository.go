package splitrequestrepo

import (
	"context"
	"errors"

	"splitship/internal/core/domain/model/kernel"
	"splitship/internal/core/domain/model/splitrequest"
	"splitship/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSplitRequestRepository implements SplitRequestRepository using GORM.
type GormSplitRequestRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormSplitRequestRepository creates a new GORM split request repository.
func NewGormSplitRequestRepository(db *gorm.DB, tracker aggregateTracker) *GormSplitRequestRepository {
	return &GormSplitRequestRepository{
		db:      db,
		tracker: tracker,
	}
}

// GetByPrimaryOrderID retrieves the request for a primary order, including
// its hold records.
func (r *GormSplitRequestRepository) GetByPrimaryOrderID(
	ctx context.Context, primaryOrderID string,
) (*splitrequest.SplitRequest, error) {
	return r.getOne(ctx, "primary_order_id = ?", primaryOrderID)
}

// GetByPaymentOrderID retrieves the request whose payment order has the
// given id.
func (r *GormSplitRequestRepository) GetByPaymentOrderID(
	ctx context.Context, paymentOrderID string,
) (*splitrequest.SplitRequest, error) {
	return r.getOne(ctx, "payment_order_id = ?", paymentOrderID)
}

func (r *GormSplitRequestRepository) getOne(
	ctx context.Context, query string, arg string,
) (*splitrequest.SplitRequest, error) {
	var dto SplitRequestDTO
	err := r.db.WithContext(ctx).Preload("Holds").First(&dto, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("split request", arg)
		}
		return nil, err
	}

	return toDomain(dto)
}

// Upsert inserts or updates the request keyed by its primary order id.
// The unique constraint on primary_order_id serializes concurrent
// deliveries of the same order.
func (r *GormSplitRequestRepository) Upsert(ctx context.Context, aggregate *splitrequest.SplitRequest) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "primary_order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_choice",
			"status",
			"calculated_parcels",
			"shipping_level",
			"additional_shipping_cents",
			"payment_order_id",
			"draft_order_id",
			"error_log",
			"primary_order_cancelled_at",
			"payment_order_cancelled_at",
			"updated_at",
		}),
	}).Create(&dto).Error
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing request to the database.
func (r *GormSplitRequestRepository) Update(ctx context.Context, aggregate *splitrequest.SplitRequest) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&SplitRequestDTO{}).
		Where("id = ?", dto.ID).
		Select(
			"user_choice",
			"status",
			"calculated_parcels",
			"shipping_level",
			"additional_shipping_cents",
			"payment_order_id",
			"draft_order_id",
			"error_log",
			"primary_order_cancelled_at",
			"payment_order_cancelled_at",
			"updated_at",
		).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// AddHolds inserts hold records for the request. The batch is a single
// insert statement, so either every record lands or none does.
func (r *GormSplitRequestRepository) AddHolds(ctx context.Context, holds []*splitrequest.FulfillmentHold) error {
	if len(holds) == 0 {
		return nil
	}

	dtos := make([]FulfillmentHoldDTO, 0, len(holds))
	for _, hold := range holds {
		dtos = append(dtos, holdFromDomain(hold))
	}

	return r.db.WithContext(ctx).Create(&dtos).Error
}

// MarkHoldsReleased flags the given holds as released.
func (r *GormSplitRequestRepository) MarkHoldsReleased(ctx context.Context, holdIDs []string) error {
	if len(holdIDs) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Model(&FulfillmentHoldDTO{}).
		Where("hold_id IN ?", holdIDs).
		Update("released", true).Error
}
