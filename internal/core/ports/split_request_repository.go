package ports

import (
	"context"

	"splitship/internal/core/domain/model/splitrequest"
)

// SplitRequestRepository defines the persistence contract for split request
// aggregates. All operations are keyed by natural external ids and safe to
// retry: the orchestrator may call them multiple times across redelivered
// job attempts.
type SplitRequestRepository interface {
	// GetByPrimaryOrderID retrieves the request for a primary order,
	// including its hold records. Returns errs.ErrObjectNotFound when no
	// request exists.
	GetByPrimaryOrderID(ctx context.Context, primaryOrderID string) (*splitrequest.SplitRequest, error)

	// GetByPaymentOrderID retrieves the request whose supplemental payment
	// order has the given id. Returns errs.ErrObjectNotFound when none does.
	GetByPaymentOrderID(ctx context.Context, paymentOrderID string) (*splitrequest.SplitRequest, error)

	// Upsert inserts or updates the request keyed by its primary order id.
	// This is the saga's durable checkpoint and idempotency boundary.
	Upsert(ctx context.Context, aggregate *splitrequest.SplitRequest) error

	// Update persists changes to an existing request.
	Update(ctx context.Context, aggregate *splitrequest.SplitRequest) error

	// AddHolds inserts hold records for the request. The batch is
	// all-or-nothing: either every record is persisted or none is.
	AddHolds(ctx context.Context, holds []*splitrequest.FulfillmentHold) error

	// MarkHoldsReleased flags the given holds as released.
	MarkHoldsReleased(ctx context.Context, holdIDs []string) error
}
