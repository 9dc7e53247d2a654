package ports

import (
	"context"

	"splitship/internal/core/domain/model/parcel"
)

// HoldResult is the outcome of one hold sub-operation within a batch.
// Err is nil when the hold was placed and HoldID identifies it.
type HoldResult struct {
	FulfillmentOrderID string
	HoldID             string
	Err                error
}

// ReleaseResult is the outcome of one release sub-operation within a batch.
type ReleaseResult struct {
	HoldID string
	Err    error
}

// DraftOrderSpec describes the supplemental payment order carrying the
// additional shipping charge.
type DraftOrderSpec struct {
	ShopDomain              string
	CustomerID              string
	PrimaryOrderName        string
	LineItemTitle           string
	AdditionalShippingCents int64
}

// CompletedOrder identifies the real order produced from a completed draft.
type CompletedOrder struct {
	OrderID   string
	OrderName string
}

// FulfillmentGateway abstracts the external commerce platform operations the
// saga drives. The external system offers no multi-object transaction, so
// every batched operation reports per-sub-item results: the orchestrator
// must be able to tell which of N requested holds or releases succeeded
// independently. The concrete multiplexing mechanism (request aliasing,
// multiple round trips, a native batch API) is an adapter choice.
type FulfillmentGateway interface {
	// SplitFulfillmentOrder carves the order's primary fulfillment record
	// into one piece per parcel and returns the full id set: the
	// original-remaining fulfillment order id plus every newly created id.
	SplitFulfillmentOrder(ctx context.Context, primaryOrderID string, parcels []parcel.Parcel) ([]string, error)

	// HoldFulfillmentOrders places a hold on every given fulfillment order
	// in one batch, returning one result per requested id. The returned
	// error covers transport-level failure of the whole batch only.
	HoldFulfillmentOrders(ctx context.Context, fulfillmentOrderIDs []string, reason string) ([]HoldResult, error)

	// ReleaseHolds releases the given holds on one fulfillment order,
	// returning one result per hold id.
	ReleaseHolds(ctx context.Context, fulfillmentOrderID string, holdIDs []string) ([]ReleaseResult, error)

	// CreateDraftOrder creates a draft order for the additional shipping
	// charge and returns its id.
	CreateDraftOrder(ctx context.Context, spec DraftOrderSpec) (string, error)

	// CompleteDraftOrder completes the draft in payment-pending mode, so
	// the resulting order is not marked paid.
	CompleteDraftOrder(ctx context.Context, draftOrderID string) (CompletedOrder, error)

	// SendInvoice emails the order's invoice to the customer.
	SendInvoice(ctx context.Context, orderID, subject, messageHTML string) error

	// CancelOrder cancels an order with the given reason.
	CancelOrder(ctx context.Context, orderID, reason string) error
}
