package ports

import (
	"context"

	"splitship/internal/core/domain/model/reference"
)

// ReferenceRepository persists the shared shop/order/customer reference rows.
// Upserts are keyed by natural unique id with last-write-wins on non-key
// fields, so they are safe under redelivery. Reference rows are shared
// lookup data, never deleted.
type ReferenceRepository interface {
	// UpsertShop inserts the shop if missing. The operator-controlled
	// SplitEnabled flag of an existing row is never overwritten.
	UpsertShop(ctx context.Context, shop *reference.Shop) error

	// GetShop retrieves a shop by domain.
	// Returns errs.ErrObjectNotFound when unknown.
	GetShop(ctx context.Context, domain string) (*reference.Shop, error)

	// UpsertOrder inserts or updates an order reference row by order id.
	UpsertOrder(ctx context.Context, order *reference.Order) error

	// GetOrder retrieves an order reference row by order id.
	// Returns errs.ErrObjectNotFound when unknown.
	GetOrder(ctx context.Context, orderID string) (*reference.Order, error)

	// UpsertCustomer inserts or updates a customer reference row by
	// customer id.
	UpsertCustomer(ctx context.Context, customer *reference.Customer) error
}
