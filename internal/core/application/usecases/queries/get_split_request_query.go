// Package queries contains the read-side operations of the service. Query
// handlers bypass the domain model and read the database directly, returning
// plain response structs shaped for the HTTP layer.
package queries

import (
	"errors"
	"time"

	"splitship/internal/pkg/guard"
)

var (
	ErrGetSplitRequestQueryIsNotConstructed = errors.New(
		"GetSplitRequestQuery must be created via NewGetSplitRequestQuery constructor",
	)
	ErrPrimaryOrderIDIsRequired = errors.New("primary order id is required")
)

// GetSplitRequestQuery retrieves the split request of one primary order,
// including its hold records, for operator inspection.
type GetSplitRequestQuery struct {
	primaryOrderID string

	guard guard.ConstructorGuard
}

// NewGetSplitRequestQuery creates the query for one primary order.
func NewGetSplitRequestQuery(primaryOrderID string) (GetSplitRequestQuery, error) {
	if primaryOrderID == "" {
		return GetSplitRequestQuery{}, ErrPrimaryOrderIDIsRequired
	}

	return GetSplitRequestQuery{
		primaryOrderID: primaryOrderID,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetSplitRequestQuery) Validate() error {
	return q.guard.Validate(ErrGetSplitRequestQueryIsNotConstructed)
}

// PrimaryOrderID returns the primary order being inspected.
func (q GetSplitRequestQuery) PrimaryOrderID() string {
	return q.primaryOrderID
}

// GetSplitRequestQueryResponse is the read model of one split request.
type GetSplitRequestQueryResponse struct {
	PrimaryOrderID          string
	ShopDomain              string
	UserChoice              bool
	Status                  string
	CalculatedParcels       int
	ShippingLevel           string
	AdditionalShippingCents int64
	PaymentOrderID          *string
	DraftOrderID            *string
	ErrorLog                *string
	PrimaryOrderCancelledAt *time.Time
	PaymentOrderCancelledAt *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
	Holds                   []HoldResponse
}

// HoldResponse is the read model of one hold record.
type HoldResponse struct {
	HoldID             string
	FulfillmentOrderID string
	Released           bool
}
