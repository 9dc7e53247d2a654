package commands

import (
	"errors"
	"time"

	"splitship/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand carries one order-cancelled event. The cancelled order
// may be the primary order or the supplemental payment order of a request.
type CancelOrderCommand struct {
	shopDomain  string
	orderID     string
	cancelledAt time.Time

	guard guard.ConstructorGuard
}

// NewCancelOrderCommand creates the command for one order-cancelled event.
// A zero cancelledAt falls back to the processing time.
func NewCancelOrderCommand(shopDomain, orderID string, cancelledAt time.Time) (CancelOrderCommand, error) {
	if shopDomain == "" {
		return CancelOrderCommand{}, ErrShopDomainIsRequired
	}
	if orderID == "" {
		return CancelOrderCommand{}, ErrOrderIDIsRequired
	}
	if cancelledAt.IsZero() {
		cancelledAt = time.Now().UTC()
	}

	return CancelOrderCommand{
		shopDomain:  shopDomain,
		orderID:     orderID,
		cancelledAt: cancelledAt,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

// ShopDomain returns the shop the event belongs to.
func (c CancelOrderCommand) ShopDomain() string {
	return c.shopDomain
}

// OrderID returns the external id of the cancelled order.
func (c CancelOrderCommand) OrderID() string {
	return c.orderID
}

// CancelledAt returns when the order was cancelled externally.
func (c CancelOrderCommand) CancelledAt() time.Time {
	return c.cancelledAt
}
