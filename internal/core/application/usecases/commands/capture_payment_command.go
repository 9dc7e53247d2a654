package commands

import (
	"errors"

	"splitship/internal/pkg/guard"
)

var ErrCapturePaymentCommandIsNotConstructed = errors.New(
	"CapturePaymentCommand must be created via NewCapturePaymentCommand constructor",
)

// CapturePaymentCommand carries one order-paid event. The order id may be
// any paid order on the shop; only ids that match a tracked payment order
// progress the saga, everything else is skipped.
type CapturePaymentCommand struct {
	shopDomain string
	orderID    string

	guard guard.ConstructorGuard
}

// NewCapturePaymentCommand creates the command for one order-paid event.
func NewCapturePaymentCommand(shopDomain, orderID string) (CapturePaymentCommand, error) {
	if shopDomain == "" {
		return CapturePaymentCommand{}, ErrShopDomainIsRequired
	}
	if orderID == "" {
		return CapturePaymentCommand{}, ErrOrderIDIsRequired
	}

	return CapturePaymentCommand{
		shopDomain: shopDomain,
		orderID:    orderID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CapturePaymentCommand) Validate() error {
	return c.guard.Validate(ErrCapturePaymentCommandIsNotConstructed)
}

// ShopDomain returns the shop the event belongs to.
func (c CapturePaymentCommand) ShopDomain() string {
	return c.shopDomain
}

// OrderID returns the external id of the paid order.
func (c CapturePaymentCommand) OrderID() string {
	return c.orderID
}
