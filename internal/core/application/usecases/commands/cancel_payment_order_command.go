package commands

import (
	"errors"

	"splitship/internal/pkg/guard"
)

var ErrCancelPaymentOrderCommandIsNotConstructed = errors.New(
	"CancelPaymentOrderCommand must be created via NewCancelPaymentOrderCommand constructor",
)

// defaultPaymentCancelReason is used when the operator gives no reason.
const defaultPaymentCancelReason = "Primary order was cancelled"

// CancelPaymentOrderCommand is the operator action that cancels the still
// open payment order of a request, typically after the primary order was
// cancelled on its own.
type CancelPaymentOrderCommand struct {
	primaryOrderID string
	reason         string

	guard guard.ConstructorGuard
}

// NewCancelPaymentOrderCommand creates the command.
func NewCancelPaymentOrderCommand(primaryOrderID, reason string) (CancelPaymentOrderCommand, error) {
	if primaryOrderID == "" {
		return CancelPaymentOrderCommand{}, ErrOrderIDIsRequired
	}
	if reason == "" {
		reason = defaultPaymentCancelReason
	}

	return CancelPaymentOrderCommand{
		primaryOrderID: primaryOrderID,
		reason:         reason,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelPaymentOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelPaymentOrderCommandIsNotConstructed)
}

// PrimaryOrderID returns the primary order whose payment order is cancelled.
func (c CancelPaymentOrderCommand) PrimaryOrderID() string {
	return c.primaryOrderID
}

// Reason returns the cancellation reason sent to the external system.
func (c CancelPaymentOrderCommand) Reason() string {
	return c.reason
}
