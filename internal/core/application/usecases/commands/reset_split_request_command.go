package commands

import (
	"errors"

	"splitship/internal/pkg/guard"
)

var ErrResetSplitRequestCommandIsNotConstructed = errors.New(
	"ResetSplitRequestCommand must be created via NewResetSplitRequestCommand constructor",
)

// ResetSplitRequestCommand is the operator action that moves a Failed
// request back to Pending so the next redelivery can retry it.
type ResetSplitRequestCommand struct {
	primaryOrderID string

	guard guard.ConstructorGuard
}

// NewResetSplitRequestCommand creates the command.
func NewResetSplitRequestCommand(primaryOrderID string) (ResetSplitRequestCommand, error) {
	if primaryOrderID == "" {
		return ResetSplitRequestCommand{}, ErrOrderIDIsRequired
	}

	return ResetSplitRequestCommand{
		primaryOrderID: primaryOrderID,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ResetSplitRequestCommand) Validate() error {
	return c.guard.Validate(ErrResetSplitRequestCommandIsNotConstructed)
}

// PrimaryOrderID returns the primary order whose request is reset.
func (c ResetSplitRequestCommand) PrimaryOrderID() string {
	return c.primaryOrderID
}
