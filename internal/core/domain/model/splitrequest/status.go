package splitrequest

import (
	"fmt"

	"splitship/internal/pkg/errs"
)

// Status represents the lifecycle state of a split request.
// It implements a state machine with defined transitions so a request can
// only move along the saga's legal paths.
//
// State transitions:
//
//	Pending ──┬──> AwaitingPayment ──┬──> Completed
//	          │          │           └──> Failed ──> Pending (operator reset)
//	          │          └──> Cancelled
//	          ├──> Cancelled
//	          └──> Failed
//
// AppDisabled and Completed can also be assigned directly at creation time
// when the saga short-circuits (feature switched off, or nothing to split).
// Completed, Failed and Cancelled are terminal: redelivered events for a
// request in one of these states short-circuit without side effects.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status once a split request has been durably
	// recorded but before any external side effect has been confirmed.
	Pending

	// AppDisabled means the shop has the split feature switched off.
	// The request is recorded for reference and nothing else happens.
	AppDisabled

	// AwaitingPayment means split and holds succeeded and the payment order
	// has been invoiced; the saga is waiting for the buyer to pay.
	AwaitingPayment

	// Completed is the terminal success state: either the additional
	// shipping was paid and all holds were released, or there was nothing
	// to split in the first place.
	Completed

	// Failed is the terminal error state. It is sticky: only an operator
	// reset moves a failed request back to Pending.
	Failed

	// Cancelled is the terminal state reached when the primary or payment
	// order was cancelled externally.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "Unknown",
		Pending:         "Pending",
		AppDisabled:     "AppDisabled",
		AwaitingPayment: "AwaitingPayment",
		Completed:       "Completed",
		Failed:          "Failed",
		Cancelled:       "Cancelled",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:         "Pending",
		AppDisabled:     "AppDisabled",
		AwaitingPayment: "AwaitingPayment",
		Completed:       "Completed",
		Failed:          "Failed",
		Cancelled:       "Cancelled",
	}
}

// Validate checks if the Status value is a member of the closed status set.
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// Implements fmt.Stringer and is safe on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the status short-circuits event redelivery.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Failed || s == Cancelled
}

// AwaitPayment transitions the status to AwaitingPayment.
//
// Valid transitions:
//   - Pending -> AwaitingPayment (split, holds and invoice succeeded)
func (s Status) AwaitPayment() (Status, error) {
	if s != Pending {
		return 0, errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%s is not a valid status to await payment", s))
	}
	return AwaitingPayment, nil
}

// Complete transitions the status to Completed.
//
// Valid transitions:
//   - AwaitingPayment -> Completed (payment captured, all holds released)
func (s Status) Complete() (Status, error) {
	if s != AwaitingPayment {
		return 0, errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s))
	}
	return Completed, nil
}

// Fail transitions the status to Failed. Any in-flight status may fail;
// terminal statuses may not.
func (s Status) Fail() (Status, error) {
	if s.IsTerminal() {
		return 0, errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%s is terminal and cannot fail", s))
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return Failed, nil
}

// Cancel transitions the status to Cancelled.
//
// Valid transitions:
//   - Pending -> Cancelled
//   - AwaitingPayment -> Cancelled
func (s Status) Cancel() (Status, error) {
	if s != Pending && s != AwaitingPayment {
		return 0, errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%s is not a valid status to cancel", s))
	}
	return Cancelled, nil
}

// Reset transitions the status back to Pending. Only the sticky Failed
// status can be reset, and only by an operator action.
func (s Status) Reset() (Status, error) {
	if s != Failed {
		return 0, errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%s is not a valid status to reset", s))
	}
	return Pending, nil
}
