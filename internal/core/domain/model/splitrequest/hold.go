package splitrequest

import (
	"splitship/internal/core/domain/model/kernel"
	"splitship/internal/pkg/errs"
)

// FulfillmentHold is an externally placed block on one fulfillment order,
// owned by the split request that placed it. A hold row only exists once the
// whole batch of holds for the request succeeded.
type FulfillmentHold struct {
	holdID             string
	fulfillmentOrderID string
	splitRequestID     kernel.UUID
	released           bool
}

// NewFulfillmentHold creates a hold record for a successfully placed hold.
func NewFulfillmentHold(holdID, fulfillmentOrderID string, splitRequestID kernel.UUID) (*FulfillmentHold, error) {
	if holdID == "" {
		return nil, errs.NewValueIsRequiredError("holdID")
	}
	if fulfillmentOrderID == "" {
		return nil, errs.NewValueIsRequiredError("fulfillmentOrderID")
	}
	if err := splitRequestID.Validate(); err != nil {
		return nil, err
	}

	return &FulfillmentHold{
		holdID:             holdID,
		fulfillmentOrderID: fulfillmentOrderID,
		splitRequestID:     splitRequestID,
	}, nil
}

// RestoreFulfillmentHold reconstructs a hold from persistence.
func RestoreFulfillmentHold(
	holdID, fulfillmentOrderID string, splitRequestID kernel.UUID, released bool,
) (*FulfillmentHold, error) {
	hold, err := NewFulfillmentHold(holdID, fulfillmentOrderID, splitRequestID)
	if err != nil {
		return nil, err
	}
	hold.released = released
	return hold, nil
}

// HoldID returns the external hold identifier.
func (h *FulfillmentHold) HoldID() string {
	return h.holdID
}

// FulfillmentOrderID returns the fulfillment order the hold blocks.
func (h *FulfillmentHold) FulfillmentOrderID() string {
	return h.fulfillmentOrderID
}

// SplitRequestID returns the owning split request id.
func (h *FulfillmentHold) SplitRequestID() kernel.UUID {
	return h.splitRequestID
}

// Released reports whether the hold has been released externally.
func (h *FulfillmentHold) Released() bool {
	return h.released
}

// Release marks the hold as released. Releasing twice is a no-op; release
// calls against the external system are idempotent on their side too.
func (h *FulfillmentHold) Release() {
	h.released = true
}
