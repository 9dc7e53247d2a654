package splitrequest

import (
	"errors"
	"fmt"
	"time"

	"splitship/internal/core/domain/model/kernel"
	"splitship/internal/pkg/errs"
)

var (
	// ErrSplitRequestIsNotConstructed is returned when a SplitRequest was not
	// created through NewSplitRequest or RestoreSplitRequest.
	ErrSplitRequestIsNotConstructed = errors.New(
		"SplitRequest must be created via NewSplitRequest constructor")

	// ErrHoldNotFound is returned when a hold id does not belong to the request.
	ErrHoldNotFound = errors.New("hold does not belong to this split request")
)

// SplitRequest is the aggregate root of the split-shipment saga. One request
// exists per primary order; its unique primaryOrderID is the idempotency key
// that serializes concurrent deliveries of the same order.
//
// Invariants:
//   - primaryOrderID and shopDomain are non-empty
//   - status is a member of the closed Status set
//   - once a terminal status is reached, only cancellation timestamps may change
//   - hold records are owned by the request and only exist after a fully
//     successful hold batch
type SplitRequest struct {
	id                      kernel.UUID
	primaryOrderID          string
	shopDomain              string
	userChoice              bool
	status                  Status
	calculatedParcels       int
	shippingLevel           string
	additionalShippingCents int64
	paymentOrderID          *string
	draftOrderID            *string
	errorLog                *string
	primaryOrderCancelledAt *time.Time
	paymentOrderCancelledAt *time.Time
	createdAt               time.Time
	updatedAt               time.Time

	holds []*FulfillmentHold

	isConstructed bool
}

// NewSplitRequest creates a new split request in its initial status.
// initialStatus must be Pending, or one of the creation-time short-circuits
// AppDisabled (feature off for the shop) and Completed (nothing to split).
func NewSplitRequest(
	id kernel.UUID,
	primaryOrderID string,
	shopDomain string,
	userChoice bool,
	calculatedParcels int,
	shippingLevel string,
	additionalShippingCents int64,
	initialStatus Status,
) (*SplitRequest, error) {
	request := &SplitRequest{
		isConstructed: true,
		createdAt:     time.Now().UTC(),
		updatedAt:     time.Now().UTC(),
	}

	if err := errors.Join(
		request.setID(id),
		request.setPrimaryOrderID(primaryOrderID),
		request.setShopDomain(shopDomain),
		request.setInitialStatus(initialStatus),
		request.setCalculatedParcels(calculatedParcels),
		request.setAdditionalShippingCents(additionalShippingCents),
	); err != nil {
		return nil, err
	}

	request.userChoice = userChoice
	request.shippingLevel = shippingLevel
	return request, nil
}

// RestoreSplitRequest reconstructs a split request from persistence.
func RestoreSplitRequest(
	id kernel.UUID,
	primaryOrderID string,
	shopDomain string,
	userChoice bool,
	status Status,
	calculatedParcels int,
	shippingLevel string,
	additionalShippingCents int64,
	paymentOrderID *string,
	draftOrderID *string,
	errorLog *string,
	primaryOrderCancelledAt *time.Time,
	paymentOrderCancelledAt *time.Time,
	createdAt time.Time,
	updatedAt time.Time,
	holds []*FulfillmentHold,
) (*SplitRequest, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	request := &SplitRequest{
		isConstructed: true,
	}

	if err := errors.Join(
		request.setID(id),
		request.setPrimaryOrderID(primaryOrderID),
		request.setShopDomain(shopDomain),
		request.setCalculatedParcels(calculatedParcels),
		request.setAdditionalShippingCents(additionalShippingCents),
	); err != nil {
		return nil, err
	}

	request.userChoice = userChoice
	request.status = status
	request.shippingLevel = shippingLevel
	request.paymentOrderID = paymentOrderID
	request.draftOrderID = draftOrderID
	request.errorLog = errorLog
	request.primaryOrderCancelledAt = primaryOrderCancelledAt
	request.paymentOrderCancelledAt = paymentOrderCancelledAt
	request.createdAt = createdAt
	request.updatedAt = updatedAt
	request.holds = holds
	return request, nil
}

// Validate ensures the request was constructed through a constructor.
func (r *SplitRequest) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrSplitRequestIsNotConstructed
	}
	return nil
}

// ID returns the internal identifier of the request.
func (r *SplitRequest) ID() kernel.UUID {
	return r.id
}

// PrimaryOrderID returns the external id of the order being split.
func (r *SplitRequest) PrimaryOrderID() string {
	return r.primaryOrderID
}

// ShopDomain returns the shop the request belongs to.
func (r *SplitRequest) ShopDomain() string {
	return r.shopDomain
}

// UserChoice reports whether the buyer asked for split shipment.
func (r *SplitRequest) UserChoice() bool {
	return r.userChoice
}

// Status returns the current saga status.
func (r *SplitRequest) Status() Status {
	return r.status
}

// CalculatedParcels returns the parcel count produced by packing.
func (r *SplitRequest) CalculatedParcels() int {
	return r.calculatedParcels
}

// ShippingLevel returns the resolved shipping level.
func (r *SplitRequest) ShippingLevel() string {
	return r.shippingLevel
}

// AdditionalShippingCents returns the extra shipping charge in cents.
func (r *SplitRequest) AdditionalShippingCents() int64 {
	return r.additionalShippingCents
}

// PaymentOrderID returns the payment order id, nil before finalization.
func (r *SplitRequest) PaymentOrderID() *string {
	return r.paymentOrderID
}

// DraftOrderID returns the draft order id, nil before finalization.
func (r *SplitRequest) DraftOrderID() *string {
	return r.draftOrderID
}

// ErrorLog returns the last recorded failure detail, nil when healthy.
func (r *SplitRequest) ErrorLog() *string {
	return r.errorLog
}

// PrimaryOrderCancelledAt returns when the primary order was cancelled.
func (r *SplitRequest) PrimaryOrderCancelledAt() *time.Time {
	return r.primaryOrderCancelledAt
}

// PaymentOrderCancelledAt returns when the payment order was cancelled.
func (r *SplitRequest) PaymentOrderCancelledAt() *time.Time {
	return r.paymentOrderCancelledAt
}

// CreatedAt returns the creation time of the request.
func (r *SplitRequest) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt returns the last mutation time of the request.
func (r *SplitRequest) UpdatedAt() time.Time {
	return r.updatedAt
}

// Holds returns the hold records owned by the request.
func (r *SplitRequest) Holds() []*FulfillmentHold {
	return r.holds
}

// ActiveHolds returns the holds that have not been released yet.
func (r *SplitRequest) ActiveHolds() []*FulfillmentHold {
	active := make([]*FulfillmentHold, 0, len(r.holds))
	for _, hold := range r.holds {
		if !hold.Released() {
			active = append(active, hold)
		}
	}
	return active
}

// AttachHolds records the holds placed for this request. Called only after
// the external hold batch fully succeeded.
func (r *SplitRequest) AttachHolds(holds []*FulfillmentHold) error {
	for _, hold := range holds {
		if !hold.SplitRequestID().IsEqual(r.id) {
			return fmt.Errorf("%w: %s", ErrHoldNotFound, hold.HoldID())
		}
	}
	r.holds = append(r.holds, holds...)
	r.touch()
	return nil
}

// ReleaseHold marks one owned hold as released.
func (r *SplitRequest) ReleaseHold(holdID string) error {
	for _, hold := range r.holds {
		if hold.HoldID() == holdID {
			hold.Release()
			r.touch()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
}

// AwaitPayment finalizes the happy path of order processing: records the
// payment and draft order ids, clears any prior error and moves the request
// to AwaitingPayment.
func (r *SplitRequest) AwaitPayment(paymentOrderID, draftOrderID string) error {
	if paymentOrderID == "" {
		return errs.NewValueIsRequiredError("paymentOrderID")
	}
	if draftOrderID == "" {
		return errs.NewValueIsRequiredError("draftOrderID")
	}

	newStatus, err := r.status.AwaitPayment()
	if err != nil {
		return err
	}

	r.status = newStatus
	r.paymentOrderID = &paymentOrderID
	r.draftOrderID = &draftOrderID
	r.errorLog = nil
	r.touch()
	return nil
}

// Complete marks the request as successfully finished after the additional
// shipping payment was captured and all holds were released.
func (r *SplitRequest) Complete() error {
	newStatus, err := r.status.Complete()
	if err != nil {
		return err
	}

	r.status = newStatus
	r.touch()
	return nil
}

// Fail records a failure detail and moves the request to the sticky Failed
// status. The detail is preserved verbatim for operator inspection.
func (r *SplitRequest) Fail(detail string) error {
	newStatus, err := r.status.Fail()
	if err != nil {
		return err
	}

	r.status = newStatus
	r.errorLog = &detail
	r.touch()
	return nil
}

// Reset moves a Failed request back to Pending and clears the error log.
// Operator action only.
func (r *SplitRequest) Reset() error {
	newStatus, err := r.status.Reset()
	if err != nil {
		return err
	}

	r.status = newStatus
	r.errorLog = nil
	r.touch()
	return nil
}

// MarkPrimaryOrderCancelled stamps the primary order cancellation time and,
// when the request is still in flight, moves it to Cancelled. Timestamps may
// be stamped even on a terminal request; the status then stays as it is.
func (r *SplitRequest) MarkPrimaryOrderCancelled(at time.Time) {
	r.cancelSide(&r.primaryOrderCancelledAt, at)
}

// MarkPaymentOrderCancelled stamps the payment order cancellation time; see
// MarkPrimaryOrderCancelled for the status rules.
func (r *SplitRequest) MarkPaymentOrderCancelled(at time.Time) {
	r.cancelSide(&r.paymentOrderCancelledAt, at)
}

func (r *SplitRequest) cancelSide(stamp **time.Time, at time.Time) {
	if *stamp == nil {
		t := at.UTC()
		*stamp = &t
	}
	if newStatus, err := r.status.Cancel(); err == nil {
		r.status = newStatus
	}
	r.touch()
}

func (r *SplitRequest) touch() {
	r.updatedAt = time.Now().UTC()
}

func (r *SplitRequest) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *SplitRequest) setPrimaryOrderID(primaryOrderID string) error {
	if primaryOrderID == "" {
		return errs.NewValueIsRequiredError("primaryOrderID")
	}
	r.primaryOrderID = primaryOrderID
	return nil
}

func (r *SplitRequest) setShopDomain(shopDomain string) error {
	if shopDomain == "" {
		return errs.NewValueIsRequiredError("shopDomain")
	}
	r.shopDomain = shopDomain
	return nil
}

func (r *SplitRequest) setInitialStatus(status Status) error {
	if status != Pending && status != AppDisabled && status != Completed {
		return errs.NewValueIsInvalidErrorWithCause("initialStatus",
			fmt.Errorf("%s is not a valid initial status", status))
	}
	r.status = status
	return nil
}

func (r *SplitRequest) setCalculatedParcels(calculatedParcels int) error {
	if calculatedParcels < 0 {
		return errs.NewValueIsInvalidErrorWithCause("calculatedParcels",
			fmt.Errorf("%d is negative", calculatedParcels))
	}
	r.calculatedParcels = calculatedParcels
	return nil
}

func (r *SplitRequest) setAdditionalShippingCents(cents int64) error {
	if cents < 0 {
		return errs.NewValueIsInvalidErrorWithCause("additionalShippingCents",
			fmt.Errorf("%d is negative", cents))
	}
	r.additionalShippingCents = cents
	return nil
}
