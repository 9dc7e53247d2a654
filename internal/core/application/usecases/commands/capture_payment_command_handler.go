package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"splitship/internal/core/domain/model/splitrequest"
	"splitship/internal/core/ports"
	"splitship/internal/pkg/errs"
)

// CapturePaymentCommandHandler reacts to the additional shipping payment
// being captured: it releases every still-active hold of the matching split
// request and completes the request. A partially failed release batch still
// marks the holds that were released, then parks the request in Failed with
// the partial-release detail for manual intervention.
type CapturePaymentCommandHandler struct {
	uowFactory SplitRequestUoWFactory
	gateway    ports.FulfillmentGateway
	logger     *slog.Logger
}

// NewCapturePaymentCommandHandler creates the handler.
func NewCapturePaymentCommandHandler(
	uowFactory SplitRequestUoWFactory,
	gateway ports.FulfillmentGateway,
	logger *slog.Logger,
) CapturePaymentCommandHandler {
	return CapturePaymentCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		logger:     logger.With("component", "capture_payment_handler"),
	}
}

// Handle processes one order-paid event.
func (h CapturePaymentCommandHandler) Handle(ctx context.Context, cmd CapturePaymentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	request, err := h.loadRequest(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	released, failures := h.releaseActiveHolds(ctx, request)

	return h.persistOutcome(ctx, request, released, failures)
}

// loadRequest resolves the paid order to its split request. Paid orders that
// are not a tracked payment order are skipped, which covers the common case
// of ordinary orders being paid on the shop.
func (h CapturePaymentCommandHandler) loadRequest(
	ctx context.Context, paymentOrderID string,
) (*splitrequest.SplitRequest, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	request, err := uow.SplitRequestRepository().GetByPaymentOrderID(ctx, paymentOrderID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: order %s is not a tracked payment order", ErrEventSkipped, paymentOrderID)
	}
	if err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if request.Status() != splitrequest.AwaitingPayment {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyProcessed, request.Status())
	}
	return request, nil
}

// releaseActiveHolds releases the request's active holds grouped per
// fulfillment order. It returns the hold ids that were released and the
// textual failures of those that were not.
func (h CapturePaymentCommandHandler) releaseActiveHolds(
	ctx context.Context, request *splitrequest.SplitRequest,
) (released []string, failures []string) {
	byFulfillmentOrder := make(map[string][]string)
	var fulfillmentOrderIDs []string
	for _, hold := range request.ActiveHolds() {
		foID := hold.FulfillmentOrderID()
		if _, seen := byFulfillmentOrder[foID]; !seen {
			fulfillmentOrderIDs = append(fulfillmentOrderIDs, foID)
		}
		byFulfillmentOrder[foID] = append(byFulfillmentOrder[foID], hold.HoldID())
	}

	for _, foID := range fulfillmentOrderIDs {
		holdIDs := byFulfillmentOrder[foID]
		results, err := h.gateway.ReleaseHolds(ctx, foID, holdIDs)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", foID, err))
			continue
		}
		for _, result := range results {
			if result.Err != nil {
				failures = append(failures, fmt.Sprintf("%s/%s: %s", foID, result.HoldID, result.Err))
				continue
			}
			released = append(released, result.HoldID)
		}
	}
	return released, failures
}

// persistOutcome marks the released holds and moves the request to Completed
// or, when some releases failed, to Failed carrying the partial detail.
func (h CapturePaymentCommandHandler) persistOutcome(
	ctx context.Context, request *splitrequest.SplitRequest, released, failures []string,
) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	requestRepo := uow.SplitRequestRepository()

	if len(released) > 0 {
		for _, holdID := range released {
			if err := request.ReleaseHold(holdID); err != nil {
				return err
			}
		}
		if err := requestRepo.MarkHoldsReleased(ctx, released); err != nil {
			return err
		}
	}

	if len(failures) > 0 {
		detail := fmt.Sprintf("release batch partially failed: %s", strings.Join(failures, "; "))
		if err := request.Fail(detail); err != nil {
			return err
		}
		if err := requestRepo.Update(ctx, request); err != nil {
			return err
		}
		if err := uow.Commit(ctx); err != nil {
			return err
		}
		h.logger.ErrorContext(ctx, "Hold release partially failed, manual intervention required",
			"order_id", request.PrimaryOrderID(), "detail", detail)
		return errors.New(detail)
	}

	if err := request.Complete(); err != nil {
		return err
	}
	if err := requestRepo.Update(ctx, request); err != nil {
		return err
	}
	if err := uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "Split request completed",
		"order_id", request.PrimaryOrderID(), "released_holds", len(released))
	return nil
}
