package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"splitship/internal/core/domain/model/splitrequest"
	"splitship/internal/core/ports"
	"splitship/internal/pkg/errs"
)

// CancelOrderCommandHandler reacts to external order cancellations. It stamps
// the matching cancellation timestamp on the split request and on the order
// reference row, and moves an in-flight request to Cancelled. When only one
// side of the primary/payment order pair is cancelled, the mismatch is
// surfaced as an operator warning, not an error; the counterpart is never
// cancelled automatically from an event.
type CancelOrderCommandHandler struct {
	uowFactory SagaUoWFactory
	logger     *slog.Logger
}

// NewCancelOrderCommandHandler creates the handler.
func NewCancelOrderCommandHandler(uowFactory SagaUoWFactory, logger *slog.Logger) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "cancel_order_handler"),
	}
}

// Handle processes one order-cancelled event.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	requestRepo := uow.SplitRequestRepository()
	referenceRepo := uow.ReferenceRepository()

	request, isPrimary, err := resolveCancelledOrder(ctx, requestRepo, cmd.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return fmt.Errorf("%w: order %s has no split request", ErrEventSkipped, cmd.OrderID())
	}
	if err != nil {
		return err
	}

	if isPrimary {
		request.MarkPrimaryOrderCancelled(cmd.CancelledAt())
	} else {
		request.MarkPaymentOrderCancelled(cmd.CancelledAt())
	}

	if err = stampOrderCancelled(ctx, referenceRepo, cmd.OrderID(), cmd.CancelledAt()); err != nil {
		return err
	}
	if err = requestRepo.Update(ctx, request); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.warnOnLoneCancellation(ctx, request, isPrimary)
	return nil
}

// resolveCancelledOrder finds the request owning the cancelled order and
// reports whether the order is the primary or the payment side.
func resolveCancelledOrder(
	ctx context.Context, repo ports.SplitRequestRepository, orderID string,
) (*splitrequest.SplitRequest, bool, error) {
	request, err := repo.GetByPrimaryOrderID(ctx, orderID)
	if err == nil {
		return request, true, nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, false, err
	}

	request, err = repo.GetByPaymentOrderID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	return request, false, nil
}

func stampOrderCancelled(
	ctx context.Context, repo ports.ReferenceRepository, orderID string, at time.Time,
) error {
	order, err := repo.GetOrder(ctx, orderID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		// The reference row may predate the app install. Nothing to stamp.
		return nil
	}
	if err != nil {
		return err
	}

	cancelledAt := at.UTC()
	order.CancelledAt = &cancelledAt
	return repo.UpsertOrder(ctx, order)
}

// warnOnLoneCancellation logs when one side of the order pair is cancelled
// while its counterpart is still open, which an operator has to resolve.
func (h CancelOrderCommandHandler) warnOnLoneCancellation(
	ctx context.Context, request *splitrequest.SplitRequest, isPrimary bool,
) {
	switch {
	case isPrimary && request.PaymentOrderID() != nil && request.PaymentOrderCancelledAt() == nil:
		h.logger.WarnContext(ctx, "Primary order cancelled but payment order is still open",
			"order_id", request.PrimaryOrderID(), "payment_order_id", *request.PaymentOrderID())
	case !isPrimary && request.PrimaryOrderCancelledAt() == nil:
		h.logger.WarnContext(ctx, "Payment order cancelled but primary order is still open",
			"order_id", request.PrimaryOrderID())
	}
}
