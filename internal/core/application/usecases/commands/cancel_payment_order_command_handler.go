package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"splitship/internal/core/ports"
)

var (
	// ErrNoPaymentOrder is returned when the request never reached the
	// payment order phase, so there is nothing to cancel.
	ErrNoPaymentOrder = errors.New("split request has no payment order")

	// ErrPaymentOrderAlreadyCancelled is returned when the payment order
	// was cancelled before.
	ErrPaymentOrderAlreadyCancelled = errors.New("payment order is already cancelled")
)

// CancelPaymentOrderCommandHandler cancels the payment order of a request
// through the external gateway on operator request. The cancellation event
// flowing back from the external system then stamps the request the same way
// any other cancellation does; the handler also stamps locally so the
// operator sees the effect immediately.
type CancelPaymentOrderCommandHandler struct {
	uowFactory SplitRequestUoWFactory
	gateway    ports.FulfillmentGateway
	logger     *slog.Logger
}

// NewCancelPaymentOrderCommandHandler creates the handler.
func NewCancelPaymentOrderCommandHandler(
	uowFactory SplitRequestUoWFactory,
	gateway ports.FulfillmentGateway,
	logger *slog.Logger,
) CancelPaymentOrderCommandHandler {
	return CancelPaymentOrderCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		logger:     logger.With("component", "cancel_payment_order_handler"),
	}
}

// Handle cancels the payment order of one split request.
func (h CancelPaymentOrderCommandHandler) Handle(ctx context.Context, cmd CancelPaymentOrderCommand) error {
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
	request, err := requestRepo.GetByPrimaryOrderID(ctx, cmd.PrimaryOrderID())
	if err != nil {
		return err
	}
	if request.PaymentOrderID() == nil {
		return fmt.Errorf("%w: order %s", ErrNoPaymentOrder, cmd.PrimaryOrderID())
	}
	if request.PaymentOrderCancelledAt() != nil {
		return fmt.Errorf("%w: order %s", ErrPaymentOrderAlreadyCancelled, cmd.PrimaryOrderID())
	}

	paymentOrderID := *request.PaymentOrderID()
	if err = h.gateway.CancelOrder(ctx, paymentOrderID, cmd.Reason()); err != nil {
		return fmt.Errorf("cancel payment order %s: %w", paymentOrderID, err)
	}

	request.MarkPaymentOrderCancelled(time.Now().UTC())
	if err = requestRepo.Update(ctx, request); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "Payment order cancelled",
		"order_id", cmd.PrimaryOrderID(), "payment_order_id", paymentOrderID)
	return nil
}
