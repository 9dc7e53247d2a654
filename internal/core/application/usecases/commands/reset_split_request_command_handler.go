package commands

import (
	"context"
	"log/slog"
)

// ResetSplitRequestCommandHandler clears a sticky Failed request back to
// Pending on operator request. The request is then picked up again by the
// next redelivery of its order-created event.
type ResetSplitRequestCommandHandler struct {
	uowFactory SplitRequestUoWFactory
	logger     *slog.Logger
}

// NewResetSplitRequestCommandHandler creates the handler.
func NewResetSplitRequestCommandHandler(
	uowFactory SplitRequestUoWFactory, logger *slog.Logger,
) ResetSplitRequestCommandHandler {
	return ResetSplitRequestCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "reset_split_request_handler"),
	}
}

// Handle resets one Failed split request.
func (h ResetSplitRequestCommandHandler) Handle(ctx context.Context, cmd ResetSplitRequestCommand) error {
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
	if err = request.Reset(); err != nil {
		return err
	}
	if err = requestRepo.Update(ctx, request); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "Split request reset to pending", "order_id", cmd.PrimaryOrderID())
	return nil
}
