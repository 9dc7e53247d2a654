package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"splitship/internal/core/domain/model/kernel"
	"splitship/internal/core/domain/model/parcel"
	"splitship/internal/core/domain/model/reference"
	"splitship/internal/core/domain/model/splitrequest"
	"splitship/internal/core/domain/services"
	"splitship/internal/core/ports"
	"splitship/internal/pkg/errs"
)

var (
	// ErrEventSkipped marks an event the saga deliberately did not act on:
	// missing fields, no shipping lines, split not requested or no shipping
	// rate configured. Skips are acknowledged as handled, never retried.
	ErrEventSkipped = errors.New("event skipped")

	// ErrAlreadyProcessed marks a redelivered event for an order whose
	// request is already past Pending. Redelivery short-circuits without
	// external side effects.
	ErrAlreadyProcessed = errors.New("split request already processed")
)

// holdReason is the reason attached to every fulfillment hold the saga places.
const holdReason = "Awaiting additional shipping payment"

// ProcessOrderCreatedCommandHandler drives the split-shipment saga for one
// order-created event, in strict phase order: precheck, parcel computation,
// the durable idempotent checkpoint, external split plus hold with
// compensating release, payment order creation and invoicing, and
// finalization to AwaitingPayment.
//
// Failure semantics: every phase failure is recorded on the request
// (best-effort, sticky Failed status) and then re-raised to the queue. Two
// known gaps are deliberate: the payment-order phase is not idempotency
// guarded, so a redelivery racing a slow first attempt could create a second
// draft order; and a hold-record insert failure after the external holds
// succeeded leaves external and local state inconsistent, requiring manual
// reconciliation.
type ProcessOrderCreatedCommandHandler struct {
	uowFactory  SagaUoWFactory
	gateway     ports.FulfillmentGateway
	rates       ports.RateLookup
	packer      services.ParcelPacker
	packOptions services.PackOptions
	logger      *slog.Logger
}

// NewProcessOrderCreatedCommandHandler creates the saga handler.
func NewProcessOrderCreatedCommandHandler(
	uowFactory SagaUoWFactory,
	gateway ports.FulfillmentGateway,
	rates ports.RateLookup,
	packOptions services.PackOptions,
	logger *slog.Logger,
) ProcessOrderCreatedCommandHandler {
	return ProcessOrderCreatedCommandHandler{
		uowFactory:  uowFactory,
		gateway:     gateway,
		rates:       rates,
		packer:      services.NewParcelPacker(),
		packOptions: packOptions,
		logger:      logger.With("component", "process_order_created_handler"),
	}
}

// Handle processes one order-created event end to end.
// Returns ErrEventSkipped or ErrAlreadyProcessed for events that need no
// work; any other error is retryable from the queue's point of view.
func (h ProcessOrderCreatedCommandHandler) Handle(ctx context.Context, cmd ProcessOrderCreatedCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	// Phase 1: precheck. Nothing is persisted for skipped events.
	if !cmd.UserChoice() || cmd.RequestedParcels() <= 1 {
		return fmt.Errorf("%w: split not requested", ErrEventSkipped)
	}
	if cmd.CustomerID() == "" {
		return fmt.Errorf("%w: customer is missing", ErrEventSkipped)
	}
	if len(cmd.ShippingLines()) == 0 {
		return fmt.Errorf("%w: order has no shipping lines", ErrEventSkipped)
	}
	if len(cmd.Lines()) == 0 {
		return fmt.Errorf("%w: order has no line items", ErrEventSkipped)
	}
	rate, ok := h.rates.Lookup(cmd.ShippingLines()[0], cmd.CountryCode())
	if !ok {
		return fmt.Errorf("%w: no shipping rate for %q in %q",
			ErrEventSkipped, cmd.ShippingLines()[0], cmd.CountryCode())
	}

	// Phase 2: pure computation, no I/O.
	parcels, err := h.packer.Pack(cmd.Lines(), h.packOptions)
	if err != nil {
		return err
	}
	additionalShippingCents := int64(0)
	if len(parcels) > 1 {
		additionalShippingCents = int64(len(parcels)-1) * rate.CostPerParcelCents
	}

	// Phase 3: idempotent init, the durable checkpoint.
	request, proceed, err := h.initRequest(ctx, cmd, rate.Level, len(parcels), additionalShippingCents)
	if err != nil {
		return err
	}
	if !proceed {
		return nil
	}

	// Phase 4: external split + hold, compensating on partial failure.
	holds, err := h.splitAndHold(ctx, cmd, request, parcels)
	if err != nil {
		return err
	}
	if err = h.persistHolds(ctx, cmd.OrderID(), holds); err != nil {
		return err
	}

	// Phase 5: payment order + invoice.
	paymentOrder, draftOrderID, err := h.createPaymentOrder(ctx, cmd, additionalShippingCents)
	if err != nil {
		return err
	}

	// Phase 6: finalize.
	return h.finalize(ctx, request, paymentOrder.OrderID, draftOrderID)
}

// initRequest upserts the reference rows and the split request row inside
// one transaction. It reports proceed=false when the saga short-circuits:
// the request already exists past Pending, the shop has the feature
// disabled, or packing produced nothing to split.
func (h ProcessOrderCreatedCommandHandler) initRequest(
	ctx context.Context,
	cmd ProcessOrderCreatedCommand,
	shippingLevel string,
	calculatedParcels int,
	additionalShippingCents int64,
) (*splitrequest.SplitRequest, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	requestRepo := uow.SplitRequestRepository()
	referenceRepo := uow.ReferenceRepository()

	requestID := kernel.NewUUID()
	existing, err := requestRepo.GetByPrimaryOrderID(ctx, cmd.OrderID())
	switch {
	case err == nil:
		if existing.Status() != splitrequest.Pending {
			return nil, false, fmt.Errorf("%w: status is %s", ErrAlreadyProcessed, existing.Status())
		}
		requestID = existing.ID()
	case errors.Is(err, errs.ErrObjectNotFound):
		// First delivery for this order.
	default:
		return nil, false, err
	}

	shop, err := referenceRepo.GetShop(ctx, cmd.ShopDomain())
	if errors.Is(err, errs.ErrObjectNotFound) {
		if shop, err = reference.NewShop(cmd.ShopDomain()); err != nil {
			return nil, false, err
		}
	} else if err != nil {
		return nil, false, err
	}
	if err = referenceRepo.UpsertShop(ctx, shop); err != nil {
		return nil, false, err
	}

	order, err := reference.NewOrder(cmd.OrderID(), cmd.OrderName(), cmd.ShopDomain(), cmd.CustomerID())
	if err != nil {
		return nil, false, err
	}
	if err = referenceRepo.UpsertOrder(ctx, order); err != nil {
		return nil, false, err
	}

	customer, err := reference.NewCustomer(cmd.CustomerID(), cmd.ShopDomain(), cmd.CustomerLocale())
	if err != nil {
		return nil, false, err
	}
	if err = referenceRepo.UpsertCustomer(ctx, customer); err != nil {
		return nil, false, err
	}

	initialStatus := splitrequest.Pending
	switch {
	case !shop.SplitEnabled:
		initialStatus = splitrequest.AppDisabled
	case calculatedParcels <= 1:
		// The buyer asked for a split but everything fits one parcel.
		initialStatus = splitrequest.Completed
	}

	request, err := splitrequest.NewSplitRequest(
		requestID,
		cmd.OrderID(),
		cmd.ShopDomain(),
		cmd.UserChoice(),
		calculatedParcels,
		shippingLevel,
		additionalShippingCents,
		initialStatus,
	)
	if err != nil {
		return nil, false, err
	}

	if err = requestRepo.Upsert(ctx, request); err != nil {
		return nil, false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, false, err
	}

	if initialStatus != splitrequest.Pending {
		h.logger.InfoContext(ctx, "Split request short-circuited",
			"order_id", cmd.OrderID(), "status", initialStatus.String())
		return request, false, nil
	}
	return request, true, nil
}

// splitAndHold carves the primary fulfillment record into one piece per
// parcel and places a hold on every resulting fulfillment order in one
// batch. When any hold in the batch fails, the holds that did succeed in
// that same batch are released before the failure is recorded and re-raised.
func (h ProcessOrderCreatedCommandHandler) splitAndHold(
	ctx context.Context,
	cmd ProcessOrderCreatedCommand,
	request *splitrequest.SplitRequest,
	parcels []parcel.Parcel,
) ([]*splitrequest.FulfillmentHold, error) {
	fulfillmentOrderIDs, err := h.gateway.SplitFulfillmentOrder(ctx, cmd.OrderID(), parcels)
	if err != nil {
		h.recordFailure(ctx, cmd.OrderID(), fmt.Sprintf("split fulfillment order: %s", err))
		return nil, err
	}

	results, err := h.gateway.HoldFulfillmentOrders(ctx, fulfillmentOrderIDs, holdReason)
	if err != nil {
		h.recordFailure(ctx, cmd.OrderID(), fmt.Sprintf("hold fulfillment orders: %s", err))
		return nil, err
	}

	var succeeded []ports.HoldResult
	var failures []string
	for _, result := range results {
		if result.Err != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", result.FulfillmentOrderID, result.Err))
			continue
		}
		succeeded = append(succeeded, result)
	}

	if len(failures) > 0 {
		h.releaseSucceededHolds(ctx, succeeded)
		detail := fmt.Sprintf("hold batch partially failed: %s", strings.Join(failures, "; "))
		h.recordFailure(ctx, cmd.OrderID(), detail)
		return nil, errors.New(detail)
	}

	holds := make([]*splitrequest.FulfillmentHold, 0, len(succeeded))
	for _, result := range succeeded {
		hold, holdErr := splitrequest.NewFulfillmentHold(result.HoldID, result.FulfillmentOrderID, request.ID())
		if holdErr != nil {
			h.recordFailure(ctx, cmd.OrderID(), fmt.Sprintf("invalid hold result: %s", holdErr))
			return nil, holdErr
		}
		holds = append(holds, hold)
	}
	return holds, nil
}

// releaseSucceededHolds compensates a partially failed hold batch. Release
// failures are logged but cannot mask the original batch failure.
func (h ProcessOrderCreatedCommandHandler) releaseSucceededHolds(ctx context.Context, succeeded []ports.HoldResult) {
	for _, result := range succeeded {
		releases, err := h.gateway.ReleaseHolds(ctx, result.FulfillmentOrderID, []string{result.HoldID})
		if err != nil {
			h.logger.ErrorContext(ctx, "Compensating hold release failed",
				"fulfillment_order_id", result.FulfillmentOrderID, "hold_id", result.HoldID, "error", err)
			continue
		}
		for _, release := range releases {
			if release.Err != nil {
				h.logger.ErrorContext(ctx, "Compensating hold release failed",
					"fulfillment_order_id", result.FulfillmentOrderID, "hold_id", release.HoldID, "error", release.Err)
			}
		}
	}
}

// persistHolds records the hold rows all-or-nothing. A failure here is fatal
// for the attempt: the holds exist externally with no local record, which
// only manual reconciliation can resolve.
func (h ProcessOrderCreatedCommandHandler) persistHolds(
	ctx context.Context, primaryOrderID string, holds []*splitrequest.FulfillmentHold,
) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		h.recordFailure(ctx, primaryOrderID,
			fmt.Sprintf("holds placed externally but not recorded, manual reconciliation required: %s", err))
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.SplitRequestRepository().AddHolds(ctx, holds); err != nil {
		h.recordFailure(ctx, primaryOrderID,
			fmt.Sprintf("holds placed externally but not recorded, manual reconciliation required: %s", err))
		return err
	}
	if err := uow.Commit(ctx); err != nil {
		h.recordFailure(ctx, primaryOrderID,
			fmt.Sprintf("holds placed externally but not recorded, manual reconciliation required: %s", err))
		return err
	}
	return nil
}

// createPaymentOrder creates and completes the supplemental payment order in
// payment-pending mode, records it as a reference row and sends the invoice.
func (h ProcessOrderCreatedCommandHandler) createPaymentOrder(
	ctx context.Context, cmd ProcessOrderCreatedCommand, additionalShippingCents int64,
) (ports.CompletedOrder, string, error) {
	draftOrderID, err := h.gateway.CreateDraftOrder(ctx, ports.DraftOrderSpec{
		ShopDomain:              cmd.ShopDomain(),
		CustomerID:              cmd.CustomerID(),
		PrimaryOrderName:        cmd.OrderName(),
		LineItemTitle:           fmt.Sprintf("Additional shipping for order %s", cmd.OrderName()),
		AdditionalShippingCents: additionalShippingCents,
	})
	if err != nil {
		h.recordFailure(ctx, cmd.OrderID(), fmt.Sprintf("create draft order: %s", err))
		return ports.CompletedOrder{}, "", err
	}

	completed, err := h.gateway.CompleteDraftOrder(ctx, draftOrderID)
	if err != nil {
		h.recordFailure(ctx, cmd.OrderID(), fmt.Sprintf("complete draft order %s: %s", draftOrderID, err))
		return ports.CompletedOrder{}, "", err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return ports.CompletedOrder{}, "", err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	paymentOrder, err := reference.NewOrder(completed.OrderID, completed.OrderName, cmd.ShopDomain(), cmd.CustomerID())
	if err != nil {
		return ports.CompletedOrder{}, "", err
	}
	if err = uow.ReferenceRepository().UpsertOrder(ctx, paymentOrder); err != nil {
		h.recordFailure(ctx, cmd.OrderID(), fmt.Sprintf("record payment order %s: %s", completed.OrderID, err))
		return ports.CompletedOrder{}, "", err
	}
	if err = uow.Commit(ctx); err != nil {
		return ports.CompletedOrder{}, "", err
	}

	subject, body := invoiceCopy(cmd.CustomerLocale(), cmd.OrderName())
	if err = h.gateway.SendInvoice(ctx, completed.OrderID, subject, body); err != nil {
		h.recordFailure(ctx, cmd.OrderID(), fmt.Sprintf("send invoice for %s: %s", completed.OrderID, err))
		return ports.CompletedOrder{}, "", err
	}
	return completed, draftOrderID, nil
}

// finalize records the payment/draft order ids and moves the request to
// AwaitingPayment, clearing any prior error.
func (h ProcessOrderCreatedCommandHandler) finalize(
	ctx context.Context, request *splitrequest.SplitRequest, paymentOrderID, draftOrderID string,
) error {
	if err := request.AwaitPayment(paymentOrderID, draftOrderID); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.SplitRequestRepository().Update(ctx, request); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

// recordFailure persists the failure detail and the sticky Failed status.
// It is best-effort by design: its own errors are logged and discarded so
// they never mask the failure being propagated.
func (h ProcessOrderCreatedCommandHandler) recordFailure(ctx context.Context, primaryOrderID, detail string) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		h.logger.ErrorContext(ctx, "Failed to record saga failure",
			"order_id", primaryOrderID, "detail", detail, "error", err)
		return
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	requestRepo := uow.SplitRequestRepository()
	request, err := requestRepo.GetByPrimaryOrderID(ctx, primaryOrderID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to record saga failure",
			"order_id", primaryOrderID, "detail", detail, "error", err)
		return
	}
	if err = request.Fail(detail); err != nil {
		h.logger.ErrorContext(ctx, "Failed to record saga failure",
			"order_id", primaryOrderID, "detail", detail, "error", err)
		return
	}
	if err = requestRepo.Update(ctx, request); err != nil {
		h.logger.ErrorContext(ctx, "Failed to record saga failure",
			"order_id", primaryOrderID, "detail", detail, "error", err)
		return
	}
	if err = uow.Commit(ctx); err != nil {
		h.logger.ErrorContext(ctx, "Failed to record saga failure",
			"order_id", primaryOrderID, "detail", detail, "error", err)
	}
}

// invoiceCopy returns locale-specific invoice subject and HTML body.
// Japanese is the one localized variant; everything else gets English.
func invoiceCopy(locale, orderName string) (subject, body string) {
	if strings.HasPrefix(strings.ToLower(locale), "ja") {
		subject = fmt.Sprintf("ご注文 %s の追加送料のお支払いについて", orderName)
		body = fmt.Sprintf("<p>ご注文 %s を複数の荷物に分けて発送いたします。追加送料のお支払いをお願いいたします。</p>", orderName)
		return subject, body
	}
	subject = fmt.Sprintf("Additional shipping payment for order %s", orderName)
	body = fmt.Sprintf("<p>Your order %s will be shipped in multiple parcels. Please pay the additional shipping fee to proceed.</p>", orderName)
	return subject, body
}
