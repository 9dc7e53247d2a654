package queries

import (
	"context"
	"database/sql"
	"errors"

	"splitship/internal/core/domain/model/splitrequest"
	"splitship/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetSplitRequestQueryHandler reads one split request with its holds
// straight from the database.
type GetSplitRequestQueryHandler struct {
	db *gorm.DB
}

// NewGetSplitRequestQueryHandler creates a handler for split request lookups.
func NewGetSplitRequestQueryHandler(db *gorm.DB) GetSplitRequestQueryHandler {
	return GetSplitRequestQueryHandler{db: db}
}

// Handle executes the query. Returns errs.ErrObjectNotFound when the primary
// order has no split request.
func (h GetSplitRequestQueryHandler) Handle(
	ctx context.Context,
	query GetSplitRequestQuery,
) (GetSplitRequestQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetSplitRequestQueryResponse{}, err
	}

	var response GetSplitRequestQueryResponse
	var id uuid.UUID
	var status int

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			primary_order_id,
			shop_domain,
			user_choice,
			status,
			calculated_parcels,
			shipping_level,
			additional_shipping_cents,
			payment_order_id,
			draft_order_id,
			error_log,
			primary_order_cancelled_at,
			payment_order_cancelled_at,
			created_at,
			updated_at
		FROM split_requests
		WHERE primary_order_id = ?
	`, query.PrimaryOrderID()).Row()

	err := row.Scan(
		&id,
		&response.PrimaryOrderID,
		&response.ShopDomain,
		&response.UserChoice,
		&status,
		&response.CalculatedParcels,
		&response.ShippingLevel,
		&response.AdditionalShippingCents,
		&response.PaymentOrderID,
		&response.DraftOrderID,
		&response.ErrorLog,
		&response.PrimaryOrderCancelledAt,
		&response.PaymentOrderCancelledAt,
		&response.CreatedAt,
		&response.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound) {
			return GetSplitRequestQueryResponse{}, errs.NewObjectNotFoundError(
				"split request", query.PrimaryOrderID())
		}
		return GetSplitRequestQueryResponse{}, err
	}

	response.Status = splitrequest.Status(status).String()
	normalizeTimes(&response)

	holds, err := h.loadHolds(ctx, id)
	if err != nil {
		return GetSplitRequestQueryResponse{}, err
	}
	response.Holds = holds

	return response, nil
}

func (h GetSplitRequestQueryHandler) loadHolds(ctx context.Context, splitRequestID uuid.UUID) ([]HoldResponse, error) {
	holds := make([]HoldResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			hold_id,
			fulfillment_order_id,
			released
		FROM fulfillment_holds
		WHERE split_request_id = ?
		ORDER BY hold_id
	`, splitRequestID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var hold HoldResponse
		if err = rows.Scan(&hold.HoldID, &hold.FulfillmentOrderID, &hold.Released); err != nil {
			return nil, err
		}
		holds = append(holds, hold)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return holds, nil
}

// normalizeTimes forces UTC on scanned timestamps so responses do not leak
// the session time zone.
func normalizeTimes(response *GetSplitRequestQueryResponse) {
	response.CreatedAt = response.CreatedAt.UTC()
	response.UpdatedAt = response.UpdatedAt.UTC()
	if response.PrimaryOrderCancelledAt != nil {
		t := response.PrimaryOrderCancelledAt.UTC()
		response.PrimaryOrderCancelledAt = &t
	}
	if response.PaymentOrderCancelledAt != nil {
		t := response.PaymentOrderCancelledAt.UTC()
		response.PaymentOrderCancelledAt = &t
	}
}
