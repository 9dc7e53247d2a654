// Package commerceapi implements the fulfillment gateway against the
// commerce platform's admin HTTP API. The platform offers no multi-object
// transaction, so batched operations report one result per sub-item and the
// orchestrator decides what to do with partial success.
package commerceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"splitship/internal/core/domain/model/parcel"
	"splitship/internal/core/ports"

	"golang.org/x/time/rate"
)

// defaultTimeout bounds one API round trip.
const defaultTimeout = 30 * time.Second

// Client is an HTTP implementation of ports.FulfillmentGateway.
// All calls go through a shared rate limiter sized to the platform's API
// budget, so a burst of saga jobs cannot trip the upstream throttle.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewClient creates a gateway client. requestsPerSecond is the API budget
// shared by every operation of this client.
func NewClient(baseURL, accessToken string, requestsPerSecond float64) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("commerceapi: base URL is required")
	}
	if requestsPerSecond <= 0 {
		return nil, errors.New("commerceapi: requests per second must be positive")
	}

	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}, nil
}

type splitRequestBody struct {
	Parcels []parcelBody `json:"parcels"`
}

type parcelBody struct {
	Items []parcelItemBody `json:"items"`
}

type parcelItemBody struct {
	LineItemID string `json:"line_item_id"`
	Quantity   int    `json:"quantity"`
}

type splitResponseBody struct {
	FulfillmentOrderIDs []string `json:"fulfillment_order_ids"`
}

// SplitFulfillmentOrder carves the order's fulfillment record into one piece
// per parcel and returns the full id set.
func (c *Client) SplitFulfillmentOrder(
	ctx context.Context, primaryOrderID string, parcels []parcel.Parcel,
) ([]string, error) {
	body := splitRequestBody{Parcels: make([]parcelBody, 0, len(parcels))}
	for _, p := range parcels {
		items := make([]parcelItemBody, 0, len(p.Items))
		for _, item := range p.Items {
			items = append(items, parcelItemBody{LineItemID: item.LineItemID, Quantity: item.Quantity})
		}
		body.Parcels = append(body.Parcels, parcelBody{Items: items})
	}

	var response splitResponseBody
	path := fmt.Sprintf("/orders/%s/fulfillment_orders/split", primaryOrderID)
	if err := c.post(ctx, path, body, &response); err != nil {
		return nil, err
	}
	return response.FulfillmentOrderIDs, nil
}

type holdRequestBody struct {
	FulfillmentOrderIDs []string `json:"fulfillment_order_ids"`
	Reason              string   `json:"reason"`
}

type holdResponseBody struct {
	Results []struct {
		FulfillmentOrderID string `json:"fulfillment_order_id"`
		HoldID             string `json:"hold_id"`
		Error              string `json:"error"`
	} `json:"results"`
}

// HoldFulfillmentOrders places a hold on every given fulfillment order in
// one batch, returning one result per requested id.
func (c *Client) HoldFulfillmentOrders(
	ctx context.Context, fulfillmentOrderIDs []string, reason string,
) ([]ports.HoldResult, error) {
	var response holdResponseBody
	body := holdRequestBody{FulfillmentOrderIDs: fulfillmentOrderIDs, Reason: reason}
	if err := c.post(ctx, "/fulfillment_orders/holds", body, &response); err != nil {
		return nil, err
	}

	results := make([]ports.HoldResult, 0, len(response.Results))
	for _, result := range response.Results {
		holdResult := ports.HoldResult{
			FulfillmentOrderID: result.FulfillmentOrderID,
			HoldID:             result.HoldID,
		}
		if result.Error != "" {
			holdResult.Err = errors.New(result.Error)
		}
		results = append(results, holdResult)
	}
	return results, nil
}

type releaseRequestBody struct {
	HoldIDs []string `json:"hold_ids"`
}

type releaseResponseBody struct {
	Results []struct {
		HoldID string `json:"hold_id"`
		Error  string `json:"error"`
	} `json:"results"`
}

// ReleaseHolds releases the given holds on one fulfillment order, returning
// one result per hold id.
func (c *Client) ReleaseHolds(
	ctx context.Context, fulfillmentOrderID string, holdIDs []string,
) ([]ports.ReleaseResult, error) {
	var response releaseResponseBody
	path := fmt.Sprintf("/fulfillment_orders/%s/holds/release", fulfillmentOrderID)
	if err := c.post(ctx, path, releaseRequestBody{HoldIDs: holdIDs}, &response); err != nil {
		return nil, err
	}

	results := make([]ports.ReleaseResult, 0, len(response.Results))
	for _, result := range response.Results {
		releaseResult := ports.ReleaseResult{HoldID: result.HoldID}
		if result.Error != "" {
			releaseResult.Err = errors.New(result.Error)
		}
		results = append(results, releaseResult)
	}
	return results, nil
}

type draftOrderRequestBody struct {
	ShopDomain    string `json:"shop_domain"`
	CustomerID    string `json:"customer_id"`
	LineItemTitle string `json:"line_item_title"`
	PriceCents    int64  `json:"price_cents"`
	Note          string `json:"note"`
}

type draftOrderResponseBody struct {
	DraftOrderID string `json:"draft_order_id"`
}

// CreateDraftOrder creates a draft order for the additional shipping charge.
func (c *Client) CreateDraftOrder(ctx context.Context, spec ports.DraftOrderSpec) (string, error) {
	body := draftOrderRequestBody{
		ShopDomain:    spec.ShopDomain,
		CustomerID:    spec.CustomerID,
		LineItemTitle: spec.LineItemTitle,
		PriceCents:    spec.AdditionalShippingCents,
		Note:          fmt.Sprintf("Additional shipping for %s", spec.PrimaryOrderName),
	}

	var response draftOrderResponseBody
	if err := c.post(ctx, "/draft_orders", body, &response); err != nil {
		return "", err
	}
	return response.DraftOrderID, nil
}

type completeDraftResponseBody struct {
	OrderID   string `json:"order_id"`
	OrderName string `json:"order_name"`
}

// CompleteDraftOrder completes the draft in payment-pending mode.
func (c *Client) CompleteDraftOrder(ctx context.Context, draftOrderID string) (ports.CompletedOrder, error) {
	var response completeDraftResponseBody
	path := fmt.Sprintf("/draft_orders/%s/complete", draftOrderID)
	body := map[string]bool{"payment_pending": true}
	if err := c.post(ctx, path, body, &response); err != nil {
		return ports.CompletedOrder{}, err
	}
	return ports.CompletedOrder{OrderID: response.OrderID, OrderName: response.OrderName}, nil
}

type invoiceRequestBody struct {
	Subject     string `json:"subject"`
	MessageHTML string `json:"message_html"`
}

// SendInvoice emails the order's invoice to the customer.
func (c *Client) SendInvoice(ctx context.Context, orderID, subject, messageHTML string) error {
	path := fmt.Sprintf("/orders/%s/invoice", orderID)
	return c.post(ctx, path, invoiceRequestBody{Subject: subject, MessageHTML: messageHTML}, nil)
}

type cancelRequestBody struct {
	Reason string `json:"reason"`
}

// CancelOrder cancels an order with the given reason.
func (c *Client) CancelOrder(ctx context.Context, orderID, reason string) error {
	path := fmt.Sprintf("/orders/%s/cancel", orderID)
	return c.post(ctx, path, cancelRequestBody{Reason: reason}, nil)
}

// post sends one rate-limited JSON request and decodes the response into out
// when out is non-nil. Non-2xx responses become errors carrying the response
// body so the saga's error log captures what the platform said.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("X-Access-Token", c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("commerceapi: %s returned %d: %s", path, resp.StatusCode, detail)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
