// Package queue consumes shop webhook events from Kafka and routes them to
// the command handlers. Deliveries are at-least-once: a Redis window drops
// duplicates, skip-class outcomes are acknowledged without retry, and every
// other failure lands in the durable retry queue.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"splitship/internal/core/application/usecases/commands"
	"splitship/internal/core/domain/model/parcel"
)

// Event topics as delivered by the shop platform.
const (
	TopicOrderCreated   = "orders/create"
	TopicOrderPaid      = "orders/paid"
	TopicOrderCancelled = "orders/cancelled"
)

// ErrUnknownTopic marks events for topics the service does not handle.
var ErrUnknownTopic = errors.New("unknown event topic")

// Dispatcher maps one event to its command handler. It is shared by the
// live consumer and the retry sweeper, so a retried job takes exactly the
// same path as a fresh delivery.
type Dispatcher struct {
	processOrderCreated commands.ProcessOrderCreatedCommandHandler
	capturePayment      commands.CapturePaymentCommandHandler
	cancelOrder         commands.CancelOrderCommandHandler
	logger              *slog.Logger
}

// NewDispatcher creates the event dispatcher.
func NewDispatcher(
	processOrderCreated commands.ProcessOrderCreatedCommandHandler,
	capturePayment commands.CapturePaymentCommandHandler,
	cancelOrder commands.CancelOrderCommandHandler,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		processOrderCreated: processOrderCreated,
		capturePayment:      capturePayment,
		cancelOrder:         cancelOrder,
		logger:              logger.With("component", "event_dispatcher"),
	}
}

type orderCreatedEvent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Customer struct {
		ID     string `json:"id"`
		Locale string `json:"locale"`
	} `json:"customer"`
	ShippingAddress struct {
		CountryCode string `json:"country_code"`
	} `json:"shipping_address"`
	ShippingLines []struct {
		Title string `json:"title"`
	} `json:"shipping_lines"`
	LineItems []struct {
		ID              string `json:"id"`
		Quantity        int    `json:"quantity"`
		PriceCents      int64  `json:"price_cents"`
		TotalPriceCents *int64 `json:"total_price_cents"`
	} `json:"line_items"`
	NoteAttributes []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"note_attributes"`
}

// splitChoice extracts the buyer's split request from the order note
// attributes: split_choice ("yes"/"no") and split_fulfillment_count.
func (e orderCreatedEvent) splitChoice() (userChoice bool, requestedParcels int) {
	for _, attr := range e.NoteAttributes {
		switch attr.Name {
		case "split_choice":
			userChoice = attr.Value == "yes"
		case "split_fulfillment_count":
			if n, err := strconv.Atoi(strings.TrimSpace(attr.Value)); err == nil {
				requestedParcels = n
			}
		}
	}
	return userChoice, requestedParcels
}

type orderPaidEvent struct {
	ID string `json:"id"`
}

type orderCancelledEvent struct {
	ID          string    `json:"id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// Dispatch routes one event payload to its handler. Malformed payloads are
// classified as skips: they will never parse better on a retry.
func (d *Dispatcher) Dispatch(ctx context.Context, shopDomain, topic, eventID string, payload []byte) error {
	d.logger.DebugContext(ctx, "Dispatching event",
		"shop_domain", shopDomain, "topic", topic, "event_id", eventID)

	switch topic {
	case TopicOrderCreated:
		return d.dispatchOrderCreated(ctx, shopDomain, payload)
	case TopicOrderPaid:
		return d.dispatchOrderPaid(ctx, shopDomain, payload)
	case TopicOrderCancelled:
		return d.dispatchOrderCancelled(ctx, shopDomain, payload)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
}

func (d *Dispatcher) dispatchOrderCreated(ctx context.Context, shopDomain string, payload []byte) error {
	var event orderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: malformed order-created payload: %s", commands.ErrEventSkipped, err)
	}

	shippingLines := make([]string, 0, len(event.ShippingLines))
	for _, line := range event.ShippingLines {
		shippingLines = append(shippingLines, line.Title)
	}

	// Discounts can make a line total that is not unit price times quantity,
	// so an explicit total wins over the per-unit price. Zero-quantity lines
	// show up when an item was removed or edited; they carry no units and are
	// dropped here, never failing the event.
	lines := make([]parcel.Line, 0, len(event.LineItems))
	for _, item := range event.LineItems {
		if item.Quantity <= 0 {
			continue
		}
		var line parcel.Line
		var err error
		if item.TotalPriceCents != nil {
			line, err = parcel.NewLineWithTotal(item.ID, item.Quantity, *item.TotalPriceCents)
		} else {
			line, err = parcel.NewLine(item.ID, item.Quantity, item.PriceCents)
		}
		if err != nil {
			return fmt.Errorf("%w: invalid line item %s: %s", commands.ErrEventSkipped, item.ID, err)
		}
		lines = append(lines, line)
	}

	userChoice, requestedParcels := event.splitChoice()

	cmd, err := commands.NewProcessOrderCreatedCommand(
		shopDomain,
		event.ID,
		event.Name,
		event.Customer.ID,
		event.Customer.Locale,
		event.ShippingAddress.CountryCode,
		shippingLines,
		lines,
		userChoice,
		requestedParcels,
	)
	if err != nil {
		return fmt.Errorf("%w: %s", commands.ErrEventSkipped, err)
	}
	return d.processOrderCreated.Handle(ctx, cmd)
}

func (d *Dispatcher) dispatchOrderPaid(ctx context.Context, shopDomain string, payload []byte) error {
	var event orderPaidEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: malformed order-paid payload: %s", commands.ErrEventSkipped, err)
	}

	cmd, err := commands.NewCapturePaymentCommand(shopDomain, event.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", commands.ErrEventSkipped, err)
	}
	return d.capturePayment.Handle(ctx, cmd)
}

func (d *Dispatcher) dispatchOrderCancelled(ctx context.Context, shopDomain string, payload []byte) error {
	var event orderCancelledEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: malformed order-cancelled payload: %s", commands.ErrEventSkipped, err)
	}

	cmd, err := commands.NewCancelOrderCommand(shopDomain, event.ID, event.CancelledAt)
	if err != nil {
		return fmt.Errorf("%w: %s", commands.ErrEventSkipped, err)
	}
	return d.cancelOrder.Handle(ctx, cmd)
}

// IsSkip reports whether an event outcome needs no retry: deliberate skips,
// terminal-status short-circuits and unknown topics.
func IsSkip(err error) bool {
	return errors.Is(err, commands.ErrEventSkipped) ||
		errors.Is(err, commands.ErrAlreadyProcessed) ||
		errors.Is(err, ErrUnknownTopic)
}
