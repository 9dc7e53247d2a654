package commands

import (
	"errors"

	"splitship/internal/core/domain/model/parcel"
	"splitship/internal/pkg/guard"
)

var (
	ErrProcessOrderCreatedCommandIsNotConstructed = errors.New(
		"ProcessOrderCreatedCommand must be created via NewProcessOrderCreatedCommand constructor",
	)
	ErrOrderIDIsRequired    = errors.New("order id is required")
	ErrShopDomainIsRequired = errors.New("shop domain is required")
)

// ProcessOrderCreatedCommand carries one order-created event into the saga.
// It holds the already-parsed event fields; everything beyond the order and
// shop identity is optional here and validated by the handler's precheck,
// which turns gaps into skips rather than retries.
type ProcessOrderCreatedCommand struct { //nolint:recvcheck //using for validation
	shopDomain       string
	orderID          string
	orderName        string
	customerID       string
	customerLocale   string
	countryCode      string
	shippingLines    []string
	lines            []parcel.Line
	userChoice       bool
	requestedParcels int

	guard guard.ConstructorGuard
}

// NewProcessOrderCreatedCommand creates the command for one event.
// Only the shop domain and order id are mandatory: without them the event
// cannot even be attributed.
func NewProcessOrderCreatedCommand(
	shopDomain string,
	orderID string,
	orderName string,
	customerID string,
	customerLocale string,
	countryCode string,
	shippingLines []string,
	lines []parcel.Line,
	userChoice bool,
	requestedParcels int,
) (ProcessOrderCreatedCommand, error) {
	if shopDomain == "" {
		return ProcessOrderCreatedCommand{}, ErrShopDomainIsRequired
	}
	if orderID == "" {
		return ProcessOrderCreatedCommand{}, ErrOrderIDIsRequired
	}

	return ProcessOrderCreatedCommand{
		shopDomain:       shopDomain,
		orderID:          orderID,
		orderName:        orderName,
		customerID:       customerID,
		customerLocale:   customerLocale,
		countryCode:      countryCode,
		shippingLines:    shippingLines,
		lines:            lines,
		userChoice:       userChoice,
		requestedParcels: requestedParcels,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ProcessOrderCreatedCommand) Validate() error {
	return c.guard.Validate(ErrProcessOrderCreatedCommandIsNotConstructed)
}

// ShopDomain returns the shop the event belongs to.
func (c ProcessOrderCreatedCommand) ShopDomain() string {
	return c.shopDomain
}

// OrderID returns the external id of the created order.
func (c ProcessOrderCreatedCommand) OrderID() string {
	return c.orderID
}

// OrderName returns the human-facing order name.
func (c ProcessOrderCreatedCommand) OrderName() string {
	return c.orderName
}

// CustomerID returns the external customer id, possibly empty.
func (c ProcessOrderCreatedCommand) CustomerID() string {
	return c.customerID
}

// CustomerLocale returns the customer's locale, possibly empty.
func (c ProcessOrderCreatedCommand) CustomerLocale() string {
	return c.customerLocale
}

// CountryCode returns the shipping address country code, possibly empty.
func (c ProcessOrderCreatedCommand) CountryCode() string {
	return c.countryCode
}

// ShippingLines returns the shipping line titles of the order.
func (c ProcessOrderCreatedCommand) ShippingLines() []string {
	return c.shippingLines
}

// Lines returns the order line items.
func (c ProcessOrderCreatedCommand) Lines() []parcel.Line {
	return c.lines
}

// UserChoice reports whether the buyer asked for split shipment.
func (c ProcessOrderCreatedCommand) UserChoice() bool {
	return c.userChoice
}

// RequestedParcels returns the parcel count the buyer asked for.
func (c ProcessOrderCreatedCommand) RequestedParcels() int {
	return c.requestedParcels
}
