// Package reference contains the shared cross-reference rows the saga keeps
// about shops, orders and customers. These are not aggregates: they are
// upserted by natural external id, shared between requests and never deleted.
package reference

import (
	"time"

	"splitship/internal/pkg/errs"
)

// Shop is one installed shop. SplitEnabled is the feature switch an operator
// controls; event-driven upserts must never overwrite it.
type Shop struct {
	Domain       string
	SplitEnabled bool
	CreatedAt    time.Time
}

// NewShop creates a shop reference row. New shops start with the split
// feature enabled; operators disable it per shop.
func NewShop(domain string) (*Shop, error) {
	if domain == "" {
		return nil, errs.NewValueIsRequiredError("domain")
	}
	return &Shop{Domain: domain, SplitEnabled: true, CreatedAt: time.Now().UTC()}, nil
}

// Order is a cross-reference row for an external order, primary or
// payment-order alike.
type Order struct {
	OrderID     string
	OrderName   string
	ShopDomain  string
	CustomerID  string
	CancelledAt *time.Time
}

// NewOrder creates an order reference row.
func NewOrder(orderID, orderName, shopDomain, customerID string) (*Order, error) {
	if orderID == "" {
		return nil, errs.NewValueIsRequiredError("orderID")
	}
	if shopDomain == "" {
		return nil, errs.NewValueIsRequiredError("shopDomain")
	}
	return &Order{
		OrderID:    orderID,
		OrderName:  orderName,
		ShopDomain: shopDomain,
		CustomerID: customerID,
	}, nil
}

// Customer is a cross-reference row for an external customer.
type Customer struct {
	CustomerID string
	ShopDomain string
	Locale     string
}

// NewCustomer creates a customer reference row.
func NewCustomer(customerID, shopDomain, locale string) (*Customer, error) {
	if customerID == "" {
		return nil, errs.NewValueIsRequiredError("customerID")
	}
	if shopDomain == "" {
		return nil, errs.NewValueIsRequiredError("shopDomain")
	}
	return &Customer{CustomerID: customerID, ShopDomain: shopDomain, Locale: locale}, nil
}
