// Package refrepo persists the shared shop/order/customer reference rows.
// These are plain cross-reference tables keyed by natural external ids, not
// aggregates, so the mapping is field-for-field.
package refrepo

import (
	"time"

	"splitship/internal/core/domain/model/reference"
)

// ShopDTO represents one installed shop.
type ShopDTO struct {
	Domain       string `gorm:"primaryKey"`
	SplitEnabled bool
	CreatedAt    time.Time
}

// TableName overrides GORM's default naming convention.
func (ShopDTO) TableName() string {
	return "shops"
}

// OrderDTO represents an order reference row, primary and payment orders
// alike.
type OrderDTO struct {
	OrderID     string `gorm:"primaryKey"`
	OrderName   string
	ShopDomain  string `gorm:"index"`
	CustomerID  string `gorm:"index"`
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides GORM's default naming convention.
func (OrderDTO) TableName() string {
	return "orders"
}

// CustomerDTO represents a customer reference row.
type CustomerDTO struct {
	CustomerID string `gorm:"primaryKey"`
	ShopDomain string `gorm:"index"`
	Locale     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides GORM's default naming convention.
func (CustomerDTO) TableName() string {
	return "customers"
}

func shopFromDomain(shop *reference.Shop) ShopDTO {
	return ShopDTO{
		Domain:       shop.Domain,
		SplitEnabled: shop.SplitEnabled,
		CreatedAt:    shop.CreatedAt,
	}
}

func shopToDomain(dto ShopDTO) *reference.Shop {
	return &reference.Shop{
		Domain:       dto.Domain,
		SplitEnabled: dto.SplitEnabled,
		CreatedAt:    dto.CreatedAt,
	}
}

func orderFromDomain(order *reference.Order) OrderDTO {
	return OrderDTO{
		OrderID:     order.OrderID,
		OrderName:   order.OrderName,
		ShopDomain:  order.ShopDomain,
		CustomerID:  order.CustomerID,
		CancelledAt: order.CancelledAt,
	}
}

func orderToDomain(dto OrderDTO) *reference.Order {
	return &reference.Order{
		OrderID:     dto.OrderID,
		OrderName:   dto.OrderName,
		ShopDomain:  dto.ShopDomain,
		CustomerID:  dto.CustomerID,
		CancelledAt: dto.CancelledAt,
	}
}

func customerFromDomain(customer *reference.Customer) CustomerDTO {
	return CustomerDTO{
		CustomerID: customer.CustomerID,
		ShopDomain: customer.ShopDomain,
		Locale:     customer.Locale,
	}
}
