// Package parcel provides the value objects used by parcel packing:
// order lines as they arrive from the shop and the parcels the packer
// assigns their units to.
package parcel

import (
	"fmt"

	"splitship/internal/pkg/errs"
)

// Line is one order line item as seen by the packer: an external line item
// id, a quantity and the total price charged for the whole line in cents.
//
// The total is carried instead of a unit price because discounts can make a
// line total that is not divisible by its quantity; the packer distributes
// the remainder cent-exactly across units.
type Line struct {
	lineItemID      string
	quantity        int
	totalPriceCents int64
}

// NewLine creates a line from a per-unit price. The line total is
// quantity * unitPriceCents.
func NewLine(lineItemID string, quantity int, unitPriceCents int64) (Line, error) {
	return NewLineWithTotal(lineItemID, quantity, int64(quantity)*unitPriceCents)
}

// NewLineWithTotal creates a line from the total price charged for the line.
// Quantity must be positive and the total must not be negative.
func NewLineWithTotal(lineItemID string, quantity int, totalPriceCents int64) (Line, error) {
	if lineItemID == "" {
		return Line{}, errs.NewValueIsRequiredError("lineItemID")
	}
	if quantity <= 0 {
		return Line{}, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	if totalPriceCents < 0 {
		return Line{}, errs.NewValueIsInvalidErrorWithCause("totalPriceCents",
			fmt.Errorf("%d is negative", totalPriceCents))
	}

	return Line{
		lineItemID:      lineItemID,
		quantity:        quantity,
		totalPriceCents: totalPriceCents,
	}, nil
}

// LineItemID returns the external line item identifier.
func (l Line) LineItemID() string {
	return l.lineItemID
}

// Quantity returns the number of units on the line.
func (l Line) Quantity() int {
	return l.quantity
}

// TotalPriceCents returns the total price of the line in cents.
func (l Line) TotalPriceCents() int64 {
	return l.totalPriceCents
}

// Item is a consolidated entry inside a parcel: how many units of a line
// item ship together.
type Item struct {
	LineItemID string
	Quantity   int
}

// Parcel is an ordered list of consolidated line item quantities that ship
// together as one physical package.
type Parcel struct {
	Items []Item
}

// TotalQuantity returns the number of units assigned to the parcel.
func (p Parcel) TotalQuantity() int {
	total := 0
	for _, item := range p.Items {
		total += item.Quantity
	}
	return total
}

// QuantityOf returns the number of units of the given line item in the parcel.
func (p Parcel) QuantityOf(lineItemID string) int {
	for _, item := range p.Items {
		if item.LineItemID == lineItemID {
			return item.Quantity
		}
	}
	return 0
}
