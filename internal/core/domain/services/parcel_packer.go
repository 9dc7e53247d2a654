package services

import (
	"fmt"
	"sort"

	"splitship/internal/core/domain/model/parcel"
	"splitship/internal/pkg/errs"
)

// PackOptions configures the packing rules.
type PackOptions struct {
	// CapCents is the price cap of a parcel. A unit priced above the cap is
	// "heavy" and always occupies its own parcel.
	CapCents int64

	// AbsorbBudgetCents is how many cents worth of cheap units a heavy
	// parcel may additionally absorb.
	AbsorbBudgetCents int64

	// AbsorbItemsPerHeavy is how many cheap units a heavy parcel may
	// additionally absorb.
	AbsorbItemsPerHeavy int
}

// Validate checks the option values.
func (o PackOptions) Validate() error {
	if o.CapCents <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("capCents",
			fmt.Errorf("%d is not greater than 0", o.CapCents))
	}
	if o.AbsorbBudgetCents < 0 {
		return errs.NewValueIsInvalidErrorWithCause("absorbBudgetCents",
			fmt.Errorf("%d is negative", o.AbsorbBudgetCents))
	}
	if o.AbsorbItemsPerHeavy < 0 {
		return errs.NewValueIsInvalidErrorWithCause("absorbItemsPerHeavy",
			fmt.Errorf("%d is negative", o.AbsorbItemsPerHeavy))
	}
	return nil
}

// ParcelPacker is a pure domain service that assigns order line-item units
// to parcels under a price cap.
//
// The algorithm, in order:
//  1. Explode every line into per-unit prices whose sum equals the line
//     total exactly (the first units carry the remainder cents).
//  2. Classify units: free units, heavy units (price above the cap, each
//     one an anchor forcing its own parcel) and regular units.
//  3. Absorption: each heavy parcel greedily pulls the cheapest still
//     available regular units while its cents and item budgets allow.
//  4. Residual packing: remaining regular units are packed first-fit
//     decreasing into parcels capped at CapCents.
//  5. Free units ride along in the first parcel, or form their own parcel
//     when no other parcel exists.
//
// Packing is deterministic: identical input ordering, prices and options
// always yield identical parcels. Heavy units never share a parcel with
// another heavy unit, and no parcel without a heavy anchor ever exceeds the
// cap.
type ParcelPacker struct{}

// NewParcelPacker creates a new ParcelPacker instance.
func NewParcelPacker() ParcelPacker {
	return ParcelPacker{}
}

// unit is one physical item carrying its cent-exact price share.
// seq is the explode order and breaks all sorting ties, which keeps the
// algorithm deterministic.
type unit struct {
	priceCents int64
	seq        int
	lineItemID string
}

// bin is a parcel under construction.
type bin struct {
	units     []unit
	remaining int64
}

// Pack assigns the units of the given lines to parcels.
// Lines with zero quantity are ignored; an empty input yields no parcels.
func (p ParcelPacker) Pack(lines []parcel.Line, opts PackOptions) ([]parcel.Parcel, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	units := explode(lines)
	if len(units) == 0 {
		return []parcel.Parcel{}, nil
	}

	var heavy, regular, free []unit
	for _, u := range units {
		switch {
		case u.priceCents == 0:
			free = append(free, u)
		case u.priceCents > opts.CapCents:
			heavy = append(heavy, u)
		default:
			regular = append(regular, u)
		}
	}

	// Cheapest first for absorption.
	sortUnits(regular, func(a, b unit) bool { return a.priceCents < b.priceCents })

	bins := make([]*bin, 0, len(heavy))
	next := 0
	for _, anchor := range heavy {
		b := &bin{units: []unit{anchor}}
		budget := opts.AbsorbBudgetCents
		items := opts.AbsorbItemsPerHeavy
		for items > 0 && next < len(regular) && regular[next].priceCents <= budget {
			b.units = append(b.units, regular[next])
			budget -= regular[next].priceCents
			items--
			next++
		}
		bins = append(bins, b)
	}
	regular = regular[next:]

	// Priciest first for first-fit-decreasing.
	sortUnits(regular, func(a, b unit) bool { return a.priceCents > b.priceCents })

	residual := make([]*bin, 0)
	for _, u := range regular {
		placed := false
		for _, b := range residual {
			if b.remaining >= u.priceCents {
				b.units = append(b.units, u)
				b.remaining -= u.priceCents
				placed = true
				break
			}
		}
		if !placed {
			residual = append(residual, &bin{
				units:     []unit{u},
				remaining: opts.CapCents - u.priceCents,
			})
		}
	}
	bins = append(bins, residual...)

	if len(free) > 0 {
		if len(bins) == 0 {
			bins = append(bins, &bin{})
		}
		bins[0].units = append(bins[0].units, free...)
	}

	parcels := make([]parcel.Parcel, 0, len(bins))
	for _, b := range bins {
		parcels = append(parcels, consolidate(b.units))
	}
	return parcels, nil
}

// explode turns lines into per-unit priced units. The line total is split
// into quantity integer-cent shares; the first remainder units get one extra
// cent so the shares sum to the original total exactly.
func explode(lines []parcel.Line) []unit {
	seq := 0
	units := make([]unit, 0)
	for _, line := range lines {
		quantity := line.Quantity()
		if quantity <= 0 {
			continue
		}

		share := line.TotalPriceCents() / int64(quantity)
		remainder := line.TotalPriceCents() % int64(quantity)
		for i := 0; i < quantity; i++ {
			price := share
			if int64(i) < remainder {
				price++
			}
			units = append(units, unit{
				priceCents: price,
				seq:        seq,
				lineItemID: line.LineItemID(),
			})
			seq++
		}
	}
	return units
}

// sortUnits sorts by the given price order, falling back to explode order so
// equal prices keep a stable, deterministic arrangement.
func sortUnits(units []unit, less func(a, b unit) bool) {
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].priceCents != units[j].priceCents {
			return less(units[i], units[j])
		}
		return units[i].seq < units[j].seq
	})
}

// consolidate merges same-line-item units into quantity entries, preserving
// first-appearance order.
func consolidate(units []unit) parcel.Parcel {
	indexByLineItem := make(map[string]int, len(units))
	items := make([]parcel.Item, 0, len(units))
	for _, u := range units {
		if idx, ok := indexByLineItem[u.lineItemID]; ok {
			items[idx].Quantity++
			continue
		}
		indexByLineItem[u.lineItemID] = len(items)
		items = append(items, parcel.Item{LineItemID: u.lineItemID, Quantity: 1})
	}
	return parcel.Parcel{Items: items}
}
