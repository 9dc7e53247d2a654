package ports

// ShippingRate is the resolved shipping level and per-parcel cost for one
// shipping line and destination country.
type ShippingRate struct {
	Level              string
	CostPerParcelCents int64
}

// RateLookup resolves a shipping line title and destination country code to
// a shipping level and cost per parcel. A failed lookup is a validation
// skip, not an error: ok is false when no rate is configured.
type RateLookup interface {
	Lookup(shippingTitle, countryCode string) (rate ShippingRate, ok bool)
}
