// Package rates resolves shipping line titles and destination countries to
// shipping levels and per-parcel costs from a YAML table loaded at startup.
package rates

import (
	"fmt"
	"os"
	"strings"

	"splitship/internal/core/ports"

	"gopkg.in/yaml.v3"
)

// Table is an in-memory, read-only rate lookup built from a YAML file.
// Matching is case-insensitive on the shipping title; a country-specific
// entry wins over the wildcard "*" entry for the same title.
type Table struct {
	byTitle map[string]map[string]ports.ShippingRate
}

type tableFile struct {
	Rates []rateEntry `yaml:"rates"`
}

type rateEntry struct {
	Title              string `yaml:"title"`
	Country            string `yaml:"country"`
	Level              string `yaml:"level"`
	CostPerParcelCents int64  `yaml:"cost_per_parcel_cents"`
}

// Load reads the rate table from a YAML file.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rates: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse builds a table from raw YAML.
func Parse(raw []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("rates: parse: %w", err)
	}

	table := &Table{byTitle: make(map[string]map[string]ports.ShippingRate)}
	for _, entry := range file.Rates {
		if entry.Title == "" || entry.Level == "" {
			return nil, fmt.Errorf("rates: entry needs title and level: %+v", entry)
		}
		if entry.CostPerParcelCents < 0 {
			return nil, fmt.Errorf("rates: negative cost for %q", entry.Title)
		}

		country := entry.Country
		if country == "" {
			country = "*"
		}

		title := strings.ToLower(entry.Title)
		if table.byTitle[title] == nil {
			table.byTitle[title] = make(map[string]ports.ShippingRate)
		}
		table.byTitle[title][strings.ToUpper(country)] = ports.ShippingRate{
			Level:              entry.Level,
			CostPerParcelCents: entry.CostPerParcelCents,
		}
	}
	return table, nil
}

// Lookup resolves a shipping title and country code to a rate.
func (t *Table) Lookup(shippingTitle, countryCode string) (ports.ShippingRate, bool) {
	countries, ok := t.byTitle[strings.ToLower(shippingTitle)]
	if !ok {
		return ports.ShippingRate{}, false
	}

	if rate, found := countries[strings.ToUpper(countryCode)]; found {
		return rate, true
	}
	rate, found := countries["*"]
	return rate, found
}
