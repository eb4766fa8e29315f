package ratesource

import (
	"context"
	"fmt"
	"strings"

	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// FixedSource quotes from a static table of units per one reference unit,
// e.g. ARS=1362.33 means 1 USD buys 1362.33 ARS when the reference is USD.
type FixedSource struct {
	reference string
	units     map[string]decimal.Decimal
}

// NewFixedSource builds a table quoted against reference.
func NewFixedSource(reference string, units map[string]decimal.Decimal) *FixedSource {
	table := make(map[string]decimal.Decimal, len(units))
	for code, u := range units {
		table[strings.ToUpper(code)] = u
	}
	return &FixedSource{reference: strings.ToUpper(reference), units: table}
}

var _ portssvc.LiveRateSource = (*FixedSource)(nil)

func (s *FixedSource) Name() string { return "fixed" }

// FetchRate answers currency against the table's reference in either direction.
func (s *FixedSource) FetchRate(_ context.Context, currency, reference string) (decimal.Decimal, error) {
	currency, reference = strings.ToUpper(currency), strings.ToUpper(reference)
	switch {
	case reference == s.reference:
		if u, ok := s.units[currency]; ok {
			return decimal.NewFromInt(1).Div(u), nil
		}
	case currency == s.reference:
		if u, ok := s.units[reference]; ok {
			return u, nil
		}
	}
	return decimal.Zero, fmt.Errorf("fixed: no rate for %s/%s", currency, reference)
}

// ParseFixedRates parses "ARS=1362.33,BOB=6.91". An empty string yields an empty table.
func ParseFixedRates(s string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		code, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("fixed rate %q: want CODE=units", item)
		}
		units, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("fixed rate %q: %w", item, err)
		}
		if !units.IsPositive() {
			return nil, fmt.Errorf("fixed rate %q: must be positive", item)
		}
		out[strings.ToUpper(strings.TrimSpace(code))] = units
	}
	return out, nil
}
