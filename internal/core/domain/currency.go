package domain

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ReferenceScale is the number of decimal places kept when an amount is
// converted into a reference currency. Conversions use banker's rounding.
const ReferenceScale int32 = 8

// Currency describes an ISO 4217 currency known to the engine.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // e.g. "USD"
	Symbol       string `json:"symbol"`       // e.g. "$"
	Fraction     int    `json:"fraction"`     // minor unit digits
}

// currencyAliases maps the informal names users type onto ISO codes.
var currencyAliases = map[string]string{
	"peso":       "ARS",
	"pesos":      "ARS",
	"dolar":      "USD",
	"dolares":    "USD",
	"dólar":      "USD",
	"dólares":    "USD",
	"dollar":     "USD",
	"dollars":    "USD",
	"boliviano":  "BOB",
	"bolivianos": "BOB",
	"euro":       "EUR",
	"euros":      "EUR",
}

// LookupCurrency returns the currency for an upper-case ISO code.
func LookupCurrency(code string) (*Currency, bool) {
	c := money.GetCurrency(code)
	if c == nil {
		return nil, false
	}
	return &Currency{CurrencyCode: c.Code, Symbol: c.Grapheme, Fraction: c.Fraction}, true
}

// ValidateCurrencyCode upper-cases code and checks it is a known ISO currency.
func ValidateCurrencyCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: currency code %q must be 3 letters", apperrors.ErrValidation, code)
	}
	if _, ok := LookupCurrency(code); !ok {
		return "", fmt.Errorf("%w: unknown currency code %q", apperrors.ErrValidation, code)
	}
	return code, nil
}

// NormalizeCurrencyCode resolves informal aliases ("pesos" -> "ARS") and
// validates the result. It is meant for user-facing entry points; the core
// services only accept ISO codes.
func NormalizeCurrencyCode(raw string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if code, ok := currencyAliases[key]; ok {
		return code, nil
	}
	return ValidateCurrencyCode(raw)
}

// ToReference converts amount with rate, rounded to ReferenceScale.
func ToReference(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).RoundBank(ReferenceScale)
}

// FormatAmount renders amount with the currency's symbol and minor-unit precision.
func FormatAmount(amount decimal.Decimal, code string) string {
	c := money.GetCurrency(code)
	if c == nil {
		return amount.StringFixed(2) + " " + code
	}
	fraction := int32(c.Fraction)
	minor := amount.Round(fraction).Shift(fraction)
	if !minor.BigInt().IsInt64() {
		// go-money counts minor units in an int64.
		return amount.StringFixed(fraction) + " " + c.Code
	}
	return c.Formatter().Format(minor.IntPart())
}
