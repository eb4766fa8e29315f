package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSource records where a quote came from.
type RateSource string

const (
	RateSourceLive     RateSource = "LIVE"
	RateSourceCached   RateSource = "CACHED"
	RateSourceIdentity RateSource = "IDENTITY"
	RateSourceManual   RateSource = "MANUAL"
)

// ExchangeRate is the cached rate for a currency pair: one unit of
// FromCurrencyCode is worth Rate units of ToCurrencyCode. There is a single
// row per pair; newer observations overwrite it.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	Source           RateSource      `json:"source"`
	AuditFields
}

// RateQuote is the answer of a rate lookup.
type RateQuote struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	Rate       decimal.Decimal `json:"rate"`
	ObservedAt time.Time       `json:"observedAt"`
	Source     RateSource      `json:"source"`
}

// Convert applies the quote to an amount denominated in q.From.
func (q RateQuote) Convert(amount decimal.Decimal) decimal.Decimal {
	return ToReference(amount, q.Rate)
}

// IdentityQuote is the quote of a currency against itself.
func IdentityQuote(code string, at time.Time) RateQuote {
	return RateQuote{From: code, To: code, Rate: decimal.NewFromInt(1), ObservedAt: at, Source: RateSourceIdentity}
}

// Conversion is an amount converted between two currencies.
type Conversion struct {
	Amount    decimal.Decimal `json:"amount"`
	Converted decimal.Decimal `json:"converted"`
	Quote     RateQuote       `json:"quote"`
}
