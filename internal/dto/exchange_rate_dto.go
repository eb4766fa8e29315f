package dto

import (
	"time"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SetExchangeRateRequest defines the structure for storing a manual exchange rate.
type SetExchangeRateRequest struct {
	FromCurrencyCode string          `json:"fromCurrencyCode" binding:"required,len=3" validate:"required,len=3"`
	ToCurrencyCode   string          `json:"toCurrencyCode" binding:"required,len=3" validate:"required,len=3"`
	Rate             decimal.Decimal `json:"rate"` // must be positive, checked by the service
}

// ExchangeRateResponse defines the structure for API responses containing exchange rate details.
type ExchangeRateResponse struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	Source           string          `json:"source"`
	LastUpdatedAt    time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy    string          `json:"lastUpdatedBy"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID:   rate.ExchangeRateID,
		FromCurrencyCode: rate.FromCurrencyCode,
		ToCurrencyCode:   rate.ToCurrencyCode,
		Rate:             rate.Rate,
		DateEffective:    rate.DateEffective,
		Source:           string(rate.Source),
		LastUpdatedAt:    rate.LastUpdatedAt,
		LastUpdatedBy:    rate.LastUpdatedBy,
	}
}

// ToListExchangeRateResponse converts a slice of domain.ExchangeRate to response DTOs.
func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	responses := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		responses[i] = ToExchangeRateResponse(&rates[i])
	}
	return responses
}

// RateQuoteResponse is a priced currency pair.
type RateQuoteResponse struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	Rate       decimal.Decimal `json:"rate"`
	ObservedAt time.Time       `json:"observedAt"`
	Source     string          `json:"source"`
}

// ToRateQuoteResponse converts a domain.RateQuote.
func ToRateQuoteResponse(q domain.RateQuote) RateQuoteResponse {
	return RateQuoteResponse{From: q.From, To: q.To, Rate: q.Rate, ObservedAt: q.ObservedAt, Source: string(q.Source)}
}

// ConversionResponse is an amount converted between currencies.
type ConversionResponse struct {
	Amount             decimal.Decimal   `json:"amount"`
	Converted          decimal.Decimal   `json:"converted"`
	FormattedAmount    string            `json:"formattedAmount"`
	FormattedConverted string            `json:"formattedConverted"`
	Quote              RateQuoteResponse `json:"quote"`
}

// ToConversionResponse converts a domain.Conversion.
func ToConversionResponse(c *domain.Conversion) ConversionResponse {
	return ConversionResponse{
		Amount:             c.Amount,
		Converted:          c.Converted,
		FormattedAmount:    domain.FormatAmount(c.Amount, c.Quote.From),
		FormattedConverted: domain.FormatAmount(c.Converted, c.Quote.To),
		Quote:              ToRateQuoteResponse(c.Quote),
	}
}
