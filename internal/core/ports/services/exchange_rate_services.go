package services

import (
	"context"
	"time"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/shopspring/decimal"
)

// LiveRateSource quotes the current market rate for a currency.
type LiveRateSource interface {
	// FetchRate returns how many units of reference one unit of currency is worth.
	FetchRate(ctx context.Context, currency, reference string) (decimal.Decimal, error)

	// Name identifies the source in logs.
	Name() string
}

// RateProvider converts between currencies.
type RateProvider interface {
	// Rate returns the value of one unit of currency in reference. asOf is
	// accepted for call-site clarity only; the current rate is always used.
	Rate(ctx context.Context, currency, reference string, asOf time.Time) (*domain.RateQuote, error)
}

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	RateProvider

	// GetStoredRate returns the cached rate without consulting the live source.
	GetStoredRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error)

	// Convert prices amount of fromCode in toCode.
	Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (*domain.Conversion, error)

	// ListRates returns all cached pairs.
	ListRates(ctx context.Context) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rate data
type ExchangeRateWriterSvc interface {
	// SetRate stores a manual rate for a pair.
	SetRate(ctx context.Context, req dto.SetExchangeRateRequest, userID string) (*domain.ExchangeRate, error)

	// RefreshRate forces a live lookup and caches the result.
	RefreshRate(ctx context.Context, currency, reference string) (*domain.RateQuote, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}
