package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// systemUser marks rows written by the service itself rather than a person.
const systemUser = "system"

// exchangeRateService provides business logic for exchange rates.
// Lookups try the live source first and fall back to the rate cache.
type exchangeRateService struct {
	BaseService
	rateRepo portsrepo.ExchangeRateRepositoryFacade
	live     portssvc.LiveRateSource
}

// ExchangeRateServiceOption is a functional option for configuring the exchange rate service
type ExchangeRateServiceOption func(*exchangeRateService)

// WithLiveRateSource sets the live quote source. Without one only cached rates are used.
func WithLiveRateSource(source portssvc.LiveRateSource) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.live = source
	}
}

// WithExchangeRateClock overrides the clock used to stamp quotes.
func WithExchangeRateClock(now func() time.Time) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.Clock = now
	}
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, options ...ExchangeRateServiceOption) portssvc.ExchangeRateSvcFacade {
	svc := &exchangeRateService{rateRepo: rateRepo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// Rate implements the lookup policy: identity, then live (cached on success), then cache.
// The as-of time is not consulted; every lookup prices at the current rate.
func (s *exchangeRateService) Rate(ctx context.Context, currency, reference string, _ time.Time) (*domain.RateQuote, error) {
	from, to, err := validatePair(currency, reference)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	if from == to {
		q := domain.IdentityQuote(from, now)
		return &q, nil
	}

	if s.live != nil {
		quote, err := s.fetchLive(ctx, from, to, now)
		if err == nil {
			s.persistQuote(ctx, quote)
			return quote, nil
		}
		s.LogWarn(ctx, "Live rate lookup failed, falling back to cached rate",
			slog.String("source", s.live.Name()),
			slog.String("from", from),
			slog.String("to", to),
			slog.String("error", err.Error()))
	}

	stored, err := s.rateRepo.FindExchangeRate(ctx, from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no live or cached rate for %s/%s", apperrors.ErrRateUnavailable, from, to)
		}
		s.LogError(ctx, err, "Failed to read cached rate", slog.String("from", from), slog.String("to", to))
		return nil, fmt.Errorf("%w: reading cached rate for %s/%s: %v", apperrors.ErrRateUnavailable, from, to, err)
	}

	observed := stored.LastUpdatedAt
	if observed.IsZero() {
		observed = stored.DateEffective
	}
	return &domain.RateQuote{
		From:       from,
		To:         to,
		Rate:       stored.Rate,
		ObservedAt: observed,
		Source:     domain.RateSourceCached,
	}, nil
}

func (s *exchangeRateService) fetchLive(ctx context.Context, from, to string, now time.Time) (*domain.RateQuote, error) {
	rate, err := s.live.FetchRate(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if !rate.IsPositive() {
		return nil, fmt.Errorf("source %s returned non-positive rate %s for %s/%s", s.live.Name(), rate, from, to)
	}
	return &domain.RateQuote{From: from, To: to, Rate: rate, ObservedAt: now, Source: domain.RateSourceLive}, nil
}

// persistQuote caches a live quote. Failures are logged and swallowed so a
// storage hiccup never fails a lookup that already has an answer.
func (s *exchangeRateService) persistQuote(ctx context.Context, quote *domain.RateQuote) {
	if err := s.rateRepo.SaveExchangeRate(ctx, s.newRate(quote.From, quote.To, quote.Rate, domain.RateSourceLive, systemUser)); err != nil {
		s.LogError(ctx, err, "Failed to cache live rate",
			slog.String("from", quote.From),
			slog.String("to", quote.To))
	}
}

func (s *exchangeRateService) newRate(from, to string, rate decimal.Decimal, source domain.RateSource, userID string) domain.ExchangeRate {
	now := s.Now()
	return domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Rate:             rate,
		DateEffective:    now.Truncate(24 * time.Hour),
		Source:           source,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
}

// Convert prices amount of fromCode in toCode with the current rate.
func (s *exchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (*domain.Conversion, error) {
	quote, err := s.Rate(ctx, fromCode, toCode, s.Now())
	if err != nil {
		return nil, err
	}
	return &domain.Conversion{Amount: amount, Converted: quote.Convert(amount), Quote: *quote}, nil
}

// GetStoredRate returns the cached rate for the pair without a live lookup.
func (s *exchangeRateService) GetStoredRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	from, to, err := validatePair(fromCode, toCode)
	if err != nil {
		return nil, err
	}
	if from == to {
		return &domain.ExchangeRate{FromCurrencyCode: from, ToCurrencyCode: to, Rate: decimal.NewFromInt(1), Source: domain.RateSourceIdentity}, nil
	}
	rate, err := s.rateRepo.FindExchangeRate(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate in service: %w", err)
	}
	return rate, nil
}

// ListRates returns all cached pairs.
func (s *exchangeRateService) ListRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	rates, err := s.rateRepo.ListExchangeRates(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list exchange rates")
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	return rates, nil
}

// SetRate stores a manual rate for a pair, replacing any cached value.
func (s *exchangeRateService) SetRate(ctx context.Context, req dto.SetExchangeRateRequest, userID string) (*domain.ExchangeRate, error) {
	from, to, err := validatePair(req.FromCurrencyCode, req.ToCurrencyCode)
	if err != nil {
		return nil, err
	}
	if !req.Rate.IsPositive() {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if from == to {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}

	rate := s.newRate(from, to, req.Rate, domain.RateSourceManual, userID)
	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		s.LogError(ctx, err, "Failed to save manual exchange rate", slog.String("from", from), slog.String("to", to))
		return nil, fmt.Errorf("failed to save exchange rate: %w", err)
	}

	s.LogInfo(ctx, "Exchange rate updated",
		slog.String("from", from),
		slog.String("to", to),
		slog.String("rate", rate.Rate.String()),
		slog.String("user_id", userID))
	return &rate, nil
}

// RefreshRate forces a live lookup and caches it. Unlike Rate it never falls back to the cache.
func (s *exchangeRateService) RefreshRate(ctx context.Context, currency, reference string) (*domain.RateQuote, error) {
	from, to, err := validatePair(currency, reference)
	if err != nil {
		return nil, err
	}
	if from == to {
		q := domain.IdentityQuote(from, s.Now())
		return &q, nil
	}
	if s.live == nil {
		return nil, fmt.Errorf("%w: no live rate source configured", apperrors.ErrRateUnavailable)
	}
	quote, err := s.fetchLive(ctx, from, to, s.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRateUnavailable, err)
	}
	if err := s.rateRepo.SaveExchangeRate(ctx, s.newRate(from, to, quote.Rate, domain.RateSourceLive, systemUser)); err != nil {
		return nil, fmt.Errorf("failed to cache refreshed rate: %w", err)
	}
	return quote, nil
}

func validatePair(fromCode, toCode string) (string, string, error) {
	from, err := domain.ValidateCurrencyCode(fromCode)
	if err != nil {
		return "", "", err
	}
	to, err := domain.ValidateCurrencyCode(toCode)
	if err != nil {
		return "", "", err
	}
	return from, to, nil
}
