package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type pair struct{ from, to string }

// ExchangeRateStore caches one rate per currency pair.
type ExchangeRateStore struct {
	mu    sync.RWMutex
	rates map[pair]domain.ExchangeRate
}

// NewExchangeRateStore creates an empty rate cache.
func NewExchangeRateStore() *ExchangeRateStore {
	return &ExchangeRateStore{rates: map[pair]domain.ExchangeRate{}}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*ExchangeRateStore)(nil)

// SaveExchangeRate upserts the pair, keeping the id and creation audit of an existing row.
func (s *ExchangeRateStore) SaveExchangeRate(_ context.Context, rate domain.ExchangeRate) error {
	key := pair{strings.ToUpper(rate.FromCurrencyCode), strings.ToUpper(rate.ToCurrencyCode)}
	if key.from == key.to {
		return apperrors.NewValidationError("from and to currencies cannot be the same")
	}
	rate.FromCurrencyCode, rate.ToCurrencyCode = key.from, key.to

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rates[key]; ok {
		rate.ExchangeRateID = existing.ExchangeRateID
		rate.CreatedAt = existing.CreatedAt
		rate.CreatedBy = existing.CreatedBy
	}
	s.rates[key] = rate
	return nil
}

// FindExchangeRate returns the direct rate, or the inverse of the reverse pair.
func (s *ExchangeRateStore) FindExchangeRate(_ context.Context, fromCurrencyCode, toCurrencyCode string) (*domain.ExchangeRate, error) {
	from, to := strings.ToUpper(fromCurrencyCode), strings.ToUpper(toCurrencyCode)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if rate, ok := s.rates[pair{from, to}]; ok {
		return &rate, nil
	}
	if rate, ok := s.rates[pair{to, from}]; ok && !rate.Rate.IsZero() {
		rate.FromCurrencyCode, rate.ToCurrencyCode = from, to
		rate.Rate = decimal.NewFromInt(1).DivRound(rate.Rate, domain.ReferenceScale*2)
		return &rate, nil
	}
	return nil, apperrors.NewNotFoundError("no exchange rate found for currency pair " + from + " to " + to)
}

// ListExchangeRates returns every pair ordered by from then to currency.
func (s *ExchangeRateStore) ListExchangeRates(context.Context) ([]domain.ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ExchangeRate, 0, len(s.rates))
	for _, rate := range s.rates {
		out = append(out, rate)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FromCurrencyCode != out[j].FromCurrencyCode {
			return out[i].FromCurrencyCode < out[j].FromCurrencyCode
		}
		return out[i].ToCurrencyCode < out[j].ToCurrencyCode
	})
	return out, nil
}
