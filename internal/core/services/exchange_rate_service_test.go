package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/SscSPs/finance_assistant/internal/core/services"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) FindExchangeRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCode, toCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

// --- Test Suite ---
type ExchangeRateServiceTestSuite struct {
	serviceSuite
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}

func (s *ExchangeRateServiceTestSuite) TestRate_IdentityNeverAsksLiveSource() {
	quote, err := s.services.ExchangeRate.Rate(s.ctx, "usd", "USD", fixedNow)
	s.Require().NoError(err)
	s.assertDecimal("1", quote.Rate)
	s.Equal(domain.RateSourceIdentity, quote.Source)
	s.live.AssertNotCalled(s.T(), "FetchRate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ExchangeRateServiceTestSuite) TestRate_LiveQuoteIsCached() {
	s.live.quotes("ARS", "USD", "0.0008")

	quote, err := s.services.ExchangeRate.Rate(s.ctx, "ARS", "USD", fixedNow)
	s.Require().NoError(err)
	s.Equal(domain.RateSourceLive, quote.Source)
	s.assertDecimal("0.0008", quote.Rate)
	s.True(fixedNow.Equal(quote.ObservedAt))

	stored, err := s.repos.ExchangeRateRepo.FindExchangeRate(s.ctx, "ARS", "USD")
	s.Require().NoError(err)
	s.assertDecimal("0.0008", stored.Rate)
	s.Equal(domain.RateSourceLive, stored.Source)
}

func (s *ExchangeRateServiceTestSuite) TestRate_FallsBackToCache() {
	_, err := s.services.ExchangeRate.SetRate(s.ctx, dto.SetExchangeRateRequest{FromCurrencyCode: "BOB", ToCurrencyCode: "USD", Rate: dec("0.1447")}, owner)
	s.Require().NoError(err)
	s.live.offline()

	quote, err := s.services.ExchangeRate.Rate(s.ctx, "BOB", "USD", fixedNow)
	s.Require().NoError(err)
	s.Equal(domain.RateSourceCached, quote.Source)
	s.assertDecimal("0.1447", quote.Rate)
}

func (s *ExchangeRateServiceTestSuite) TestRate_NonPositiveLiveRateFallsBack() {
	_, err := s.services.ExchangeRate.SetRate(s.ctx, dto.SetExchangeRateRequest{FromCurrencyCode: "EUR", ToCurrencyCode: "USD", Rate: dec("1.1")}, owner)
	s.Require().NoError(err)
	s.live.quotes("EUR", "USD", "0")

	quote, err := s.services.ExchangeRate.Rate(s.ctx, "EUR", "USD", fixedNow)
	s.Require().NoError(err)
	s.Equal(domain.RateSourceCached, quote.Source)
	s.assertDecimal("1.1", quote.Rate)
}

// Scenario D: no cached rate and a failing live source.
func (s *ExchangeRateServiceTestSuite) TestRate_UnavailableWithoutLiveOrCache() {
	s.live.offline()

	_, err := s.services.ExchangeRate.Rate(s.ctx, "BOB", "USD", fixedNow)
	s.ErrorIs(err, apperrors.ErrRateUnavailable)
	s.Equal(apperrors.KindRateUnavailable, apperrors.KindOf(err))
}

func (s *ExchangeRateServiceTestSuite) TestRate_InvalidCurrency() {
	_, err := s.services.ExchangeRate.Rate(s.ctx, "XX1", "USD", fixedNow)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ExchangeRateServiceTestSuite) TestConvert() {
	s.live.quotes("ARS", "USD", "0.0008")

	conv, err := s.services.ExchangeRate.Convert(s.ctx, dec("1250"), "ARS", "USD")
	s.Require().NoError(err)
	s.assertDecimal("1", conv.Converted)
	s.assertDecimal("1250", conv.Amount)
}

func (s *ExchangeRateServiceTestSuite) TestSetRate_Validation() {
	_, err := s.services.ExchangeRate.SetRate(s.ctx, dto.SetExchangeRateRequest{FromCurrencyCode: "ARS", ToCurrencyCode: "USD", Rate: decimal.Zero}, owner)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.services.ExchangeRate.SetRate(s.ctx, dto.SetExchangeRateRequest{FromCurrencyCode: "USD", ToCurrencyCode: "usd", Rate: dec("1")}, owner)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.services.ExchangeRate.SetRate(s.ctx, dto.SetExchangeRateRequest{FromCurrencyCode: "ZZZ", ToCurrencyCode: "USD", Rate: dec("1")}, owner)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ExchangeRateServiceTestSuite) TestSetRate_OverwritesPair() {
	_, err := s.services.ExchangeRate.SetRate(s.ctx, dto.SetExchangeRateRequest{FromCurrencyCode: "ARS", ToCurrencyCode: "USD", Rate: dec("0.001")}, owner)
	s.Require().NoError(err)
	saved, err := s.services.ExchangeRate.SetRate(s.ctx, dto.SetExchangeRateRequest{FromCurrencyCode: "ars", ToCurrencyCode: "usd", Rate: dec("0.0009")}, owner)
	s.Require().NoError(err)
	s.Equal(domain.RateSourceManual, saved.Source)

	rates, err := s.services.ExchangeRate.ListRates(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rates, 1)
	s.assertDecimal("0.0009", rates[0].Rate)

	stored, err := s.services.ExchangeRate.GetStoredRate(s.ctx, "USD", "ARS")
	s.Require().NoError(err)
	s.True(stored.Rate.Mul(dec("0.0009")).Round(8).Equal(decimal.NewFromInt(1)))
}

func (s *ExchangeRateServiceTestSuite) TestGetStoredRate_NotFound() {
	_, err := s.services.ExchangeRate.GetStoredRate(s.ctx, "BOB", "EUR")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ExchangeRateServiceTestSuite) TestRefreshRate() {
	s.live.quotes("EUR", "USD", "1.08")
	s.live.offline()

	quote, err := s.services.ExchangeRate.RefreshRate(s.ctx, "EUR", "USD")
	s.Require().NoError(err)
	s.Equal(domain.RateSourceLive, quote.Source)

	stored, err := s.services.ExchangeRate.GetStoredRate(s.ctx, "EUR", "USD")
	s.Require().NoError(err)
	s.assertDecimal("1.08", stored.Rate)

	_, err = s.services.ExchangeRate.RefreshRate(s.ctx, "BOB", "USD")
	s.ErrorIs(err, apperrors.ErrRateUnavailable)
}

func TestRefreshRate_NoLiveSource(t *testing.T) {
	svc := services.NewExchangeRateService(new(MockExchangeRateRepository))
	_, err := svc.RefreshRate(context.Background(), "EUR", "USD")
	assert.ErrorIs(t, err, apperrors.ErrRateUnavailable)
}

func TestRate_PersistFailureStillReturnsLiveQuote(t *testing.T) {
	ctx := context.Background()
	repo := new(MockExchangeRateRepository)
	live := new(MockLiveRateSource)
	live.quotes("ARS", "USD", "0.0008")
	repo.On("SaveExchangeRate", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(errors.New("disk full")).Once()

	svc := services.NewExchangeRateService(repo, services.WithLiveRateSource(live), services.WithExchangeRateClock(fixedClock))
	quote, err := svc.Rate(ctx, "ARS", "USD", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, domain.RateSourceLive, quote.Source)
	assert.True(t, dec("0.0008").Equal(quote.Rate))
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "FindExchangeRate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRate_CacheReadFailureIsRateUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := new(MockExchangeRateRepository)
	repo.On("FindExchangeRate", ctx, "ARS", "USD").Return(nil, apperrors.NewAppError(500, "db down", errors.New("conn refused")))

	svc := services.NewExchangeRateService(repo)
	_, err := svc.Rate(ctx, "ARS", "USD", fixedNow)
	assert.ErrorIs(t, err, apperrors.ErrRateUnavailable)
}
