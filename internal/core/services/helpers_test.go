package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/SscSPs/finance_assistant/internal/core/services"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/SscSPs/finance_assistant/internal/repositories/database/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock LiveRateSource ---
type MockLiveRateSource struct {
	mock.Mock
}

func (m *MockLiveRateSource) FetchRate(ctx context.Context, currency, reference string) (decimal.Decimal, error) {
	args := m.Called(ctx, currency, reference)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLiveRateSource) Name() string {
	return "mock"
}

// quotes registers a live rate for currency against reference.
func (m *MockLiveRateSource) quotes(currency, reference, rate string) {
	m.On("FetchRate", mock.Anything, currency, reference).Return(decimal.RequireFromString(rate), nil)
}

// offline makes every lookup not registered before it fail.
func (m *MockLiveRateSource) offline() {
	m.On("FetchRate", mock.Anything, mock.Anything, mock.Anything).Return(decimal.Zero, errOffline)
}

type offlineError struct{}

func (offlineError) Error() string { return "rate source offline" }

var errOffline = offlineError{}

var fixedNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// serviceSuite wires every service to a fresh in-memory store and a mocked live source.
type serviceSuite struct {
	suite.Suite
	ctx      context.Context
	repos    portsrepo.RepositoryProvider
	live     *MockLiveRateSource
	services *portssvc.ServiceContainer
	ledger   *domain.Ledger
}

const owner = "user-1"

func (s *serviceSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = memory.NewRepositoryProvider()
	s.live = new(MockLiveRateSource)
	s.services = services.NewServiceContainer(s.repos, s.live, fixedClock)

	ledger, err := s.services.Ledger.CreateLedger(s.ctx, dto.CreateLedgerRequest{Name: "Savings", ReferenceCurrency: "usd"}, owner)
	s.Require().NoError(err)
	s.ledger = ledger
}

func (s *serviceSuite) deposit(code, amount string) *domain.Posting {
	posting, err := s.services.Ledger.Deposit(s.ctx, s.ledger.LedgerID, dto.MovementRequest{CurrencyCode: code, Amount: dec(amount)}, owner)
	s.Require().NoError(err)
	return posting
}

func (s *serviceSuite) balance(code string) decimal.Decimal {
	b, err := s.services.Ledger.Balance(s.ctx, s.ledger.LedgerID, code, owner)
	s.Require().NoError(err)
	return b
}

func (s *serviceSuite) assertDecimal(expected string, actual decimal.Decimal, msgAndArgs ...any) {
	s.Truef(dec(expected).Equal(actual), "expected %s, got %s %v", expected, actual.String(), msgAndArgs)
}
