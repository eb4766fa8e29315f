package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetLedger(ctx context.Context, ledgerID, userID string) (*domain.Ledger, error) {
	args := m.Called(ctx, ledgerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ledger), args.Error(1)
}
func (m *MockLedgerService) ListLedgers(ctx context.Context, ownerID string) ([]domain.Ledger, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ledger), args.Error(1)
}
func (m *MockLedgerService) Balance(ctx context.Context, ledgerID, currencyCode, userID string) (decimal.Decimal, error) {
	args := m.Called(ctx, ledgerID, currencyCode, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockLedgerService) Balances(ctx context.Context, ledgerID, userID string) ([]domain.CurrencyBalance, error) {
	args := m.Called(ctx, ledgerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CurrencyBalance), args.Error(1)
}
func (m *MockLedgerService) BalanceIn(ctx context.Context, ledgerID, reference, userID string) (*domain.ReferenceBalance, error) {
	args := m.Called(ctx, ledgerID, reference, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferenceBalance), args.Error(1)
}
func (m *MockLedgerService) ListMovements(ctx context.Context, ledgerID string, limit int, userID string) ([]domain.Movement, error) {
	args := m.Called(ctx, ledgerID, limit, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Movement), args.Error(1)
}
func (m *MockLedgerService) History(ctx context.Context, ledgerID string, limit int, userID string) ([]domain.BalanceHistoryEntry, error) {
	args := m.Called(ctx, ledgerID, limit, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BalanceHistoryEntry), args.Error(1)
}
func (m *MockLedgerService) CreateLedger(ctx context.Context, req dto.CreateLedgerRequest, ownerID string) (*domain.Ledger, error) {
	args := m.Called(ctx, req, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ledger), args.Error(1)
}
func (m *MockLedgerService) Post(ctx context.Context, ledgerID string, req dto.MovementRequest, userID string) (*domain.Posting, error) {
	return m.posting(m.Called(ctx, ledgerID, req, userID))
}
func (m *MockLedgerService) Deposit(ctx context.Context, ledgerID string, req dto.MovementRequest, userID string) (*domain.Posting, error) {
	return m.posting(m.Called(ctx, ledgerID, req, userID))
}
func (m *MockLedgerService) Withdraw(ctx context.Context, ledgerID string, req dto.MovementRequest, userID string) (*domain.Posting, error) {
	return m.posting(m.Called(ctx, ledgerID, req, userID))
}
func (m *MockLedgerService) Expense(ctx context.Context, ledgerID string, req dto.ExpenseRequest, userID string) (*domain.Posting, error) {
	return m.posting(m.Called(ctx, ledgerID, req, userID))
}
func (m *MockLedgerService) posting(args mock.Arguments) (*domain.Posting, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Posting), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock LoanService ---
type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) GetLoan(ctx context.Context, ledgerID, loanID, userID string) (*domain.Loan, error) {
	args := m.Called(ctx, ledgerID, loanID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanService) ListLoans(ctx context.Context, ledgerID string, query dto.ListLoansQuery, userID string) (*domain.LoanListing, error) {
	args := m.Called(ctx, ledgerID, query, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanListing), args.Error(1)
}
func (m *MockLoanService) OpenLoan(ctx context.Context, ledgerID string, req dto.OpenLoanRequest, userID string) (*domain.LoanQuote, error) {
	args := m.Called(ctx, ledgerID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanQuote), args.Error(1)
}
func (m *MockLoanService) CloseLoan(ctx context.Context, ledgerID, loanID, userID string) (*domain.LoanClosure, error) {
	args := m.Called(ctx, ledgerID, loanID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanClosure), args.Error(1)
}

var _ portssvc.LoanSvcFacade = (*MockLoanService)(nil)

// --- Mock ExchangeRateService ---
type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) Rate(ctx context.Context, currency, reference string, asOf time.Time) (*domain.RateQuote, error) {
	args := m.Called(ctx, currency, reference, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateQuote), args.Error(1)
}
func (m *MockExchangeRateService) GetStoredRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCode, toCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}
func (m *MockExchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (*domain.Conversion, error) {
	args := m.Called(ctx, amount, fromCode, toCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversion), args.Error(1)
}
func (m *MockExchangeRateService) ListRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}
func (m *MockExchangeRateService) SetRate(ctx context.Context, req dto.SetExchangeRateRequest, userID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}
func (m *MockExchangeRateService) RefreshRate(ctx context.Context, currency, reference string) (*domain.RateQuote, error) {
	args := m.Called(ctx, currency, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateQuote), args.Error(1)
}

var _ portssvc.ExchangeRateSvcFacade = (*MockExchangeRateService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) Summarize(ctx context.Context, ledgerID, referenceA, referenceB, userID string) (*domain.Summary, error) {
	args := m.Called(ctx, ledgerID, referenceA, referenceB, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)
