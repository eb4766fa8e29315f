package services

import (
	"context"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines read operations on a ledger
type LedgerReaderSvc interface {
	GetLedger(ctx context.Context, ledgerID, userID string) (*domain.Ledger, error)
	ListLedgers(ctx context.Context, ownerID string) ([]domain.Ledger, error)

	// Balance is the sum of movements in one currency.
	Balance(ctx context.Context, ledgerID, currencyCode, userID string) (decimal.Decimal, error)

	// Balances lists every non-zero per-currency balance.
	Balances(ctx context.Context, ledgerID, userID string) ([]domain.CurrencyBalance, error)

	// BalanceIn converts every currency balance into reference and sums them.
	BalanceIn(ctx context.Context, ledgerID, reference, userID string) (*domain.ReferenceBalance, error)

	ListMovements(ctx context.Context, ledgerID string, limit int, userID string) ([]domain.Movement, error)
	History(ctx context.Context, ledgerID string, limit int, userID string) ([]domain.BalanceHistoryEntry, error)
}

// LedgerWriterSvc defines write operations on a ledger
type LedgerWriterSvc interface {
	CreateLedger(ctx context.Context, req dto.CreateLedgerRequest, ownerID string) (*domain.Ledger, error)

	// Post appends a signed movement without a solvency check.
	Post(ctx context.Context, ledgerID string, req dto.MovementRequest, userID string) (*domain.Posting, error)

	// Deposit posts a positive amount.
	Deposit(ctx context.Context, ledgerID string, req dto.MovementRequest, userID string) (*domain.Posting, error)

	// Withdraw posts a debit after checking the reference balance stays non-negative.
	Withdraw(ctx context.Context, ledgerID string, req dto.MovementRequest, userID string) (*domain.Posting, error)

	// Expense is a withdrawal tagged as spending.
	Expense(ctx context.Context, ledgerID string, req dto.ExpenseRequest, userID string) (*domain.Posting, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
