package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LoanReader defines read operations for loans
type LoanReader interface {
	FindLoanByID(ctx context.Context, ledgerID, loanID string) (*domain.Loan, error)
	ListLoans(ctx context.Context, ledgerID string, filter domain.LoanFilter) ([]domain.Loan, error)

	// SumActivePrincipalByCurrency returns outstanding principal keyed by currency code.
	SumActivePrincipalByCurrency(ctx context.Context, ledgerID string) (map[string]decimal.Decimal, error)
}

// LoanWriter defines write operations for loans
type LoanWriter interface {
	SaveLoan(ctx context.Context, loan domain.Loan) error

	// CloseLoan moves an ACTIVE loan to CLOSED. It returns apperrors.ErrNotFound
	// when no active loan with that id exists in the ledger.
	CloseLoan(ctx context.Context, ledgerID, loanID string, closedAt time.Time, closedBy string) error
}

// LoanRepositoryFacade combines all loan-related repository interfaces
type LoanRepositoryFacade interface {
	LoanReader
	LoanWriter
}
