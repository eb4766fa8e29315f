package services

import (
	"context"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/SscSPs/finance_assistant/internal/dto"
)

// LoanReaderSvc defines read operations for loans
type LoanReaderSvc interface {
	GetLoan(ctx context.Context, ledgerID, loanID, userID string) (*domain.Loan, error)
	// ListLoans returns the matching loans with totals per currency and in each reference currency.
	ListLoans(ctx context.Context, ledgerID string, query dto.ListLoansQuery, userID string) (*domain.LoanListing, error)
}

// LoanWriterSvc defines write operations for loans
type LoanWriterSvc interface {
	// OpenLoan records an active loan and returns its interest split.
	OpenLoan(ctx context.Context, ledgerID string, req dto.OpenLoanRequest, userID string) (*domain.LoanQuote, error)

	// CloseLoan settles an active loan, posting its net proceeds to the ledger.
	CloseLoan(ctx context.Context, ledgerID, loanID, userID string) (*domain.LoanClosure, error)
}

// LoanSvcFacade combines all loan-related service interfaces
type LoanSvcFacade interface {
	LoanReaderSvc
	LoanWriterSvc
}
