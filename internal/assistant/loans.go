package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/shopspring/decimal"
)

// LoanInput describes a loan in the units a user types.
type LoanInput struct {
	LedgerID            string `json:"ledgerID" validate:"required"`
	Currency            string `json:"currency" validate:"required"`
	Principal           string `json:"principal" validate:"required"`
	Counterparty        string `json:"counterparty" validate:"required"`
	LoanDate            string `json:"loanDate" validate:"required"`
	InterestPercent     string `json:"interestPercent" validate:"required"`
	IntermediaryPercent string `json:"intermediaryPercent"` // empty when there is no intermediary
	Description         string `json:"description"`
}

func (in LoanInput) request() (dto.OpenLoanRequest, error) {
	currency, err := domain.NormalizeCurrencyCode(in.Currency)
	if err != nil {
		return dto.OpenLoanRequest{}, err
	}
	principal, err := parseAmount(in.Principal)
	if err != nil {
		return dto.OpenLoanRequest{}, err
	}
	interest, err := parseAmount(in.InterestPercent)
	if err != nil {
		return dto.OpenLoanRequest{}, err
	}
	req := dto.OpenLoanRequest{
		CurrencyCode:        currency,
		Principal:           principal,
		Counterparty:        in.Counterparty,
		LoanDate:            in.LoanDate,
		InterestPercent:     interest,
		IntermediaryPercent: decimal.Zero,
		Description:         in.Description,
	}
	if in.IntermediaryPercent != "" {
		cut, err := parseAmount(in.IntermediaryPercent)
		if err != nil {
			return dto.OpenLoanRequest{}, err
		}
		req.HasIntermediary = true
		req.IntermediaryPercent = cut
	}
	return req, nil
}

// OpenLoan records a loan and reports its interest split.
func (t *Toolkit) OpenLoan(ctx context.Context, in LoanInput) dto.Result[dto.LoanQuoteResponse] {
	return run(ctx, "open_loan", func(ctx context.Context) (dto.LoanQuoteResponse, string, error) {
		if err := t.check(in); err != nil {
			return dto.LoanQuoteResponse{}, "", err
		}
		req, err := in.request()
		if err != nil {
			return dto.LoanQuoteResponse{}, "", err
		}
		quote, err := t.services.Loan.OpenLoan(ctx, in.LedgerID, req, t.userID)
		if err != nil {
			return dto.LoanQuoteResponse{}, "", err
		}
		return dto.ToLoanQuoteResponse(quote), quote.Breakdown, nil
	})
}

// CloseLoan settles a loan and credits its net proceeds.
func (t *Toolkit) CloseLoan(ctx context.Context, ledgerID, loanID string) dto.Result[dto.LoanClosureResponse] {
	return run(ctx, "close_loan", func(ctx context.Context) (dto.LoanClosureResponse, string, error) {
		closure, err := t.services.Loan.CloseLoan(ctx, ledgerID, loanID, t.userID)
		if err != nil {
			return dto.LoanClosureResponse{}, "", err
		}
		msg := fmt.Sprintf("Loan with %s closed, %s credited",
			closure.Loan.Counterparty, domain.FormatAmount(closure.NetProceeds, closure.Loan.CurrencyCode))
		return dto.ToLoanClosureResponse(closure), msg, nil
	})
}

// ListLoans lists loans by state: active, closed or all. Totals are also
// converted into the ledger reference and the secondary reference.
func (t *Toolkit) ListLoans(ctx context.Context, ledgerID, filter string) dto.Result[dto.ListLoansResponse] {
	return run(ctx, "list_loans", func(ctx context.Context) (dto.ListLoansResponse, string, error) {
		query := dto.ListLoansQuery{Filter: domain.ParseLoanFilter(filter), Reference: t.secondaryReference}
		listing, err := t.services.Loan.ListLoans(ctx, ledgerID, query, t.userID)
		if err != nil {
			return dto.ListLoansResponse{}, "", err
		}
		msg := fmt.Sprintf("%d %s loans", len(listing.Loans), listing.Filter)
		if listing.Partial {
			msg += "; " + strings.Join(listing.Warnings, "; ")
		}
		return dto.ToListLoansResponse(listing), msg, nil
	})
}
