package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// loanService books loans and settles them into the ledger.
type loanService struct {
	BaseService
	poster     ledgerPoster
	ledgerRepo portsrepo.LedgerReader
	loanRepo   portsrepo.LoanRepositoryFacade
	txManager  portsrepo.TransactionManager
}

// LoanServiceOption is a functional option for configuring the loan service
type LoanServiceOption func(*loanService)

// WithLoanClock overrides the clock used for quotes and closure timestamps.
func WithLoanClock(now func() time.Time) LoanServiceOption {
	return func(s *loanService) {
		s.Clock = now
	}
}

// NewLoanService creates a new loan service.
func NewLoanService(repos portsrepo.RepositoryProvider, rates portssvc.RateProvider, options ...LoanServiceOption) portssvc.LoanSvcFacade {
	svc := &loanService{
		poster:     ledgerPoster{rates: rates},
		ledgerRepo: repos.LedgerRepo,
		loanRepo:   repos.LoanRepo,
		txManager:  repos.TxManager,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LoanSvcFacade = (*loanService)(nil)

func validateLoanRequest(req dto.OpenLoanRequest) (string, time.Time, error) {
	currency, err := domain.ValidateCurrencyCode(req.CurrencyCode)
	if err != nil {
		return "", time.Time{}, err
	}
	if !req.Principal.IsPositive() {
		return "", time.Time{}, fmt.Errorf("%w: principal must be positive", apperrors.ErrInvalidAmount)
	}
	if req.InterestPercent.IsNegative() {
		return "", time.Time{}, fmt.Errorf("%w: interest percent must not be negative", apperrors.ErrInvalidAmount)
	}
	if req.HasIntermediary && req.IntermediaryPercent.IsNegative() {
		return "", time.Time{}, fmt.Errorf("%w: intermediary percent must not be negative", apperrors.ErrInvalidAmount)
	}
	if strings.TrimSpace(req.Counterparty) == "" {
		return "", time.Time{}, apperrors.NewValidationError("counterparty is required")
	}
	loanDate, err := domain.ParseLoanDate(req.LoanDate)
	if err != nil {
		return "", time.Time{}, err
	}
	return currency, loanDate, nil
}

// OpenLoan records an active loan. The quote uses today's rate regardless of
// the loan date. Nothing is posted to the ledger until the loan is closed.
func (s *loanService) OpenLoan(ctx context.Context, ledgerID string, req dto.OpenLoanRequest, userID string) (*domain.LoanQuote, error) {
	currency, loanDate, err := validateLoanRequest(req)
	if err != nil {
		return nil, err
	}
	ledger, err := authorizeLedger(ctx, s.ledgerRepo, ledgerID, userID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	quote, err := s.poster.rates.Rate(ctx, currency, ledger.ReferenceCurrency, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to quote loan currency",
			slog.String("ledger_id", ledgerID),
			slog.String("currency", currency))
		return nil, err
	}

	intermediary := decimal.Zero
	if req.HasIntermediary {
		intermediary = req.IntermediaryPercent
	}
	loan := domain.Loan{
		LoanID:                  uuid.NewString(),
		LedgerID:                ledger.LedgerID,
		Principal:               req.Principal,
		CurrencyCode:            currency,
		Counterparty:            strings.TrimSpace(req.Counterparty),
		LoanDate:                loanDate,
		InterestPercent:         req.InterestPercent,
		HasIntermediary:         req.HasIntermediary,
		IntermediaryPercent:     intermediary,
		QuotedRateAtOrigination: quote.Rate,
		QuoteReferenceCurrency:  ledger.ReferenceCurrency,
		QuotedAt:                quote.ObservedAt,
		Description:             req.Description,
		State:                   domain.LoanActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.loanRepo.SaveLoan(ctx, loan); err != nil {
		s.LogError(ctx, err, "Failed to save loan", slog.String("ledger_id", ledgerID))
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	result := domain.NewLoanQuote(loan, *quote)
	s.LogInfo(ctx, "Loan opened",
		slog.String("ledger_id", ledgerID),
		slog.String("loan_id", loan.LoanID),
		slog.String("principal", loan.Principal.String()),
		slog.String("currency", currency),
		slog.String("net_proceeds", result.NetProceeds.String()))
	return &result, nil
}

// CloseLoan settles an active loan: it converts the net proceeds, marks the
// loan closed and posts the net proceeds (never the principal) in the loan's
// currency, all in one transaction. Zero net proceeds close the loan without a
// movement; negative ones are posted as a debit with no solvency check.
func (s *loanService) CloseLoan(ctx context.Context, ledgerID, loanID, userID string) (*domain.LoanClosure, error) {
	ledger, err := authorizeLedger(ctx, s.ledgerRepo, ledgerID, userID)
	if err != nil {
		return nil, err
	}

	var closure *domain.LoanClosure
	err = s.txManager.WithinTx(ctx, ledger.LedgerID, func(ctx context.Context, store portsrepo.LedgerStore) error {
		loan, err := store.FindLoanByID(ctx, ledger.LedgerID, loanID)
		if err != nil {
			return err
		}
		if !loan.IsActive() {
			return apperrors.NewNotFoundError("no active loan with id " + loanID)
		}

		now := s.Now()
		net := loan.NetProceeds()
		quote, err := s.poster.rates.Rate(ctx, loan.CurrencyCode, ledger.ReferenceCurrency, now)
		if err != nil {
			return err
		}
		netInReference := quote.Convert(net)

		var before, after *domain.ReferenceBalance
		if !net.IsZero() {
			// Priced before the close so a missing rate aborts with nothing written.
			before, after, err = s.poster.rebalance(ctx, store, ledger.LedgerID, ledger.ReferenceCurrency, *quote, net, now)
			if err != nil {
				return err
			}
		}

		if err := store.CloseLoan(ctx, ledger.LedgerID, loanID, now, userID); err != nil {
			return err
		}
		loan.State = domain.LoanClosed
		loan.ClosedAt = &now
		loan.LastUpdatedAt = now
		loan.LastUpdatedBy = userID

		closure = &domain.LoanClosure{
			Loan:                   *loan,
			NetProceeds:            net,
			NetProceedsInReference: netInReference,
			ReferenceCurrency:      ledger.ReferenceCurrency,
		}
		if net.IsZero() {
			return nil
		}

		closure.Posting, err = s.poster.post(ctx, store, postingInput{
			ledger:            ledger,
			currencyCode:      loan.CurrencyCode,
			amount:            net,
			amountInReference: netInReference,
			balanceBefore:     before.Total,
			balanceAfter:      after.Total,
			quote:             *quote,
			description:       fmt.Sprintf("loan closed: %s", loan.Counterparty),
			effectiveDate:     domain.DayOf(now),
			counterparty:      loan.Counterparty,
			kind:              domain.MovementLoanClosure,
			userID:            userID,
			at:                now,
		})
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to close loan",
			slog.String("ledger_id", ledgerID),
			slog.String("loan_id", loanID))
		return nil, err
	}

	s.LogInfo(ctx, "Loan closed",
		slog.String("ledger_id", ledgerID),
		slog.String("loan_id", loanID),
		slog.String("net_proceeds", closure.NetProceeds.String()))
	return closure, nil
}

// GetLoan returns a loan in any state.
func (s *loanService) GetLoan(ctx context.Context, ledgerID, loanID, userID string) (*domain.Loan, error) {
	if _, err := authorizeLedger(ctx, s.ledgerRepo, ledgerID, userID); err != nil {
		return nil, err
	}
	loan, err := s.loanRepo.FindLoanByID(ctx, ledgerID, loanID)
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// ListLoans returns the loans matching the query with totals per currency.
// The totals are also converted into the ledger's reference currency and
// query.Reference at the current rate; a reference that cannot be priced is
// left out and marks the listing partial.
func (s *loanService) ListLoans(ctx context.Context, ledgerID string, query dto.ListLoansQuery, userID string) (*domain.LoanListing, error) {
	ledger, err := authorizeLedger(ctx, s.ledgerRepo, ledgerID, userID)
	if err != nil {
		return nil, err
	}
	references, err := summaryReferences(ledger, "", query.Reference)
	if err != nil {
		return nil, err
	}
	filter := query.Filter
	if filter == "" {
		filter = domain.LoanFilterActive
	}
	loans, err := s.loanRepo.ListLoans(ctx, ledgerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}

	principal := map[string]decimal.Decimal{}
	net := map[string]decimal.Decimal{}
	totals := map[string]*domain.LoanTotals{}
	for _, loan := range loans {
		t, ok := totals[loan.CurrencyCode]
		if !ok {
			t = &domain.LoanTotals{CurrencyCode: loan.CurrencyCode, Principal: decimal.Zero, NetProceeds: decimal.Zero}
			totals[loan.CurrencyCode] = t
		}
		t.Count++
		t.Principal = t.Principal.Add(loan.Principal)
		t.NetProceeds = t.NetProceeds.Add(loan.NetProceeds())
		principal[loan.CurrencyCode] = t.Principal
		net[loan.CurrencyCode] = t.NetProceeds
	}

	now := s.Now()
	listing := &domain.LoanListing{Filter: filter, Loans: loans, Totals: make([]domain.LoanTotals, 0, len(totals)), PricedAt: now}
	for _, t := range totals {
		listing.Totals = append(listing.Totals, *t)
	}
	sort.Slice(listing.Totals, func(i, j int) bool {
		return listing.Totals[i].CurrencyCode < listing.Totals[j].CurrencyCode
	})

	for _, ref := range references {
		conv := newReferenceConverter(s.poster.rates, ref, now)
		p, err := conv.sum(ctx, principal)
		if err == nil {
			var n decimal.Decimal
			if n, err = conv.sum(ctx, net); err == nil {
				listing.Converted = append(listing.Converted, domain.LoanReferenceTotals{CurrencyCode: ref, Principal: p, NetProceeds: n})
				continue
			}
		}
		listing.Partial = true
		listing.Warnings = append(listing.Warnings, fmt.Sprintf("%s totals unavailable: %v", ref, err))
		s.LogWarn(ctx, "Loan totals could not be priced",
			slog.String("ledger_id", ledgerID),
			slog.String("reference", ref),
			slog.String("error", err.Error()))
	}
	return listing, nil
}
