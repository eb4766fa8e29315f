package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	rates        portssvc.RateProvider
	ledgerRepo   portsrepo.LedgerReader
	movementRepo portsrepo.MovementReader
	loanRepo     portsrepo.LoanReader
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingClock overrides the clock used to stamp summaries.
func WithReportingClock(now func() time.Time) ReportingServiceOption {
	return func(s *reportingService) {
		s.Clock = now
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repos portsrepo.RepositoryProvider, rates portssvc.RateProvider, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		rates:        rates,
		ledgerRepo:   repos.LedgerRepo,
		movementRepo: repos.MovementRepo,
		loanRepo:     repos.LoanRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// Summarize converts the ledger balance and the outstanding principal of
// active loans into each reference currency. A reference counts only when
// every conversion into it succeeds; if just one resolves the summary is
// marked partial, and if none does the call fails with ErrRateUnavailable.
func (s *reportingService) Summarize(ctx context.Context, ledgerID, referenceA, referenceB, userID string) (*domain.Summary, error) {
	ledger, err := authorizeLedger(ctx, s.ledgerRepo, ledgerID, userID)
	if err != nil {
		return nil, err
	}
	references, err := summaryReferences(ledger, referenceA, referenceB)
	if err != nil {
		return nil, err
	}

	balances, err := s.movementRepo.SumByCurrency(ctx, ledgerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum ledger balances", slog.String("ledger_id", ledgerID))
		return nil, fmt.Errorf("failed to sum ledger balances: %w", err)
	}
	principal, err := s.loanRepo.SumActivePrincipalByCurrency(ctx, ledgerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum active loans", slog.String("ledger_id", ledgerID))
		return nil, fmt.Errorf("failed to sum active loans: %w", err)
	}

	now := s.Now()
	summary := &domain.Summary{
		LedgerID:    ledgerID,
		GeneratedAt: now,
		Breakdown:   breakdown(balances, principal),
	}

	var lastErr error
	for _, ref := range references {
		total, err := s.referenceTotal(ctx, ref, balances, principal, now)
		if err != nil {
			lastErr = err
			summary.Partial = true
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s totals unavailable: %v", ref, err))
			s.LogWarn(ctx, "Reference currency could not be priced",
				slog.String("ledger_id", ledgerID),
				slog.String("reference", ref),
				slog.String("error", err.Error()))
			continue
		}
		summary.References = append(summary.References, *total)
	}

	if len(summary.References) == 0 {
		return nil, fmt.Errorf("%w: no reference currency could be priced: %v", apperrors.ErrRateUnavailable, lastErr)
	}

	s.LogInfo(ctx, "Summary generated",
		slog.String("ledger_id", ledgerID),
		slog.Int("references", len(summary.References)),
		slog.Bool("partial", summary.Partial))
	return summary, nil
}

func (s *reportingService) referenceTotal(ctx context.Context, reference string, balances, principal map[string]decimal.Decimal, at time.Time) (*domain.ReferenceTotal, error) {
	conv := newReferenceConverter(s.rates, reference, at)
	ledgerBalance, err := conv.sum(ctx, balances)
	if err != nil {
		return nil, err
	}
	loanPrincipal, err := conv.sum(ctx, principal)
	if err != nil {
		return nil, err
	}
	return &domain.ReferenceTotal{
		CurrencyCode:  reference,
		LedgerBalance: ledgerBalance,
		LoanPrincipal: loanPrincipal,
		Total:         ledgerBalance.Add(loanPrincipal),
	}, nil
}

// summaryReferences validates the requested references, defaulting the first
// to the ledger's reference currency and dropping a duplicate second.
func summaryReferences(ledger *domain.Ledger, referenceA, referenceB string) ([]string, error) {
	if referenceA == "" {
		referenceA = ledger.ReferenceCurrency
	}
	a, err := domain.ValidateCurrencyCode(referenceA)
	if err != nil {
		return nil, err
	}
	if referenceB == "" {
		return []string{a}, nil
	}
	b, err := domain.ValidateCurrencyCode(referenceB)
	if err != nil {
		return nil, err
	}
	if a == b {
		return []string{a}, nil
	}
	return []string{a, b}, nil
}

func breakdown(balances, principal map[string]decimal.Decimal) []domain.CurrencyPosition {
	positions := map[string]*domain.CurrencyPosition{}
	get := func(code string) *domain.CurrencyPosition {
		p, ok := positions[code]
		if !ok {
			p = &domain.CurrencyPosition{CurrencyCode: code, Balance: decimal.Zero, LoanPrincipal: decimal.Zero}
			positions[code] = p
		}
		return p
	}
	for code, amount := range balances {
		if !amount.IsZero() {
			get(code).Balance = amount
		}
	}
	for code, amount := range principal {
		if !amount.IsZero() {
			get(code).LoanPrincipal = amount
		}
	}

	out := make([]domain.CurrencyPosition, 0, len(positions))
	for _, p := range positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrencyCode < out[j].CurrencyCode })
	return out
}
