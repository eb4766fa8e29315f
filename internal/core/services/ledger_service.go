package services

import (
	"context"
	"fmt"
	"log/slog"
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

const (
	// MaxListLimit caps movement and history listings.
	MaxListLimit = 100
	// DefaultHistoryLimit is used when a history listing has no limit.
	DefaultHistoryLimit = 20
)

// ledgerService implements ledger posting with a non-negative reference balance on withdrawals.
type ledgerService struct {
	BaseService
	poster       ledgerPoster
	ledgerRepo   portsrepo.LedgerRepositoryFacade
	movementRepo portsrepo.MovementRepositoryFacade
	historyRepo  portsrepo.HistoryRepositoryFacade
	txManager    portsrepo.TransactionManager
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithLedgerClock overrides the clock used to stamp movements.
func WithLedgerClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.Clock = now
	}
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(repos portsrepo.RepositoryProvider, rates portssvc.RateProvider, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		poster:       ledgerPoster{rates: rates},
		ledgerRepo:   repos.LedgerRepo,
		movementRepo: repos.MovementRepo,
		historyRepo:  repos.HistoryRepo,
		txManager:    repos.TxManager,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreateLedger opens a new ledger for ownerID.
func (s *ledgerService) CreateLedger(ctx context.Context, req dto.CreateLedgerRequest, ownerID string) (*domain.Ledger, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("ledger name is required")
	}
	reference, err := domain.ValidateCurrencyCode(req.ReferenceCurrency)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	ledger := domain.Ledger{
		LedgerID:          uuid.NewString(),
		OwnerID:           ownerID,
		Name:              name,
		ReferenceCurrency: reference,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}
	if err := s.ledgerRepo.SaveLedger(ctx, ledger); err != nil {
		s.LogError(ctx, err, "Failed to save ledger", slog.String("owner_id", ownerID))
		return nil, fmt.Errorf("failed to create ledger: %w", err)
	}

	s.LogInfo(ctx, "Ledger created",
		slog.String("ledger_id", ledger.LedgerID),
		slog.String("reference_currency", reference))
	return &ledger, nil
}

// GetLedger returns a ledger owned by userID.
func (s *ledgerService) GetLedger(ctx context.Context, ledgerID, userID string) (*domain.Ledger, error) {
	return authorizeLedger(ctx, s.ledgerRepo, ledgerID, userID)
}

// ListLedgers returns the ledgers owned by ownerID.
func (s *ledgerService) ListLedgers(ctx context.Context, ownerID string) ([]domain.Ledger, error) {
	ledgers, err := s.ledgerRepo.ListLedgersByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	return ledgers, nil
}

// Post appends a signed movement. It checks nothing beyond a non-zero amount.
func (s *ledgerService) Post(ctx context.Context, ledgerID string, req dto.MovementRequest, userID string) (*domain.Posting, error) {
	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must not be zero", apperrors.ErrInvalidAmount)
	}
	kind := req.Kind
	if kind == "" {
		kind = domain.MovementAdjustment
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown movement kind %q", apperrors.ErrValidation, kind)
	}
	return s.postUnchecked(ctx, ledgerID, req, kind, userID)
}

// Deposit posts a positive amount.
func (s *ledgerService) Deposit(ctx context.Context, ledgerID string, req dto.MovementRequest, userID string) (*domain.Posting, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: deposit amount must be positive", apperrors.ErrInvalidAmount)
	}
	kind := req.Kind
	if kind == "" {
		kind = domain.MovementDeposit
	}
	if !kind.IsCredit() {
		return nil, fmt.Errorf("%w: %s is not a deposit kind", apperrors.ErrValidation, kind)
	}
	return s.postUnchecked(ctx, ledgerID, req, kind, userID)
}

// postUnchecked posts req.Amount with its sign as given and no solvency check.
func (s *ledgerService) postUnchecked(ctx context.Context, ledgerID string, req dto.MovementRequest, kind domain.MovementKind, userID string) (*domain.Posting, error) {
	ledger, err := authorizeLedger(ctx, s.ledgerRepo, ledgerID, userID)
	if err != nil {
		return nil, err
	}
	currency, err := domain.ValidateCurrencyCode(req.CurrencyCode)
	if err != nil {
		return nil, err
	}
	effective, err := domain.EffectiveDate(req.Date, s.Now())
	if err != nil {
		return nil, err
	}
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("%s %s %s", strings.ToLower(string(kind)), req.Amount.String(), currency)
	}

	var posting *domain.Posting
	err = s.txManager.WithinTx(ctx, ledger.LedgerID, func(ctx context.Context, store portsrepo.LedgerStore) error {
		now := s.Now()
		quote, err := s.poster.rates.Rate(ctx, currency, ledger.ReferenceCurrency, now)
		if err != nil {
			return err
		}
		before, after, err := s.poster.rebalance(ctx, store, ledger.LedgerID, ledger.ReferenceCurrency, *quote, req.Amount, now)
		if err != nil {
			return err
		}
		posting, err = s.poster.post(ctx, store, postingInput{
			ledger:            ledger,
			currencyCode:      currency,
			amount:            req.Amount,
			amountInReference: quote.Convert(req.Amount),
			balanceBefore:     before.Total,
			balanceAfter:      after.Total,
			quote:             *quote,
			description:       description,
			effectiveDate:     effective,
			counterparty:      strings.TrimSpace(req.Counterparty),
			kind:              kind,
			userID:            userID,
			at:                now,
		})
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to post movement",
			slog.String("ledger_id", ledgerID),
			slog.String("currency", currency),
			slog.String("kind", string(kind)))
		return nil, err
	}

	s.LogInfo(ctx, "Movement posted",
		slog.String("ledger_id", ledgerID),
		slog.String("movement_id", posting.Movement.MovementID),
		slog.String("amount", req.Amount.String()),
		slog.String("currency", currency))
	return posting, nil
}

// Withdraw debits amount after checking that the ledger's total, converted
// into its reference currency, stays non-negative once the debit is applied.
// Balances in other currencies count towards the check.
func (s *ledgerService) Withdraw(ctx context.Context, ledgerID string, req dto.MovementRequest, userID string) (*domain.Posting, error) {
	kind := req.Kind
	if kind == "" {
		kind = domain.MovementWithdrawal
	}
	if kind != domain.MovementWithdrawal && kind != domain.MovementExpense {
		return nil, fmt.Errorf("%w: %s is not a withdrawal kind", apperrors.ErrValidation, kind)
	}
	req.Kind = kind
	return s.debit(ctx, ledgerID, req, userID)
}

// Expense withdraws amount tagged with its spending category.
func (s *ledgerService) Expense(ctx context.Context, ledgerID string, req dto.ExpenseRequest, userID string) (*domain.Posting, error) {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, apperrors.NewValidationError("expense category is required")
	}
	description := "expense: " + category
	if d := strings.TrimSpace(req.Description); d != "" {
		description += " - " + d
	}
	return s.debit(ctx, ledgerID, dto.MovementRequest{
		CurrencyCode: req.CurrencyCode,
		Amount:       req.Amount,
		Description:  description,
		Kind:         domain.MovementExpense,
		Date:         req.Date,
		Counterparty: req.Counterparty,
	}, userID)
}

func (s *ledgerService) debit(ctx context.Context, ledgerID string, req dto.MovementRequest, userID string) (*domain.Posting, error) {
	amount, kind, description := req.Amount, req.Kind, req.Description
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", apperrors.ErrInvalidAmount)
	}
	ledger, err := authorizeLedger(ctx, s.ledgerRepo, ledgerID, userID)
	if err != nil {
		return nil, err
	}
	currency, err := domain.ValidateCurrencyCode(req.CurrencyCode)
	if err != nil {
		return nil, err
	}
	effective, err := domain.EffectiveDate(req.Date, s.Now())
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = fmt.Sprintf("%s %s %s", strings.ToLower(string(kind)), amount.String(), currency)
	}

	var posting *domain.Posting
	err = s.txManager.WithinTx(ctx, ledger.LedgerID, func(ctx context.Context, store portsrepo.LedgerStore) error {
		now := s.Now()
		quote, err := s.poster.rates.Rate(ctx, currency, ledger.ReferenceCurrency, now)
		if err != nil {
			return err
		}
		amountInReference := quote.Convert(amount)

		before, after, err := s.poster.rebalance(ctx, store, ledger.LedgerID, ledger.ReferenceCurrency, *quote, amount.Neg(), now)
		if err != nil {
			return err
		}
		if after.Total.IsNegative() {
			return fmt.Errorf("%w: balance %s, requested %s %s (%s)",
				apperrors.ErrInsufficientFunds,
				domain.FormatAmount(before.Total, ledger.ReferenceCurrency),
				amount.String(), currency,
				domain.FormatAmount(amountInReference, ledger.ReferenceCurrency))
		}

		posting, err = s.poster.post(ctx, store, postingInput{
			ledger:            ledger,
			currencyCode:      currency,
			amount:            amount.Neg(),
			amountInReference: amountInReference.Neg(),
			balanceBefore:     before.Total,
			balanceAfter:      after.Total,
			quote:             *quote,
			description:       description,
			effectiveDate:     effective,
			counterparty:      strings.TrimSpace(req.Counterparty),
			kind:              kind,
			userID:            userID,
			at:                now,
		})
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to withdraw",
			slog.String("ledger_id", ledgerID),
			slog.String("currency", currency),
			slog.String("amount", amount.String()))
		return nil, err
	}

	s.LogInfo(ctx, "Withdrawal posted",
		slog.String("ledger_id", ledgerID),
		slog.String("movement_id", posting.Movement.MovementID),
		slog.String("kind", string(kind)))
	return posting, nil
}

// Balance is the sum of movements in one currency.
func (s *ledgerService) Balance(ctx context.Context, ledgerID, currencyCode, userID string) (decimal.Decimal, error) {
	if _, err := authorizeLedger(ctx, s.ledgerRepo, ledgerID, userID); err != nil {
		return decimal.Zero, err
	}
	currency, err := domain.ValidateCurrencyCode(currencyCode)
	if err != nil {
		return decimal.Zero, err
	}
	sum, err := s.movementRepo.SumForCurrency(ctx, ledgerID, currency)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s movements: %w", currency, err)
	}
	return sum, nil
}

// Balances lists every non-zero per-currency balance, ordered by currency code.
func (s *ledgerService) Balances(ctx context.Context, ledgerID, userID string) ([]domain.CurrencyBalance, error) {
	if _, err := authorizeLedger(ctx, s.ledgerRepo, ledgerID, userID); err != nil {
		return nil, err
	}
	sums, err := s.movementRepo.SumByCurrency(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum movements: %w", err)
	}
	balances := make([]domain.CurrencyBalance, 0, len(sums))
	for _, code := range sortedCodes(sums) {
		if sums[code].IsZero() {
			continue
		}
		balances = append(balances, domain.CurrencyBalance{CurrencyCode: code, Amount: sums[code]})
	}
	return balances, nil
}

// BalanceIn converts every balance into reference at today's rate.
func (s *ledgerService) BalanceIn(ctx context.Context, ledgerID, reference, userID string) (*domain.ReferenceBalance, error) {
	if _, err := authorizeLedger(ctx, s.ledgerRepo, ledgerID, userID); err != nil {
		return nil, err
	}
	ref, err := domain.ValidateCurrencyCode(reference)
	if err != nil {
		return nil, err
	}
	return s.poster.referenceBalance(ctx, s.movementRepo, ledgerID, ref, s.Now())
}

// ListMovements returns the newest movements first. limit is clamped to (0, MaxListLimit].
func (s *ledgerService) ListMovements(ctx context.Context, ledgerID string, limit int, userID string) ([]domain.Movement, error) {
	if _, err := authorizeLedger(ctx, s.ledgerRepo, ledgerID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	movements, err := s.movementRepo.ListMovements(ctx, ledgerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, nil
}

// History returns the newest audit entries first.
func (s *ledgerService) History(ctx context.Context, ledgerID string, limit int, userID string) ([]domain.BalanceHistoryEntry, error) {
	if _, err := authorizeLedger(ctx, s.ledgerRepo, ledgerID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	entries, err := s.historyRepo.ListHistory(ctx, ledgerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list balance history: %w", err)
	}
	return entries, nil
}
