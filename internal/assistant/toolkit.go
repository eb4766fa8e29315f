// Package assistant exposes the ledger, loan, rate and reporting services as
// tools for a conversational front end. Every tool returns a dto.Result
// envelope and never panics across the boundary.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portssvc "github.com/SscSPs/finance_assistant/internal/core/ports/services"
	"github.com/SscSPs/finance_assistant/internal/dto"
	"github.com/SscSPs/finance_assistant/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Toolkit runs tools on behalf of a single ledger owner.
type Toolkit struct {
	services *portssvc.ServiceContainer
	userID   string
	validate *validator.Validate
	clock    func() time.Time

	secondaryReference string
}

// Option configures a Toolkit.
type Option func(*Toolkit)

// WithClock overrides the clock used by time-dependent tools.
func WithClock(now func() time.Time) Option {
	return func(t *Toolkit) {
		t.clock = now
	}
}

// WithSecondaryReference sets the second summary currency used when a caller names none.
func WithSecondaryReference(code string) Option {
	return func(t *Toolkit) {
		t.secondaryReference = code
	}
}

// NewToolkit creates a toolkit acting as userID.
func NewToolkit(services *portssvc.ServiceContainer, userID string, options ...Option) *Toolkit {
	t := &Toolkit{
		services: services,
		userID:   userID,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		clock:    time.Now,
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// run executes fn and wraps its outcome. A panic inside fn becomes an internal
// failure result.
func run[T any](ctx context.Context, tool string, fn func(ctx context.Context) (T, string, error)) (result dto.Result[T]) {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("tool", tool))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Tool panicked", slog.Any("panic", r))
			result = dto.ErrorResult[T](fmt.Errorf("%s failed unexpectedly: %v", tool, r))
		}
	}()

	data, message, err := fn(middleware.WithLogger(ctx, logger))
	if err != nil {
		logger.Warn("Tool failed", slog.String("error", err.Error()), slog.String("kind", string(apperrors.KindOf(err))))
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			details := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				details[i] = fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
			}
			return dto.ErrorResult[T](fmt.Errorf("%w: invalid %s input", apperrors.ErrValidation, tool), details...)
		}
		return dto.ErrorResult[T](err)
	}
	return dto.SuccessResult(message, data)
}

func (t *Toolkit) check(input any) error {
	return t.validate.Struct(input)
}

// parseAmount reads a decimal amount typed by the user.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", apperrors.ErrInvalidAmount, raw)
	}
	return amount, nil
}

// MoneyInput names an amount of a currency in a ledger. Currency accepts
// informal names such as "pesos".
type MoneyInput struct {
	LedgerID    string `json:"ledgerID" validate:"required"`
	Currency    string `json:"currency" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description"`
	// Date is the YYYY-MM-DD day the money moved; empty means today.
	Date         string `json:"date"`
	Counterparty string `json:"counterparty"`
}

func (in MoneyInput) request(kind domain.MovementKind) (dto.MovementRequest, error) {
	currency, err := domain.NormalizeCurrencyCode(in.Currency)
	if err != nil {
		return dto.MovementRequest{}, err
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return dto.MovementRequest{}, err
	}
	return dto.MovementRequest{
		CurrencyCode: currency,
		Amount:       amount,
		Description:  in.Description,
		Kind:         kind,
		Date:         in.Date,
		Counterparty: in.Counterparty,
	}, nil
}

// CreateLedger opens a new ledger.
func (t *Toolkit) CreateLedger(ctx context.Context, name, referenceCurrency string) dto.Result[dto.LedgerResponse] {
	return run(ctx, "create_ledger", func(ctx context.Context) (dto.LedgerResponse, string, error) {
		reference, err := domain.NormalizeCurrencyCode(referenceCurrency)
		if err != nil {
			return dto.LedgerResponse{}, "", err
		}
		req := dto.CreateLedgerRequest{Name: name, ReferenceCurrency: reference}
		if err := t.check(req); err != nil {
			return dto.LedgerResponse{}, "", err
		}
		ledger, err := t.services.Ledger.CreateLedger(ctx, req, t.userID)
		if err != nil {
			return dto.LedgerResponse{}, "", err
		}
		return dto.ToLedgerResponse(ledger), fmt.Sprintf("Ledger %q created in %s", ledger.Name, ledger.ReferenceCurrency), nil
	})
}

// GetBalances lists every non-zero per-currency balance.
func (t *Toolkit) GetBalances(ctx context.Context, ledgerID string) dto.Result[dto.BalancesResponse] {
	return run(ctx, "get_balances", func(ctx context.Context) (dto.BalancesResponse, string, error) {
		balances, err := t.services.Ledger.Balances(ctx, ledgerID, t.userID)
		if err != nil {
			return dto.BalancesResponse{}, "", err
		}
		return dto.ToBalancesResponse(ledgerID, balances), fmt.Sprintf("%d currencies held", len(balances)), nil
	})
}

// GetBalanceIn prices the whole ledger in one currency.
func (t *Toolkit) GetBalanceIn(ctx context.Context, ledgerID, reference string) dto.Result[dto.ReferenceBalanceResponse] {
	return run(ctx, "get_balance_in", func(ctx context.Context) (dto.ReferenceBalanceResponse, string, error) {
		code, err := domain.NormalizeCurrencyCode(reference)
		if err != nil {
			return dto.ReferenceBalanceResponse{}, "", err
		}
		balance, err := t.services.Ledger.BalanceIn(ctx, ledgerID, code, t.userID)
		if err != nil {
			return dto.ReferenceBalanceResponse{}, "", err
		}
		out := dto.ToReferenceBalanceResponse(balance)
		return out, "Total balance: " + out.Formatted, nil
	})
}

// AddMoney deposits money.
func (t *Toolkit) AddMoney(ctx context.Context, in MoneyInput) dto.Result[dto.PostingResponse] {
	return t.deposit(ctx, "add_money", in, domain.MovementDeposit)
}

// AddMonthlyMoney deposits the recurring monthly income.
func (t *Toolkit) AddMonthlyMoney(ctx context.Context, in MoneyInput) dto.Result[dto.PostingResponse] {
	if in.Description == "" {
		in.Description = "monthly income " + t.clock().Format("2006-01")
	}
	return t.deposit(ctx, "add_monthly_money", in, domain.MovementMonthlyIncome)
}

func (t *Toolkit) deposit(ctx context.Context, tool string, in MoneyInput, kind domain.MovementKind) dto.Result[dto.PostingResponse] {
	return run(ctx, tool, func(ctx context.Context) (dto.PostingResponse, string, error) {
		if err := t.check(in); err != nil {
			return dto.PostingResponse{}, "", err
		}
		req, err := in.request(kind)
		if err != nil {
			return dto.PostingResponse{}, "", err
		}
		posting, err := t.services.Ledger.Deposit(ctx, in.LedgerID, req, t.userID)
		if err != nil {
			return dto.PostingResponse{}, "", err
		}
		out := dto.ToPostingResponse(posting)
		return out, "Added " + out.Movement.Formatted, nil
	})
}

// Withdraw takes money out, refusing when the ledger cannot cover it.
func (t *Toolkit) Withdraw(ctx context.Context, in MoneyInput) dto.Result[dto.PostingResponse] {
	return run(ctx, "withdraw", func(ctx context.Context) (dto.PostingResponse, string, error) {
		if err := t.check(in); err != nil {
			return dto.PostingResponse{}, "", err
		}
		req, err := in.request(domain.MovementWithdrawal)
		if err != nil {
			return dto.PostingResponse{}, "", err
		}
		posting, err := t.services.Ledger.Withdraw(ctx, in.LedgerID, req, t.userID)
		if err != nil {
			return dto.PostingResponse{}, "", err
		}
		out := dto.ToPostingResponse(posting)
		return out, "Withdrew " + domain.FormatAmount(req.Amount, req.CurrencyCode), nil
	})
}

// ExpenseInput is a withdrawal tagged with a spending category.
type ExpenseInput struct {
	MoneyInput
	Category string `json:"category" validate:"required"`
}

// AddExpense records spending.
func (t *Toolkit) AddExpense(ctx context.Context, in ExpenseInput) dto.Result[dto.PostingResponse] {
	return run(ctx, "add_expense", func(ctx context.Context) (dto.PostingResponse, string, error) {
		if err := t.check(in); err != nil {
			return dto.PostingResponse{}, "", err
		}
		req, err := in.request(domain.MovementExpense)
		if err != nil {
			return dto.PostingResponse{}, "", err
		}
		posting, err := t.services.Ledger.Expense(ctx, in.LedgerID, dto.ExpenseRequest{
			CurrencyCode: req.CurrencyCode,
			Amount:       req.Amount,
			Category:     in.Category,
			Description:  in.Description,
			Date:         req.Date,
			Counterparty: req.Counterparty,
		}, t.userID)
		if err != nil {
			return dto.PostingResponse{}, "", err
		}
		return dto.ToPostingResponse(posting), fmt.Sprintf("Expense of %s recorded under %s", domain.FormatAmount(req.Amount, req.CurrencyCode), in.Category), nil
	})
}

// ListMovements returns the latest movements, newest first.
func (t *Toolkit) ListMovements(ctx context.Context, ledgerID string, limit int) dto.Result[[]dto.MovementResponse] {
	return run(ctx, "list_movements", func(ctx context.Context) ([]dto.MovementResponse, string, error) {
		movements, err := t.services.Ledger.ListMovements(ctx, ledgerID, limit, t.userID)
		if err != nil {
			return nil, "", err
		}
		return dto.ToListMovementResponse(movements), fmt.Sprintf("%d movements", len(movements)), nil
	})
}

// History returns the reference-currency audit trail, newest first.
func (t *Toolkit) History(ctx context.Context, ledgerID string, limit int) dto.Result[[]dto.HistoryEntryResponse] {
	return run(ctx, "balance_history", func(ctx context.Context) ([]dto.HistoryEntryResponse, string, error) {
		entries, err := t.services.Ledger.History(ctx, ledgerID, limit, t.userID)
		if err != nil {
			return nil, "", err
		}
		return dto.ToListHistoryResponse(entries), fmt.Sprintf("%d history entries", len(entries)), nil
	})
}

// Today returns the current date, the day the assistant records movements on
// when a caller gives none.
func (t *Toolkit) Today(ctx context.Context) dto.Result[dto.TodayResponse] {
	return run(ctx, "get_today_date", func(ctx context.Context) (dto.TodayResponse, string, error) {
		now := t.clock()
		out := dto.TodayResponse{
			Date:    now.Format(domain.DateLayout),
			Weekday: now.Weekday().String(),
			Now:     now,
		}
		return out, "Today is " + out.Date, nil
	})
}

// CheckMonthlyTopUp reports whether today is the monthly top-up day.
func (t *Toolkit) CheckMonthlyTopUp(ctx context.Context) dto.Result[dto.MonthlyTopUpResponse] {
	return run(ctx, "check_monthly_top_up", func(ctx context.Context) (dto.MonthlyTopUpResponse, string, error) {
		now := t.clock()
		next := time.Date(now.Year(), now.Month(), domain.MonthlyTopUpDay, 0, 0, 0, 0, now.Location())
		if now.Day() > domain.MonthlyTopUpDay {
			next = next.AddDate(0, 1, 0)
		}
		out := dto.MonthlyTopUpResponse{
			Due:        domain.IsMonthlyTopUpDue(now),
			Day:        domain.MonthlyTopUpDay,
			CheckedAt:  now,
			NextDueDay: next,
		}
		if out.Due {
			return out, "Today is the monthly top-up day", nil
		}
		return out, "Next monthly top-up is on " + next.Format(domain.LoanDateLayout), nil
	})
}
