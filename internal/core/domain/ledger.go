package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DateLayout is the YYYY-MM-DD layout of user supplied dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q must use YYYY-MM-DD", apperrors.ErrInvalidDate, s)
	}
	return t, nil
}

// EffectiveDate resolves the optional date of a movement. An empty value is
// the calendar day of now.
func EffectiveDate(raw string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return DayOf(now), nil
	}
	return ParseDate(raw)
}

// DayOf drops the clock part of t, keeping its calendar day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Ledger owns a set of movements, their audit history and the loans booked against it.
type Ledger struct {
	LedgerID          string `json:"ledgerID"`
	OwnerID           string `json:"ownerID"`
	Name              string `json:"name"`
	ReferenceCurrency string `json:"referenceCurrency"` // solvency is checked in this currency
	AuditFields
}

// MovementKind tags why a movement was posted.
type MovementKind string

const (
	MovementDeposit       MovementKind = "DEPOSIT"
	MovementMonthlyIncome MovementKind = "MONTHLY_INCOME"
	MovementWithdrawal    MovementKind = "WITHDRAWAL"
	MovementExpense       MovementKind = "EXPENSE"
	MovementLoanClosure   MovementKind = "LOAN_CLOSURE"
	MovementAdjustment    MovementKind = "ADJUSTMENT"
)

// IsCredit reports whether kind adds money to the ledger.
func (k MovementKind) IsCredit() bool {
	switch k {
	case MovementDeposit, MovementMonthlyIncome, MovementLoanClosure:
		return true
	}
	return false
}

// Valid reports whether kind is one of the known kinds.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementDeposit, MovementMonthlyIncome, MovementWithdrawal,
		MovementExpense, MovementLoanClosure, MovementAdjustment:
		return true
	}
	return false
}

// Movement is an append-only, signed change to one currency balance.
// Listings order movements by EffectiveDate, newest first, then by insertion.
type Movement struct {
	MovementID    string          `json:"movementID"`
	LedgerID      string          `json:"ledgerID"`
	CurrencyCode  string          `json:"currencyCode"`
	Amount        decimal.Decimal `json:"amount"` // signed
	Description   string          `json:"description"`
	Kind          MovementKind    `json:"kind"`
	EffectiveDate time.Time       `json:"effectiveDate"` // day the money moved
	Counterparty  string          `json:"counterparty,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}

// BalanceHistoryEntry is the reference-currency audit trail written with every posting.
type BalanceHistoryEntry struct {
	HistoryID                string          `json:"historyID"`
	LedgerID                 string          `json:"ledgerID"`
	MovementID               string          `json:"movementID"`
	OperationKind            MovementKind    `json:"operationKind"`
	ReferenceCurrency        string          `json:"referenceCurrency"`
	AmountInReference        decimal.Decimal `json:"amountInReference"`
	BalanceBeforeInReference decimal.Decimal `json:"balanceBeforeInReference"`
	BalanceAfterInReference  decimal.Decimal `json:"balanceAfterInReference"`
	Description              string          `json:"description"`
	CreatedAt                time.Time       `json:"createdAt"`
}

// Posting is the result of a successful ledger post.
type Posting struct {
	Movement Movement            `json:"movement"`
	History  BalanceHistoryEntry `json:"history"`
	Quote    RateQuote           `json:"quote"`
}

// CurrencyBalance is the sum of movements in a single currency.
type CurrencyBalance struct {
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
}

// ReferenceBalance is a ledger balance expressed in one reference currency.
type ReferenceBalance struct {
	ReferenceCurrency string            `json:"referenceCurrency"`
	Total             decimal.Decimal   `json:"total"`
	Components        []CurrencyBalance `json:"components"` // per-currency converted amounts
}
