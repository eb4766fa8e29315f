package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceTotal is the ledger position expressed in one reference currency.
type ReferenceTotal struct {
	CurrencyCode  string          `json:"currencyCode"`
	LedgerBalance decimal.Decimal `json:"ledgerBalance"`
	LoanPrincipal decimal.Decimal `json:"loanPrincipal"` // outstanding principal of active loans
	Total         decimal.Decimal `json:"total"`
}

// CurrencyPosition is the unconverted position held in one currency.
type CurrencyPosition struct {
	CurrencyCode  string          `json:"currencyCode"`
	Balance       decimal.Decimal `json:"balance"`
	LoanPrincipal decimal.Decimal `json:"loanPrincipal"`
}

// Summary aggregates balance and active loans in up to two reference currencies.
// Partial is set when one reference could not be priced.
type Summary struct {
	LedgerID    string             `json:"ledgerID"`
	GeneratedAt time.Time          `json:"generatedAt"`
	References  []ReferenceTotal   `json:"references"`
	Breakdown   []CurrencyPosition `json:"breakdown"`
	Partial     bool               `json:"partial"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// MonthlyTopUpDay is the day of month on which the recurring top-up is due.
const MonthlyTopUpDay = 10

// IsMonthlyTopUpDue reports whether t falls on the top-up day.
func IsMonthlyTopUpDue(t time.Time) bool {
	return t.Day() == MonthlyTopUpDay
}
