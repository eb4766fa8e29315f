package dto

import (
	"time"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SummaryParams selects the two reference currencies of a summary.
type SummaryParams struct {
	ReferenceA string `form:"referenceA"`
	ReferenceB string `form:"referenceB"`
}

// ReferenceTotalResponse is the ledger position in one reference currency.
type ReferenceTotalResponse struct {
	CurrencyCode  string          `json:"currencyCode"`
	LedgerBalance decimal.Decimal `json:"ledgerBalance"`
	LoanPrincipal decimal.Decimal `json:"loanPrincipal"`
	Total         decimal.Decimal `json:"total"`
	Formatted     string          `json:"formatted"`
}

// CurrencyPositionResponse is the unconverted position in one currency.
type CurrencyPositionResponse struct {
	CurrencyCode  string          `json:"currencyCode"`
	Balance       decimal.Decimal `json:"balance"`
	LoanPrincipal decimal.Decimal `json:"loanPrincipal"`
}

// SummaryResponse represents the ledger summary report response
type SummaryResponse struct {
	LedgerID    string                     `json:"ledgerID"`
	GeneratedAt time.Time                  `json:"generatedAt"`
	Status      string                     `json:"status"` // "ok" or "warning"
	References  []ReferenceTotalResponse   `json:"references"`
	Breakdown   []CurrencyPositionResponse `json:"breakdown"`
	Warnings    []string                   `json:"warnings,omitempty"`
}

// ToSummaryResponse converts a domain.Summary.
func ToSummaryResponse(s *domain.Summary) SummaryResponse {
	out := SummaryResponse{
		LedgerID:    s.LedgerID,
		GeneratedAt: s.GeneratedAt,
		Status:      "ok",
		References:  make([]ReferenceTotalResponse, len(s.References)),
		Breakdown:   make([]CurrencyPositionResponse, len(s.Breakdown)),
		Warnings:    s.Warnings,
	}
	if s.Partial {
		out.Status = "warning"
	}
	for i, r := range s.References {
		out.References[i] = ReferenceTotalResponse{
			CurrencyCode:  r.CurrencyCode,
			LedgerBalance: r.LedgerBalance,
			LoanPrincipal: r.LoanPrincipal,
			Total:         r.Total,
			Formatted:     domain.FormatAmount(r.Total, r.CurrencyCode),
		}
	}
	for i, p := range s.Breakdown {
		out.Breakdown[i] = CurrencyPositionResponse(p)
	}
	return out
}

// MonthlyTopUpResponse tells whether the recurring monthly top-up is due.
type MonthlyTopUpResponse struct {
	Due        bool      `json:"due"`
	Day        int       `json:"day"`
	CheckedAt  time.Time `json:"checkedAt"`
	NextDueDay time.Time `json:"nextDueDay"`
}

// TodayResponse is the assistant's current date.
type TodayResponse struct {
	Date    string    `json:"date"`
	Weekday string    `json:"weekday"`
	Now     time.Time `json:"now"`
}
