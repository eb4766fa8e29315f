package dto

import (
	"time"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MovementRequest defines the structure for posting money into or out of a ledger.
// Date is the optional YYYY-MM-DD day the money moved; it defaults to today.
type MovementRequest struct {
	CurrencyCode string              `json:"currencyCode" binding:"required" validate:"required"`
	Amount       decimal.Decimal     `json:"amount"`
	Description  string              `json:"description"`
	Kind         domain.MovementKind `json:"kind,omitempty"`
	Date         string              `json:"date,omitempty"`
	Counterparty string              `json:"counterparty,omitempty"`
}

// ExpenseRequest is a withdrawal tagged with a spending category.
type ExpenseRequest struct {
	CurrencyCode string          `json:"currencyCode" binding:"required" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category" binding:"required" validate:"required"`
	Description  string          `json:"description"`
	Date         string          `json:"date,omitempty"`
	Counterparty string          `json:"counterparty,omitempty"`
}

// ListParams carries the optional limit for listing endpoints.
type ListParams struct {
	Limit int `form:"limit"`
}

// MovementResponse defines the structure for API responses containing a movement.
type MovementResponse struct {
	MovementID    string          `json:"movementID"`
	CurrencyCode  string          `json:"currencyCode"`
	Amount        decimal.Decimal `json:"amount"`
	Formatted     string          `json:"formatted"`
	Description   string          `json:"description"`
	Kind          string          `json:"kind"`
	EffectiveDate string          `json:"effectiveDate"`
	Counterparty  string          `json:"counterparty,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToMovementResponse converts a domain.Movement.
func ToMovementResponse(m domain.Movement) MovementResponse {
	return MovementResponse{
		MovementID:    m.MovementID,
		CurrencyCode:  m.CurrencyCode,
		Amount:        m.Amount,
		Formatted:     domain.FormatAmount(m.Amount, m.CurrencyCode),
		Description:   m.Description,
		Kind:          string(m.Kind),
		EffectiveDate: m.EffectiveDate.Format(domain.DateLayout),
		Counterparty:  m.Counterparty,
		CreatedAt:     m.CreatedAt,
	}
}

// ToListMovementResponse converts a slice of movements.
func ToListMovementResponse(movements []domain.Movement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i, m := range movements {
		out[i] = ToMovementResponse(m)
	}
	return out
}

// HistoryEntryResponse is one row of the reference-currency audit trail.
type HistoryEntryResponse struct {
	HistoryID         string          `json:"historyID"`
	MovementID        string          `json:"movementID"`
	OperationKind     string          `json:"operationKind"`
	ReferenceCurrency string          `json:"referenceCurrency"`
	Amount            decimal.Decimal `json:"amount"`
	BalanceBefore     decimal.Decimal `json:"balanceBefore"`
	BalanceAfter      decimal.Decimal `json:"balanceAfter"`
	Description       string          `json:"description"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ToHistoryEntryResponse converts a domain.BalanceHistoryEntry.
func ToHistoryEntryResponse(h domain.BalanceHistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		HistoryID:         h.HistoryID,
		MovementID:        h.MovementID,
		OperationKind:     string(h.OperationKind),
		ReferenceCurrency: h.ReferenceCurrency,
		Amount:            h.AmountInReference,
		BalanceBefore:     h.BalanceBeforeInReference,
		BalanceAfter:      h.BalanceAfterInReference,
		Description:       h.Description,
		CreatedAt:         h.CreatedAt,
	}
}

// ToListHistoryResponse converts a slice of history entries.
func ToListHistoryResponse(entries []domain.BalanceHistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, len(entries))
	for i, h := range entries {
		out[i] = ToHistoryEntryResponse(h)
	}
	return out
}

// PostingResponse is returned after money is posted to a ledger.
type PostingResponse struct {
	Movement MovementResponse     `json:"movement"`
	History  HistoryEntryResponse `json:"history"`
	Quote    RateQuoteResponse    `json:"quote"`
}

// ToPostingResponse converts a domain.Posting.
func ToPostingResponse(p *domain.Posting) PostingResponse {
	return PostingResponse{
		Movement: ToMovementResponse(p.Movement),
		History:  ToHistoryEntryResponse(p.History),
		Quote:    ToRateQuoteResponse(p.Quote),
	}
}
