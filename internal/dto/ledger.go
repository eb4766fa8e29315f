package dto

import (
	"time"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLedgerRequest defines the structure for creating a ledger.
type CreateLedgerRequest struct {
	Name              string `json:"name" binding:"required" validate:"required"`
	ReferenceCurrency string `json:"referenceCurrency" binding:"required,len=3" validate:"required,len=3"`
}

// LedgerResponse defines the structure for API responses containing ledger details.
type LedgerResponse struct {
	LedgerID          string    `json:"ledgerID"`
	OwnerID           string    `json:"ownerID"`
	Name              string    `json:"name"`
	ReferenceCurrency string    `json:"referenceCurrency"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ToLedgerResponse converts a domain.Ledger to LedgerResponse.
func ToLedgerResponse(l *domain.Ledger) LedgerResponse {
	return LedgerResponse{
		LedgerID:          l.LedgerID,
		OwnerID:           l.OwnerID,
		Name:              l.Name,
		ReferenceCurrency: l.ReferenceCurrency,
		CreatedAt:         l.CreatedAt,
	}
}

// ToListLedgerResponse converts a slice of ledgers.
func ToListLedgerResponse(ledgers []domain.Ledger) []LedgerResponse {
	out := make([]LedgerResponse, len(ledgers))
	for i := range ledgers {
		out[i] = ToLedgerResponse(&ledgers[i])
	}
	return out
}

// CurrencyBalanceResponse is the balance held in one currency.
type CurrencyBalanceResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
	Formatted    string          `json:"formatted"`
}

// BalancesResponse lists per-currency balances.
type BalancesResponse struct {
	LedgerID string                    `json:"ledgerID"`
	Balances []CurrencyBalanceResponse `json:"balances"`
}

// ToBalancesResponse converts per-currency balances.
func ToBalancesResponse(ledgerID string, balances []domain.CurrencyBalance) BalancesResponse {
	out := BalancesResponse{LedgerID: ledgerID, Balances: make([]CurrencyBalanceResponse, len(balances))}
	for i, b := range balances {
		out.Balances[i] = CurrencyBalanceResponse{CurrencyCode: b.CurrencyCode, Amount: b.Amount, Formatted: domain.FormatAmount(b.Amount, b.CurrencyCode)}
	}
	return out
}

// ReferenceBalanceResponse is a ledger balance in one reference currency.
type ReferenceBalanceResponse struct {
	ReferenceCurrency string                    `json:"referenceCurrency"`
	Total             decimal.Decimal           `json:"total"`
	Formatted         string                    `json:"formatted"`
	Components        []CurrencyBalanceResponse `json:"components"`
}

// ToReferenceBalanceResponse converts a domain.ReferenceBalance.
func ToReferenceBalanceResponse(b *domain.ReferenceBalance) ReferenceBalanceResponse {
	out := ReferenceBalanceResponse{
		ReferenceCurrency: b.ReferenceCurrency,
		Total:             b.Total,
		Formatted:         domain.FormatAmount(b.Total, b.ReferenceCurrency),
		Components:        make([]CurrencyBalanceResponse, len(b.Components)),
	}
	for i, c := range b.Components {
		out.Components[i] = CurrencyBalanceResponse{CurrencyCode: c.CurrencyCode, Amount: c.Amount, Formatted: domain.FormatAmount(c.Amount, b.ReferenceCurrency)}
	}
	return out
}
