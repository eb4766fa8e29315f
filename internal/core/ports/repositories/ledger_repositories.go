package repositories

import (
	"context"

	"github.com/SscSPs/finance_assistant/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations for ledgers
type LedgerReader interface {
	FindLedgerByID(ctx context.Context, ledgerID string) (*domain.Ledger, error)
	ListLedgersByOwner(ctx context.Context, ownerID string) ([]domain.Ledger, error)
}

// LedgerWriter defines write operations for ledgers
type LedgerWriter interface {
	SaveLedger(ctx context.Context, ledger domain.Ledger) error
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}

// MovementReader defines read operations for ledger movements
type MovementReader interface {
	// SumForCurrency returns the sum of all movements in one currency. Zero when none exist.
	SumForCurrency(ctx context.Context, ledgerID, currencyCode string) (decimal.Decimal, error)

	// SumByCurrency returns the movement sum keyed by currency code.
	SumByCurrency(ctx context.Context, ledgerID string) (map[string]decimal.Decimal, error)

	// ListMovements returns the newest movements first.
	ListMovements(ctx context.Context, ledgerID string, limit int) ([]domain.Movement, error)
}

// MovementWriter defines write operations for ledger movements. Movements are append-only.
type MovementWriter interface {
	SaveMovement(ctx context.Context, movement domain.Movement) error
}

// MovementRepositoryFacade combines all movement-related repository interfaces
type MovementRepositoryFacade interface {
	MovementReader
	MovementWriter
}

// HistoryReader defines read operations for the balance audit trail
type HistoryReader interface {
	ListHistory(ctx context.Context, ledgerID string, limit int) ([]domain.BalanceHistoryEntry, error)
}

// HistoryWriter defines write operations for the balance audit trail
type HistoryWriter interface {
	SaveHistoryEntry(ctx context.Context, entry domain.BalanceHistoryEntry) error
}

// HistoryRepositoryFacade combines all history-related repository interfaces
type HistoryRepositoryFacade interface {
	HistoryReader
	HistoryWriter
}
