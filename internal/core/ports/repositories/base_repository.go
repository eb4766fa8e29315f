package repositories

import (
	"context"
)

// LedgerStore groups the ledger-scoped repositories. Inside a transaction
// every call goes through the same unit of work.
type LedgerStore interface {
	LedgerRepositoryFacade
	MovementRepositoryFacade
	HistoryRepositoryFacade
	LoanRepositoryFacade
}

// TransactionManager runs fn atomically with exclusive access to one ledger.
// Writes made through store are committed only if fn returns nil.
type TransactionManager interface {
	WithinTx(ctx context.Context, ledgerID string, fn func(ctx context.Context, store LedgerStore) error) error
}
