package pgsql

import (
	"context"
	"log/slog"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	"github.com/SscSPs/finance_assistant/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxTransactionManager runs ledger units of work in a database transaction.
// A transaction-scoped advisory lock on the ledger id serializes writers to
// one ledger while leaving other ledgers free.
type PgxTransactionManager struct {
	BaseRepository
}

func newPgxTransactionManager(pool *pgxpool.Pool) *PgxTransactionManager {
	return &PgxTransactionManager{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionManager = (*PgxTransactionManager)(nil)

// pgxLedgerStore routes every ledger-scoped repository through one transaction.
type pgxLedgerStore struct {
	*PgxLedgerRepository
	*PgxMovementRepository
	*PgxHistoryRepository
	*PgxLoanRepository
}

func newPgxLedgerStore(tx pgx.Tx) portsrepo.LedgerStore {
	return pgxLedgerStore{
		PgxLedgerRepository:   newPgxLedgerRepository(nil, tx),
		PgxMovementRepository: newPgxMovementRepository(nil, tx),
		PgxHistoryRepository:  newPgxHistoryRepository(nil, tx),
		PgxLoanRepository:     newPgxLoanRepository(nil, tx),
	}
}

// WithinTx commits only when fn returns nil.
func (m *PgxTransactionManager) WithinTx(ctx context.Context, ledgerID string, fn func(ctx context.Context, store portsrepo.LedgerStore) error) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := m.Rollback(ctx, tx); rbErr != nil {
			if logger := middleware.GetLoggerFromCtx(ctx); logger != nil {
				logger.Error("Failed to roll back ledger transaction",
					slog.String("ledger_id", ledgerID),
					slog.String("error", rbErr.Error()))
			}
		}
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, ledgerID); err != nil {
		return apperrors.NewAppError(500, "failed to lock ledger", err)
	}

	if err := fn(ctx, newPgxLedgerStore(tx)); err != nil {
		return err
	}
	return m.Commit(ctx, tx)
}
