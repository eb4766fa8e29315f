package pgsql

import (
	"context"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxHistoryRepository stores the reference-currency audit trail.
type PgxHistoryRepository struct {
	BaseRepository
}

func newPgxHistoryRepository(pool *pgxpool.Pool, tx pgx.Tx) *PgxHistoryRepository {
	return &PgxHistoryRepository{BaseRepository: BaseRepository{Pool: pool, tx: tx}}
}

var _ portsrepo.HistoryRepositoryFacade = (*PgxHistoryRepository)(nil)

// SaveHistoryEntry appends an audit entry.
func (r *PgxHistoryRepository) SaveHistoryEntry(ctx context.Context, e domain.BalanceHistoryEntry) error {
	_, err := r.db().Exec(ctx, `
		INSERT INTO balance_history (
			history_id, ledger_id, movement_id, operation_kind, reference_currency,
			amount_in_reference, balance_before, balance_after, description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.HistoryID, e.LedgerID, e.MovementID, string(e.OperationKind), e.ReferenceCurrency,
		e.AmountInReference, e.BalanceBeforeInReference, e.BalanceAfterInReference, e.Description, e.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save balance history", err)
	}
	return nil
}

// ListHistory returns the newest entries first.
func (r *PgxHistoryRepository) ListHistory(ctx context.Context, ledgerID string, limit int) ([]domain.BalanceHistoryEntry, error) {
	rows, err := r.db().Query(ctx, `
		SELECT history_id, ledger_id, movement_id, operation_kind, reference_currency,
			amount_in_reference, balance_before, balance_after, description, created_at
		FROM balance_history
		WHERE ledger_id = $1
		ORDER BY seq DESC
		LIMIT $2`, ledgerID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list balance history", err)
	}
	defer rows.Close()

	entries := []domain.BalanceHistoryEntry{}
	for rows.Next() {
		var e domain.BalanceHistoryEntry
		var kind string
		if err := rows.Scan(&e.HistoryID, &e.LedgerID, &e.MovementID, &kind, &e.ReferenceCurrency,
			&e.AmountInReference, &e.BalanceBeforeInReference, &e.BalanceAfterInReference, &e.Description, &e.CreatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan balance history", err)
		}
		e.OperationKind = domain.MovementKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating balance history", err)
	}
	return entries, nil
}
