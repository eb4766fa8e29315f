package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxLedgerRepository stores ledgers.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool, tx pgx.Tx) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool, tx: tx}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const ledgerColumns = `ledger_id, owner_id, name, reference_currency, created_at, created_by, last_updated_at, last_updated_by`

func scanLedger(row pgx.Row) (domain.Ledger, error) {
	var l domain.Ledger
	err := row.Scan(&l.LedgerID, &l.OwnerID, &l.Name, &l.ReferenceCurrency,
		&l.CreatedAt, &l.CreatedBy, &l.LastUpdatedAt, &l.LastUpdatedBy)
	return l, err
}

// SaveLedger inserts a new ledger.
func (r *PgxLedgerRepository) SaveLedger(ctx context.Context, ledger domain.Ledger) error {
	_, err := r.db().Exec(ctx, `
		INSERT INTO ledgers (`+ledgerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ledger.LedgerID, ledger.OwnerID, ledger.Name, ledger.ReferenceCurrency,
		ledger.CreatedAt, ledger.CreatedBy, ledger.LastUpdatedAt, ledger.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to save ledger", err)
	}
	return nil
}

// FindLedgerByID retrieves a ledger by id.
func (r *PgxLedgerRepository) FindLedgerByID(ctx context.Context, ledgerID string) (*domain.Ledger, error) {
	ledger, err := scanLedger(r.db().QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE ledger_id = $1`, ledgerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("ledger " + ledgerID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find ledger", err)
	}
	return &ledger, nil
}

// ListLedgersByOwner retrieves the owner's ledgers, oldest first.
func (r *PgxLedgerRepository) ListLedgersByOwner(ctx context.Context, ownerID string) ([]domain.Ledger, error) {
	rows, err := r.db().Query(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE owner_id = $1 ORDER BY created_at, ledger_id`, ownerID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list ledgers", err)
	}
	defer rows.Close()

	ledgers := []domain.Ledger{}
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger", err)
		}
		ledgers = append(ledgers, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledgers", err)
	}
	return ledgers, nil
}
