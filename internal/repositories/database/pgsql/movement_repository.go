package pgsql

import (
	"context"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxMovementRepository stores the append-only movement log.
type PgxMovementRepository struct {
	BaseRepository
}

func newPgxMovementRepository(pool *pgxpool.Pool, tx pgx.Tx) *PgxMovementRepository {
	return &PgxMovementRepository{BaseRepository: BaseRepository{Pool: pool, tx: tx}}
}

var _ portsrepo.MovementRepositoryFacade = (*PgxMovementRepository)(nil)

// SaveMovement appends a movement.
func (r *PgxMovementRepository) SaveMovement(ctx context.Context, m domain.Movement) error {
	_, err := r.db().Exec(ctx, `
		INSERT INTO movements (movement_id, ledger_id, currency_code, amount, description, kind, effective_date, counterparty, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.MovementID, m.LedgerID, m.CurrencyCode, m.Amount, m.Description, string(m.Kind), m.EffectiveDate, m.Counterparty, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save movement", err)
	}
	return nil
}

// SumForCurrency sums one currency; zero when there are no movements.
func (r *PgxMovementRepository) SumForCurrency(ctx context.Context, ledgerID, currencyCode string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db().QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM movements WHERE ledger_id = $1 AND currency_code = $2`,
		ledgerID, currencyCode,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum movements", err)
	}
	return sum, nil
}

// SumByCurrency sums every currency of the ledger.
func (r *PgxMovementRepository) SumByCurrency(ctx context.Context, ledgerID string) (map[string]decimal.Decimal, error) {
	rows, err := r.db().Query(ctx,
		`SELECT currency_code, SUM(amount) FROM movements WHERE ledger_id = $1 GROUP BY currency_code`, ledgerID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to sum movements", err)
	}
	defer rows.Close()

	sums := map[string]decimal.Decimal{}
	for rows.Next() {
		var code string
		var sum decimal.Decimal
		if err := rows.Scan(&code, &sum); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan movement sum", err)
		}
		sums[code] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating movement sums", err)
	}
	return sums, nil
}

// ListMovements returns movements by effective date, newest first; same-day
// movements keep insertion order, newest first.
func (r *PgxMovementRepository) ListMovements(ctx context.Context, ledgerID string, limit int) ([]domain.Movement, error) {
	rows, err := r.db().Query(ctx, `
		SELECT movement_id, ledger_id, currency_code, amount, description, kind, effective_date, counterparty, created_at, created_by
		FROM movements
		WHERE ledger_id = $1
		ORDER BY effective_date DESC, seq DESC
		LIMIT $2`, ledgerID, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list movements", err)
	}
	defer rows.Close()

	movements := []domain.Movement{}
	for rows.Next() {
		var m domain.Movement
		var kind string
		if err := rows.Scan(&m.MovementID, &m.LedgerID, &m.CurrencyCode, &m.Amount, &m.Description, &kind, &m.EffectiveDate, &m.Counterparty, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan movement", err)
		}
		m.Kind = domain.MovementKind(kind)
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating movements", err)
	}
	return movements, nil
}
