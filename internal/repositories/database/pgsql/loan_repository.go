package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxLoanRepository stores loans.
type PgxLoanRepository struct {
	BaseRepository
}

func newPgxLoanRepository(pool *pgxpool.Pool, tx pgx.Tx) *PgxLoanRepository {
	return &PgxLoanRepository{BaseRepository: BaseRepository{Pool: pool, tx: tx}}
}

var _ portsrepo.LoanRepositoryFacade = (*PgxLoanRepository)(nil)

const loanColumns = `
	loan_id, ledger_id, principal, currency_code, counterparty, loan_date,
	interest_percent, has_intermediary, intermediary_percent,
	quoted_rate, quote_reference_currency, quoted_at, description, state, closed_at,
	created_at, created_by, last_updated_at, last_updated_by`

func scanLoan(row pgx.Row) (domain.Loan, error) {
	var l domain.Loan
	var state string
	err := row.Scan(
		&l.LoanID, &l.LedgerID, &l.Principal, &l.CurrencyCode, &l.Counterparty, &l.LoanDate,
		&l.InterestPercent, &l.HasIntermediary, &l.IntermediaryPercent,
		&l.QuotedRateAtOrigination, &l.QuoteReferenceCurrency, &l.QuotedAt, &l.Description, &state, &l.ClosedAt,
		&l.CreatedAt, &l.CreatedBy, &l.LastUpdatedAt, &l.LastUpdatedBy,
	)
	l.State = domain.LoanState(state)
	return l, err
}

// SaveLoan inserts a new loan.
func (r *PgxLoanRepository) SaveLoan(ctx context.Context, l domain.Loan) error {
	_, err := r.db().Exec(ctx, `
		INSERT INTO loans (`+loanColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		l.LoanID, l.LedgerID, l.Principal, l.CurrencyCode, l.Counterparty, l.LoanDate,
		l.InterestPercent, l.HasIntermediary, l.IntermediaryPercent,
		l.QuotedRateAtOrigination, l.QuoteReferenceCurrency, l.QuotedAt, l.Description, string(l.State), l.ClosedAt,
		l.CreatedAt, l.CreatedBy, l.LastUpdatedAt, l.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to save loan", err)
	}
	return nil
}

// FindLoanByID retrieves a loan of the ledger in any state.
func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, ledgerID, loanID string) (*domain.Loan, error) {
	loan, err := scanLoan(r.db().QueryRow(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE ledger_id = $1 AND loan_id = $2`, ledgerID, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("loan " + loanID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find loan", err)
	}
	return &loan, nil
}

// ListLoans returns the ledger's loans matching filter, newest loan date first.
func (r *PgxLoanRepository) ListLoans(ctx context.Context, ledgerID string, filter domain.LoanFilter) ([]domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE ledger_id = $1`
	args := []any{ledgerID}
	switch filter {
	case domain.LoanFilterAll:
	case domain.LoanFilterClosed:
		query += ` AND state = $2`
		args = append(args, string(domain.LoanClosed))
	default:
		query += ` AND state = $2`
		args = append(args, string(domain.LoanActive))
	}
	query += ` ORDER BY loan_date DESC, seq`

	rows, err := r.db().Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list loans", err)
	}
	defer rows.Close()

	loans := []domain.Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan loan", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating loans", err)
	}
	return loans, nil
}

// SumActivePrincipalByCurrency sums outstanding principal per currency.
func (r *PgxLoanRepository) SumActivePrincipalByCurrency(ctx context.Context, ledgerID string) (map[string]decimal.Decimal, error) {
	rows, err := r.db().Query(ctx, `
		SELECT currency_code, SUM(principal) FROM loans
		WHERE ledger_id = $1 AND state = $2
		GROUP BY currency_code`, ledgerID, string(domain.LoanActive))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to sum loans", err)
	}
	defer rows.Close()

	sums := map[string]decimal.Decimal{}
	for rows.Next() {
		var code string
		var sum decimal.Decimal
		if err := rows.Scan(&code, &sum); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan loan sum", err)
		}
		sums[code] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating loan sums", err)
	}
	return sums, nil
}

// CloseLoan flips an ACTIVE loan to CLOSED. Only one caller can win the update.
func (r *PgxLoanRepository) CloseLoan(ctx context.Context, ledgerID, loanID string, closedAt time.Time, closedBy string) error {
	tag, err := r.db().Exec(ctx, `
		UPDATE loans
		SET state = $1, closed_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE ledger_id = $4 AND loan_id = $5 AND state = $6`,
		string(domain.LoanClosed), closedAt, closedBy, ledgerID, loanID, string(domain.LoanActive),
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to close loan", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("no active loan with id " + loanID)
	}
	return nil
}
