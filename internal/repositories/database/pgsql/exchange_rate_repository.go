package pgsql

import (
	"context"
	"errors"
	"strings"

	"github.com/SscSPs/finance_assistant/internal/apperrors"
	"github.com/SscSPs/finance_assistant/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_assistant/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxExchangeRateRepository implements the rate cache on the exchange_rates table.
type PgxExchangeRateRepository struct {
	BaseRepository
}

func newPgxExchangeRateRepository(db *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

const rateColumns = `
	exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective, source,
	created_at, created_by, last_updated_at, last_updated_by`

func scanRate(row pgx.Row) (domain.ExchangeRate, error) {
	var rate domain.ExchangeRate
	var source string
	err := row.Scan(
		&rate.ExchangeRateID, &rate.FromCurrencyCode, &rate.ToCurrencyCode,
		&rate.Rate, &rate.DateEffective, &source, &rate.CreatedAt,
		&rate.CreatedBy, &rate.LastUpdatedAt, &rate.LastUpdatedBy,
	)
	rate.Source = domain.RateSource(source)
	return rate, err
}

// SaveExchangeRate upserts the single row kept for the pair.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	// Normalize currency codes to uppercase
	fromCurrency := strings.ToUpper(rate.FromCurrencyCode)
	toCurrency := strings.ToUpper(rate.ToCurrencyCode)

	if fromCurrency == toCurrency {
		return apperrors.NewValidationError("from and to currencies cannot be the same")
	}

	_, err := r.db().Exec(ctx, `
		INSERT INTO exchange_rates (`+rateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (from_currency_code, to_currency_code) DO UPDATE
		SET rate = EXCLUDED.rate,
			date_effective = EXCLUDED.date_effective,
			source = EXCLUDED.source,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by`,
		rate.ExchangeRateID, fromCurrency, toCurrency, rate.Rate, rate.DateEffective, string(rate.Source),
		rate.CreatedAt, rate.CreatedBy, rate.LastUpdatedAt, rate.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save exchange rate", err)
	}
	return nil
}

// FindExchangeRate retrieves the cached rate between two currencies.
func (r *PgxExchangeRateRepository) FindExchangeRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (*domain.ExchangeRate, error) {
	// Normalize currency codes
	fromCurrency := strings.ToUpper(fromCurrencyCode)
	toCurrency := strings.ToUpper(toCurrencyCode)

	// First try to find the direct rate
	directRate, err := r.findRate(ctx, fromCurrency, toCurrency)
	if err == nil {
		return directRate, nil
	}

	// If direct rate not found, try to find the inverse rate
	if errors.Is(err, apperrors.ErrNotFound) {
		inverseRate, inverseErr := r.findRate(ctx, toCurrency, fromCurrency)
		if inverseErr == nil && !inverseRate.Rate.IsZero() {
			inverseRate.FromCurrencyCode = fromCurrency
			inverseRate.ToCurrencyCode = toCurrency
			inverseRate.Rate = decimal.NewFromInt(1).Div(inverseRate.Rate)
			return inverseRate, nil
		}
		if inverseErr != nil && !errors.Is(inverseErr, apperrors.ErrNotFound) {
			return nil, inverseErr
		}
		return nil, apperrors.NewNotFoundError("no exchange rate found for currency pair " + fromCurrency + " to " + toCurrency)
	}
	return nil, err
}

// findRate is a helper method to find the stored rate for one direction
func (r *PgxExchangeRateRepository) findRate(ctx context.Context, fromCurrency, toCurrency string) (*domain.ExchangeRate, error) {
	rate, err := scanRate(r.db().QueryRow(ctx,
		`SELECT `+rateColumns+` FROM exchange_rates WHERE from_currency_code = $1 AND to_currency_code = $2`,
		fromCurrency, toCurrency))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("exchange rate not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}
	return &rate, nil
}

// ListExchangeRates retrieves every cached pair.
func (r *PgxExchangeRateRepository) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	rows, err := r.db().Query(ctx,
		`SELECT `+rateColumns+` FROM exchange_rates ORDER BY from_currency_code, to_currency_code`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list exchange rates", err)
	}
	defer rows.Close()

	rates := []domain.ExchangeRate{}
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan exchange rate", err)
		}
		rates = append(rates, rate)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating exchange rates", err)
	}

	return rates, nil
}
