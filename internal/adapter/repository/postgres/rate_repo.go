package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennyledger/pennyledger/internal/domain"
)

// RateRepository implements usecase.RateRepository with raw SQL. The table
// holds at most one current rate per directed pair.
type RateRepository struct {
	pool *pgxpool.Pool
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}

// Upsert writes the current rate for a directed pair, overwriting in place.
func (r *RateRepository) Upsert(ctx context.Context, rate *domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (from_code, to_code, rate, source, is_custom, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (from_code, to_code)
		DO UPDATE SET rate = $3, source = $4, is_custom = $5, last_updated = $6
	`

	_, err := r.pool.Exec(ctx, query,
		rate.FromCode,
		rate.ToCode,
		decimalToNumeric(rate.Rate),
		string(rate.Source),
		rate.IsCustom,
		timeToPgTimestamptz(rate.LastUpdated),
	)

	return err
}

// GetByPair retrieves the current rate for a directed pair. A missing pair is
// domain.ErrRateUnavailable; the caller decides whether to try the inverse.
func (r *RateRepository) GetByPair(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	query := `
		SELECT from_code, to_code, rate, source, is_custom, last_updated
		FROM exchange_rates
		WHERE from_code = $1 AND to_code = $2
	`

	return scanRate(r.pool.QueryRow(ctx, query, fromCode, toCode))
}

// List lists all current rates.
func (r *RateRepository) List(ctx context.Context) ([]*domain.ExchangeRate, error) {
	query := `
		SELECT from_code, to_code, rate, source, is_custom, last_updated
		FROM exchange_rates
		ORDER BY from_code, to_code
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []*domain.ExchangeRate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}

	return rates, rows.Err()
}

func scanRate(row pgx.Row) (*domain.ExchangeRate, error) {
	var (
		rate        domain.ExchangeRate
		value       pgtype.Numeric
		source      string
		lastUpdated pgtype.Timestamptz
	)

	err := row.Scan(
		&rate.FromCode,
		&rate.ToCode,
		&value,
		&source,
		&rate.IsCustom,
		&lastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRateUnavailable
	}
	if err != nil {
		return nil, err
	}

	rate.Rate = numericToDecimal(value)
	rate.Source = domain.RateSource(source)
	rate.LastUpdated = lastUpdated.Time

	return &rate, nil
}
