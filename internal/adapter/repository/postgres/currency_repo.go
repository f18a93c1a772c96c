package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennyledger/pennyledger/internal/domain"
	"github.com/pennyledger/pennyledger/internal/usecase"
)

// CurrencyRepository implements usecase.CurrencyRepository with raw SQL.
type CurrencyRepository struct {
	pool *pgxpool.Pool
}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{pool: pool}
}

// Create inserts a currency definition.
func (r *CurrencyRepository) Create(ctx context.Context, currency *domain.Currency) error {
	query := `
		INSERT INTO currencies (code, name, symbol, usage_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		currency.Code,
		currency.Name,
		currency.Symbol,
		currency.UsageCount,
		timeToPgTimestamptz(currency.CreatedAt),
		timeToPgTimestamptz(currency.UpdatedAt),
	)

	return err
}

// GetByCode retrieves a currency by its code.
func (r *CurrencyRepository) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	query := `
		SELECT code, name, symbol, usage_count, created_at, updated_at
		FROM currencies
		WHERE code = $1
	`

	return scanCurrency(r.pool.QueryRow(ctx, query, code))
}

// List lists all currencies, most used first.
func (r *CurrencyRepository) List(ctx context.Context) ([]*domain.Currency, error) {
	query := `
		SELECT code, name, symbol, usage_count, created_at, updated_at
		FROM currencies
		ORDER BY usage_count DESC, code
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var currencies []*domain.Currency
	for rows.Next() {
		currency, err := scanCurrency(rows)
		if err != nil {
			return nil, err
		}
		currencies = append(currencies, currency)
	}

	return currencies, rows.Err()
}

// IncrementUsage bumps the usage counter inside tx.
func (r *CurrencyRepository) IncrementUsage(ctx context.Context, tx usecase.Transaction, code string) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `UPDATE currencies SET usage_count = usage_count + 1 WHERE code = $1`

	tag, err := pgxTx.Exec(ctx, query, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCurrencyNotFound
	}

	return nil
}

func scanCurrency(row pgx.Row) (*domain.Currency, error) {
	var (
		currency  domain.Currency
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&currency.Code,
		&currency.Name,
		&currency.Symbol,
		&currency.UsageCount,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCurrencyNotFound
	}
	if err != nil {
		return nil, err
	}

	currency.CreatedAt = createdAt.Time
	currency.UpdatedAt = updatedAt.Time

	return &currency, nil
}
