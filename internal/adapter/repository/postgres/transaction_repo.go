package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennyledger/pennyledger/internal/domain"
	"github.com/pennyledger/pennyledger/internal/usecase"
)

const transactionColumns = `id, type, amount, currency_code, date, account_id,
	destination_account_id, category_id, notes, destination_amount,
	exchange_rate_snapshot, is_custom_rate, interest_amount, is_scheduled,
	is_automatic, status, is_recurring, recurrence_interval, recurrence_unit,
	recurrence_end_date, parent_recurring_transaction_id,
	adjust_to_working_day, include_start_day_in_count, created_at, updated_at`

// TransactionRepository implements usecase.TransactionRepository with raw SQL.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a transaction inside tx.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`

	var (
		recurrenceInterval *int
		recurrenceUnit     *string
	)
	if txn.Recurrence != nil {
		recurrenceInterval = &txn.Recurrence.Interval
		unit := string(txn.Recurrence.Unit)
		recurrenceUnit = &unit
	}

	_, err := pgxTx.Exec(ctx, query,
		txn.ID,
		string(txn.Type),
		decimalToNumeric(txn.Amount),
		txn.CurrencyCode,
		timeToPgTimestamptz(txn.Date),
		txn.AccountID,
		txn.DestinationAccountID,
		txn.CategoryID,
		txn.Notes,
		decimalPtrToNumeric(txn.DestinationAmount),
		decimalPtrToNumeric(txn.ExchangeRateSnapshot),
		txn.IsCustomRate,
		decimalToNumeric(txn.InterestAmount),
		txn.IsScheduled,
		txn.IsAutomatic,
		string(txn.Status),
		txn.IsRecurring,
		recurrenceInterval,
		recurrenceUnit,
		timePtrToPgTimestamptz(txn.RecurrenceEndDate),
		txn.ParentRecurringTransactionID,
		txn.AdjustToWorkingDay,
		txn.IncludeStartDayInCount,
		timeToPgTimestamptz(txn.CreatedAt),
		timeToPgTimestamptz(txn.UpdatedAt),
	)

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a transaction with a FOR UPDATE lock.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	return scanTransaction(pgxTx.QueryRow(ctx, query, id))
}

// Update rewrites every mutable column of a transaction inside tx.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE transactions
		SET amount = $2, date = $3, category_id = $4, notes = $5,
			destination_amount = $6, exchange_rate_snapshot = $7,
			is_custom_rate = $8, status = $9, updated_at = $10
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query,
		txn.ID,
		decimalToNumeric(txn.Amount),
		timeToPgTimestamptz(txn.Date),
		txn.CategoryID,
		txn.Notes,
		decimalPtrToNumeric(txn.DestinationAmount),
		decimalPtrToNumeric(txn.ExchangeRateSnapshot),
		txn.IsCustomRate,
		string(txn.Status),
		timeToPgTimestamptz(txn.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Delete removes a transaction inside tx.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListByAccount lists transactions owned by an account, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryMany(ctx, r.pool, query, accountID, limit, offset)
}

// ListOwnedForBalance returns executed, non-template transactions owned by an
// account, read inside tx so the recomputation sees a consistent snapshot.
func (r *TransactionRepository) ListOwnedForBalance(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.Transaction, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		  AND status = 'executed'
		  AND NOT (is_recurring AND parent_recurring_transaction_id IS NULL)
		ORDER BY date, id
	`

	return r.queryMany(ctx, pgxTx, query, accountID)
}

// ListIncomingTransfers returns executed transfers crediting an account, read
// inside tx.
func (r *TransactionRepository) ListIncomingTransfers(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.Transaction, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE destination_account_id = $1
		  AND type = 'transfer'
		  AND status = 'executed'
		ORDER BY date, id
	`

	return r.queryMany(ctx, pgxTx, query, accountID)
}

// LastInstanceDate returns the max instance date for a template, or nil when
// no instance exists yet.
func (r *TransactionRepository) LastInstanceDate(ctx context.Context, templateID string) (*time.Time, error) {
	query := `
		SELECT MAX(date)
		FROM transactions
		WHERE parent_recurring_transaction_id = $1
	`

	var last pgtype.Timestamptz
	if err := r.pool.QueryRow(ctx, query, templateID).Scan(&last); err != nil {
		return nil, err
	}

	return pgTimestamptzToTimePtr(last), nil
}

// ListInstances lists every generated instance of a template.
func (r *TransactionRepository) ListInstances(ctx context.Context, templateID string) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE parent_recurring_transaction_id = $1
		ORDER BY date, id
	`

	return r.queryMany(ctx, r.pool, query, templateID)
}

// DeleteInstancesFrom removes instances of a template dated on or after from,
// returning the removed rows so the caller can recompute balances.
func (r *TransactionRepository) DeleteInstancesFrom(ctx context.Context, tx usecase.Transaction, templateID string, from time.Time) ([]*domain.Transaction, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		DELETE FROM transactions
		WHERE parent_recurring_transaction_id = $1 AND date >= $2
		RETURNING ` + transactionColumns

	return r.queryMany(ctx, pgxTx, query, templateID, timeToPgTimestamptz(from))
}

// ListDuePending returns scheduled, non-template transactions at or before the
// cutoff that are still pending, oldest first.
func (r *TransactionRepository) ListDuePending(ctx context.Context, cutoff time.Time) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE is_scheduled
		  AND status = 'pending'
		  AND date <= $1
		  AND NOT (is_recurring AND parent_recurring_transaction_id IS NULL)
		ORDER BY date, id
	`

	return r.queryMany(ctx, r.pool, query, timeToPgTimestamptz(cutoff))
}

// UpdateStatus updates just the status inside tx.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `UPDATE transactions SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := pgxTx.Exec(ctx, query, id, string(status), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListExecutedExpenses returns executed expenses for a category inside
// [from, to), for budget aggregation.
func (r *TransactionRepository) ListExecutedExpenses(ctx context.Context, categoryID string, from, to time.Time) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE category_id = $1
		  AND type = 'expense'
		  AND status = 'executed'
		  AND date >= $2 AND date < $3
		ORDER BY date, id
	`

	return r.queryMany(ctx, r.pool, query, categoryID, timeToPgTimestamptz(from), timeToPgTimestamptz(to))
}

// ListAll returns every transaction, for export.
func (r *TransactionRepository) ListAll(ctx context.Context) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY date, id`

	return r.queryMany(ctx, r.pool, query)
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *TransactionRepository) queryMany(ctx context.Context, q rowQuerier, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn                  domain.Transaction
		txnType              string
		amount               pgtype.Numeric
		date                 pgtype.Timestamptz
		destinationAmount    pgtype.Numeric
		exchangeRateSnapshot pgtype.Numeric
		interestAmount       pgtype.Numeric
		status               string
		recurrenceInterval   *int
		recurrenceUnit       *string
		recurrenceEndDate    pgtype.Timestamptz
		createdAt            pgtype.Timestamptz
		updatedAt            pgtype.Timestamptz
	)

	err := row.Scan(
		&txn.ID,
		&txnType,
		&amount,
		&txn.CurrencyCode,
		&date,
		&txn.AccountID,
		&txn.DestinationAccountID,
		&txn.CategoryID,
		&txn.Notes,
		&destinationAmount,
		&exchangeRateSnapshot,
		&txn.IsCustomRate,
		&interestAmount,
		&txn.IsScheduled,
		&txn.IsAutomatic,
		&status,
		&txn.IsRecurring,
		&recurrenceInterval,
		&recurrenceUnit,
		&recurrenceEndDate,
		&txn.ParentRecurringTransactionID,
		&txn.AdjustToWorkingDay,
		&txn.IncludeStartDayInCount,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	txn.Type = domain.TransactionType(txnType)
	txn.Amount = numericToDecimal(amount)
	txn.Date = date.Time
	txn.DestinationAmount = numericToDecimalPtr(destinationAmount)
	txn.ExchangeRateSnapshot = numericToDecimalPtr(exchangeRateSnapshot)
	txn.InterestAmount = numericToDecimal(interestAmount)
	txn.Status = domain.TransactionStatus(status)
	txn.RecurrenceEndDate = pgTimestamptzToTimePtr(recurrenceEndDate)
	txn.CreatedAt = createdAt.Time
	txn.UpdatedAt = updatedAt.Time

	if recurrenceInterval != nil && recurrenceUnit != nil {
		txn.Recurrence = &domain.RecurrenceRule{
			Interval: *recurrenceInterval,
			Unit:     domain.RecurrenceUnit(*recurrenceUnit),
		}
	}

	return &txn, nil
}
