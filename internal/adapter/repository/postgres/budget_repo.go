package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennyledger/pennyledger/internal/domain"
)

const budgetColumns = `id, category_id, currency_code, amount, period, start_date,
	end_date, is_active, alert_threshold, created_at, updated_at`

// BudgetRepository implements usecase.BudgetRepository with raw SQL.
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Create inserts a budget.
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) error {
	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		budget.ID,
		budget.CategoryID,
		budget.CurrencyCode,
		decimalToNumeric(budget.Amount),
		string(budget.Period),
		timeToPgTimestamptz(budget.StartDate),
		timePtrToPgTimestamptz(budget.EndDate),
		budget.IsActive,
		decimalToNumeric(budget.AlertThreshold),
		timeToPgTimestamptz(budget.CreatedAt),
		timeToPgTimestamptz(budget.UpdatedAt),
	)

	return err
}

// GetByID retrieves a budget by ID.
func (r *BudgetRepository) GetByID(ctx context.Context, id string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1`

	return scanBudget(r.pool.QueryRow(ctx, query, id))
}

// Update rewrites a budget's mutable columns.
func (r *BudgetRepository) Update(ctx context.Context, budget *domain.Budget) error {
	query := `
		UPDATE budgets
		SET amount = $2, end_date = $3, is_active = $4, alert_threshold = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		budget.ID,
		decimalToNumeric(budget.Amount),
		timePtrToPgTimestamptz(budget.EndDate),
		budget.IsActive,
		decimalToNumeric(budget.AlertThreshold),
		timeToPgTimestamptz(budget.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}

	return nil
}

// Delete removes a budget.
func (r *BudgetRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}

	return nil
}

// List lists budgets, optionally only active ones.
func (r *BudgetRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE NOT $1::bool OR is_active
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}

	return budgets, rows.Err()
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		budget         domain.Budget
		amount         pgtype.Numeric
		period         string
		startDate      pgtype.Timestamptz
		endDate        pgtype.Timestamptz
		alertThreshold pgtype.Numeric
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
	)

	err := row.Scan(
		&budget.ID,
		&budget.CategoryID,
		&budget.CurrencyCode,
		&amount,
		&period,
		&startDate,
		&endDate,
		&budget.IsActive,
		&alertThreshold,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBudgetNotFound
	}
	if err != nil {
		return nil, err
	}

	budget.Amount = numericToDecimal(amount)
	budget.Period = domain.BudgetPeriod(period)
	budget.StartDate = startDate.Time
	budget.EndDate = pgTimestamptzToTimePtr(endDate)
	budget.AlertThreshold = numericToDecimal(alertThreshold)
	budget.CreatedAt = createdAt.Time
	budget.UpdatedAt = updatedAt.Time

	return &budget, nil
}
