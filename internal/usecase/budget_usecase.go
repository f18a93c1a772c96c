package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennyledger/pennyledger/internal/domain"
)

// BudgetUseCase manages budgets and computes their spend over the current
// period window. Spend is a live view: each transaction converts to the
// budget currency at the current rate, and nothing is cached.
type BudgetUseCase struct {
	budgetRepo   BudgetRepository
	categoryRepo CategoryRepository
	txRepo       TransactionRepository
	converter    *ConversionUseCase
	idGen        IDGenerator
	clock        Clock
}

// NewBudgetUseCase creates a new BudgetUseCase.
func NewBudgetUseCase(
	budgetRepo BudgetRepository,
	categoryRepo CategoryRepository,
	txRepo TransactionRepository,
	converter *ConversionUseCase,
	idGen IDGenerator,
	clock Clock,
) *BudgetUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &BudgetUseCase{
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
		txRepo:       txRepo,
		converter:    converter,
		idGen:        idGen,
		clock:        clock,
	}
}

// CreateBudgetInput represents input for creating a budget.
type CreateBudgetInput struct {
	CategoryID     string
	CurrencyCode   string
	Amount         decimal.Decimal
	Period         domain.BudgetPeriod
	StartDate      time.Time
	EndDate        *time.Time
	AlertThreshold decimal.Decimal
}

// CreateBudget creates a budget for a category.
func (uc *BudgetUseCase) CreateBudget(ctx context.Context, input CreateBudgetInput) (*domain.Budget, error) {
	now := uc.clock.Now()
	budget := &domain.Budget{
		ID:             uc.idGen.Generate(),
		CategoryID:     input.CategoryID,
		CurrencyCode:   input.CurrencyCode,
		Amount:         input.Amount,
		Period:         input.Period,
		StartDate:      domain.DateOnly(input.StartDate),
		IsActive:       true,
		AlertThreshold: input.AlertThreshold,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if input.EndDate != nil {
		end := domain.DateOnly(*input.EndDate)
		budget.EndDate = &end
	}

	if err := budget.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.categoryRepo.GetByID(ctx, budget.CategoryID); err != nil {
		return nil, err
	}

	if err := uc.budgetRepo.Create(ctx, budget); err != nil {
		return nil, err
	}

	return budget, nil
}

// GetBudget retrieves a budget by ID.
func (uc *BudgetUseCase) GetBudget(ctx context.Context, id string) (*domain.Budget, error) {
	return uc.budgetRepo.GetByID(ctx, id)
}

// ListBudgets lists budgets, optionally only active ones.
func (uc *BudgetUseCase) ListBudgets(ctx context.Context, activeOnly bool) ([]*domain.Budget, error) {
	return uc.budgetRepo.List(ctx, activeOnly)
}

// UpdateBudgetInput represents editable budget fields.
type UpdateBudgetInput struct {
	Amount         *decimal.Decimal
	EndDate        *time.Time
	IsActive       *bool
	AlertThreshold *decimal.Decimal
}

// UpdateBudget edits a budget.
func (uc *BudgetUseCase) UpdateBudget(ctx context.Context, id string, input UpdateBudgetInput) (*domain.Budget, error) {
	budget, err := uc.budgetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Amount != nil {
		budget.Amount = *input.Amount
	}
	if input.EndDate != nil {
		end := domain.DateOnly(*input.EndDate)
		budget.EndDate = &end
	}
	if input.IsActive != nil {
		budget.IsActive = *input.IsActive
	}
	if input.AlertThreshold != nil {
		budget.AlertThreshold = *input.AlertThreshold
	}
	budget.UpdatedAt = uc.clock.Now()

	if err := budget.Validate(); err != nil {
		return nil, err
	}

	if err := uc.budgetRepo.Update(ctx, budget); err != nil {
		return nil, err
	}

	return budget, nil
}

// DeleteBudget removes a budget.
func (uc *BudgetUseCase) DeleteBudget(ctx context.Context, id string) error {
	return uc.budgetRepo.Delete(ctx, id)
}

// Usage computes the budget's spend for its current period window: executed
// expenses in the budget's category within the window, each converted to the
// budget currency at the current rate. Transactions whose currency cannot be
// converted are skipped and reported as warnings.
func (uc *BudgetUseCase) Usage(ctx context.Context, id string) (*domain.BudgetUsage, []BalanceWarning, error) {
	budget, err := uc.budgetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	start, end := budget.PeriodWindow(uc.clock.Now())

	expenses, err := uc.txRepo.ListExecutedExpenses(ctx, budget.CategoryID, start, end)
	if err != nil {
		return nil, nil, err
	}

	var warnings []BalanceWarning
	spent := decimal.Zero

	for _, t := range expenses {
		conv, err := uc.converter.Convert(ctx, t.Amount, t.CurrencyCode, budget.CurrencyCode)
		if errors.Is(err, domain.ErrRateUnavailable) {
			warnings = append(warnings, BalanceWarning{TransactionID: t.ID, Err: err})
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		spent = spent.Add(conv.Amount)
	}

	percentage := decimal.Zero
	if budget.Amount.IsPositive() {
		percentage = spent.Div(budget.Amount).Mul(decimal.NewFromInt(100))
	}

	usage := &domain.BudgetUsage{
		BudgetID:       budget.ID,
		WindowStart:    start,
		WindowEnd:      end,
		Spent:          spent,
		PercentageUsed: percentage,
		IsExceeded:     spent.GreaterThan(budget.Amount),
		AlertTriggered: budget.AlertThreshold.IsPositive() && percentage.GreaterThanOrEqual(budget.AlertThreshold),
	}

	return usage, warnings, nil
}

// CreateCategoryInput represents input for creating a category.
type CreateCategoryInput struct {
	Name string
	Kind string
}

// CreateCategory creates a transaction category.
func (uc *BudgetUseCase) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	now := uc.clock.Now()
	category := &domain.Category{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Kind:      input.Kind,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// ListCategories lists all categories.
func (uc *BudgetUseCase) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return uc.categoryRepo.List(ctx)
}
