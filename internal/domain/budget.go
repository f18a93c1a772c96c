package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod is the cycle a budget's window rolls over.
type BudgetPeriod string

const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
	PeriodCustom  BudgetPeriod = "custom"
)

// Budget caps spend for one category over a period window. Spend is always
// recomputed from transactions, never cached.
type Budget struct {
	ID             string          `json:"id"`
	CategoryID     string          `json:"categoryID"`
	CurrencyCode   string          `json:"currencyCode"`
	Amount         decimal.Decimal `json:"amount"`
	Period         BudgetPeriod    `json:"period"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        *time.Time      `json:"endDate,omitempty"`
	IsActive       bool            `json:"isActive"`
	AlertThreshold decimal.Decimal `json:"alertThreshold"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Validate checks budget fields at creation time.
func (b *Budget) Validate() error {
	if b.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	switch b.Period {
	case PeriodWeekly, PeriodMonthly, PeriodYearly, PeriodCustom:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, b.Period)
	}
	if b.CategoryID == "" {
		return ErrCategoryNotFound
	}
	return ValidateCurrencyCode(b.CurrencyCode)
}

// PeriodWindow returns the half-open [start, end) window containing now.
// Weeks start Monday; monthly and yearly windows follow calendar boundaries.
// Custom budgets run from StartDate to EndDate (inclusive) or StartDate plus
// thirty days. A custom budget whose EndDate has passed stays frozen at its
// original window and never rolls over.
func (b *Budget) PeriodWindow(now time.Time) (start, end time.Time) {
	now = DateOnly(now)

	switch b.Period {
	case PeriodWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 { // Sunday belongs to the week that started the previous Monday
			weekday = 7
		}
		start = now.AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 7)
	case PeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	case PeriodYearly:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	default: // custom
		start = DateOnly(b.StartDate)
		if b.EndDate != nil {
			return start, DateOnly(*b.EndDate).AddDate(0, 0, 1)
		}
		return start, start.AddDate(0, 0, 30)
	}
}

// InWindow reports whether a transaction date falls inside the window
// containing now.
func (b *Budget) InWindow(date, now time.Time) bool {
	start, end := b.PeriodWindow(now)
	d := DateOnly(date)
	return !d.Before(start) && d.Before(end)
}

// BudgetUsage is the computed spend state of a budget for its current window.
type BudgetUsage struct {
	BudgetID       string          `json:"budgetID"`
	WindowStart    time.Time       `json:"windowStart"`
	WindowEnd      time.Time       `json:"windowEnd"`
	Spent          decimal.Decimal `json:"spent"`
	PercentageUsed decimal.Decimal `json:"percentageUsed"`
	IsExceeded     bool            `json:"isExceeded"`
	AlertTriggered bool            `json:"alertTriggered"`
}

// Category labels transactions and anchors budgets.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"` // expense or income
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
