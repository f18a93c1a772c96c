package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennyledger/pennyledger/internal/domain"
	"github.com/pennyledger/pennyledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	CurrencyCode   string          `json:"currencyCode"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:           r.Name,
		Type:           domain.AccountType(r.Type),
		CurrencyCode:   r.CurrencyCode,
		InitialBalance: r.InitialBalance,
	}
}

// RecurrenceRuleRequest is the recurrence rule of a recurring template.
type RecurrenceRuleRequest struct {
	Interval int    `json:"interval"`
	Unit     string `json:"unit"`
}

// CreateTransactionRequest represents a request to create a transaction,
// a scheduled transaction, or a recurring template.
type CreateTransactionRequest struct {
	Type                 string           `json:"type"`
	Amount               decimal.Decimal  `json:"amount"`
	CurrencyCode         string           `json:"currencyCode"`
	Date                 time.Time        `json:"date"`
	AccountID            string           `json:"accountID"`
	DestinationAccountID *string          `json:"destinationAccountID,omitempty"`
	CategoryID           *string          `json:"categoryID,omitempty"`
	Notes                string           `json:"notes,omitempty"`
	DestinationAmount    *decimal.Decimal `json:"destinationAmount,omitempty"`
	CustomRate           *decimal.Decimal `json:"customRate,omitempty"`
	InterestAmount       decimal.Decimal  `json:"interestAmount"`
	IsScheduled          bool             `json:"isScheduled"`
	IsAutomatic          bool             `json:"isAutomatic"`

	IsRecurring            bool                   `json:"isRecurring"`
	Recurrence             *RecurrenceRuleRequest `json:"recurrence,omitempty"`
	RecurrenceEndDate      *time.Time             `json:"recurrenceEndDate,omitempty"`
	AdjustToWorkingDay     bool                   `json:"adjustToWorkingDay"`
	IncludeStartDayInCount bool                   `json:"includeStartDayInCount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput() usecase.CreateTransactionInput {
	input := usecase.CreateTransactionInput{
		Type:                 domain.TransactionType(r.Type),
		Amount:               r.Amount,
		CurrencyCode:         r.CurrencyCode,
		Date:                 r.Date,
		AccountID:            r.AccountID,
		DestinationAccountID: r.DestinationAccountID,
		CategoryID:           r.CategoryID,
		Notes:                r.Notes,
		DestinationAmount:    r.DestinationAmount,
		CustomRate:           r.CustomRate,
		InterestAmount:       r.InterestAmount,
		IsScheduled:          r.IsScheduled,
		IsAutomatic:          r.IsAutomatic,

		IsRecurring:            r.IsRecurring,
		RecurrenceEndDate:      r.RecurrenceEndDate,
		AdjustToWorkingDay:     r.AdjustToWorkingDay,
		IncludeStartDayInCount: r.IncludeStartDayInCount,
	}
	if r.Recurrence != nil {
		input.Recurrence = &domain.RecurrenceRule{
			Interval: r.Recurrence.Interval,
			Unit:     domain.RecurrenceUnit(r.Recurrence.Unit),
		}
	}
	return input
}

// UpdateTransactionRequest represents a partial transaction edit. Absent
// fields are left untouched.
type UpdateTransactionRequest struct {
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Date       *time.Time       `json:"date,omitempty"`
	CategoryID *string          `json:"categoryID,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateTransactionRequest) ToUseCaseInput() usecase.UpdateTransactionInput {
	return usecase.UpdateTransactionInput{
		Amount:     r.Amount,
		Date:       r.Date,
		CategoryID: r.CategoryID,
		Notes:      r.Notes,
	}
}

// GenerateInstancesRequest asks a recurring template to materialize upcoming
// instances within a horizon.
type GenerateInstancesRequest struct {
	HorizonMonths int `json:"horizonMonths"`
}

// CreateCurrencyRequest represents a request to register a currency.
type CreateCurrencyRequest struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCurrencyRequest) ToUseCaseInput() usecase.CreateCurrencyInput {
	return usecase.CreateCurrencyInput{
		Code:   r.Code,
		Name:   r.Name,
		Symbol: r.Symbol,
	}
}

// UpsertRateRequest represents a manual rate edit for a directed pair.
type UpsertRateRequest struct {
	FromCode string          `json:"fromCode"`
	ToCode   string          `json:"toCode"`
	Rate     decimal.Decimal `json:"rate"`
}

// ToUseCaseInput converts to use case input.
func (r *UpsertRateRequest) ToUseCaseInput() usecase.UpsertRateInput {
	return usecase.UpsertRateInput{
		FromCode: r.FromCode,
		ToCode:   r.ToCode,
		Rate:     r.Rate,
	}
}

// RefreshRatesRequest triggers a rate refresh from the external feed.
type RefreshRatesRequest struct {
	BaseCurrency string `json:"baseCurrency"`
}

// CreateBudgetRequest represents a request to create a budget.
type CreateBudgetRequest struct {
	CategoryID     string          `json:"categoryID"`
	CurrencyCode   string          `json:"currencyCode"`
	Amount         decimal.Decimal `json:"amount"`
	Period         string          `json:"period"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        *time.Time      `json:"endDate,omitempty"`
	AlertThreshold decimal.Decimal `json:"alertThreshold"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateBudgetRequest) ToUseCaseInput() usecase.CreateBudgetInput {
	return usecase.CreateBudgetInput{
		CategoryID:     r.CategoryID,
		CurrencyCode:   r.CurrencyCode,
		Amount:         r.Amount,
		Period:         domain.BudgetPeriod(r.Period),
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		AlertThreshold: r.AlertThreshold,
	}
}

// UpdateBudgetRequest represents a partial budget edit.
type UpdateBudgetRequest struct {
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	EndDate        *time.Time       `json:"endDate,omitempty"`
	IsActive       *bool            `json:"isActive,omitempty"`
	AlertThreshold *decimal.Decimal `json:"alertThreshold,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateBudgetRequest) ToUseCaseInput() usecase.UpdateBudgetInput {
	return usecase.UpdateBudgetInput{
		Amount:         r.Amount,
		EndDate:        r.EndDate,
		IsActive:       r.IsActive,
		AlertThreshold: r.AlertThreshold,
	}
}

// CreateCategoryRequest represents a request to create a category.
type CreateCategoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCategoryRequest) ToUseCaseInput() usecase.CreateCategoryInput {
	return usecase.CreateCategoryInput{
		Name: r.Name,
		Kind: r.Kind,
	}
}
