package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennyledger/pennyledger/internal/domain"
	"github.com/pennyledger/pennyledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	CurrencyCode   string          `json:"currencyCode"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           string(a.Type),
		CurrencyCode:   a.CurrencyCode,
		InitialBalance: a.InitialBalance,
		CurrentBalance: a.CurrentBalance,
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// BalanceWarningResponse reports a transaction whose contribution could not
// be converted and was counted as zero.
type BalanceWarningResponse struct {
	TransactionID string `json:"transactionID"`
	Reason        string `json:"reason"`
}

// WarningsFromUseCase converts balance warnings to responses.
func WarningsFromUseCase(warnings []usecase.BalanceWarning) []BalanceWarningResponse {
	if len(warnings) == 0 {
		return nil
	}
	result := make([]BalanceWarningResponse, len(warnings))
	for i, w := range warnings {
		result[i] = BalanceWarningResponse{
			TransactionID: w.TransactionID,
			Reason:        w.Err.Error(),
		}
	}
	return result
}

// BalanceResponse is a freshly recomputed account balance.
type BalanceResponse struct {
	AccountID string                   `json:"accountID"`
	Balance   decimal.Decimal          `json:"balance"`
	Warnings  []BalanceWarningResponse `json:"warnings,omitempty"`
}

// RecurrenceRuleResponse is the recurrence rule in API responses.
type RecurrenceRuleResponse struct {
	Interval int    `json:"interval"`
	Unit     string `json:"unit"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                   string           `json:"id"`
	Type                 string           `json:"type"`
	Amount               decimal.Decimal  `json:"amount"`
	CurrencyCode         string           `json:"currencyCode"`
	Date                 time.Time        `json:"date"`
	AccountID            string           `json:"accountID"`
	DestinationAccountID *string          `json:"destinationAccountID,omitempty"`
	CategoryID           *string          `json:"categoryID,omitempty"`
	Notes                string           `json:"notes,omitempty"`
	DestinationAmount    *decimal.Decimal `json:"destinationAmount,omitempty"`
	ExchangeRateSnapshot *decimal.Decimal `json:"exchangeRateSnapshot,omitempty"`
	IsCustomRate         bool             `json:"isCustomRate"`
	InterestAmount       decimal.Decimal  `json:"interestAmount"`
	IsScheduled          bool             `json:"isScheduled"`
	IsAutomatic          bool             `json:"isAutomatic"`
	Status               string           `json:"status"`

	IsRecurring                  bool                    `json:"isRecurring"`
	Recurrence                   *RecurrenceRuleResponse `json:"recurrence,omitempty"`
	RecurrenceEndDate            *time.Time              `json:"recurrenceEndDate,omitempty"`
	ParentRecurringTransactionID *string                 `json:"parentRecurringTransactionID,omitempty"`
	AdjustToWorkingDay           bool                    `json:"adjustToWorkingDay"`
	IncludeStartDayInCount       bool                    `json:"includeStartDayInCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:                   t.ID,
		Type:                 string(t.Type),
		Amount:               t.Amount,
		CurrencyCode:         t.CurrencyCode,
		Date:                 t.Date,
		AccountID:            t.AccountID,
		DestinationAccountID: t.DestinationAccountID,
		CategoryID:           t.CategoryID,
		Notes:                t.Notes,
		DestinationAmount:    t.DestinationAmount,
		ExchangeRateSnapshot: t.ExchangeRateSnapshot,
		IsCustomRate:         t.IsCustomRate,
		InterestAmount:       t.InterestAmount,
		IsScheduled:          t.IsScheduled,
		IsAutomatic:          t.IsAutomatic,
		Status:               string(t.Status),

		IsRecurring:                  t.IsRecurring,
		RecurrenceEndDate:            t.RecurrenceEndDate,
		ParentRecurringTransactionID: t.ParentRecurringTransactionID,
		AdjustToWorkingDay:           t.AdjustToWorkingDay,
		IncludeStartDayInCount:       t.IncludeStartDayInCount,

		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Recurrence != nil {
		resp.Recurrence = &RecurrenceRuleResponse{
			Interval: t.Recurrence.Interval,
			Unit:     string(t.Recurrence.Unit),
		}
	}
	return resp
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse wraps a transaction listing.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// CurrencyResponse represents a currency in API responses.
type CurrencyResponse struct {
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Symbol     string    `json:"symbol"`
	UsageCount int64     `json:"usageCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CurrencyFromDomain converts domain currency to response.
func CurrencyFromDomain(c *domain.Currency) *CurrencyResponse {
	return &CurrencyResponse{
		Code:       c.Code,
		Name:       c.Name,
		Symbol:     c.Symbol,
		UsageCount: c.UsageCount,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// CurrenciesFromDomain converts domain currencies to responses.
func CurrenciesFromDomain(currencies []*domain.Currency) []*CurrencyResponse {
	result := make([]*CurrencyResponse, len(currencies))
	for i, c := range currencies {
		result[i] = CurrencyFromDomain(c)
	}
	return result
}

// RateResponse represents an exchange rate in API responses.
type RateResponse struct {
	FromCode    string          `json:"fromCode"`
	ToCode      string          `json:"toCode"`
	Rate        decimal.Decimal `json:"rate"`
	Source      string          `json:"source"`
	IsCustom    bool            `json:"isCustom"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// RateFromDomain converts domain exchange rate to response.
func RateFromDomain(r *domain.ExchangeRate) *RateResponse {
	return &RateResponse{
		FromCode:    r.FromCode,
		ToCode:      r.ToCode,
		Rate:        r.Rate,
		Source:      string(r.Source),
		IsCustom:    r.IsCustom,
		LastUpdated: r.LastUpdated,
	}
}

// RatesFromDomain converts domain exchange rates to responses.
func RatesFromDomain(rates []*domain.ExchangeRate) []*RateResponse {
	result := make([]*RateResponse, len(rates))
	for i, r := range rates {
		result[i] = RateFromDomain(r)
	}
	return result
}

// RefreshRatesResponse reports how many rates a refresh updated.
type RefreshRatesResponse struct {
	BaseCurrency string `json:"baseCurrency"`
	Updated      int    `json:"updated"`
}

// ConversionResponse is a converted amount with the rate that produced it.
type ConversionResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Rate     decimal.Decimal `json:"rate"`
	Inverted bool            `json:"inverted"`
}

// BudgetResponse represents a budget in API responses.
type BudgetResponse struct {
	ID             string          `json:"id"`
	CategoryID     string          `json:"categoryID"`
	CurrencyCode   string          `json:"currencyCode"`
	Amount         decimal.Decimal `json:"amount"`
	Period         string          `json:"period"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        *time.Time      `json:"endDate,omitempty"`
	IsActive       bool            `json:"isActive"`
	AlertThreshold decimal.Decimal `json:"alertThreshold"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// BudgetFromDomain converts domain budget to response.
func BudgetFromDomain(b *domain.Budget) *BudgetResponse {
	return &BudgetResponse{
		ID:             b.ID,
		CategoryID:     b.CategoryID,
		CurrencyCode:   b.CurrencyCode,
		Amount:         b.Amount,
		Period:         string(b.Period),
		StartDate:      b.StartDate,
		EndDate:        b.EndDate,
		IsActive:       b.IsActive,
		AlertThreshold: b.AlertThreshold,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// BudgetsFromDomain converts domain budgets to responses.
func BudgetsFromDomain(budgets []*domain.Budget) []*BudgetResponse {
	result := make([]*BudgetResponse, len(budgets))
	for i, b := range budgets {
		result[i] = BudgetFromDomain(b)
	}
	return result
}

// BudgetUsageResponse is the computed spend state of a budget window.
type BudgetUsageResponse struct {
	BudgetID       string                   `json:"budgetID"`
	WindowStart    time.Time                `json:"windowStart"`
	WindowEnd      time.Time                `json:"windowEnd"`
	Spent          decimal.Decimal          `json:"spent"`
	PercentageUsed decimal.Decimal          `json:"percentageUsed"`
	IsExceeded     bool                     `json:"isExceeded"`
	AlertTriggered bool                     `json:"alertTriggered"`
	Warnings       []BalanceWarningResponse `json:"warnings,omitempty"`
}

// BudgetUsageFromDomain converts computed usage plus conversion warnings to a
// response.
func BudgetUsageFromDomain(u *domain.BudgetUsage, warnings []usecase.BalanceWarning) *BudgetUsageResponse {
	return &BudgetUsageResponse{
		BudgetID:       u.BudgetID,
		WindowStart:    u.WindowStart,
		WindowEnd:      u.WindowEnd,
		Spent:          u.Spent,
		PercentageUsed: u.PercentageUsed,
		IsExceeded:     u.IsExceeded,
		AlertTriggered: u.AlertTriggered,
		Warnings:       WarningsFromUseCase(warnings),
	}
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryFromDomain converts domain category to response.
func CategoryFromDomain(c *domain.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Kind:      c.Kind,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CategoriesFromDomain converts domain categories to responses.
func CategoriesFromDomain(categories []*domain.Category) []*CategoryResponse {
	result := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		result[i] = CategoryFromDomain(c)
	}
	return result
}

// CatchUpResponse summarizes a catch-up run over past-due scheduled
// transactions.
type CatchUpResponse struct {
	AutomaticCount int `json:"automaticCount"`
	PendingCount   int `json:"pendingCount"`
	FailedCount    int `json:"failedCount"`
}

// CatchUpFromUseCase converts a catch-up summary to a response.
func CatchUpFromUseCase(s *usecase.CatchUpSummary) *CatchUpResponse {
	return &CatchUpResponse{
		AutomaticCount: s.Executed,
		PendingCount:   s.AwaitingConfirmation,
		FailedCount:    s.Failed,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
