package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrUnknownAccountType = errors.New("unknown account type")

	// Transaction errors
	ErrTransactionNotFound       = errors.New("transaction not found")
	ErrInvalidAmount             = errors.New("amount must be positive")
	ErrSameAccount               = errors.New("cannot transfer to same account")
	ErrMissingDestination        = errors.New("transfer requires a destination account")
	ErrUnexpectedDestination     = errors.New("only transfers may name a destination account")
	ErrUnknownTransactionType    = errors.New("unknown transaction type")
	ErrInvalidStatusTransition   = errors.New("invalid status transition")
	ErrNotScheduled              = errors.New("transaction is not scheduled")
	ErrNotRecurringTemplate      = errors.New("transaction is not a recurring template")
	ErrScheduleExecutionFailed   = errors.New("scheduled execution failed")
	ErrExecutedTransferImmutable = errors.New("conversion of an executed transfer cannot change")

	// Currency and rate errors
	ErrCurrencyNotFound = errors.New("currency not found")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrRateUnavailable  = errors.New("no exchange rate available for currency pair")
	ErrInvalidRate      = errors.New("exchange rate must be positive")

	// Recurrence errors
	ErrRecurrenceInvalid = errors.New("invalid recurrence rule")

	// Budget errors
	ErrBudgetNotFound   = errors.New("budget not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidPeriod    = errors.New("unknown budget period")

	// Concurrency errors
	ErrConflict = errors.New("concurrent modification detected")
)
