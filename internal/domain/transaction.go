package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies how a transaction affects its owning account.
type TransactionType string

const (
	TypeExpense          TransactionType = "expense"
	TypeIncome           TransactionType = "income"
	TypeTransfer         TransactionType = "transfer"
	TypeLiabilityPayment TransactionType = "liabilityPayment"
	TypeAdjustment       TransactionType = "adjustment"
)

// TransactionStatus is the execution state of a transaction.
// Only pending transactions may still change state; the other three are
// terminal for that instance.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusExecuted  TransactionStatus = "executed"
	StatusCancelled TransactionStatus = "cancelled"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is a single money movement, a scheduled future movement, or a
// recurring template that generates instances.
//
// For cross-currency transfers the effective conversion is frozen at
// execution time: either DestinationAmount (manual entry) or
// ExchangeRateSnapshot (captured from the rate store when the transfer was
// created). Later rate changes never alter the historical contribution.
type Transaction struct {
	ID                   string            `json:"id"`
	Type                 TransactionType   `json:"type"`
	Amount               decimal.Decimal   `json:"amount"`
	CurrencyCode         string            `json:"currencyCode"`
	Date                 time.Time         `json:"date"`
	AccountID            string            `json:"accountID"`
	DestinationAccountID *string           `json:"destinationAccountID,omitempty"`
	CategoryID           *string           `json:"categoryID,omitempty"`
	Notes                string            `json:"notes,omitempty"`
	DestinationAmount    *decimal.Decimal  `json:"destinationAmount,omitempty"`
	ExchangeRateSnapshot *decimal.Decimal  `json:"exchangeRateSnapshot,omitempty"`
	IsCustomRate         bool              `json:"isCustomRate"`
	InterestAmount       decimal.Decimal   `json:"interestAmount"`
	IsScheduled          bool              `json:"isScheduled"`
	IsAutomatic          bool              `json:"isAutomatic"`
	Status               TransactionStatus `json:"status"`

	IsRecurring                  bool            `json:"isRecurring"`
	Recurrence                   *RecurrenceRule `json:"recurrence,omitempty"`
	RecurrenceEndDate            *time.Time      `json:"recurrenceEndDate,omitempty"`
	ParentRecurringTransactionID *string         `json:"parentRecurringTransactionID,omitempty"`
	AdjustToWorkingDay           bool            `json:"adjustToWorkingDay"`
	IncludeStartDayInCount       bool            `json:"includeStartDayInCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks structural invariants at creation time.
func (t *Transaction) Validate() error {
	switch t.Type {
	case TypeExpense, TypeIncome, TypeTransfer, TypeLiabilityPayment:
		if t.Amount.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidAmount
		}
	case TypeAdjustment:
		// Adjustments carry an already signed amount.
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransactionType, t.Type)
	}

	if t.Type == TypeTransfer {
		if t.DestinationAccountID == nil {
			return ErrMissingDestination
		}
		if *t.DestinationAccountID == t.AccountID {
			return ErrSameAccount
		}
	} else if t.DestinationAccountID != nil {
		return ErrUnexpectedDestination
	}

	if err := ValidateCurrencyCode(t.CurrencyCode); err != nil {
		return err
	}

	if t.IsTemplate() {
		if t.Recurrence == nil {
			return fmt.Errorf("%w: template has no rule", ErrRecurrenceInvalid)
		}
		return t.Recurrence.Validate()
	}

	return nil
}

// IsTemplate reports whether the transaction is a recurring template.
// Templates define future instances and are never executed directly.
func (t *Transaction) IsTemplate() bool {
	return t.IsRecurring && t.ParentRecurringTransactionID == nil
}

// Effect returns the signed balance contribution on the owning account.
// Only executed, non-template transactions contribute.
func (t *Transaction) Effect() (decimal.Decimal, error) {
	if t.Status != StatusExecuted || t.IsTemplate() {
		return decimal.Zero, nil
	}

	switch t.Type {
	case TypeExpense:
		return t.Amount.Neg(), nil
	case TypeIncome:
		return t.Amount, nil
	case TypeTransfer:
		return t.Amount.Neg(), nil
	case TypeLiabilityPayment:
		// Interest portion is tracked separately and does not reduce principal.
		return t.Amount.Sub(t.InterestAmount).Neg(), nil
	case TypeAdjustment:
		return t.Amount, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownTransactionType, t.Type)
	}
}

// CreditedAmount resolves the amount credited to the destination account of
// an executed transfer without consulting the current rate. Precedence:
// explicit destination amount, then the frozen snapshot. The second return is
// false when neither exists and the caller must fall back to live conversion
// (legacy transfers created before snapshotting).
func (t *Transaction) CreditedAmount() (decimal.Decimal, bool) {
	if t.Type != TypeTransfer || t.Status != StatusExecuted {
		return decimal.Zero, true
	}
	if t.DestinationAmount != nil {
		return *t.DestinationAmount, true
	}
	if t.ExchangeRateSnapshot != nil {
		return t.Amount.Mul(*t.ExchangeRateSnapshot), true
	}
	return decimal.Zero, false
}

// IsDue reports whether a scheduled transaction's date has arrived.
func (t *Transaction) IsDue(now time.Time) bool {
	return t.IsScheduled && t.Status == StatusPending && !t.Date.After(now)
}

// CanTransition reports whether the status state machine allows moving to
// the target status.
func (t *Transaction) CanTransition(to TransactionStatus) bool {
	switch t.Status {
	case StatusPending:
		return to == StatusExecuted || to == StatusCancelled || to == StatusFailed
	case StatusFailed:
		return to == StatusExecuted
	default:
		return false
	}
}

// TransitionTo advances the status, enforcing the state machine.
func (t *Transaction) TransitionTo(to TransactionStatus) error {
	if !t.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, t.Status, to)
	}
	t.Status = to
	return nil
}
