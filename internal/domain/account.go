package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account.
type AccountType string

const (
	AccountPayment    AccountType = "payment"
	AccountCash       AccountType = "cash"
	AccountCreditCard AccountType = "creditCard"
	AccountAsset      AccountType = "asset"
	AccountLiability  AccountType = "liability"
)

// MaxAccountNameLength bounds account names.
const MaxAccountNameLength = 255

// Account holds money in a single currency. CurrentBalance is derived state:
// it is recomputed from the initial balance plus every transaction touching
// the account, within the same store transaction as the triggering mutation.
// Version guards against concurrent recomputations overwriting each other.
type Account struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	CurrencyCode   string          `json:"currencyCode"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Validate checks account fields at creation time.
func (a *Account) Validate() error {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}
	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}
	switch a.Type {
	case AccountPayment, AccountCash, AccountCreditCard, AccountAsset, AccountLiability:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAccountType, a.Type)
	}
	return ValidateCurrencyCode(a.CurrencyCode)
}
