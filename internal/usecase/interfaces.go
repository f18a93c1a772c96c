package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennyledger/pennyledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	// UpdateBalance writes the recomputed balance, guarded by the version the
	// balance was computed against. Returns domain.ErrConflict on a stale read.
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	Delete(ctx context.Context, tx Transaction, id string) error
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	Update(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)

	// ListOwnedForBalance returns executed, non-template transactions owned by
	// the account, for balance recomputation inside tx.
	ListOwnedForBalance(ctx context.Context, tx Transaction, accountID string) ([]*domain.Transaction, error)
	// ListIncomingTransfers returns executed transfers naming the account as
	// destination, for balance recomputation inside tx.
	ListIncomingTransfers(ctx context.Context, tx Transaction, accountID string) ([]*domain.Transaction, error)

	// LastInstanceDate returns the max date among generated instances of a
	// template, or nil when none exist yet. Always read fresh, never cached.
	LastInstanceDate(ctx context.Context, templateID string) (*time.Time, error)
	ListInstances(ctx context.Context, templateID string) ([]*domain.Transaction, error)
	// DeleteInstancesFrom removes instances of a template dated on or after
	// from, returning the removed rows so balances can be recomputed.
	DeleteInstancesFrom(ctx context.Context, tx Transaction, templateID string, from time.Time) ([]*domain.Transaction, error)

	// ListDuePending returns scheduled, non-template transactions whose date
	// is at or before the cutoff and whose status is still pending, in
	// ascending date order.
	ListDuePending(ctx context.Context, cutoff time.Time) ([]*domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TransactionStatus, updatedAt time.Time) error

	// ListExecutedExpenses returns executed expense transactions for a
	// category within [from, to), for budget aggregation.
	ListExecutedExpenses(ctx context.Context, categoryID string, from, to time.Time) ([]*domain.Transaction, error)
	ListAll(ctx context.Context) ([]*domain.Transaction, error)
}

// CurrencyRepository defines data access for currency definitions.
type CurrencyRepository interface {
	Create(ctx context.Context, currency *domain.Currency) error
	GetByCode(ctx context.Context, code string) (*domain.Currency, error)
	List(ctx context.Context) ([]*domain.Currency, error)
	IncrementUsage(ctx context.Context, tx Transaction, code string) error
}

// RateRepository defines data access for exchange rates. One current rate per
// directed pair; Upsert overwrites in place.
type RateRepository interface {
	Upsert(ctx context.Context, rate *domain.ExchangeRate) error
	GetByPair(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error)
	List(ctx context.Context) ([]*domain.ExchangeRate, error)
}

// BudgetRepository defines data access for budgets.
type BudgetRepository interface {
	Create(ctx context.Context, budget *domain.Budget) error
	GetByID(ctx context.Context, id string) (*domain.Budget, error)
	Update(ctx context.Context, budget *domain.Budget) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, activeOnly bool) ([]*domain.Budget, error)
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}

// Transaction represents a store transaction. All balance mutations for one
// ledger operation commit or roll back as a unit.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles store transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on retryable conflicts (deadlock,
// serialization failure, stale balance version).
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations for current rates.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage for the HTTP surface.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// RateSource is the external rate-fetch collaborator. Fetches are
// network-bound and asynchronous; the core only consumes the result through
// the currency use case's refresh call.
type RateSource interface {
	FetchCurrentRates(ctx context.Context, baseCurrency string) (map[string]decimal.Decimal, error)
}

// Clock abstracts now() so temporal logic is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
