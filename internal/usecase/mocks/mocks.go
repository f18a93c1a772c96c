// Package mocks provides hand-written in-memory mocks for the usecase ports.
// Each mock behaves like a tiny store by default; individual methods can be
// overridden through the corresponding Func field.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennyledger/pennyledger/internal/domain"
	"github.com/pennyledger/pennyledger/internal/usecase"
)

// MockTx is a no-op store transaction.
type MockTx struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTx) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTx) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out MockTx values.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
	Begun     int
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.Begun++
	return &MockTx{}, nil
}

// MockRetrier runs the operation once, retrying only on domain.ErrConflict.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = operation()
		if err == nil || err != domain.ErrConflict {
			return err
		}
	}
	return err
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	GenerateFunc func() string
	mu           sync.Mutex
	counter      int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// FixedClock returns a fixed time.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time { return c.Time }

// MockAccountRepository is an in-memory AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc        func(ctx context.Context, account *domain.Account) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Account, error)
	UpdateBalanceFunc func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

func (m *MockAccountRepository) Put(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.Put(account)
	return nil
}

// GetByID returns a copy, so callers cannot mutate the store without going
// through a write method. Failed operations then leave no trace, as a rolled
// back store transaction would.
func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		acc, err := m.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, version, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if acc.Version != version {
		return domain.ErrConflict
	}
	acc.CurrentBalance = balance
	acc.Version++
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Account
	for _, acc := range m.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
	return nil
}

// MockTransactionRepository is an in-memory TransactionRepository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns map[string]*domain.Transaction

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	ListDuePendingFunc func(ctx context.Context, cutoff time.Time) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{txns: make(map[string]*domain.Transaction)}
}

func (m *MockTransactionRepository) Put(txn *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.ID] = txn
}

func (m *MockTransactionRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.txns)
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.Put(txn)
	return nil
}

// GetByID returns a copy; only Update and UpdateStatus write back.
func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if txn, ok := m.txns[id]; ok {
		cp := *txn
		return &cp, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[txn.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	m.txns[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.txns, id)
	return nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, txn := range m.txns {
		if txn.AccountID == accountID {
			out = append(out, txn)
		}
	}
	sortByDate(out)
	return out, nil
}

func (m *MockTransactionRepository) ListOwnedForBalance(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, txn := range m.txns {
		if txn.AccountID == accountID && txn.Status == domain.StatusExecuted && !txn.IsTemplate() {
			out = append(out, txn)
		}
	}
	sortByDate(out)
	return out, nil
}

func (m *MockTransactionRepository) ListIncomingTransfers(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, txn := range m.txns {
		if txn.Type == domain.TypeTransfer &&
			txn.Status == domain.StatusExecuted &&
			txn.DestinationAccountID != nil &&
			*txn.DestinationAccountID == accountID {
			out = append(out, txn)
		}
	}
	sortByDate(out)
	return out, nil
}

func (m *MockTransactionRepository) LastInstanceDate(ctx context.Context, templateID string) (*time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last *time.Time
	for _, txn := range m.txns {
		if txn.ParentRecurringTransactionID == nil || *txn.ParentRecurringTransactionID != templateID {
			continue
		}
		if last == nil || txn.Date.After(*last) {
			d := txn.Date
			last = &d
		}
	}
	return last, nil
}

func (m *MockTransactionRepository) ListInstances(ctx context.Context, templateID string) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, txn := range m.txns {
		if txn.ParentRecurringTransactionID != nil && *txn.ParentRecurringTransactionID == templateID {
			out = append(out, txn)
		}
	}
	sortByDate(out)
	return out, nil
}

func (m *MockTransactionRepository) DeleteInstancesFrom(ctx context.Context, tx usecase.Transaction, templateID string, from time.Time) ([]*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []*domain.Transaction
	for id, txn := range m.txns {
		if txn.ParentRecurringTransactionID != nil &&
			*txn.ParentRecurringTransactionID == templateID &&
			!txn.Date.Before(from) {
			removed = append(removed, txn)
			delete(m.txns, id)
		}
	}
	sortByDate(removed)
	return removed, nil
}

func (m *MockTransactionRepository) ListDuePending(ctx context.Context, cutoff time.Time) ([]*domain.Transaction, error) {
	if m.ListDuePendingFunc != nil {
		return m.ListDuePendingFunc(ctx, cutoff)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, txn := range m.txns {
		if txn.IsScheduled && !txn.IsTemplate() &&
			txn.Status == domain.StatusPending && !txn.Date.After(cutoff) {
			out = append(out, txn)
		}
	}
	sortByDate(out)
	return out, nil
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.txns[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	txn.Status = status
	txn.UpdatedAt = updatedAt
	return nil
}

func (m *MockTransactionRepository) ListExecutedExpenses(ctx context.Context, categoryID string, from, to time.Time) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, txn := range m.txns {
		if txn.Type == domain.TypeExpense &&
			txn.Status == domain.StatusExecuted &&
			txn.CategoryID != nil && *txn.CategoryID == categoryID &&
			!txn.Date.Before(from) && txn.Date.Before(to) {
			out = append(out, txn)
		}
	}
	sortByDate(out)
	return out, nil
}

func (m *MockTransactionRepository) ListAll(ctx context.Context) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, txn := range m.txns {
		out = append(out, txn)
	}
	sortByDate(out)
	return out, nil
}

func sortByDate(txns []*domain.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if txns[i].Date.Equal(txns[j].Date) {
			return txns[i].ID < txns[j].ID
		}
		return txns[i].Date.Before(txns[j].Date)
	})
}

// MockCurrencyRepository is an in-memory CurrencyRepository.
type MockCurrencyRepository struct {
	mu         sync.RWMutex
	currencies map[string]*domain.Currency
}

func NewMockCurrencyRepository() *MockCurrencyRepository {
	return &MockCurrencyRepository{currencies: make(map[string]*domain.Currency)}
}

func (m *MockCurrencyRepository) Put(c *domain.Currency) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currencies[c.Code] = c
}

func (m *MockCurrencyRepository) Create(ctx context.Context, currency *domain.Currency) error {
	m.Put(currency)
	return nil
}

func (m *MockCurrencyRepository) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.currencies[code]; ok {
		return c, nil
	}
	return nil, domain.ErrCurrencyNotFound
}

func (m *MockCurrencyRepository) List(ctx context.Context) ([]*domain.Currency, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Currency
	for _, c := range m.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MockCurrencyRepository) IncrementUsage(ctx context.Context, tx usecase.Transaction, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.currencies[code]; ok {
		c.UsageCount++
		return nil
	}
	return domain.ErrCurrencyNotFound
}

// MockRateRepository is an in-memory RateRepository.
type MockRateRepository struct {
	mu    sync.RWMutex
	rates map[string]*domain.ExchangeRate

	GetByPairFunc func(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error)
}

func NewMockRateRepository() *MockRateRepository {
	return &MockRateRepository{rates: make(map[string]*domain.ExchangeRate)}
}

func pairKey(from, to string) string { return from + ":" + to }

func (m *MockRateRepository) Put(rate *domain.ExchangeRate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates[pairKey(rate.FromCode, rate.ToCode)] = rate
}

func (m *MockRateRepository) Upsert(ctx context.Context, rate *domain.ExchangeRate) error {
	m.Put(rate)
	return nil
}

func (m *MockRateRepository) GetByPair(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	if m.GetByPairFunc != nil {
		return m.GetByPairFunc(ctx, fromCode, toCode)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rates[pairKey(fromCode, toCode)]; ok {
		return r, nil
	}
	return nil, domain.ErrRateUnavailable
}

func (m *MockRateRepository) List(ctx context.Context) ([]*domain.ExchangeRate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ExchangeRate
	for _, r := range m.rates {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return pairKey(out[i].FromCode, out[i].ToCode) < pairKey(out[j].FromCode, out[j].ToCode)
	})
	return out, nil
}

// MockBudgetRepository is an in-memory BudgetRepository.
type MockBudgetRepository struct {
	mu      sync.RWMutex
	budgets map[string]*domain.Budget
}

func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{budgets: make(map[string]*domain.Budget)}
}

func (m *MockBudgetRepository) Put(b *domain.Budget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets[b.ID] = b
}

func (m *MockBudgetRepository) Create(ctx context.Context, budget *domain.Budget) error {
	m.Put(budget)
	return nil
}

func (m *MockBudgetRepository) GetByID(ctx context.Context, id string) (*domain.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.budgets[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBudgetNotFound
}

func (m *MockBudgetRepository) Update(ctx context.Context, budget *domain.Budget) error {
	m.Put(budget)
	return nil
}

func (m *MockBudgetRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.budgets, id)
	return nil
}

func (m *MockBudgetRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Budget
	for _, b := range m.budgets {
		if activeOnly && !b.IsActive {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockCategoryRepository is an in-memory CategoryRepository.
type MockCategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{categories: make(map[string]*domain.Category)}
}

func (m *MockCategoryRepository) Put(c *domain.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = c
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.Put(category)
	return nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.categories[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Category
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockCache is an in-memory Cache. TTLs are ignored.
type MockCache struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("cache miss: %s", key)
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// MockRateSource returns a fixed rate table.
type MockRateSource struct {
	Rates map[string]decimal.Decimal
	Err   error

	FetchFunc func(ctx context.Context, baseCurrency string) (map[string]decimal.Decimal, error)
}

func (m *MockRateSource) FetchCurrentRates(ctx context.Context, baseCurrency string) (map[string]decimal.Decimal, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, baseCurrency)
	}
	return m.Rates, m.Err
}
