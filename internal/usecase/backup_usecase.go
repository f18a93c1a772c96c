package usecase

import (
	"context"

	"github.com/pennyledger/pennyledger/internal/domain"
)

// exportAccountLimit caps the account list pulled for an export. A single
// user's device never approaches it.
const exportAccountLimit = 10000

// BackupExport is the full entity dump consumed by the backup/export
// collaborator. Every persisted field round-trips through the domain types'
// JSON tags, including exchangeRateSnapshot, destinationAmount and
// parentRecurringTransactionID.
type BackupExport struct {
	Accounts     []*domain.Account      `json:"accounts"`
	Transactions []*domain.Transaction  `json:"transactions"`
	Categories   []*domain.Category     `json:"categories"`
	Currencies   []*domain.Currency     `json:"currencies"`
	Rates        []*domain.ExchangeRate `json:"rates"`
	Budgets      []*domain.Budget       `json:"budgets"`
}

// BackupUseCase assembles entity lists for export. Formatting and file I/O
// belong to the collaborator, not here.
type BackupUseCase struct {
	accountRepo  AccountRepository
	txRepo       TransactionRepository
	categoryRepo CategoryRepository
	currencyRepo CurrencyRepository
	rateRepo     RateRepository
	budgetRepo   BudgetRepository
}

// NewBackupUseCase creates a new BackupUseCase.
func NewBackupUseCase(
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	categoryRepo CategoryRepository,
	currencyRepo CurrencyRepository,
	rateRepo RateRepository,
	budgetRepo BudgetRepository,
) *BackupUseCase {
	return &BackupUseCase{
		accountRepo:  accountRepo,
		txRepo:       txRepo,
		categoryRepo: categoryRepo,
		currencyRepo: currencyRepo,
		rateRepo:     rateRepo,
		budgetRepo:   budgetRepo,
	}
}

// Export gathers every entity list.
func (uc *BackupUseCase) Export(ctx context.Context) (*BackupExport, error) {
	accounts, err := uc.accountRepo.List(ctx, exportAccountLimit, 0)
	if err != nil {
		return nil, err
	}

	transactions, err := uc.txRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	currencies, err := uc.currencyRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	rates, err := uc.rateRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	budgets, err := uc.budgetRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}

	return &BackupExport{
		Accounts:     accounts,
		Transactions: transactions,
		Categories:   categories,
		Currencies:   currencies,
		Rates:        rates,
		Budgets:      budgets,
	}, nil
}
