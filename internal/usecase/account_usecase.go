package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pennyledger/pennyledger/internal/domain"
)

// AccountUseCase handles account lifecycle.
type AccountUseCase struct {
	accountRepo  AccountRepository
	currencyRepo CurrencyRepository
	idGen        IDGenerator
	clock        Clock
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, currencyRepo CurrencyRepository, idGen IDGenerator, clock Clock) *AccountUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &AccountUseCase{
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
		idGen:        idGen,
		clock:        clock,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name           string
	Type           domain.AccountType
	CurrencyCode   string
	InitialBalance decimal.Decimal
}

// CreateAccount creates a new account. The current balance starts at the
// initial balance; every later value is recomputed from transactions.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	now := uc.clock.Now()
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		Name:           input.Name,
		Type:           input.Type,
		CurrencyCode:   input.CurrencyCode,
		InitialBalance: input.InitialBalance,
		CurrentBalance: input.InitialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.currencyRepo.GetByCode(ctx, account.CurrencyCode); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}
