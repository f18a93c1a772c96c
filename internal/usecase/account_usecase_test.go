package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pennyledger/pennyledger/internal/domain"
	"github.com/pennyledger/pennyledger/internal/usecase"
	"github.com/pennyledger/pennyledger/internal/usecase/mocks"
)

func newAccountUseCase(currencies *mocks.MockCurrencyRepository) (*mocks.MockAccountRepository, *usecase.AccountUseCase) {
	accounts := mocks.NewMockAccountRepository()
	uc := usecase.NewAccountUseCase(accounts, currencies, mocks.NewMockIDGenerator(),
		mocks.FixedClock{Time: date(2025, time.March, 10)})
	return accounts, uc
}

func TestCreateAccount(t *testing.T) {
	currencies := mocks.NewMockCurrencyRepository()
	currencies.Put(&domain.Currency{Code: "USD", Name: "US Dollar"})
	_, uc := newAccountUseCase(currencies)

	account, err := uc.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Name:           "Checking",
		Type:           domain.AccountPayment,
		CurrencyCode:   "USD",
		InitialBalance: dec("250"),
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if !account.CurrentBalance.Equal(dec("250")) {
		t.Errorf("current balance = %s, want the initial 250", account.CurrentBalance)
	}

	tests := []struct {
		name    string
		input   usecase.CreateAccountInput
		wantErr error
	}{
		{
			name:    "empty name",
			input:   usecase.CreateAccountInput{Name: "  ", Type: domain.AccountCash, CurrencyCode: "USD"},
			wantErr: domain.ErrInvalidAccountName,
		},
		{
			name:    "unknown type",
			input:   usecase.CreateAccountInput{Name: "X", Type: "wallet", CurrencyCode: "USD"},
			wantErr: domain.ErrUnknownAccountType,
		},
		{
			name:    "unknown currency",
			input:   usecase.CreateAccountInput{Name: "X", Type: domain.AccountCash, CurrencyCode: "XXX"},
			wantErr: domain.ErrCurrencyNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.CreateAccount(context.Background(), tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListAccounts_LimitDefaults(t *testing.T) {
	currencies := mocks.NewMockCurrencyRepository()
	currencies.Put(&domain.Currency{Code: "USD", Name: "US Dollar"})
	accounts, uc := newAccountUseCase(currencies)
	accounts.Put(&domain.Account{ID: "a", Name: "a", Type: domain.AccountCash, CurrencyCode: "USD"})

	got, err := uc.ListAccounts(context.Background(), usecase.ListAccountsInput{})
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("accounts = %d, want 1", len(got))
	}
}
