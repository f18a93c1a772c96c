package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pennyledger/pennyledger/internal/domain"
	"github.com/pennyledger/pennyledger/internal/usecase"
	"github.com/pennyledger/pennyledger/internal/usecase/mocks"
)

func TestExport(t *testing.T) {
	accounts := mocks.NewMockAccountRepository()
	txns := mocks.NewMockTransactionRepository()
	categories := mocks.NewMockCategoryRepository()
	currencies := mocks.NewMockCurrencyRepository()
	rates := mocks.NewMockRateRepository()
	budgets := mocks.NewMockBudgetRepository()

	accounts.Put(&domain.Account{ID: "acc-1", Name: "Checking", Type: domain.AccountPayment, CurrencyCode: "USD"})
	currencies.Put(&domain.Currency{Code: "USD", Name: "US Dollar"})
	currencies.Put(&domain.Currency{Code: "EUR", Name: "Euro"})
	rates.Put(&domain.ExchangeRate{FromCode: "USD", ToCode: "EUR", Rate: dec("0.9")})
	categories.Put(&domain.Category{ID: "cat-1", Name: "Groceries"})
	budgets.Put(&domain.Budget{ID: "bud-1", CategoryID: "cat-1", CurrencyCode: "USD", Amount: dec("500"), Period: domain.PeriodMonthly, IsActive: false})

	snapshot := dec("0.9")
	txns.Put(&domain.Transaction{
		ID:                   "txn-1",
		Type:                 domain.TypeTransfer,
		Amount:               dec("100"),
		CurrencyCode:         "USD",
		Date:                 time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		AccountID:            "acc-1",
		DestinationAccountID: strptr("acc-2"),
		ExchangeRateSnapshot: &snapshot,
		Status:               domain.StatusExecuted,
	})

	uc := usecase.NewBackupUseCase(accounts, txns, categories, currencies, rates, budgets)

	export, err := uc.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(export.Accounts) != 1 || len(export.Transactions) != 1 ||
		len(export.Categories) != 1 || len(export.Currencies) != 2 ||
		len(export.Rates) != 1 || len(export.Budgets) != 1 {
		t.Fatalf("export shape = %+v", export)
	}

	// The frozen conversion must survive a round trip.
	raw, err := json.Marshal(export)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored usecase.BackupExport
	if err := json.Unmarshal(raw, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := restored.Transactions[0]
	if got.ExchangeRateSnapshot == nil || !got.ExchangeRateSnapshot.Equal(snapshot) {
		t.Errorf("snapshot after round trip = %v, want %s", got.ExchangeRateSnapshot, snapshot)
	}
}
