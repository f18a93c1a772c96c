package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/pennyledger/pennyledger/internal/domain"
	"github.com/pennyledger/pennyledger/internal/usecase"
)

func newSchedulerFixture(now time.Time) (*fixture, *usecase.SchedulerUseCase) {
	f := newFixture(now)
	sched := usecase.NewSchedulerUseCase(f.txns, f.ledger, f.clock, slog.New(slog.DiscardHandler))
	return f, sched
}

func putScheduled(f *fixture, id string, d time.Time, automatic bool, mutate func(*domain.Transaction)) {
	txn := &domain.Transaction{
		ID:           id,
		Type:         domain.TypeExpense,
		Amount:       dec("20"),
		CurrencyCode: "USD",
		Date:         d,
		AccountID:    "acc-1",
		Status:       domain.StatusPending,
		IsScheduled:  true,
		IsAutomatic:  automatic,
	}
	if mutate != nil {
		mutate(txn)
	}
	f.txns.Put(txn)
}

func TestRunCatchUp(t *testing.T) {
	f, sched := newSchedulerFixture(date(2025, time.March, 10))
	f.addCurrency("USD")
	f.addCurrency("EUR")
	f.addAccount("acc-1", "USD", "1000")

	putScheduled(f, "auto-ok", date(2025, time.March, 5), true, nil)
	putScheduled(f, "manual", date(2025, time.March, 6), false, nil)
	// Cross-currency transfer to an account that does not exist: execution
	// fails while capturing the conversion, before anything is written.
	putScheduled(f, "auto-bad", date(2025, time.March, 7), true, func(txn *domain.Transaction) {
		txn.Type = domain.TypeTransfer
		txn.DestinationAccountID = strptr("gone")
	})
	// Not yet due; must be untouched.
	putScheduled(f, "future", date(2025, time.April, 1), true, nil)

	summary, err := sched.RunCatchUp(context.Background())
	if err != nil {
		t.Fatalf("RunCatchUp: %v", err)
	}

	if summary.Executed != 1 || summary.AwaitingConfirmation != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 1 executed, 1 awaiting, 1 failed", summary)
	}

	assertStatus := func(id string, want domain.TransactionStatus) {
		t.Helper()
		txn, err := f.txns.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID(%s): %v", id, err)
		}
		if txn.Status != want {
			t.Errorf("%s status = %s, want %s", id, txn.Status, want)
		}
	}
	assertStatus("auto-ok", domain.StatusExecuted)
	assertStatus("manual", domain.StatusPending)
	assertStatus("auto-bad", domain.StatusFailed)
	assertStatus("future", domain.StatusPending)

	if got := f.balance(t, "acc-1"); !got.Equal(dec("980")) {
		t.Errorf("balance = %s, want 980 (only auto-ok applied)", got)
	}
}

func TestRunCatchUp_SecondPassIsSafe(t *testing.T) {
	f, sched := newSchedulerFixture(date(2025, time.March, 10))
	f.addCurrency("USD")
	f.addAccount("acc-1", "USD", "1000")

	putScheduled(f, "auto-ok", date(2025, time.March, 5), true, nil)
	putScheduled(f, "manual", date(2025, time.March, 6), false, nil)

	if _, err := sched.RunCatchUp(context.Background()); err != nil {
		t.Fatalf("first RunCatchUp: %v", err)
	}
	balanceAfterFirst := f.balance(t, "acc-1")

	// Crash-and-restart: the pass runs again. Only still-pending rows are
	// eligible, so nothing executes twice.
	summary, err := sched.RunCatchUp(context.Background())
	if err != nil {
		t.Fatalf("second RunCatchUp: %v", err)
	}
	if summary.Executed != 0 || summary.Failed != 0 {
		t.Errorf("second pass summary = %+v, want nothing executed or failed", summary)
	}
	if summary.AwaitingConfirmation != 1 {
		t.Errorf("awaiting = %d, want the manual one still pending", summary.AwaitingConfirmation)
	}
	if got := f.balance(t, "acc-1"); !got.Equal(balanceAfterFirst) {
		t.Errorf("balance moved from %s to %s on second pass", balanceAfterFirst, got)
	}
}

func TestExecuteDue_SkipsManual(t *testing.T) {
	f, sched := newSchedulerFixture(date(2025, time.March, 10))
	f.addCurrency("USD")
	f.addAccount("acc-1", "USD", "1000")

	putScheduled(f, "auto-1", date(2025, time.March, 9), true, nil)
	putScheduled(f, "auto-2", date(2025, time.March, 10), true, nil)
	putScheduled(f, "manual", date(2025, time.March, 9), false, nil)

	executed, failed, err := sched.ExecuteDue(context.Background())
	if err != nil {
		t.Fatalf("ExecuteDue: %v", err)
	}
	if executed != 2 || failed != 0 {
		t.Errorf("executed = %d failed = %d, want 2 and 0", executed, failed)
	}

	manual, _ := f.txns.GetByID(context.Background(), "manual")
	if manual.Status != domain.StatusPending {
		t.Errorf("manual status = %s, want pending", manual.Status)
	}
	if got := f.balance(t, "acc-1"); !got.Equal(dec("960")) {
		t.Errorf("balance = %s, want 960", got)
	}
}

func TestConfirmAndCancel(t *testing.T) {
	f, sched := newSchedulerFixture(date(2025, time.March, 10))
	f.addCurrency("USD")
	f.addAccount("acc-1", "USD", "1000")

	putScheduled(f, "manual-1", date(2025, time.March, 5), false, nil)
	putScheduled(f, "manual-2", date(2025, time.March, 5), false, nil)

	confirmed, err := sched.Confirm(context.Background(), "manual-1")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.Status != domain.StatusExecuted {
		t.Errorf("confirmed status = %s, want executed", confirmed.Status)
	}

	cancelled, err := sched.Cancel(context.Background(), "manual-2")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("cancelled status = %s, want cancelled", cancelled.Status)
	}

	if got := f.balance(t, "acc-1"); !got.Equal(dec("980")) {
		t.Errorf("balance = %s, want 980 (only the confirmed one applied)", got)
	}
}

func TestRetry(t *testing.T) {
	f, sched := newSchedulerFixture(date(2025, time.March, 10))
	f.addCurrency("USD")
	f.addCurrency("EUR")
	f.addAccount("acc-1", "USD", "1000")

	putScheduled(f, "xfer", date(2025, time.March, 5), true, func(txn *domain.Transaction) {
		txn.Type = domain.TypeTransfer
		txn.DestinationAccountID = strptr("dst")
	})
	if _, err := f.ledger.MarkFailed(context.Background(), "xfer"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	// Destination still missing: retry fails and reports it.
	if _, err := sched.Retry(context.Background(), "xfer"); !errors.Is(err, domain.ErrScheduleExecutionFailed) {
		t.Fatalf("retry err = %v, want ErrScheduleExecutionFailed", err)
	}

	// The cause resolved, the retry goes through.
	f.addAccount("dst", "EUR", "0")
	f.addRate("USD", "EUR", "0.9")
	txn, err := sched.Retry(context.Background(), "xfer")
	if err != nil {
		t.Fatalf("Retry after fix: %v", err)
	}
	if txn.Status != domain.StatusExecuted {
		t.Errorf("status = %s, want executed", txn.Status)
	}
	if got := f.balance(t, "dst"); !got.Equal(dec("18")) {
		t.Errorf("destination balance = %s, want 18", got)
	}
}
