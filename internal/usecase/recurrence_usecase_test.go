package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennyledger/pennyledger/internal/domain"
	"github.com/pennyledger/pennyledger/internal/usecase"
	"github.com/pennyledger/pennyledger/internal/usecase/mocks"
)

func newRecurrenceFixture(now time.Time) (*fixture, *usecase.RecurrenceUseCase) {
	f := newFixture(now)
	rec := usecase.NewRecurrenceUseCase(f.txns, f.ledger, mocks.NewMockIDGenerator(), f.clock)
	return f, rec
}

func putTemplate(f *fixture, id string, templateDate time.Time, rule domain.RecurrenceRule, mutate func(*domain.Transaction)) {
	tpl := &domain.Transaction{
		ID:           id,
		Type:         domain.TypeExpense,
		Amount:       dec("50"),
		CurrencyCode: "USD",
		Date:         templateDate,
		AccountID:    "acc-1",
		Status:       domain.StatusPending,
		IsRecurring:  true,
		Recurrence:   &rule,
	}
	if mutate != nil {
		mutate(tpl)
	}
	f.txns.Put(tpl)
}

func instanceDates(instances []*domain.Transaction) []time.Time {
	dates := make([]time.Time, len(instances))
	for i, inst := range instances {
		dates[i] = inst.Date
	}
	return dates
}

func TestGenerateInstances_MonthlyWithinHorizon(t *testing.T) {
	f, rec := newRecurrenceFixture(date(2025, time.January, 15))
	f.addCurrency("USD")
	f.addAccount("acc-1", "USD", "1000")
	putTemplate(f, "tpl-1", date(2025, time.January, 1), domain.RecurrenceRule{Interval: 1, Unit: domain.UnitMonth}, nil)

	instances, err := rec.GenerateInstances(context.Background(), "tpl-1", 3)
	if err != nil {
		t.Fatalf("GenerateInstances: %v", err)
	}

	want := []time.Time{
		date(2025, time.February, 1),
		date(2025, time.March, 1),
		date(2025, time.April, 1),
	}
	got := instanceDates(instances)
	if len(got) != len(want) {
		t.Fatalf("generated %d instances %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("instance[%d] date = %s, want %s", i, got[i], want[i])
		}
	}

	for _, inst := range instances {
		if inst.IsRecurring || inst.ParentRecurringTransactionID == nil || *inst.ParentRecurringTransactionID != "tpl-1" {
			t.Errorf("instance %s not linked to template", inst.ID)
		}
	}
}

func TestGenerateInstances_RerunGeneratesNothingNew(t *testing.T) {
	f, rec := newRecurrenceFixture(date(2025, time.January, 15))
	f.addCurrency("USD")
	f.addAccount("acc-1", "USD", "1000")
	putTemplate(f, "tpl-1", date(2025, time.January, 1), domain.RecurrenceRule{Interval: 1, Unit: domain.UnitMonth}, nil)

	first, err := rec.GenerateInstances(context.Background(), "tpl-1", 3)
	if err != nil {
		t.Fatalf("first GenerateInstances: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("first run generated %d, want 3", len(first))
	}

	second, err := rec.GenerateInstances(context.Background(), "tpl-1", 3)
	if err != nil {
		t.Fatalf("second GenerateInstances: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second run generated %d instances %v, want 0", len(second), instanceDates(second))
	}

	// 1 template + 3 instances, nothing duplicated.
	if n := f.txns.Count(); n != 4 {
		t.Errorf("stored transactions = %d, want 4", n)
	}
}

func TestGenerateInstances_ResumesFromLastInstance(t *testing.T) {
	f, rec := newRecurrenceFixture(date(2025, time.January, 15))
	f.addCurrency("USD")
	f.addAccount("acc-1", "USD", "1000")
	putTemplate(f, "tpl-1", date(2025, time.January, 1), domain.RecurrenceRule{Interval: 1, Unit: domain.UnitMonth}, nil)

	if _, err := rec.GenerateInstances(context.Background(), "tpl-1", 2); err != nil {
		t.Fatalf("GenerateInstances: %v", err)
	}

	// Widening the horizon continues from the last generated date.
	more, err := rec.GenerateInstances(context.Background(), "tpl-1", 4)
	if err != nil {
		t.Fatalf("GenerateInstances: %v", err)
	}
	got := instanceDates(more)
	want := []time.Time{date(2025, time.April, 1), date(2025, time.May, 1)}
	if len(got) != len(want) {
		t.Fatalf("generated %v, want %v", got, want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("instance[%d] date = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestGenerateInstances_WorkingDayShiftFeedsNextStep(t *testing.T) {
	f, rec := newRecurrenceFixture(date(2025, time.January, 2))
	f.addCurrency("USD")
	f.addAccount("acc-1", "USD", "1000")

	// 2025-01-03 is a Friday. Weekly steps land on Friday 10th, 17th... but
	// with a 8-day interval the first lands on Saturday the 11th and shifts to
	// Monday the 13th; the next step counts from the 13th, not the 11th.
	putTemplate(f, "tpl-1", date(2025, time.January, 3), domain.RecurrenceRule{Interval: 8, Unit: domain.UnitDay}, func(tpl *domain.Transaction) {
		tpl.AdjustToWorkingDay = true
	})

	instances, err := rec.GenerateInstances(context.Background(), "tpl-1", 1)
	if err != nil {
		t.Fatalf("GenerateInstances: %v", err)
	}
	got := instanceDates(instances)
	want := []time.Time{
		date(2025, time.January, 13), // 11th (Sat) -> Mon 13th
		date(2025, time.January, 21), // 13th + 8d (Tue)
		date(2025, time.January, 29),
	}
	if len(got) < len(want) {
		t.Fatalf("generated %v, want at least %v", got, want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("instance[%d] date = %s, want %s", i, got[i], want[i])
		}
	}
	for _, d := range got {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("instance on weekend: %s (%s)", d, wd)
		}
	}
}

func TestGenerateInstances_StopsAtEndDate(t *testing.T) {
	f, rec := newRecurrenceFixture(date(2025, time.January, 15))
	f.addCurrency("USD")
	f.addAccount("acc-1", "USD", "1000")

	end := date(2025, time.March, 1)
	putTemplate(f, "tpl-1", date(2025, time.January, 1), domain.RecurrenceRule{Interval: 1, Unit: domain.UnitMonth}, func(tpl *domain.Transaction) {
		tpl.RecurrenceEndDate = &end
	})

	instances, err := rec.GenerateInstances(context.Background(), "tpl-1", 6)
	if err != nil {
		t.Fatalf("GenerateInstances: %v", err)
	}
	got := instanceDates(instances)
	want := []time.Time{date(2025, time.February, 1), date(2025, time.March, 1)}
	if len(got) != len(want) {
		t.Fatalf("generated %v, want %v", got, want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("instance[%d] date = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestGenerateInstances_StatusAndBalance(t *testing.T) {
	f, rec := newRecurrenceFixture(date(2025, time.March, 15))
	f.addCurrency("USD")
	f.addAccount("acc-1", "USD", "1000")
	putTemplate(f, "tpl-1", date(2025, time.January, 20), domain.RecurrenceRule{Interval: 1, Unit: domain.UnitMonth}, nil)

	instances, err := rec.GenerateInstances(context.Background(), "tpl-1", 3)
	if err != nil {
		t.Fatalf("GenerateInstances: %v", err)
	}

	executed := 0
	for _, inst := range instances {
		if inst.Date.After(date(2025, time.March, 15)) {
			if inst.Status != domain.StatusPending {
				t.Errorf("future instance %s status = %s, want pending", inst.Date, inst.Status)
			}
		} else {
			if inst.Status != domain.StatusExecuted {
				t.Errorf("past instance %s status = %s, want executed", inst.Date, inst.Status)
			}
			executed++
		}
	}
	if executed == 0 {
		t.Fatal("expected at least one past-due instance to execute")
	}

	// Only executed instances hit the balance.
	wantBalance := dec("1000").Sub(dec("50").Mul(decFromInt(executed)))
	if got := f.balance(t, "acc-1"); !got.Equal(wantBalance) {
		t.Errorf("balance = %s, want %s", got, wantBalance)
	}
}

func TestGenerateInstances_Errors(t *testing.T) {
	f, rec := newRecurrenceFixture(date(2025, time.January, 15))
	f.addCurrency("USD")
	f.addAccount("acc-1", "USD", "1000")

	f.txns.Put(&domain.Transaction{
		ID:           "plain-1",
		Type:         domain.TypeExpense,
		Amount:       dec("5"),
		CurrencyCode: "USD",
		Date:         date(2025, time.January, 1),
		AccountID:    "acc-1",
		Status:       domain.StatusExecuted,
	})

	if _, err := rec.GenerateInstances(context.Background(), "plain-1", 3); !errors.Is(err, domain.ErrNotRecurringTemplate) {
		t.Errorf("non-template err = %v, want ErrNotRecurringTemplate", err)
	}
	if _, err := rec.GenerateInstances(context.Background(), "missing", 3); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("missing template err = %v, want ErrTransactionNotFound", err)
	}
}

func decFromInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }
