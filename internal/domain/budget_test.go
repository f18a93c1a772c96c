package domain

import (
	"testing"
	"time"
)

func TestPeriodWindowWeekly(t *testing.T) {
	b := Budget{Period: PeriodWeekly}

	// Wednesday 2024-06-12; week starts Monday 2024-06-10.
	start, end := b.PeriodWindow(time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC))
	if !start.Equal(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("week start = %v, want Monday 2024-06-10", start)
	}
	if !end.Equal(time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("week end = %v, want Monday 2024-06-17", end)
	}

	// Sunday belongs to the week that started the previous Monday.
	start, _ = b.PeriodWindow(time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("sunday week start = %v, want Monday 2024-06-10", start)
	}
}

func TestPeriodWindowMonthly(t *testing.T) {
	b := Budget{Period: PeriodMonthly}

	start, end := b.PeriodWindow(time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("month start = %v", start)
	}
	if !end.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("month end = %v", end)
	}
}

func TestPeriodWindowYearly(t *testing.T) {
	b := Budget{Period: PeriodYearly}

	start, end := b.PeriodWindow(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("year start = %v", start)
	}
	if !end.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("year end = %v", end)
	}
}

func TestPeriodWindowCustomFrozen(t *testing.T) {
	endDate := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	b := Budget{
		Period:    PeriodCustom,
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   &endDate,
	}

	// Long after EndDate the window still reports the original range.
	start, end := b.PeriodWindow(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if !start.Equal(b.StartDate) {
		t.Errorf("frozen start = %v, want %v", start, b.StartDate)
	}
	if !end.Equal(endDate.AddDate(0, 0, 1)) {
		t.Errorf("frozen end = %v, want day after %v", end, endDate)
	}

	// The window is identical regardless of how much time has elapsed.
	start2, end2 := b.PeriodWindow(time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC))
	if !start.Equal(start2) || !end.Equal(end2) {
		t.Error("expired custom window must not roll over")
	}
}

func TestPeriodWindowCustomDefaultLength(t *testing.T) {
	b := Budget{
		Period:    PeriodCustom,
		StartDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	start, end := b.PeriodWindow(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC))
	if !start.Equal(b.StartDate) {
		t.Errorf("custom start = %v", start)
	}
	if !end.Equal(b.StartDate.AddDate(0, 0, 30)) {
		t.Errorf("custom end = %v, want start+30d", end)
	}
}

func TestInWindow(t *testing.T) {
	b := Budget{Period: PeriodMonthly}
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	if !b.InWindow(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), now) {
		t.Error("first of month should be in window")
	}
	if !b.InWindow(time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC), now) {
		t.Error("last of month should be in window")
	}
	if b.InWindow(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), now) {
		t.Error("first of next month should be out of window")
	}
	if b.InWindow(time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), now) {
		t.Error("previous month should be out of window")
	}
}

func TestBudgetValidate(t *testing.T) {
	valid := Budget{
		CategoryID:   "cat-1",
		CurrencyCode: "EUR",
		Amount:       dec("300"),
		Period:       PeriodMonthly,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	zeroAmount := valid
	zeroAmount.Amount = dec("0")
	if err := zeroAmount.Validate(); err == nil {
		t.Error("zero amount should be rejected")
	}

	badPeriod := valid
	badPeriod.Period = "fortnightly"
	if err := badPeriod.Validate(); err == nil {
		t.Error("unknown period should be rejected")
	}
}
