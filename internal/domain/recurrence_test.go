package domain

import (
	"testing"
	"time"
)

func TestRecurrenceRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    RecurrenceRule
		wantErr bool
	}{
		{name: "monthly", rule: RecurrenceRule{Interval: 1, Unit: UnitMonth}},
		{name: "every 14 days", rule: RecurrenceRule{Interval: 14, Unit: UnitDay}},
		{name: "max interval", rule: RecurrenceRule{Interval: 365, Unit: UnitDay}},
		{name: "zero interval rejected", rule: RecurrenceRule{Interval: 0, Unit: UnitDay}, wantErr: true},
		{name: "interval over 365 rejected", rule: RecurrenceRule{Interval: 366, Unit: UnitDay}, wantErr: true},
		{name: "negative interval rejected", rule: RecurrenceRule{Interval: -1, Unit: UnitMonth}, wantErr: true},
		{name: "unknown unit rejected", rule: RecurrenceRule{Interval: 1, Unit: "fortnight"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecurrenceRuleNext(t *testing.T) {
	from := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule RecurrenceRule
		want time.Time
	}{
		{"daily", RecurrenceRule{Interval: 1, Unit: UnitDay}, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"weekly via 7 days", RecurrenceRule{Interval: 7, Unit: UnitDay}, time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)},
		// Jan 31 + 1 month normalizes to Mar 2 in a leap year, time.AddDate semantics.
		{"monthly from month end", RecurrenceRule{Interval: 1, Unit: UnitMonth}, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"yearly", RecurrenceRule{Interval: 1, Unit: UnitYear}, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.Next(from)
			if !got.Equal(tt.want) {
				t.Errorf("Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextWorkingDay(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"saturday shifts to monday",
			time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday shifts to monday",
			time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			"wednesday unchanged",
			time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextWorkingDay(tt.in); !got.Equal(tt.want) {
				t.Errorf("NextWorkingDay() = %v, want %v", got, tt.want)
			}
		})
	}
}
