package domain

import (
	"fmt"
	"time"
)

// RecurrenceUnit is the calendar unit a recurrence steps by.
type RecurrenceUnit string

const (
	UnitDay   RecurrenceUnit = "day"
	UnitMonth RecurrenceUnit = "month"
	UnitYear  RecurrenceUnit = "year"
)

// Recurrence interval bounds.
const (
	MinRecurrenceInterval = 1
	MaxRecurrenceInterval = 365
)

// RecurrenceRule describes how a template steps from one occurrence to the
// next. Owned by exactly one template transaction.
type RecurrenceRule struct {
	Interval int            `json:"interval"`
	Unit     RecurrenceUnit `json:"unit"`
}

// Validate rejects malformed rules before they ever reach generation.
func (r RecurrenceRule) Validate() error {
	if r.Interval < MinRecurrenceInterval || r.Interval > MaxRecurrenceInterval {
		return fmt.Errorf("%w: interval %d outside [%d, %d]",
			ErrRecurrenceInvalid, r.Interval, MinRecurrenceInterval, MaxRecurrenceInterval)
	}
	switch r.Unit {
	case UnitDay, UnitMonth, UnitYear:
		return nil
	default:
		return fmt.Errorf("%w: unit %q", ErrRecurrenceInvalid, r.Unit)
	}
}

// Next returns the occurrence following from.
func (r RecurrenceRule) Next(from time.Time) time.Time {
	switch r.Unit {
	case UnitDay:
		return from.AddDate(0, 0, r.Interval)
	case UnitMonth:
		return from.AddDate(0, r.Interval, 0)
	case UnitYear:
		return from.AddDate(r.Interval, 0, 0)
	default:
		return from
	}
}

// NextWorkingDay shifts weekend dates forward to the following Monday.
// Weekday dates pass through unchanged.
func NextWorkingDay(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d
	}
}

// DateOnly truncates a time to midnight UTC. All ledger dates carry day
// granularity.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
