package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a currency definition. Created at seed time, never deleted
// while referenced; only the usage counter changes afterwards.
type Currency struct {
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Symbol     string    `json:"symbol"`
	UsageCount int64     `json:"usageCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Validate checks the currency definition.
func (c *Currency) Validate() error {
	if err := ValidateCurrencyCode(c.Code); err != nil {
		return err
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidCurrency)
	}
	return nil
}

// ValidateCurrencyCode checks that a code looks like an ISO 4217 code.
func ValidateCurrencyCode(code string) error {
	if len(code) != 3 || code != strings.ToUpper(code) {
		return fmt.Errorf("%w: %q is not a 3-letter uppercase code", ErrInvalidCurrency, code)
	}
	return nil
}

// RateSource identifies where an exchange rate came from.
type RateSource string

const (
	RateSourceManual  RateSource = "manual"
	RateSourceAPI     RateSource = "api"
	RateSourceDefault RateSource = "default"
)

// ExchangeRate is the current rate for a directed currency pair. At most one
// current rate exists per pair; updates overwrite in place.
type ExchangeRate struct {
	FromCode    string          `json:"fromCode"`
	ToCode      string          `json:"toCode"`
	Rate        decimal.Decimal `json:"rate"`
	Source      RateSource      `json:"source"`
	IsCustom    bool            `json:"isCustom"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// Validate checks the rate pair and value.
func (r *ExchangeRate) Validate() error {
	if err := ValidateCurrencyCode(r.FromCode); err != nil {
		return err
	}
	if err := ValidateCurrencyCode(r.ToCode); err != nil {
		return err
	}
	if r.FromCode == r.ToCode {
		return fmt.Errorf("%w: from and to codes must differ", ErrInvalidCurrency)
	}
	if r.Rate.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidRate
	}
	return nil
}

// Inverted returns the rate for the opposite direction.
func (r *ExchangeRate) Inverted() ExchangeRate {
	return ExchangeRate{
		FromCode:    r.ToCode,
		ToCode:      r.FromCode,
		Rate:        decimal.NewFromInt(1).Div(r.Rate),
		Source:      r.Source,
		IsCustom:    r.IsCustom,
		LastUpdated: r.LastUpdated,
	}
}
