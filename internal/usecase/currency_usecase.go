package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pennyledger/pennyledger/internal/domain"
)

// CurrencyUseCase manages currency definitions and the exchange-rate store.
type CurrencyUseCase struct {
	currencyRepo CurrencyRepository
	rateRepo     RateRepository
	converter    *ConversionUseCase
	source       RateSource
	clock        Clock
}

// NewCurrencyUseCase creates a new CurrencyUseCase. source may be nil when no
// external rate feed is configured.
func NewCurrencyUseCase(
	currencyRepo CurrencyRepository,
	rateRepo RateRepository,
	converter *ConversionUseCase,
	source RateSource,
	clock Clock,
) *CurrencyUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CurrencyUseCase{
		currencyRepo: currencyRepo,
		rateRepo:     rateRepo,
		converter:    converter,
		source:       source,
		clock:        clock,
	}
}

// CreateCurrencyInput represents input for registering a currency.
type CreateCurrencyInput struct {
	Code   string
	Name   string
	Symbol string
}

// CreateCurrency registers a currency definition.
func (uc *CurrencyUseCase) CreateCurrency(ctx context.Context, input CreateCurrencyInput) (*domain.Currency, error) {
	now := uc.clock.Now()
	currency := &domain.Currency{
		Code:      input.Code,
		Name:      input.Name,
		Symbol:    input.Symbol,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := currency.Validate(); err != nil {
		return nil, err
	}

	if err := uc.currencyRepo.Create(ctx, currency); err != nil {
		return nil, err
	}

	return currency, nil
}

// GetCurrency retrieves a currency by code.
func (uc *CurrencyUseCase) GetCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	return uc.currencyRepo.GetByCode(ctx, code)
}

// ListCurrencies lists all known currencies.
func (uc *CurrencyUseCase) ListCurrencies(ctx context.Context) ([]*domain.Currency, error) {
	return uc.currencyRepo.List(ctx)
}

// UpsertRateInput represents input for a manual rate edit.
type UpsertRateInput struct {
	FromCode string
	ToCode   string
	Rate     decimal.Decimal
}

// UpsertRate stores a user-edited rate for a directed pair. Manual edits are
// marked custom and survive API refreshes.
func (uc *CurrencyUseCase) UpsertRate(ctx context.Context, input UpsertRateInput) (*domain.ExchangeRate, error) {
	rate := &domain.ExchangeRate{
		FromCode:    input.FromCode,
		ToCode:      input.ToCode,
		Rate:        input.Rate,
		Source:      domain.RateSourceManual,
		IsCustom:    true,
		LastUpdated: uc.clock.Now(),
	}

	if err := rate.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.currencyRepo.GetByCode(ctx, rate.FromCode); err != nil {
		return nil, fmt.Errorf("from currency %s: %w", rate.FromCode, err)
	}
	if _, err := uc.currencyRepo.GetByCode(ctx, rate.ToCode); err != nil {
		return nil, fmt.Errorf("to currency %s: %w", rate.ToCode, err)
	}

	if err := uc.rateRepo.Upsert(ctx, rate); err != nil {
		return nil, err
	}

	uc.converter.InvalidatePair(ctx, rate.FromCode, rate.ToCode)

	return rate, nil
}

// ListRates lists all current rates.
func (uc *CurrencyUseCase) ListRates(ctx context.Context) ([]*domain.ExchangeRate, error) {
	return uc.rateRepo.List(ctx)
}

// ErrNoRateSource is returned when refresh is requested without a configured
// rate source.
var ErrNoRateSource = errors.New("no rate source configured")

type fetchResult struct {
	rates map[string]decimal.Decimal
	err   error
}

// RefreshRates fetches current rates for a base currency from the external
// source and upserts them. The fetch runs in its own goroutine and is joined
// through a channel, bounded by ctx; nothing blocks on the network beyond
// that. Custom (user-edited) rates are never overwritten. Returns the number
// of rates updated.
func (uc *CurrencyUseCase) RefreshRates(ctx context.Context, baseCurrency string) (int, error) {
	if uc.source == nil {
		return 0, ErrNoRateSource
	}
	if err := domain.ValidateCurrencyCode(baseCurrency); err != nil {
		return 0, err
	}

	ch := make(chan fetchResult, 1)
	go func() {
		rates, err := uc.source.FetchCurrentRates(ctx, baseCurrency)
		ch <- fetchResult{rates: rates, err: err}
	}()

	var result fetchResult
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case result = <-ch:
	}
	if result.err != nil {
		return 0, fmt.Errorf("rate fetch failed: %w", result.err)
	}

	now := uc.clock.Now()
	updated := 0

	for code, value := range result.rates {
		if code == baseCurrency || value.LessThanOrEqual(decimal.Zero) {
			continue
		}

		existing, err := uc.rateRepo.GetByPair(ctx, baseCurrency, code)
		if err != nil && !errors.Is(err, domain.ErrRateUnavailable) {
			return updated, err
		}
		if existing != nil && existing.IsCustom {
			continue
		}

		rate := &domain.ExchangeRate{
			FromCode:    baseCurrency,
			ToCode:      code,
			Rate:        value,
			Source:      domain.RateSourceAPI,
			LastUpdated: now,
		}
		if err := uc.rateRepo.Upsert(ctx, rate); err != nil {
			return updated, err
		}

		uc.converter.InvalidatePair(ctx, baseCurrency, code)
		updated++
	}

	return updated, nil
}
