package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennyledger/pennyledger/internal/domain"
)

const (
	rateCacheTTL    = 5 * time.Minute
	rateCachePrefix = "rate:"
)

// Conversion is the result of converting an amount between currencies.
type Conversion struct {
	Amount   decimal.Decimal
	Rate     decimal.Decimal
	Inverted bool
}

// ConversionUseCase converts amounts between currencies using the current
// rate store. The ledger calls it when first creating or previewing a
// transfer (to produce the frozen snapshot) and as a last-resort fallback for
// legacy transfers that predate snapshotting. It is never used to re-derive
// the value of an executed transfer.
type ConversionUseCase struct {
	rateRepo RateRepository
	cache    Cache
}

// NewConversionUseCase creates a new ConversionUseCase. cache may be nil.
func NewConversionUseCase(rateRepo RateRepository, cache Cache) *ConversionUseCase {
	return &ConversionUseCase{
		rateRepo: rateRepo,
		cache:    cache,
	}
}

// Convert converts amount from one currency to another at the current rate.
// Returns domain.ErrRateUnavailable when neither the direct nor the inverse
// pair has a rate.
func (uc *ConversionUseCase) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*Conversion, error) {
	if from == to {
		return &Conversion{Amount: amount, Rate: decimal.NewFromInt(1)}, nil
	}

	rate, inverted, err := uc.currentRate(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &Conversion{
		Amount:   amount.Mul(rate),
		Rate:     rate,
		Inverted: inverted,
	}, nil
}

// CurrentRate returns the current conversion rate for a pair, consulting the
// inverse pair when the direct one is absent.
func (uc *ConversionUseCase) CurrentRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	rate, _, err := uc.currentRate(ctx, from, to)
	return rate, err
}

// InvalidatePair drops cached rates for both directions of a pair. Called
// after any rate update.
func (uc *ConversionUseCase) InvalidatePair(ctx context.Context, from, to string) {
	if uc.cache == nil {
		return
	}
	// Cache invalidation failures only delay freshness by the TTL.
	_ = uc.cache.Delete(ctx, rateCachePrefix+from+":"+to)
	_ = uc.cache.Delete(ctx, rateCachePrefix+to+":"+from)
}

func (uc *ConversionUseCase) currentRate(ctx context.Context, from, to string) (decimal.Decimal, bool, error) {
	if rate, ok := uc.cachedRate(ctx, from, to); ok {
		return rate, false, nil
	}

	direct, err := uc.rateRepo.GetByPair(ctx, from, to)
	if err == nil {
		uc.cacheRate(ctx, from, to, direct.Rate)
		return direct.Rate, false, nil
	}
	if !errors.Is(err, domain.ErrRateUnavailable) {
		return decimal.Zero, false, err
	}

	inverse, err := uc.rateRepo.GetByPair(ctx, to, from)
	if err != nil {
		if errors.Is(err, domain.ErrRateUnavailable) {
			return decimal.Zero, false, fmt.Errorf("%w: %s -> %s", domain.ErrRateUnavailable, from, to)
		}
		return decimal.Zero, false, err
	}

	inverted := inverse.Inverted()
	uc.cacheRate(ctx, from, to, inverted.Rate)

	return inverted.Rate, true, nil
}

func (uc *ConversionUseCase) cachedRate(ctx context.Context, from, to string) (decimal.Decimal, bool) {
	if uc.cache == nil {
		return decimal.Zero, false
	}
	raw, err := uc.cache.Get(ctx, rateCachePrefix+from+":"+to)
	if err != nil {
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return rate, true
}

func (uc *ConversionUseCase) cacheRate(ctx context.Context, from, to string, rate decimal.Decimal) {
	if uc.cache == nil {
		return
	}
	_ = uc.cache.Set(ctx, rateCachePrefix+from+":"+to, rate.String(), rateCacheTTL)
}
