package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/pennyledger/pennyledger/internal/infrastructure/metrics"
)

// RateRefresher pulls current rates from the external feed into the store.
type RateRefresher interface {
	RefreshRates(ctx context.Context, baseCurrency string) (int, error)
}

// RateRefreshWorker periodically refreshes exchange rates for the base
// currency. Custom rates are never overwritten; that policy lives in the
// refresher.
type RateRefreshWorker struct {
	refresher    RateRefresher
	logger       *slog.Logger
	metrics      *metrics.Metrics
	baseCurrency string
	interval     time.Duration
}

// RateRefreshConfig for RateRefreshWorker.
type RateRefreshConfig struct {
	Refresher    RateRefresher
	Logger       *slog.Logger
	Metrics      *metrics.Metrics // Optional
	BaseCurrency string
	Interval     time.Duration // Polling interval
}

// NewRateRefreshWorker creates a new RateRefreshWorker.
func NewRateRefreshWorker(cfg RateRefreshConfig) *RateRefreshWorker {
	if cfg.Interval == 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &RateRefreshWorker{
		refresher:    cfg.Refresher,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		baseCurrency: cfg.BaseCurrency,
		interval:     cfg.Interval,
	}
}

// Start begins the refresh worker.
// It runs continuously until the context is cancelled.
func (w *RateRefreshWorker) Start(ctx context.Context) error {
	w.logger.Info("rate refresh worker started",
		slog.String("base_currency", w.baseCurrency),
		slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Refresh immediately on start
	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("rate refresh worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *RateRefreshWorker) refresh(ctx context.Context) {
	updated, err := w.refresher.RefreshRates(ctx, w.baseCurrency)
	if err != nil {
		if w.metrics != nil {
			w.metrics.RateRefreshes.WithLabelValues("error").Inc()
		}
		w.logger.Error("rate refresh failed",
			slog.String("base_currency", w.baseCurrency),
			slog.String("error", err.Error()))
		return
	}

	if w.metrics != nil {
		w.metrics.RateRefreshes.WithLabelValues("success").Inc()
		w.metrics.RatesUpdated.Add(float64(updated))
	}

	w.logger.Info("rates refreshed",
		slog.String("base_currency", w.baseCurrency),
		slog.Int("updated", updated))
}
