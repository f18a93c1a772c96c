package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/pennyledger/pennyledger/internal/infrastructure/metrics"
)

// DueExecutor executes automatic scheduled transactions whose date has
// arrived.
type DueExecutor interface {
	ExecuteDue(ctx context.Context) (executed, failed int, err error)
}

// Scheduler periodically executes due automatic scheduled transactions.
// Catch-up at startup is the caller's job; the worker only keeps up with
// transactions that come due while the process runs.
type Scheduler struct {
	executor DueExecutor
	logger   *slog.Logger
	metrics  *metrics.Metrics
	interval time.Duration
}

// SchedulerConfig for Scheduler.
type SchedulerConfig struct {
	Executor DueExecutor
	Logger   *slog.Logger
	Metrics  *metrics.Metrics // Optional
	Interval time.Duration    // Polling interval
}

// NewScheduler creates a new Scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Scheduler{
		executor: cfg.Executor,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		interval: cfg.Interval,
	}
}

// Start begins the scheduler worker.
// It runs continuously until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Process immediately on start
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	executed, failed, err := s.executor.ExecuteDue(ctx)
	if err != nil {
		s.logger.Error("error executing due transactions", slog.String("error", err.Error()))
		return
	}

	if s.metrics != nil {
		s.metrics.ScheduledExecuted.Add(float64(executed))
		s.metrics.ScheduledFailed.Add(float64(failed))
	}

	if executed > 0 || failed > 0 {
		s.logger.Info("processed due transactions",
			slog.Int("executed", executed),
			slog.Int("failed", failed))
	}
}
