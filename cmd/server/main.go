package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/pennyledger/pennyledger/internal/adapter/http"
	"github.com/pennyledger/pennyledger/internal/adapter/http/handler"
	"github.com/pennyledger/pennyledger/internal/adapter/http/middleware"
	"github.com/pennyledger/pennyledger/internal/adapter/ratesource"
	postgresRepo "github.com/pennyledger/pennyledger/internal/adapter/repository/postgres"
	redisRepo "github.com/pennyledger/pennyledger/internal/adapter/repository/redis"
	"github.com/pennyledger/pennyledger/internal/infrastructure/config"
	"github.com/pennyledger/pennyledger/internal/infrastructure/logger"
	"github.com/pennyledger/pennyledger/internal/infrastructure/logging"
	"github.com/pennyledger/pennyledger/internal/infrastructure/metrics"
	"github.com/pennyledger/pennyledger/internal/infrastructure/postgres"
	"github.com/pennyledger/pennyledger/internal/infrastructure/redis"
	"github.com/pennyledger/pennyledger/internal/infrastructure/worker"
	"github.com/pennyledger/pennyledger/internal/usecase"
)

const dbStatsInterval = 15 * time.Second

func main() {
	// Bootstrap logger, replaced once configuration is known
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slogger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat).Logger

	appMetrics := metrics.New()

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	txRepo := postgresRepo.NewTransactionRepository(pool)
	currencyRepo := postgresRepo.NewCurrencyRepository(pool)
	rateRepo := postgresRepo.NewRateRepository(pool)
	budgetRepo := postgresRepo.NewBudgetRepository(pool)
	categoryRepo := postgresRepo.NewCategoryRepository(pool)
	retrier := postgresRepo.NewRetrier()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// External rate feed is optional; without it rates are manual-only.
	var rateSource usecase.RateSource
	if cfg.RateSourceURL != "" {
		rateSource = ratesource.NewClient(cfg.RateSourceURL, cfg.RateSourceTimeout)
	}

	// Initialize use cases
	converter := usecase.NewConversionUseCase(rateRepo, cache)
	accountUC := usecase.NewAccountUseCase(accountRepo, currencyRepo, idGen, nil)
	currencyUC := usecase.NewCurrencyUseCase(currencyRepo, rateRepo, converter, rateSource, nil)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, txRepo, currencyRepo, converter, retrier, idGen, nil)
	recurrenceUC := usecase.NewRecurrenceUseCase(txRepo, ledgerUC, idGen, nil)
	schedulerUC := usecase.NewSchedulerUseCase(txRepo, ledgerUC, nil, slogger)
	budgetUC := usecase.NewBudgetUseCase(budgetRepo, categoryRepo, txRepo, converter, idGen, nil)
	backupUC := usecase.NewBackupUseCase(accountRepo, txRepo, categoryRepo, currencyRepo, rateRepo, budgetRepo)

	// Catch up on scheduled transactions that came due while the process was
	// down, before the periodic worker starts.
	if cfg.CatchUpOnStart {
		start := time.Now()
		summary, err := schedulerUC.RunCatchUp(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("catch-up recovery failed")
		}
		appMetrics.CatchUpRuns.Inc()
		appMetrics.CatchUpDuration.Observe(time.Since(start).Seconds())
		log.Info().
			Int("executed", summary.Executed).
			Int("awaiting_confirmation", summary.AwaitingConfirmation).
			Int("failed", summary.Failed).
			Msg("catch-up recovery complete")
	}

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountUC, ledgerUC)
	transactionHandler := handler.NewTransactionHandler(ledgerUC, schedulerUC, recurrenceUC)
	currencyHandler := handler.NewCurrencyHandler(currencyUC, converter)
	budgetHandler := handler.NewBudgetHandler(budgetUC)
	systemHandler := handler.NewSystemHandler(schedulerUC, backupUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     accountHandler,
		TransactionHandler: transactionHandler,
		CurrencyHandler:    currencyHandler,
		BudgetHandler:      budgetHandler,
		SystemHandler:      systemHandler,
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		RateLimiter:        rateLimiter,
		Logger:             log.Logger,
	})

	// Start background workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	scheduler := worker.NewScheduler(worker.SchedulerConfig{
		Executor: schedulerUC,
		Logger:   slogger,
		Metrics:  appMetrics,
		Interval: cfg.SchedulerInterval,
	})
	go func() {
		if err := scheduler.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("scheduler stopped unexpectedly")
		}
	}()

	if rateSource != nil {
		refreshWorker := worker.NewRateRefreshWorker(worker.RateRefreshConfig{
			Refresher:    currencyUC,
			Logger:       slogger,
			Metrics:      appMetrics,
			BaseCurrency: cfg.BaseCurrency,
			Interval:     cfg.RateRefreshInterval,
		})
		go func() {
			if err := refreshWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
				log.Error().Err(err).Msg("rate refresh worker stopped unexpectedly")
			}
		}()
	}

	go func() {
		ticker := time.NewTicker(dbStatsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				appMetrics.DBConnections.Set(float64(pool.Stat().TotalConns()))
			}
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorkers()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
