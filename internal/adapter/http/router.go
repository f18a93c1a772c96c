package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pennyledger/pennyledger/internal/adapter/http/handler"
	"github.com/pennyledger/pennyledger/internal/adapter/http/middleware"
	"github.com/pennyledger/pennyledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler     *handler.AccountHandler
	TransactionHandler *handler.TransactionHandler
	CurrencyHandler    *handler.CurrencyHandler
	BudgetHandler      *handler.BudgetHandler
	SystemHandler      *handler.SystemHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	RateLimiter        *middleware.RateLimiter
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/balance", cfg.AccountHandler.Balance)
			r.Get("/{id}/transactions", cfg.AccountHandler.ListTransactions)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Patch("/{id}", cfg.TransactionHandler.Update)
			r.Delete("/{id}", cfg.TransactionHandler.Delete)
			r.Post("/{id}/confirm", cfg.TransactionHandler.Confirm)
			r.Post("/{id}/retry", cfg.TransactionHandler.Retry)
			r.Post("/{id}/cancel", cfg.TransactionHandler.Cancel)
			r.Post("/{id}/instances", cfg.TransactionHandler.GenerateInstances)
			r.Get("/{id}/instances", cfg.TransactionHandler.ListInstances)
		})

		// Currencies and rates
		r.Route("/currencies", func(r chi.Router) {
			r.Post("/", cfg.CurrencyHandler.Create)
			r.Get("/", cfg.CurrencyHandler.List)
			r.Get("/{code}", cfg.CurrencyHandler.Get)
		})
		r.Route("/rates", func(r chi.Router) {
			r.Get("/", cfg.CurrencyHandler.ListRates)
			r.Put("/", cfg.CurrencyHandler.UpsertRate)
			r.Post("/refresh", cfg.CurrencyHandler.RefreshRates)
			r.Get("/convert", cfg.CurrencyHandler.Convert)
		})

		// Budgets and categories
		r.Route("/budgets", func(r chi.Router) {
			r.Post("/", cfg.BudgetHandler.Create)
			r.Get("/", cfg.BudgetHandler.List)
			r.Get("/{id}", cfg.BudgetHandler.Get)
			r.Patch("/{id}", cfg.BudgetHandler.Update)
			r.Delete("/{id}", cfg.BudgetHandler.Delete)
			r.Get("/{id}/usage", cfg.BudgetHandler.Usage)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", cfg.BudgetHandler.CreateCategory)
			r.Get("/", cfg.BudgetHandler.ListCategories)
		})

		// Scheduler catch-up and export
		r.Post("/catch-up", cfg.SystemHandler.CatchUp)
		r.Get("/export", cfg.SystemHandler.Export)
	})

	return r
}
