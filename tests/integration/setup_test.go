package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	adaptershttp "github.com/pennyledger/pennyledger/internal/adapter/http"
	"github.com/pennyledger/pennyledger/internal/adapter/http/handler"
	"github.com/pennyledger/pennyledger/internal/adapter/repository/postgres"
	redisrepo "github.com/pennyledger/pennyledger/internal/adapter/repository/redis"
	infraredis "github.com/pennyledger/pennyledger/internal/infrastructure/redis"
	"github.com/pennyledger/pennyledger/internal/usecase"
	"github.com/pennyledger/pennyledger/tests/testutil"
)

// testStack bundles the fully wired HTTP stack plus the repositories that
// tests use to verify persisted state directly.
type testStack struct {
	router      http.Handler
	redis       *redis.Client
	accountRepo *postgres.AccountRepository
	txRepo      *postgres.TransactionRepository
	ledgerUC    *usecase.LedgerUseCase
	schedulerUC *usecase.SchedulerUseCase
}

// flushCache clears redis so cached rates from earlier subtests cannot mask
// freshly seeded ones.
func (s *testStack) flushCache(ctx context.Context, t *testing.T) {
	t.Helper()
	if err := s.redis.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}
}

func newTestStack(t *testing.T, testDB *testutil.TestDB) *testStack {
	t.Helper()

	ctx := context.Background()
	pool := testDB.Pool

	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	txRepo := postgres.NewTransactionRepository(pool)
	currencyRepo := postgres.NewCurrencyRepository(pool)
	rateRepo := postgres.NewRateRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	retrier := postgres.NewRetrier()
	idGen := postgres.NewULIDGenerator()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	cache := redisrepo.NewCache(redisClient)
	idempotencyStore := redisrepo.NewIdempotencyStore(redisClient)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	converter := usecase.NewConversionUseCase(rateRepo, cache)
	accountUC := usecase.NewAccountUseCase(accountRepo, currencyRepo, idGen, nil)
	currencyUC := usecase.NewCurrencyUseCase(currencyRepo, rateRepo, converter, nil, nil)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, txRepo, currencyRepo, converter, retrier, idGen, nil)
	recurrenceUC := usecase.NewRecurrenceUseCase(txRepo, ledgerUC, idGen, nil)
	schedulerUC := usecase.NewSchedulerUseCase(txRepo, ledgerUC, nil, quiet)
	budgetUC := usecase.NewBudgetUseCase(budgetRepo, categoryRepo, txRepo, converter, idGen, nil)
	backupUC := usecase.NewBackupUseCase(accountRepo, txRepo, categoryRepo, currencyRepo, rateRepo, budgetRepo)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC, ledgerUC),
		TransactionHandler: handler.NewTransactionHandler(ledgerUC, schedulerUC, recurrenceUC),
		CurrencyHandler:    handler.NewCurrencyHandler(currencyUC, converter),
		BudgetHandler:      handler.NewBudgetHandler(budgetUC),
		SystemHandler:      handler.NewSystemHandler(schedulerUC, backupUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:   idempotencyStore,
	})

	return &testStack{
		router:      router,
		redis:       redisClient,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		ledgerUC:    ledgerUC,
		schedulerUC: schedulerUC,
	}
}
