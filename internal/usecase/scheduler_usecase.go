package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pennyledger/pennyledger/internal/domain"
)

// CatchUpSummary reports what one recovery pass did with past-due
// transactions.
type CatchUpSummary struct {
	Executed             int `json:"automaticCount"`
	AwaitingConfirmation int `json:"pendingCount"`
	Failed               int `json:"failedCount"`
}

// SchedulerUseCase advances scheduled transactions through the execution
// state machine: catch-up recovery at startup, periodic execution of due
// automatic transactions, and the user-driven confirm/retry/cancel
// transitions.
type SchedulerUseCase struct {
	txRepo TransactionRepository
	ledger *LedgerUseCase
	clock  Clock
	logger *slog.Logger
}

// NewSchedulerUseCase creates a new SchedulerUseCase.
func NewSchedulerUseCase(txRepo TransactionRepository, ledger *LedgerUseCase, clock Clock, logger *slog.Logger) *SchedulerUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SchedulerUseCase{
		txRepo: txRepo,
		ledger: ledger,
		clock:  clock,
		logger: logger,
	}
}

// RunCatchUp recovers transactions that became due while the process was not
// running. Past-due pending transactions are processed oldest first so
// date-dependent balance effects apply in order. Automatic ones execute (a
// failure marks that one failed and the batch continues); manual ones stay
// pending and are reported as awaiting confirmation.
//
// Only pending rows are eligible, so running the pass again never touches
// anything already executed, cancelled or failed.
func (uc *SchedulerUseCase) RunCatchUp(ctx context.Context) (*CatchUpSummary, error) {
	due, err := uc.txRepo.ListDuePending(ctx, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	summary := &CatchUpSummary{}

	for _, txn := range due {
		if !txn.IsAutomatic {
			summary.AwaitingConfirmation++
			continue
		}

		if _, err := uc.ledger.ExecuteScheduled(ctx, txn.ID); err != nil {
			uc.logger.Error("catch-up execution failed",
				slog.String("transaction_id", txn.ID),
				slog.String("error", err.Error()))

			if _, ferr := uc.ledger.MarkFailed(ctx, txn.ID); ferr != nil {
				uc.logger.Error("failed to mark transaction failed",
					slog.String("transaction_id", txn.ID),
					slog.String("error", ferr.Error()))
			}
			summary.Failed++
			continue
		}

		summary.Executed++
	}

	return summary, nil
}

// ExecuteDue executes every due automatic transaction once. Called by the
// ticking scheduler worker; manual transactions are left alone.
func (uc *SchedulerUseCase) ExecuteDue(ctx context.Context) (executed, failed int, err error) {
	due, listErr := uc.txRepo.ListDuePending(ctx, uc.clock.Now())
	if listErr != nil {
		return 0, 0, listErr
	}

	for _, txn := range due {
		if !txn.IsAutomatic {
			continue
		}

		if _, execErr := uc.ledger.ExecuteScheduled(ctx, txn.ID); execErr != nil {
			uc.logger.Error("scheduled execution failed",
				slog.String("transaction_id", txn.ID),
				slog.String("error", execErr.Error()))

			if _, ferr := uc.ledger.MarkFailed(ctx, txn.ID); ferr != nil {
				uc.logger.Error("failed to mark transaction failed",
					slog.String("transaction_id", txn.ID),
					slog.String("error", ferr.Error()))
			}
			failed++
			continue
		}

		executed++
	}

	return executed, failed, nil
}

// Confirm executes a pending scheduled transaction on explicit user request.
func (uc *SchedulerUseCase) Confirm(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.ledger.ExecuteScheduled(ctx, id)
}

// Retry re-attempts a failed scheduled transaction.
func (uc *SchedulerUseCase) Retry(ctx context.Context, id string) (*domain.Transaction, error) {
	txn, err := uc.ledger.ExecuteScheduled(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatusTransition) {
			return nil, err
		}
		return nil, errors.Join(domain.ErrScheduleExecutionFailed, err)
	}
	return txn, nil
}

// Cancel cancels a pending scheduled transaction.
func (uc *SchedulerUseCase) Cancel(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.ledger.CancelScheduled(ctx, id)
}
