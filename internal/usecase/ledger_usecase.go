package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennyledger/pennyledger/internal/domain"
)

// RecurrenceScope selects how far an edit or delete cascades across instances
// sharing a recurring template.
type RecurrenceScope string

const (
	ScopeThisOnly      RecurrenceScope = "thisOnly"
	ScopeThisAndFuture RecurrenceScope = "thisAndFuture"
	ScopeAll           RecurrenceScope = "all"
)

// BalanceWarning reports a non-fatal conversion failure during balance
// recomputation. The affected contribution was counted as zero; the caller
// may surface it as a banner.
type BalanceWarning struct {
	TransactionID string
	Err           error
}

// LedgerUseCase owns transaction creation, mutation and balance
// recomputation. Every mutation recomputes the balances of all affected
// accounts inside the same store transaction, so the stored balance is never
// stale relative to committed data.
type LedgerUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	txRepo       TransactionRepository
	currencyRepo CurrencyRepository
	converter    *ConversionUseCase
	retrier      Retrier
	idGen        IDGenerator
	clock        Clock
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
	currencyRepo CurrencyRepository,
	converter *ConversionUseCase,
	retrier Retrier,
	idGen IDGenerator,
	clock Clock,
) *LedgerUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &LedgerUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		txRepo:       txRepo,
		currencyRepo: currencyRepo,
		converter:    converter,
		retrier:      retrier,
		idGen:        idGen,
		clock:        clock,
	}
}

// CreateTransactionInput represents input for creating a transaction.
type CreateTransactionInput struct {
	Type                 domain.TransactionType
	Amount               decimal.Decimal
	CurrencyCode         string
	Date                 time.Time
	AccountID            string
	DestinationAccountID *string
	CategoryID           *string
	Notes                string
	DestinationAmount    *decimal.Decimal
	CustomRate           *decimal.Decimal
	InterestAmount       decimal.Decimal
	IsScheduled          bool
	IsAutomatic          bool

	IsRecurring            bool
	Recurrence             *domain.RecurrenceRule
	RecurrenceEndDate      *time.Time
	AdjustToWorkingDay     bool
	IncludeStartDayInCount bool
}

// CreateTransaction creates a transaction and recomputes every affected
// balance in one atomic commit. For cross-currency transfers the conversion
// is frozen at creation: an explicit destination amount wins, then a
// user-supplied custom rate, then the current store rate. A missing rate is
// not fatal; the transfer is stored without a snapshot and balance
// recomputation falls back to live conversion for it.
func (uc *LedgerUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	now := uc.clock.Now()

	txn := &domain.Transaction{
		ID:                           uc.idGen.Generate(),
		Type:                         input.Type,
		Amount:                       input.Amount,
		CurrencyCode:                 input.CurrencyCode,
		Date:                         domain.DateOnly(input.Date),
		AccountID:                    input.AccountID,
		DestinationAccountID:         input.DestinationAccountID,
		CategoryID:                   input.CategoryID,
		Notes:                        input.Notes,
		InterestAmount:               input.InterestAmount,
		IsScheduled:                  input.IsScheduled,
		IsAutomatic:                  input.IsAutomatic,
		IsRecurring:                  input.IsRecurring,
		Recurrence:                   input.Recurrence,
		RecurrenceEndDate:            input.RecurrenceEndDate,
		AdjustToWorkingDay:           input.AdjustToWorkingDay,
		IncludeStartDayInCount:       input.IncludeStartDayInCount,
		ParentRecurringTransactionID: nil,
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}

	switch {
	case txn.IsTemplate(), txn.IsScheduled:
		txn.Status = domain.StatusPending
	default:
		txn.Status = domain.StatusExecuted
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.accountRepo.GetByID(ctx, txn.AccountID); err != nil {
		return nil, err
	}

	if txn.Type == domain.TypeTransfer {
		if err := uc.captureConversion(ctx, txn, input.DestinationAmount, input.CustomRate); err != nil {
			return nil, err
		}
	}

	err := uc.retrier.Retry(ctx, func() error {
		return uc.commitWrite(ctx, func(tx Transaction) error {
			if err := uc.txRepo.Create(ctx, tx, txn); err != nil {
				return err
			}
			return uc.currencyRepo.IncrementUsage(ctx, tx, txn.CurrencyCode)
		}, affectedAccounts(txn))
	})
	if err != nil {
		return nil, err
	}

	return txn, nil
}

// captureConversion freezes the conversion for a cross-currency transfer.
func (uc *LedgerUseCase) captureConversion(ctx context.Context, txn *domain.Transaction, destinationAmount, customRate *decimal.Decimal) error {
	dest, err := uc.accountRepo.GetByID(ctx, *txn.DestinationAccountID)
	if err != nil {
		return err
	}

	if dest.CurrencyCode == txn.CurrencyCode {
		return nil
	}

	switch {
	case destinationAmount != nil:
		if destinationAmount.LessThanOrEqual(decimal.Zero) {
			return domain.ErrInvalidAmount
		}
		txn.DestinationAmount = destinationAmount
		txn.IsCustomRate = true
	case customRate != nil:
		if customRate.LessThanOrEqual(decimal.Zero) {
			return domain.ErrInvalidRate
		}
		rate := *customRate
		txn.ExchangeRateSnapshot = &rate
		txn.IsCustomRate = true
	default:
		rate, err := uc.converter.CurrentRate(ctx, txn.CurrencyCode, dest.CurrencyCode)
		if errors.Is(err, domain.ErrRateUnavailable) {
			// Stored without a snapshot; recomputation falls back to the
			// live rate and surfaces a warning.
			return nil
		}
		if err != nil {
			return err
		}
		txn.ExchangeRateSnapshot = &rate
	}

	return nil
}

// UpdateTransactionInput represents editable transaction fields.
type UpdateTransactionInput struct {
	Amount     *decimal.Decimal
	Date       *time.Time
	CategoryID *string
	Notes      *string
}

// UpdateTransaction edits a transaction and recomputes affected balances
// atomically. The frozen conversion of an executed transfer is never touched.
func (uc *LedgerUseCase) UpdateTransaction(ctx context.Context, id string, input UpdateTransactionInput) (*domain.Transaction, error) {
	txn, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Amount != nil {
		txn.Amount = *input.Amount
	}
	if input.Date != nil {
		txn.Date = domain.DateOnly(*input.Date)
	}
	if input.CategoryID != nil {
		txn.CategoryID = input.CategoryID
	}
	if input.Notes != nil {
		txn.Notes = *input.Notes
	}
	txn.UpdatedAt = uc.clock.Now()

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.commitWrite(ctx, func(tx Transaction) error {
			return uc.txRepo.Update(ctx, tx, txn)
		}, affectedAccounts(txn))
	})
	if err != nil {
		return nil, err
	}

	return txn, nil
}

// DeleteTransaction removes a transaction and recomputes affected balances.
// For transactions that are part of a recurrence, scope selects the cascade:
// thisOnly removes just this row, thisAndFuture removes sibling instances
// dated on or after it, all removes every instance plus the template.
func (uc *LedgerUseCase) DeleteTransaction(ctx context.Context, id string, scope RecurrenceScope) error {
	txn, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if scope == "" {
		scope = ScopeThisOnly
	}

	templateID := ""
	if txn.IsTemplate() {
		templateID = txn.ID
	} else if txn.ParentRecurringTransactionID != nil {
		templateID = *txn.ParentRecurringTransactionID
	}

	return uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		removed := []*domain.Transaction{txn}
		if err := uc.txRepo.Delete(ctx, tx, txn.ID); err != nil {
			return err
		}

		if templateID != "" && scope != ScopeThisOnly {
			from := domain.DateOnly(txn.Date)
			if scope == ScopeAll {
				from = time.Time{}
				if templateID != txn.ID {
					if err := uc.txRepo.Delete(ctx, tx, templateID); err != nil && !errors.Is(err, domain.ErrTransactionNotFound) {
						return err
					}
				}
			}
			siblings, err := uc.txRepo.DeleteInstancesFrom(ctx, tx, templateID, from)
			if err != nil {
				return err
			}
			removed = append(removed, siblings...)
		}

		accountIDs := make(map[string]bool)
		for _, r := range removed {
			for _, id := range affectedAccounts(r) {
				accountIDs[id] = true
			}
		}

		if err := uc.recomputeInTx(ctx, tx, sortedKeys(accountIDs)); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
}

// ExecuteScheduled transitions a pending or failed scheduled transaction to
// executed and applies its balance effect, all in one commit. Already
// terminal transactions are rejected, which makes repeated recovery passes
// safe. A cross-currency transfer that never got a snapshot receives one at
// execution time so its conversion freezes from here on.
func (uc *LedgerUseCase) ExecuteScheduled(ctx context.Context, id string) (*domain.Transaction, error) {
	var executed *domain.Transaction

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		txn, err := uc.txRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !txn.IsScheduled {
			return domain.ErrNotScheduled
		}

		if err := txn.TransitionTo(domain.StatusExecuted); err != nil {
			return err
		}

		if txn.Type == domain.TypeTransfer && txn.DestinationAmount == nil && txn.ExchangeRateSnapshot == nil {
			if err := uc.captureConversion(ctx, txn, nil, nil); err != nil {
				return err
			}
		}

		txn.UpdatedAt = uc.clock.Now()
		if err := uc.txRepo.Update(ctx, tx, txn); err != nil {
			return err
		}

		if err := uc.recomputeInTx(ctx, tx, affectedAccounts(txn)); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		executed = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	return executed, nil
}

// CancelScheduled transitions a pending scheduled transaction to cancelled.
// No balance effect.
func (uc *LedgerUseCase) CancelScheduled(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transition(ctx, id, domain.StatusCancelled)
}

// MarkFailed transitions a pending scheduled transaction to failed after an
// execution error. The user can retry it later.
func (uc *LedgerUseCase) MarkFailed(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transition(ctx, id, domain.StatusFailed)
}

func (uc *LedgerUseCase) transition(ctx context.Context, id string, to domain.TransactionStatus) (*domain.Transaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txn, err := uc.txRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !txn.IsScheduled {
		return nil, domain.ErrNotScheduled
	}

	if err := txn.TransitionTo(to); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	if err := uc.txRepo.UpdateStatus(ctx, tx, id, to, now); err != nil {
		return nil, err
	}
	txn.UpdatedAt = now

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return txn, nil
}

// CreateGeneratedInstances persists recurrence-engine output: the whole batch
// plus every affected balance commits atomically. Cross-currency transfer
// instances get their snapshot captured here.
func (uc *LedgerUseCase) CreateGeneratedInstances(ctx context.Context, instances []*domain.Transaction) error {
	if len(instances) == 0 {
		return nil
	}

	for _, inst := range instances {
		if inst.Type == domain.TypeTransfer && inst.DestinationAmount == nil && inst.ExchangeRateSnapshot == nil {
			if err := uc.captureConversion(ctx, inst, nil, nil); err != nil {
				return err
			}
		}
	}

	accountIDs := make(map[string]bool)
	for _, inst := range instances {
		for _, id := range affectedAccounts(inst) {
			accountIDs[id] = true
		}
	}

	return uc.retrier.Retry(ctx, func() error {
		return uc.commitWrite(ctx, func(tx Transaction) error {
			for _, inst := range instances {
				if err := uc.txRepo.Create(ctx, tx, inst); err != nil {
					return err
				}
			}
			return nil
		}, sortedKeys(accountIDs))
	})
}

// GetTransaction retrieves a transaction by ID.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txRepo.GetByID(ctx, id)
}

// ListTransactionsInput represents input for listing transactions.
type ListTransactionsInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListTransactions lists transactions for an account.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}
	if input.Limit > 500 {
		input.Limit = 500
	}
	return uc.txRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

// RecomputeBalance recomputes and stores one account's balance from scratch.
// Idempotent: with unchanged data it always produces the same value. Returns
// any non-fatal conversion warnings gathered along the way.
func (uc *LedgerUseCase) RecomputeBalance(ctx context.Context, accountID string) (decimal.Decimal, []BalanceWarning, error) {
	var (
		balance  decimal.Decimal
		warnings []BalanceWarning
	)

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		b, w, err := uc.recomputeAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		balance, warnings = b, w
		return nil
	})
	if err != nil {
		return decimal.Zero, nil, err
	}

	return balance, warnings, nil
}

// commitWrite runs write inside a store transaction, recomputes the given
// accounts, and commits. Used by every mutation path so partial application
// cannot happen.
func (uc *LedgerUseCase) commitWrite(ctx context.Context, write func(tx Transaction) error, accountIDs []string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := write(tx); err != nil {
		return err
	}

	if err := uc.recomputeInTx(ctx, tx, accountIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// recomputeInTx recomputes balances for the given accounts inside tx.
// Account IDs must be sorted by the caller so lock order is stable.
func (uc *LedgerUseCase) recomputeInTx(ctx context.Context, tx Transaction, accountIDs []string) error {
	for _, id := range accountIDs {
		if _, _, err := uc.recomputeAccount(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}

func (uc *LedgerUseCase) recomputeAccount(ctx context.Context, tx Transaction, accountID string) (decimal.Decimal, []BalanceWarning, error) {
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return decimal.Zero, nil, err
	}

	var warnings []BalanceWarning
	balance := account.InitialBalance

	owned, err := uc.txRepo.ListOwnedForBalance(ctx, tx, accountID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	for _, t := range owned {
		effect, err := t.Effect()
		if err != nil {
			return decimal.Zero, nil, err
		}
		balance = balance.Add(effect)
	}

	incoming, err := uc.txRepo.ListIncomingTransfers(ctx, tx, accountID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	for _, t := range incoming {
		credit, ok := t.CreditedAmount()
		if !ok {
			// Legacy transfer with no frozen conversion: last-resort live
			// conversion. A missing rate contributes zero and is surfaced as
			// a warning rather than aborting the recompute.
			conv, err := uc.converter.Convert(ctx, t.Amount, t.CurrencyCode, account.CurrencyCode)
			if errors.Is(err, domain.ErrRateUnavailable) {
				warnings = append(warnings, BalanceWarning{TransactionID: t.ID, Err: err})
				continue
			}
			if err != nil {
				return decimal.Zero, nil, err
			}
			credit = conv.Amount
		}
		balance = balance.Add(credit)
	}

	err = uc.accountRepo.UpdateBalance(ctx, tx, accountID, balance, account.Version, uc.clock.Now())
	if err != nil {
		return decimal.Zero, nil, err
	}

	return balance, warnings, nil
}

func affectedAccounts(txn *domain.Transaction) []string {
	ids := []string{txn.AccountID}
	if txn.Type == domain.TypeTransfer && txn.DestinationAccountID != nil {
		ids = append(ids, *txn.DestinationAccountID)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
