package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/pennyledger/pennyledger/internal/domain"
)

// DefaultGenerationHorizonMonths is how far ahead instances are generated
// when no horizon is given.
const DefaultGenerationHorizonMonths = 3

// RecurrenceUseCase expands recurring templates into concrete future
// transaction instances.
type RecurrenceUseCase struct {
	txRepo TransactionRepository
	ledger *LedgerUseCase
	idGen  IDGenerator
	clock  Clock
}

// NewRecurrenceUseCase creates a new RecurrenceUseCase.
func NewRecurrenceUseCase(txRepo TransactionRepository, ledger *LedgerUseCase, idGen IDGenerator, clock Clock) *RecurrenceUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &RecurrenceUseCase{
		txRepo: txRepo,
		ledger: ledger,
		idGen:  idGen,
		clock:  clock,
	}
}

// GenerateInstances materializes instances of a template up to horizonMonths
// from today. The walk starts from the template's last generated instance
// date, read fresh on every run, so re-running never duplicates a date.
//
// When adjustToWorkingDay is set, weekend occurrences shift forward to Monday
// and the shifted date seeds the next step; the cadence follows the shifted
// dates rather than the nominal ones.
func (uc *RecurrenceUseCase) GenerateInstances(ctx context.Context, templateID string, horizonMonths int) ([]*domain.Transaction, error) {
	template, err := uc.txRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !template.IsTemplate() {
		return nil, domain.ErrNotRecurringTemplate
	}
	if template.Recurrence == nil {
		return nil, fmt.Errorf("%w: template %s has no rule", domain.ErrRecurrenceInvalid, templateID)
	}
	rule := *template.Recurrence

	if horizonMonths <= 0 {
		horizonMonths = DefaultGenerationHorizonMonths
	}

	last := domain.DateOnly(template.Date)
	if lastGenerated, err := uc.txRepo.LastInstanceDate(ctx, templateID); err != nil {
		return nil, err
	} else if lastGenerated != nil {
		last = domain.DateOnly(*lastGenerated)
	}

	today := domain.DateOnly(uc.clock.Now())
	horizon := today.AddDate(0, horizonMonths, 0)
	now := uc.clock.Now()

	var instances []*domain.Transaction
	for {
		next := rule.Next(last)
		if next.After(horizon) {
			break
		}
		if template.RecurrenceEndDate != nil && next.After(domain.DateOnly(*template.RecurrenceEndDate)) {
			break
		}

		date := next
		if template.AdjustToWorkingDay {
			date = domain.NextWorkingDay(next)
		}

		instances = append(instances, uc.materialize(template, date, today, now))

		last = date
	}

	if len(instances) == 0 {
		return nil, nil
	}

	if err := uc.ledger.CreateGeneratedInstances(ctx, instances); err != nil {
		return nil, err
	}

	return instances, nil
}

// ListInstances lists the generated instances of a template.
func (uc *RecurrenceUseCase) ListInstances(ctx context.Context, templateID string) ([]*domain.Transaction, error) {
	template, err := uc.txRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !template.IsTemplate() {
		return nil, domain.ErrNotRecurringTemplate
	}
	return uc.txRepo.ListInstances(ctx, templateID)
}

// materialize builds one instance from the template. Scheduled instances
// start pending and wait for the scheduler; non-scheduled instances whose
// date has already arrived execute immediately.
func (uc *RecurrenceUseCase) materialize(template *domain.Transaction, date, today, now time.Time) *domain.Transaction {
	templateID := template.ID

	status := domain.StatusPending
	if !template.IsScheduled && !date.After(today) {
		status = domain.StatusExecuted
	}

	return &domain.Transaction{
		ID:                           uc.idGen.Generate(),
		Type:                         template.Type,
		Amount:                       template.Amount,
		CurrencyCode:                 template.CurrencyCode,
		Date:                         date,
		AccountID:                    template.AccountID,
		DestinationAccountID:         template.DestinationAccountID,
		CategoryID:                   template.CategoryID,
		Notes:                        template.Notes,
		InterestAmount:               template.InterestAmount,
		IsScheduled:                  template.IsScheduled,
		IsAutomatic:                  template.IsAutomatic,
		Status:                       status,
		ParentRecurringTransactionID: &templateID,
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}
}
