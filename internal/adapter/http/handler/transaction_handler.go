package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pennyledger/pennyledger/internal/adapter/http/dto"
	"github.com/pennyledger/pennyledger/internal/domain"
	"github.com/pennyledger/pennyledger/internal/usecase"
)

// TransactionService defines the ledger behavior needed by TransactionHandler.
type TransactionService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, input usecase.UpdateTransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string, scope usecase.RecurrenceScope) error
}

// ScheduleService drives the scheduled-transaction state machine.
type ScheduleService interface {
	Confirm(ctx context.Context, id string) (*domain.Transaction, error)
	Retry(ctx context.Context, id string) (*domain.Transaction, error)
	Cancel(ctx context.Context, id string) (*domain.Transaction, error)
}

// RecurrenceService materializes instances from recurring templates.
type RecurrenceService interface {
	GenerateInstances(ctx context.Context, templateID string, horizonMonths int) ([]*domain.Transaction, error)
	ListInstances(ctx context.Context, templateID string) ([]*domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	ledgerUC     TransactionService
	schedulerUC  ScheduleService
	recurrenceUC RecurrenceService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerUC TransactionService, schedulerUC ScheduleService, recurrenceUC RecurrenceService) *TransactionHandler {
	return &TransactionHandler{
		ledgerUC:     ledgerUC,
		schedulerUC:  schedulerUC,
		recurrenceUC: recurrenceUC,
	}
}

// Create creates a transaction, scheduled transaction or recurring template.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.ledgerUC.CreateTransaction(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.ledgerUC.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Update edits a transaction.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.ledgerUC.UpdateTransaction(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Delete removes a transaction. For recurring instances the scope query
// parameter selects thisOnly, thisAndFuture or all.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	scope := usecase.RecurrenceScope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = usecase.ScopeThisOnly
	}

	if err := h.ledgerUC.DeleteTransaction(r.Context(), id, scope); err != nil {
		writeError(w, mapDomainError(err), "failed to delete transaction", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Confirm executes a pending manual scheduled transaction.
func (h *TransactionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.schedulerUC.Confirm)
}

// Retry re-executes a failed scheduled transaction.
func (h *TransactionHandler) Retry(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.schedulerUC.Retry)
}

// Cancel cancels a pending scheduled transaction.
func (h *TransactionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.schedulerUC.Cancel)
}

func (h *TransactionHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (*domain.Transaction, error)) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := op(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to transition transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// GenerateInstances materializes upcoming instances of a recurring template.
func (h *TransactionHandler) GenerateInstances(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.GenerateInstancesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	instances, err := h.recurrenceUC.GenerateInstances(r.Context(), id, req.HorizonMonths)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to generate instances", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(instances),
		Total:        int64(len(instances)),
	})
}

// ListInstances lists the generated instances of a recurring template.
func (h *TransactionHandler) ListInstances(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	instances, err := h.recurrenceUC.ListInstances(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list instances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(instances),
		Total:        int64(len(instances)),
	})
}
