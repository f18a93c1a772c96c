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

// BudgetService defines the behavior needed by BudgetHandler.
type BudgetService interface {
	CreateBudget(ctx context.Context, input usecase.CreateBudgetInput) (*domain.Budget, error)
	GetBudget(ctx context.Context, id string) (*domain.Budget, error)
	ListBudgets(ctx context.Context, activeOnly bool) ([]*domain.Budget, error)
	UpdateBudget(ctx context.Context, id string, input usecase.UpdateBudgetInput) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
	Usage(ctx context.Context, id string) (*domain.BudgetUsage, []usecase.BalanceWarning, error)
	CreateCategory(ctx context.Context, input usecase.CreateCategoryInput) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

// BudgetHandler handles budget and category HTTP requests.
type BudgetHandler struct {
	budgetUC BudgetService
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetUC BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetUC: budgetUC}
}

// Create creates a budget.
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	budget, err := h.budgetUC.CreateBudget(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create budget", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.BudgetFromDomain(budget))
}

// Get retrieves a budget by ID.
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing budget ID", "")
		return
	}

	budget, err := h.budgetUC.GetBudget(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get budget", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetFromDomain(budget))
}

// List lists budgets. Pass active=true to restrict to active ones.
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	budgets, err := h.budgetUC.ListBudgets(r.Context(), activeOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list budgets", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetsFromDomain(budgets))
}

// Update edits a budget.
func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing budget ID", "")
		return
	}

	var req dto.UpdateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	budget, err := h.budgetUC.UpdateBudget(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update budget", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetFromDomain(budget))
}

// Delete removes a budget.
func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing budget ID", "")
		return
	}

	if err := h.budgetUC.DeleteBudget(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete budget", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Usage computes the budget's spend for its current window.
func (h *BudgetHandler) Usage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing budget ID", "")
		return
	}

	usage, warnings, err := h.budgetUC.Usage(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute budget usage", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetUsageFromDomain(usage, warnings))
}

// CreateCategory creates a category.
func (h *BudgetHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	category, err := h.budgetUC.CreateCategory(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create category", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.CategoryFromDomain(category))
}

// ListCategories lists categories.
func (h *BudgetHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.budgetUC.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CategoriesFromDomain(categories))
}
