package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/pennyledger/pennyledger/internal/adapter/http/dto"
	"github.com/pennyledger/pennyledger/internal/domain"
	"github.com/pennyledger/pennyledger/internal/usecase"
)

// CurrencyService defines the behavior needed by CurrencyHandler.
type CurrencyService interface {
	CreateCurrency(ctx context.Context, input usecase.CreateCurrencyInput) (*domain.Currency, error)
	GetCurrency(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]*domain.Currency, error)
	UpsertRate(ctx context.Context, input usecase.UpsertRateInput) (*domain.ExchangeRate, error)
	ListRates(ctx context.Context) ([]*domain.ExchangeRate, error)
	RefreshRates(ctx context.Context, baseCurrency string) (int, error)
}

// ConversionService previews conversions with the current rate store.
type ConversionService interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*usecase.Conversion, error)
}

// CurrencyHandler handles currency and exchange-rate HTTP requests.
type CurrencyHandler struct {
	currencyUC CurrencyService
	converter  ConversionService
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencyUC CurrencyService, converter ConversionService) *CurrencyHandler {
	return &CurrencyHandler{currencyUC: currencyUC, converter: converter}
}

// Create registers a currency.
func (h *CurrencyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	currency, err := h.currencyUC.CreateCurrency(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create currency", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.CurrencyFromDomain(currency))
}

// Get retrieves a currency by code.
func (h *CurrencyHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing currency code", "")
		return
	}

	currency, err := h.currencyUC.GetCurrency(r.Context(), code)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get currency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrencyFromDomain(currency))
}

// List lists currencies ordered by usage.
func (h *CurrencyHandler) List(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.currencyUC.ListCurrencies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list currencies", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrenciesFromDomain(currencies))
}

// UpsertRate stores a manual rate for a directed pair.
func (h *CurrencyHandler) UpsertRate(w http.ResponseWriter, r *http.Request) {
	var req dto.UpsertRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rate, err := h.currencyUC.UpsertRate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to upsert rate", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RateFromDomain(rate))
}

// ListRates lists the current exchange rates.
func (h *CurrencyHandler) ListRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.currencyUC.ListRates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list rates", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RatesFromDomain(rates))
}

// RefreshRates pulls current rates from the external feed and stores the
// non-custom ones.
func (h *CurrencyHandler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	updated, err := h.currencyUC.RefreshRates(r.Context(), req.BaseCurrency)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to refresh rates", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RefreshRatesResponse{
		BaseCurrency: req.BaseCurrency,
		Updated:      updated,
	})
}

// Convert previews a conversion at the current rate. It never consults or
// alters the frozen snapshots of existing transfers.
func (h *CurrencyHandler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}
	from := q.Get("from")
	to := q.Get("to")

	conv, err := h.converter.Convert(r.Context(), amount, from, to)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to convert", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConversionResponse{
		Amount:   conv.Amount,
		Rate:     conv.Rate,
		Inverted: conv.Inverted,
	})
}
