package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pennyledger/pennyledger/internal/adapter/http/dto"
	"github.com/pennyledger/pennyledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrCurrencyNotFound),
		errors.Is(err, domain.ErrBudgetNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrRateUnavailable):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrUnknownAccountType),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrMissingDestination),
		errors.Is(err, domain.ErrUnexpectedDestination),
		errors.Is(err, domain.ErrUnknownTransactionType),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrRecurrenceInvalid),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrNotScheduled),
		errors.Is(err, domain.ErrNotRecurringTemplate):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrExecutedTransferImmutable),
		errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrScheduleExecutionFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
