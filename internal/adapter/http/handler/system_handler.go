package handler

import (
	"context"
	"net/http"

	"github.com/pennyledger/pennyledger/internal/adapter/http/dto"
	"github.com/pennyledger/pennyledger/internal/usecase"
)

// CatchUpService runs catch-up recovery over past-due scheduled transactions.
type CatchUpService interface {
	RunCatchUp(ctx context.Context) (*usecase.CatchUpSummary, error)
}

// ExportService assembles a full-data export.
type ExportService interface {
	Export(ctx context.Context) (*usecase.BackupExport, error)
}

// SystemHandler handles catch-up and export requests.
type SystemHandler struct {
	schedulerUC CatchUpService
	backupUC    ExportService
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(schedulerUC CatchUpService, backupUC ExportService) *SystemHandler {
	return &SystemHandler{schedulerUC: schedulerUC, backupUC: backupUC}
}

// CatchUp processes all past-due scheduled transactions and returns a
// summary of what was executed, left pending or failed.
func (h *SystemHandler) CatchUp(w http.ResponseWriter, r *http.Request) {
	summary, err := h.schedulerUC.RunCatchUp(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "catch-up failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CatchUpFromUseCase(summary))
}

// Export returns all entities as one JSON document.
func (h *SystemHandler) Export(w http.ResponseWriter, r *http.Request) {
	export, err := h.backupUC.Export(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed", err.Error())
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="pennyledger-export.json"`)
	writeJSON(w, http.StatusOK, export)
}
