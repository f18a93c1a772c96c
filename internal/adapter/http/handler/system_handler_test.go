package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pennyledger/pennyledger/internal/adapter/http/dto"
	"github.com/pennyledger/pennyledger/internal/domain"
	"github.com/pennyledger/pennyledger/internal/usecase"
)

type catchUpServiceStub struct {
	runFn func(ctx context.Context) (*usecase.CatchUpSummary, error)
}

func (s *catchUpServiceStub) RunCatchUp(ctx context.Context) (*usecase.CatchUpSummary, error) {
	return s.runFn(ctx)
}

type exportServiceStub struct {
	exportFn func(ctx context.Context) (*usecase.BackupExport, error)
}

func (s *exportServiceStub) Export(ctx context.Context) (*usecase.BackupExport, error) {
	return s.exportFn(ctx)
}

func TestSystemHandler_CatchUp(t *testing.T) {
	handler := NewSystemHandler(&catchUpServiceStub{
		runFn: func(ctx context.Context) (*usecase.CatchUpSummary, error) {
			return &usecase.CatchUpSummary{Executed: 3, AwaitingConfirmation: 1, Failed: 2}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/catch-up", nil)
	rec := httptest.NewRecorder()

	handler.CatchUp(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.CatchUpResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AutomaticCount != 3 || resp.PendingCount != 1 || resp.FailedCount != 2 {
		t.Fatalf("unexpected summary: %+v", resp)
	}
}

func TestSystemHandler_Export(t *testing.T) {
	handler := NewSystemHandler(nil, &exportServiceStub{
		exportFn: func(ctx context.Context) (*usecase.BackupExport, error) {
			return &usecase.BackupExport{
				Accounts:   []*domain.Account{{ID: "acc-1"}},
				Currencies: []*domain.Currency{{Code: "USD"}},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()

	handler.Export(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Disposition") == "" {
		t.Fatalf("expected attachment disposition")
	}

	var resp usecase.BackupExport
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Accounts) != 1 || resp.Accounts[0].ID != "acc-1" {
		t.Fatalf("expected exported account, got %+v", resp.Accounts)
	}
}
