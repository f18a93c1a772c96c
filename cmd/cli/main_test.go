package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func withServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	origURL := baseURL
	baseURL = srv.URL
	t.Cleanup(func() { baseURL = origURL })
}

func TestPrintJSON(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON(struct {
			A int `json:"a"`
		}{A: 1})
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Fatalf("unexpected json output:\n%s", out)
	}
}

func TestCatchUpCmd(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/catch-up" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"automaticCount":3,"pendingCount":1,"failedCount":0}`))
	})

	out := captureOutput(t, func() {
		if err := catchUpCmd().Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if !strings.Contains(out, "Executed:              3") {
		t.Fatalf("expected executed count in output, got %q", out)
	}
	if !strings.Contains(out, "Awaiting confirmation: 1") {
		t.Fatalf("expected pending count in output, got %q", out)
	}
}

func TestCatchUpCmdServerError(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal_error"}`))
	})

	err := catchUpCmd().Execute()
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestExportCmdWritesFile(t *testing.T) {
	payload := `{"accounts":[],"transactions":[]}`
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/export" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	})

	outFile := filepath.Join(t.TempDir(), "export.json")
	cmd := exportCmd()
	cmd.SetArgs([]string{"--out", outFile})

	captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("failed to read export file: %v", err)
	}
	if string(data) != payload {
		t.Fatalf("unexpected file contents: %s", data)
	}
}

func TestRefreshRatesCmd(t *testing.T) {
	var gotBody string
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/rates/refresh" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"baseCurrency":"EUR","updated":12}`))
	})

	cmd := refreshRatesCmd()
	cmd.SetArgs([]string{"--base", "EUR"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if !strings.Contains(gotBody, `"baseCurrency":"EUR"`) {
		t.Fatalf("expected base currency in request body, got %q", gotBody)
	}
	if !strings.Contains(out, "Refreshed 12 rates against EUR") {
		t.Fatalf("unexpected output: %q", out)
	}
}
