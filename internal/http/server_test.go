package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"tempo/internal/services"
	"tempo/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	s := NewServer(":0",
		repo,
		services.NewInvoiceService(repo, nil),
		services.NewImportService(repo))
	t.Cleanup(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
	})
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestTimerFlow(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/timer", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /api/timer with no running entry = %d, want 404", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/timer/start", map[string]any{
		"description": "writing docs",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/timer/start = %d, body %s", rec.Code, rec.Body.String())
	}
	started := decodeResponse[entryJSON](t, rec)
	if !started.Running || started.ID == 0 {
		t.Errorf("started entry = %+v, want running with id", started)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/timer", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/timer = %d", rec.Code)
	}
	current := decodeResponse[entryJSON](t, rec)
	if current.ID != started.ID {
		t.Errorf("current timer id = %d, want %d", current.ID, started.ID)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/timer/stop", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/timer/stop = %d, body %s", rec.Code, rec.Body.String())
	}
	stopped := decodeResponse[entryJSON](t, rec)
	if stopped.Running {
		t.Error("stopped entry still reported running")
	}

	rec = doJSON(t, s, http.MethodPost, "/api/timer/stop", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second stop = %d, want 404", rec.Code)
	}
}

func TestEntryCRUD(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/entries", map[string]any{
		"description": "planning",
		"start":       "2026-03-02T09:00:00Z",
		"end":         "2026-03-02T10:30:00Z",
		"billable":    true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/entries = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeResponse[entryJSON](t, rec)
	if created.DurationSeconds != 5400 {
		t.Errorf("duration = %d, want 5400", created.DurationSeconds)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/entries?from=2026-03-01&to=2026-04-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/entries = %d", rec.Code)
	}
	entries := decodeResponse[[]entryJSON](t, rec)
	if len(entries) != 1 {
		t.Fatalf("listed %d entries, want 1", len(entries))
	}

	rec = doJSON(t, s, http.MethodPost, "/api/entries", map[string]any{
		"description": "bad range",
		"start":       "2026-03-02T10:00:00Z",
		"end":         "2026-03-02T09:00:00Z",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("entry with end before start = %d, want 422", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/entries/1", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE /api/entries/1 = %d, want 204", rec.Code)
	}
	rec = doJSON(t, s, http.MethodDelete, "/api/entries/1", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
}

// seedBillingData creates a client, a project, and three billable hours at
// €80/h plus one non-billable hour.
func seedBillingData(t *testing.T, s *Server) (clientID, projectID int64) {
	t.Helper()

	rec := doJSON(t, s, http.MethodPost, "/api/clients", map[string]any{
		"name":               "Acme Corp",
		"default_rate_cents": 6000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create client = %d, body %s", rec.Code, rec.Body.String())
	}
	client := decodeResponse[clientJSON](t, rec)

	rec = doJSON(t, s, http.MethodPost, "/api/projects", map[string]any{
		"client_id":         client.ID,
		"name":              "Website",
		"hourly_rate_cents": 8000,
		"billable":          true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project = %d, body %s", rec.Code, rec.Body.String())
	}
	project := decodeResponse[projectJSON](t, rec)

	rec = doJSON(t, s, http.MethodPost, "/api/entries", map[string]any{
		"project_id":  project.ID,
		"description": "build",
		"start":       "2026-03-02T09:00:00Z",
		"end":         "2026-03-02T12:00:00Z",
		"billable":    true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create entry = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, s, http.MethodPost, "/api/entries", map[string]any{
		"project_id":  project.ID,
		"description": "internal sync",
		"start":       "2026-03-03T09:00:00Z",
		"end":         "2026-03-03T10:00:00Z",
		"billable":    false,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create non-billable entry = %d", rec.Code)
	}

	return client.ID, project.ID
}

func TestReportEndpoint(t *testing.T) {
	s := newTestServer(t)
	_, projectID := seedBillingData(t, s)

	rec := doJSON(t, s, http.MethodGet, "/api/report?from=2026-03-01&to=2026-04-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/report = %d, body %s", rec.Code, rec.Body.String())
	}
	summary := decodeResponse[summaryJSON](t, rec)

	if summary.TotalSeconds != 4*3600 {
		t.Errorf("total seconds = %d, want %d", summary.TotalSeconds, 4*3600)
	}
	// Three billable hours at the 8000 cents project rate.
	if summary.RevenueCents != 24000 {
		t.Errorf("revenue = %d, want 24000", summary.RevenueCents)
	}
	if len(summary.ByProject) != 1 || summary.ByProject[0].ID != projectID {
		t.Errorf("by_project = %+v", summary.ByProject)
	}

	// Served again from cache with the same numbers.
	rec = doJSON(t, s, http.MethodGet, "/api/report?from=2026-03-01&to=2026-04-01", nil)
	cached := decodeResponse[summaryJSON](t, rec)
	if cached.RevenueCents != summary.RevenueCents {
		t.Errorf("cached revenue = %d, want %d", cached.RevenueCents, summary.RevenueCents)
	}
}

func TestInvoiceEndpoints(t *testing.T) {
	s := newTestServer(t)
	clientID, _ := seedBillingData(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/invoices", map[string]any{
		"client_id":    clientID,
		"period_start": "2026-03-01",
		"period_end":   "2026-04-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/invoices = %d, body %s", rec.Code, rec.Body.String())
	}
	inv := decodeResponse[invoiceJSON](t, rec)
	if inv.Number == "" || inv.SubtotalCents != 24000 {
		t.Errorf("invoice = %+v, want subtotal 24000", inv)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/invoices", nil)
	list := decodeResponse[[]invoiceJSON](t, rec)
	if len(list) != 1 {
		t.Fatalf("listed %d invoices, want 1", len(list))
	}

	rec = doJSON(t, s, http.MethodGet, "/api/invoices/1/document?format=csv", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("document download = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "csv") {
		t.Errorf("document content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, inv.Number+".csv") {
		t.Errorf("content disposition = %q, want filename %q", cd, inv.Number+".csv")
	}
	if !strings.Contains(rec.Body.String(), inv.Number) {
		t.Error("document does not contain the invoice number")
	}

	rec = doJSON(t, s, http.MethodGet, "/api/invoices/1/document?format=docx", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format = %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPut, "/api/invoices/1/status", map[string]any{"status": "sent"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status update = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decodeResponse[invoiceJSON](t, rec)
	if updated.Status != "sent" {
		t.Errorf("status = %q, want sent", updated.Status)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/invoices", map[string]any{
		"client_id":    clientID,
		"period_start": "2027-01-01",
		"period_end":   "2027-02-01",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invoice for empty period = %d, want 422", rec.Code)
	}

	// The failed attempt must not consume a number: the next invoice follows
	// the first one directly.
	rec = doJSON(t, s, http.MethodPost, "/api/invoices", map[string]any{
		"client_id":    clientID,
		"period_start": "2026-03-01",
		"period_end":   "2026-04-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("second POST /api/invoices = %d, body %s", rec.Code, rec.Body.String())
	}
	second := decodeResponse[invoiceJSON](t, rec)
	if second.Number != "INV-000002" {
		t.Errorf("second invoice number = %q, want INV-000002", second.Number)
	}
}

func TestImportExportEndpoints(t *testing.T) {
	s := newTestServer(t)

	csv := "project,client,description,start,end,billable\n" +
		"Website,Acme Corp,layout,2026-03-02T09:00:00Z,2026-03-02T11:00:00Z,yes\n"

	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/import = %d, body %s", rec.Code, rec.Body.String())
	}
	report := decodeResponse[services.ImportReport](t, rec)
	if report.Imported != 1 {
		t.Errorf("imported = %d, want 1", report.Imported)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/export?from=2026-03-01&to=2026-04-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/export = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "layout") {
		t.Errorf("export missing imported entry: %s", rec.Body.String())
	}
}

func TestGoalEndpoints(t *testing.T) {
	s := newTestServer(t)
	seedBillingData(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/goals", map[string]any{
		"kind":   "revenue",
		"period": "month",
		"year":   2026,
		"month":  3,
		"target": 100000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/goals = %d, body %s", rec.Code, rec.Body.String())
	}
	goal := decodeResponse[goalJSON](t, rec)

	rec = doJSON(t, s, http.MethodGet, "/api/goals/1/progress", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET progress = %d, body %s", rec.Code, rec.Body.String())
	}
	progress := decodeResponse[progressJSON](t, rec)
	if progress.Current != 24000 {
		t.Errorf("progress current = %d, want 24000", progress.Current)
	}
	if progress.Percent != 24 {
		t.Errorf("progress percent = %d, want 24", progress.Percent)
	}
	if progress.Goal.ID != goal.ID {
		t.Errorf("progress goal id = %d, want %d", progress.Goal.ID, goal.ID)
	}

	rec = doJSON(t, s, http.MethodPut, "/api/goals/1", map[string]any{
		"kind":   "revenue",
		"period": "month",
		"year":   2026,
		"month":  3,
		"target": 50000,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /api/goals/1 = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, s, http.MethodGet, "/api/goals/1/progress", nil)
	progress = decodeResponse[progressJSON](t, rec)
	if progress.Percent != 48 {
		t.Errorf("progress percent after update = %d, want 48", progress.Percent)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/goals", map[string]any{
		"kind":   "velocity",
		"period": "month",
		"year":   2026,
		"month":  3,
		"target": 1,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid goal kind = %d, want 422", rec.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/settings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/settings = %d", rec.Code)
	}
	settings := decodeResponse[settingsJSON](t, rec)
	if settings.InvoicePrefix == "" {
		t.Errorf("settings = %+v, want seeded defaults", settings)
	}

	settings.TaxRateBps = 2100
	settings.RoundingMinutes = 15
	rec = doJSON(t, s, http.MethodPut, "/api/settings", settings)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /api/settings = %d, body %s", rec.Code, rec.Body.String())
	}

	settings.TaxRateBps = 20000
	rec = doJSON(t, s, http.MethodPut, "/api/settings", settings)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid tax rate = %d, want 422", rec.Code)
	}
}
