package invoice

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"tempo/internal/core"
	"tempo/internal/report"
)

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber("INV-", 42); got != "INV-000042" {
		t.Fatalf("got %q", got)
	}
	if got := FormatNumber("", 7); got != "INV-000007" {
		t.Fatalf("default prefix: got %q", got)
	}
	if got := FormatNumber("ACME/", 1234567); got != "ACME/1234567" {
		t.Fatalf("long sequence: got %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "csv", "pdf", "xlsx"} {
		f, err := ParseFormat(s)
		if err != nil || string(f) != s {
			t.Errorf("ParseFormat(%q) = %v, %v", s, f, err)
		}
	}
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Errorf("empty format should default to text, got %v, %v", f, err)
	}
	if _, err := ParseFormat("docx"); err == nil {
		t.Errorf("expected error for unknown format")
	}
}

func fixtureInvoiceInput() (core.Client, []core.TimeEntry, map[int64]core.Project, core.Settings, time.Time, time.Time, time.Time) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	client := core.Client{ID: 1, Name: "Acme"}
	entries := []core.TimeEntry{
		{ID: 1, ProjectID: 1, StartTime: day, EndTime: day.Add(2 * time.Hour), Billable: true},
		{ID: 2, ProjectID: 1, StartTime: day.Add(3 * time.Hour), EndTime: day.Add(4 * time.Hour), Billable: true},
		{ID: 3, ProjectID: 2, StartTime: day.AddDate(0, 0, 1), EndTime: day.AddDate(0, 0, 1).Add(time.Hour), Billable: true},
		{ID: 4, ProjectID: 1, StartTime: day.AddDate(0, 0, 2), Billable: true},                               // still running
		{ID: 5, ProjectID: 3, StartTime: day, EndTime: day.Add(time.Hour), Billable: true},                   // other client
		{ID: 6, ProjectID: 1, StartTime: day.AddDate(0, 0, 3), EndTime: day.AddDate(0, 0, 3).Add(time.Hour)}, // non-billable
	}
	projects := map[int64]core.Project{
		1: {ID: 1, ClientID: 1, Name: "Website", HourlyRate: core.Money{Cents: 8000}, Billable: true},
		2: {ID: 2, ClientID: 1, Name: "Support", HourlyRate: core.Money{Cents: 6000}, Billable: true},
		3: {ID: 3, ClientID: 2, Name: "Other", HourlyRate: core.Money{Cents: 9000}, Billable: true},
	}
	settings := core.Settings{Currency: "EUR", TaxRateBps: 2100, InvoicePrefix: "INV-", NextInvoiceSeq: 1}
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	return client, entries, projects, settings, from, to, now
}

func TestBuild(t *testing.T) {
	client, entries, projects, settings, from, to, now := fixtureInvoiceInput()

	inv, err := Build("INV-000001", client, entries, projects, settings, from, to, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(inv.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(inv.Lines))
	}
	// Sorted by project name: Support before Website.
	if inv.Lines[0].ProjectName != "Support" || inv.Lines[0].Amount.Cents != 6000 {
		t.Fatalf("line 0 = %+v", inv.Lines[0])
	}
	if inv.Lines[1].ProjectName != "Website" || inv.Lines[1].Seconds != 3*3600 || inv.Lines[1].Amount.Cents != 24000 {
		t.Fatalf("line 1 = %+v", inv.Lines[1])
	}

	if inv.Subtotal.Cents != 30000 {
		t.Fatalf("subtotal = %d, want 30000", inv.Subtotal.Cents)
	}
	if inv.Tax.Cents != 6300 {
		t.Fatalf("tax = %d, want 6300", inv.Tax.Cents)
	}
	if inv.Total.Cents != 36300 {
		t.Fatalf("total = %d, want 36300", inv.Total.Cents)
	}
	if inv.Status != core.InvoiceDraft {
		t.Fatalf("status = %q", inv.Status)
	}
}

func TestBuildNoBillableEntries(t *testing.T) {
	client, _, projects, settings, from, to, now := fixtureInvoiceInput()
	_, err := Build("INV-000001", client, nil, projects, settings, from, to, now)
	if err != ErrNoBillableEntries {
		t.Fatalf("expected ErrNoBillableEntries, got %v", err)
	}
}

func TestBuildAppliesRounding(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	client := core.Client{ID: 1, Name: "Acme"}
	entries := []core.TimeEntry{
		{ID: 1, ProjectID: 1, StartTime: day, EndTime: day.Add(20 * time.Minute), Billable: true},
	}
	projects := map[int64]core.Project{
		1: {ID: 1, ClientID: 1, Name: "Website", HourlyRate: core.Money{Cents: 6000}, Billable: true},
	}
	settings := core.Settings{Currency: "EUR", NextInvoiceSeq: 1, RoundingMinutes: 30}

	inv, err := Build("INV-000001", client, entries, projects, settings, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1), day.Add(time.Hour))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// 20 minutes billed as 30 minutes at 60.00/h.
	if inv.Lines[0].Seconds != 1800 || inv.Subtotal.Cents != 3000 {
		t.Fatalf("rounded line = %+v, subtotal = %d", inv.Lines[0], inv.Subtotal.Cents)
	}
}

func TestBuildMatchesReportRevenue(t *testing.T) {
	// Each entry rounds up on its own: two 5-minute entries at 60.00/h with a
	// 15-minute increment bill as 2 × 15 min, not one rounded 10-minute sum.
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	client := core.Client{ID: 1, Name: "Acme"}
	entries := []core.TimeEntry{
		{ID: 1, ProjectID: 1, StartTime: day, EndTime: day.Add(5 * time.Minute), Billable: true},
		{ID: 2, ProjectID: 1, StartTime: day.Add(time.Hour), EndTime: day.Add(time.Hour + 5*time.Minute), Billable: true},
	}
	projects := map[int64]core.Project{
		1: {ID: 1, ClientID: 1, Name: "Website", HourlyRate: core.Money{Cents: 6000}, Billable: true},
	}
	clients := map[int64]core.Client{1: client}
	settings := core.Settings{Currency: "EUR", NextInvoiceSeq: 1, RoundingMinutes: 15}
	from, to := day.AddDate(0, 0, -1), day.AddDate(0, 0, 1)
	now := day.Add(2 * time.Hour)

	inv, err := Build("INV-000001", client, entries, projects, settings, from, to, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	summary := report.Build(entries, projects, clients, settings, from, to, now)

	if inv.Subtotal.Cents != summary.Revenue.Cents {
		t.Fatalf("invoice subtotal = %d, report revenue = %d", inv.Subtotal.Cents, summary.Revenue.Cents)
	}
	if inv.Subtotal.Cents != 3000 {
		t.Fatalf("subtotal = %d, want 3000", inv.Subtotal.Cents)
	}
	if inv.Lines[0].Seconds != 2*15*60 {
		t.Fatalf("billed seconds = %d, want %d", inv.Lines[0].Seconds, 2*15*60)
	}
}

func builtInvoice(t *testing.T) (core.Invoice, core.Settings) {
	t.Helper()
	client, entries, projects, settings, from, to, now := fixtureInvoiceInput()
	inv, err := Build("INV-000001", client, entries, projects, settings, from, to, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return inv, settings
}

func TestRenderText(t *testing.T) {
	inv, settings := builtInvoice(t)
	out, err := Render(inv, settings, FormatText)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out)
	for _, want := range []string{
		"INVOICE INV-000001",
		"Client: Acme",
		"Website",
		"Support",
		"Subtotal: €300.00",
		"Tax (21.00%): €63.00",
		"Total:    €363.00",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text output missing %q:\n%s", want, text)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	inv, settings := builtInvoice(t)
	out, err := Render(inv, settings, FormatCSV)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	// header + 2 lines + subtotal + tax + total
	if len(records) != 6 {
		t.Fatalf("rows = %d, want 6", len(records))
	}
	if records[0][0] != "invoice" {
		t.Fatalf("header = %v", records[0])
	}
	last := records[len(records)-1]
	if last[2] != "Total" || last[5] != "363.00" {
		t.Fatalf("total row = %v", last)
	}
}

func TestRenderPDF(t *testing.T) {
	inv, settings := builtInvoice(t)
	out, err := Render(inv, settings, FormatPDF)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF (starts with %q)", out[:min(8, len(out))])
	}
}

func TestRenderXLSX(t *testing.T) {
	inv, settings := builtInvoice(t)
	out, err := Render(inv, settings, FormatXLSX)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// XLSX files are zip archives.
	if !bytes.HasPrefix(out, []byte("PK")) {
		t.Fatalf("output is not a zip archive")
	}
}
