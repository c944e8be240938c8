// Package invoice turns billable time entries into invoices and renders
// them as text, CSV, PDF or XLSX documents.
package invoice

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"tempo/internal/core"
	"tempo/internal/report"
)

var (
	ErrNoBillableEntries = errors.New("no billable entries in period")
	ErrUnknownFormat     = errors.New("unknown document format")
)

// Format identifies an invoice document format.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format string from a request or CLI flag.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatCSV, FormatPDF, FormatXLSX:
		return Format(s), nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FileExtension returns the filename extension for the format.
func (f Format) FileExtension() string {
	switch f {
	case FormatText:
		return "txt"
	default:
		return string(f)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// FormatNumber builds a sequential invoice number, e.g. "INV-000042".
func FormatNumber(prefix string, seq int64) string {
	if prefix == "" {
		prefix = "INV-"
	}
	return fmt.Sprintf("%s%06d", prefix, seq)
}

// Build assembles an invoice for one client over the half-open period
// [periodStart, periodEnd). Entries are grouped into one line per project;
// only billable entries on billable projects of the client are included.
// Running entries are excluded: open work is not invoiced.
func Build(number string, client core.Client, entries []core.TimeEntry, projects map[int64]core.Project, settings core.Settings, periodStart, periodEnd, now time.Time) (core.Invoice, error) {
	type agg struct {
		project core.Project
		seconds int64
		amount  core.Money
	}
	byProject := make(map[int64]*agg)

	// Rounding applies per entry, exactly as report.Build prices them, so an
	// invoice subtotal always matches the report revenue for the same period.
	for _, e := range report.InRange(entries, periodStart, periodEnd) {
		if !e.Billable || e.Running() {
			continue
		}
		p, ok := projects[e.ProjectID]
		if !ok || !p.Billable || p.ClientID != client.ID {
			continue
		}
		a, ok := byProject[p.ID]
		if !ok {
			a = &agg{project: p}
			byProject[p.ID] = a
		}
		seconds := e.DurationSeconds(now)
		rate := report.EntryRate(p, client)
		a.seconds += report.BilledSeconds(seconds, settings.RoundingMinutes)
		a.amount = a.amount.Add(report.EntryAmount(seconds, rate, settings.RoundingMinutes))
	}

	if len(byProject) == 0 {
		return core.Invoice{}, ErrNoBillableEntries
	}

	inv := core.Invoice{
		Number:      number,
		ClientID:    client.ID,
		ClientName:  client.Name,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      core.InvoiceDraft,
		CreatedAt:   now,
	}

	for _, a := range byProject {
		line := core.InvoiceLine{
			ProjectID:   a.project.ID,
			ProjectName: a.project.Name,
			Seconds:     a.seconds,
			Rate:        report.EntryRate(a.project, client),
			Amount:      a.amount,
		}
		inv.Lines = append(inv.Lines, line)
	}
	sort.Slice(inv.Lines, func(i, j int) bool { return inv.Lines[i].ProjectName < inv.Lines[j].ProjectName })

	for _, l := range inv.Lines {
		inv.Subtotal = inv.Subtotal.Add(l.Amount)
	}
	inv.Tax = inv.Subtotal.ApplyBps(settings.TaxRateBps)
	inv.Total = inv.Subtotal.Add(inv.Tax)

	return inv, nil
}

// Render produces the invoice document in the requested format.
func Render(inv core.Invoice, settings core.Settings, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return renderText(inv, settings)
	case FormatCSV:
		return renderCSV(inv, settings)
	case FormatPDF:
		return renderPDF(inv, settings)
	case FormatXLSX:
		return renderXLSX(inv, settings)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// hours formats billed seconds as decimal hours with two digits, e.g. "1.50".
func hours(seconds int64) string {
	whole := seconds / 3600
	// half-up on the second decimal of the fractional hour
	frac := (seconds%3600*100 + 1800) / 3600
	if frac >= 100 {
		whole++
		frac -= 100
	}
	return fmt.Sprintf("%d.%02d", whole, frac)
}

func taxLabel(settings core.Settings) string {
	return fmt.Sprintf("Tax (%d.%02d%%)", settings.TaxRateBps/100, settings.TaxRateBps%100)
}
