package http

import (
	"time"

	"tempo/internal/core"
	"tempo/internal/report"
)

// JSON representations of the domain types. Money travels as integer cents;
// timestamps as RFC 3339. A running entry has no "end" field.
type (
	entryJSON struct {
		ID              int64    `json:"id"`
		ProjectID       int64    `json:"project_id,omitempty"`
		Description     string   `json:"description"`
		Start           string   `json:"start"`
		End             string   `json:"end,omitempty"`
		Billable        bool     `json:"billable"`
		Tags            []string `json:"tags,omitempty"`
		Running         bool     `json:"running"`
		DurationSeconds int64    `json:"duration_seconds"`
	}

	projectJSON struct {
		ID              int64  `json:"id"`
		ClientID        int64  `json:"client_id,omitempty"`
		Name            string `json:"name"`
		HourlyRateCents int64  `json:"hourly_rate_cents"`
		Billable        bool   `json:"billable"`
		Archived        bool   `json:"archived"`
		Color           string `json:"color,omitempty"`
	}

	clientJSON struct {
		ID               int64  `json:"id"`
		Name             string `json:"name"`
		Email            string `json:"email,omitempty"`
		Address          string `json:"address,omitempty"`
		DefaultRateCents int64  `json:"default_rate_cents"`
	}

	goalJSON struct {
		ID     int64  `json:"id"`
		Kind   string `json:"kind"`
		Period string `json:"period"`
		Year   int    `json:"year"`
		Month  int    `json:"month,omitempty"`
		Target int64  `json:"target"`
	}

	settingsJSON struct {
		Currency        string `json:"currency"`
		TaxRateBps      int64  `json:"tax_rate_bps"`
		InvoicePrefix   string `json:"invoice_prefix"`
		NextInvoiceSeq  int64  `json:"next_invoice_seq"`
		RoundingMinutes int    `json:"rounding_minutes"`
	}

	invoiceLineJSON struct {
		ProjectID   int64  `json:"project_id"`
		ProjectName string `json:"project_name"`
		Seconds     int64  `json:"seconds"`
		RateCents   int64  `json:"rate_cents"`
		AmountCents int64  `json:"amount_cents"`
	}

	invoiceJSON struct {
		ID            int64             `json:"id"`
		Number        string            `json:"number"`
		ClientID      int64             `json:"client_id"`
		ClientName    string            `json:"client_name"`
		PeriodStart   string            `json:"period_start"`
		PeriodEnd     string            `json:"period_end"`
		Lines         []invoiceLineJSON `json:"lines,omitempty"`
		SubtotalCents int64             `json:"subtotal_cents"`
		TaxCents      int64             `json:"tax_cents"`
		TotalCents    int64             `json:"total_cents"`
		Status        string            `json:"status"`
		CreatedAt     string            `json:"created_at"`
	}

	summaryRowJSON struct {
		ID          int64  `json:"id,omitempty"`
		Name        string `json:"name"`
		Seconds     int64  `json:"seconds"`
		AmountCents int64  `json:"amount_cents"`
	}

	summaryJSON struct {
		From         string           `json:"from"`
		To           string           `json:"to"`
		TotalSeconds int64            `json:"total_seconds"`
		RevenueCents int64            `json:"revenue_cents"`
		ByProject    []summaryRowJSON `json:"by_project"`
		ByClient     []summaryRowJSON `json:"by_client"`
		ByDay        []summaryRowJSON `json:"by_day"`
	}

	progressJSON struct {
		Goal    goalJSON `json:"goal"`
		Current int64    `json:"current"`
		Percent int      `json:"percent"`
	}
)

func toEntryJSON(e core.TimeEntry, now time.Time) entryJSON {
	out := entryJSON{
		ID:              e.ID,
		ProjectID:       e.ProjectID,
		Description:     e.Description,
		Start:           e.StartTime.UTC().Format(time.RFC3339),
		Billable:        e.Billable,
		Tags:            e.Tags,
		Running:         e.Running(),
		DurationSeconds: e.DurationSeconds(now),
	}
	if !e.Running() {
		out.End = e.EndTime.UTC().Format(time.RFC3339)
	}
	return out
}

func toEntriesJSON(entries []core.TimeEntry, now time.Time) []entryJSON {
	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryJSON(e, now))
	}
	return out
}

func toProjectJSON(p core.Project) projectJSON {
	return projectJSON{
		ID:              p.ID,
		ClientID:        p.ClientID,
		Name:            p.Name,
		HourlyRateCents: p.HourlyRate.Cents,
		Billable:        p.Billable,
		Archived:        p.Archived,
		Color:           p.Color,
	}
}

func toClientJSON(c core.Client) clientJSON {
	return clientJSON{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		Address:          c.Address,
		DefaultRateCents: c.DefaultRate.Cents,
	}
}

func toGoalJSON(g core.Goal) goalJSON {
	return goalJSON{
		ID:     g.ID,
		Kind:   string(g.Kind),
		Period: string(g.Period),
		Year:   g.Year,
		Month:  g.Month,
		Target: g.Target,
	}
}

func toSettingsJSON(s core.Settings) settingsJSON {
	return settingsJSON{
		Currency:        s.Currency,
		TaxRateBps:      s.TaxRateBps,
		InvoicePrefix:   s.InvoicePrefix,
		NextInvoiceSeq:  s.NextInvoiceSeq,
		RoundingMinutes: s.RoundingMinutes,
	}
}

func toInvoiceJSON(inv core.Invoice) invoiceJSON {
	out := invoiceJSON{
		ID:            inv.ID,
		Number:        inv.Number,
		ClientID:      inv.ClientID,
		ClientName:    inv.ClientName,
		PeriodStart:   inv.PeriodStart.UTC().Format("2006-01-02"),
		PeriodEnd:     inv.PeriodEnd.UTC().Format("2006-01-02"),
		SubtotalCents: inv.Subtotal.Cents,
		TaxCents:      inv.Tax.Cents,
		TotalCents:    inv.Total.Cents,
		Status:        string(inv.Status),
		CreatedAt:     inv.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, l := range inv.Lines {
		out.Lines = append(out.Lines, invoiceLineJSON{
			ProjectID:   l.ProjectID,
			ProjectName: l.ProjectName,
			Seconds:     l.Seconds,
			RateCents:   l.Rate.Cents,
			AmountCents: l.Amount.Cents,
		})
	}
	return out
}

func toSummaryJSON(s report.Summary) summaryJSON {
	out := summaryJSON{
		From:         s.From.UTC().Format("2006-01-02"),
		To:           s.To.UTC().Format("2006-01-02"),
		TotalSeconds: s.TotalSeconds,
		RevenueCents: s.Revenue.Cents,
		ByProject:    []summaryRowJSON{},
		ByClient:     []summaryRowJSON{},
		ByDay:        []summaryRowJSON{},
	}
	for _, row := range s.ByProject {
		out.ByProject = append(out.ByProject, summaryRowJSON{ID: row.ProjectID, Name: row.Name, Seconds: row.Seconds, AmountCents: row.Amount.Cents})
	}
	for _, row := range s.ByClient {
		out.ByClient = append(out.ByClient, summaryRowJSON{ID: row.ClientID, Name: row.Name, Seconds: row.Seconds, AmountCents: row.Amount.Cents})
	}
	for _, row := range s.ByDay {
		out.ByDay = append(out.ByDay, summaryRowJSON{Name: row.Date.Format("2006-01-02"), Seconds: row.Seconds, AmountCents: row.Amount.Cents})
	}
	return out
}
