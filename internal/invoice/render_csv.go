package invoice

import (
	"bytes"
	"encoding/csv"

	"tempo/internal/core"
)

func renderCSV(inv core.Invoice, settings core.Settings) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"invoice", "client", "project", "hours", "rate", "amount", "currency"},
	}
	for _, l := range inv.Lines {
		rows = append(rows, []string{
			inv.Number,
			inv.ClientName,
			l.ProjectName,
			hours(l.Seconds),
			l.Rate.Format(),
			l.Amount.Format(),
			settings.Currency,
		})
	}
	rows = append(rows,
		[]string{inv.Number, inv.ClientName, "Subtotal", "", "", inv.Subtotal.Format(), settings.Currency},
		[]string{inv.Number, inv.ClientName, taxLabel(settings), "", "", inv.Tax.Format(), settings.Currency},
		[]string{inv.Number, inv.ClientName, "Total", "", "", inv.Total.Format(), settings.Currency},
	)

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
