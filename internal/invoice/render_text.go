package invoice

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"tempo/internal/core"
)

const dateLayout = "2006-01-02"

func renderText(inv core.Invoice, settings core.Settings) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "INVOICE %s\n", inv.Number)
	fmt.Fprintf(&buf, "Client: %s\n", inv.ClientName)
	fmt.Fprintf(&buf, "Period: %s to %s\n", inv.PeriodStart.Format(dateLayout), inv.PeriodEnd.AddDate(0, 0, -1).Format(dateLayout))
	fmt.Fprintf(&buf, "Date:   %s\n\n", inv.CreatedAt.Format(dateLayout))

	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Project\tHours\tRate\tAmount")
	for _, l := range inv.Lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			l.ProjectName,
			hours(l.Seconds),
			l.Rate.FormatCurrency(settings.Currency),
			l.Amount.FormatCurrency(settings.Currency))
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}

	fmt.Fprintf(&buf, "\nSubtotal: %s\n", inv.Subtotal.FormatCurrency(settings.Currency))
	fmt.Fprintf(&buf, "%s: %s\n", taxLabel(settings), inv.Tax.FormatCurrency(settings.Currency))
	fmt.Fprintf(&buf, "Total:    %s\n", inv.Total.FormatCurrency(settings.Currency))

	return buf.Bytes(), nil
}
