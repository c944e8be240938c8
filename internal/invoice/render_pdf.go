package invoice

import (
	"bytes"

	"github.com/go-pdf/fpdf"

	"tempo/internal/core"
)

func renderPDF(inv core.Invoice, settings core.Settings) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.Number, true)
	pdf.AddPage()

	// The built-in fonts are cp1252 only, so currency symbols go through
	// the translator instead of raw UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(m core.Money) string {
		return tr(m.FormatCurrency(settings.Currency))
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "INVOICE "+inv.Number, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr("Client: "+inv.ClientName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Period: "+inv.PeriodStart.Format(dateLayout)+" to "+inv.PeriodEnd.AddDate(0, 0, -1).Format(dateLayout), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+inv.CreatedAt.Format(dateLayout), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	colWidths := []float64{80, 25, 35, 40}
	headers := []string{"Project", "Hours", "Rate", "Amount"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range inv.Lines {
		pdf.CellFormat(colWidths[0], 7, tr(l.ProjectName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 7, hours(l.Seconds), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[2], 7, money(l.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 7, money(l.Amount), "1", 1, "R", false, 0, "")
	}

	label := colWidths[0] + colWidths[1] + colWidths[2]
	pdf.CellFormat(label, 7, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[3], 7, money(inv.Subtotal), "1", 1, "R", false, 0, "")
	pdf.CellFormat(label, 7, taxLabel(settings), "", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[3], 7, money(inv.Tax), "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(label, 7, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[3], 7, money(inv.Total), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
