package invoice

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"tempo/internal/core"
)

func renderXLSX(inv core.Invoice, settings core.Settings) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Invoice"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	set := func(cell string, value interface{}) {
		_ = f.SetCellValue(sheet, cell, value)
	}

	set("A1", "Invoice")
	set("B1", inv.Number)
	set("A2", "Client")
	set("B2", inv.ClientName)
	set("A3", "Period")
	set("B3", inv.PeriodStart.Format(dateLayout)+" to "+inv.PeriodEnd.AddDate(0, 0, -1).Format(dateLayout))
	set("A4", "Date")
	set("B4", inv.CreatedAt.Format(dateLayout))

	headerRow := 6
	for i, h := range []string{"Project", "Hours", "Rate", "Amount"} {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, err
		}
		set(cell, h)
	}

	row := headerRow + 1
	for _, l := range inv.Lines {
		set(fmt.Sprintf("A%d", row), l.ProjectName)
		set(fmt.Sprintf("B%d", row), hours(l.Seconds))
		set(fmt.Sprintf("C%d", row), l.Rate.Format())
		set(fmt.Sprintf("D%d", row), l.Amount.Format())
		row++
	}

	row++
	set(fmt.Sprintf("C%d", row), "Subtotal")
	set(fmt.Sprintf("D%d", row), inv.Subtotal.Format())
	row++
	set(fmt.Sprintf("C%d", row), taxLabel(settings))
	set(fmt.Sprintf("D%d", row), inv.Tax.Format())
	row++
	set(fmt.Sprintf("C%d", row), "Total")
	set(fmt.Sprintf("D%d", row), inv.Total.Format())

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
