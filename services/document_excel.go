package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateDocumentExcel creates an Excel workbook for a quotation or invoice
// and returns the file contents as a byte slice. Amounts are written as
// numbers so the sheet stays usable for further calculation.
func GenerateDocumentExcel(data *DocumentExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := data.Number
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = string(data.Kind)
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	// Column references (A through F).
	columns := []string{"A", "B", "C", "D", "E", "F"}
	lastCol := columns[len(columns)-1]

	widths := []float64{6, 48, 10, 10, 16, 18}
	for i, c := range columns {
		if err := f.SetColWidth(sheetName, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", c, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	itemStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}

	// Built-in number format 4 is "#,##0.00".
	amountStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
		NumFmt: 4,
	})
	if err != nil {
		return nil, fmt.Errorf("create amount style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		NumFmt: 4,
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header Rows (1-4) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s %s", data.Kind.Title(), sanitizeExcelCell(data.Number)))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	headerLines := []string{
		"Client: " + data.Client.Name,
		"Date: " + data.IssueDate,
	}
	if data.SiteAddress != "" {
		headerLines = append(headerLines, "Site: "+data.SiteAddress)
	}
	for i, line := range headerLines {
		r := i + 2
		if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", r), fmt.Sprintf("%s%d", lastCol, r)); err != nil {
			return nil, fmt.Errorf("merge header row %d: %w", r, err)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", r), sanitizeExcelCell(line))
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", r), fmt.Sprintf("%s%d", lastCol, r), subtitleStyle)
	}

	// ── Column Headers ──────────────────────────────────────────────────

	headerRow := len(headerLines) + 3
	headers := []string{"#", "Description", "Qty", "UOM", "Unit Price", "Total"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s%d", columns[i], headerRow), h)
	}
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", lastCol, headerRow), headerStyle)

	// ── Data Rows ───────────────────────────────────────────────────────

	row := headerRow + 1
	for _, item := range data.LineItems {
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheetName, "A"+rowStr, item.SINo)
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(item.Description))
		f.SetCellValue(sheetName, "C"+rowStr, item.Qty.InexactFloat64())
		f.SetCellValue(sheetName, "D"+rowStr, sanitizeExcelCell(item.UOM))
		f.SetCellValue(sheetName, "E"+rowStr, item.UnitPrice.InexactFloat64())
		f.SetCellValue(sheetName, "F"+rowStr, item.TotalPrice.InexactFloat64())

		f.SetCellStyle(sheetName, "A"+rowStr, "D"+rowStr, itemStyle)
		f.SetCellStyle(sheetName, "E"+rowStr, "F"+rowStr, amountStyle)

		row++
	}

	// ── Summary Rows ────────────────────────────────────────────────────

	row++

	summary := []struct {
		label string
		value float64
	}{
		{"Subtotal:", data.Subtotal.InexactFloat64()},
		{fmt.Sprintf("VAT %s%%:", data.TaxPercentage.String()), data.TaxAmount.InexactFloat64()},
		{fmt.Sprintf("Net Amount (%s):", data.Currency.Code), data.NetAmount.InexactFloat64()},
	}
	for _, s := range summary {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "E"+rowStr, s.label)
		f.SetCellStyle(sheetName, "E"+rowStr, "E"+rowStr, summaryLabelStyle)
		f.SetCellValue(sheetName, "F"+rowStr, s.value)
		f.SetCellStyle(sheetName, "F"+rowStr, "F"+rowStr, summaryValueStyle)
		row++
	}

	if data.AmountInWords != "" {
		row++
		rowStr := fmt.Sprintf("%d", row)
		if err := f.MergeCell(sheetName, "A"+rowStr, lastCol+rowStr); err != nil {
			return nil, fmt.Errorf("merge amount in words: %w", err)
		}
		f.SetCellValue(sheetName, "A"+rowStr, "Amount in Words: "+data.AmountInWords)
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, subtitleStyle)
	}

	// ── Write to buffer ─────────────────────────────────────────────────

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
