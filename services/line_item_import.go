package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// lineItemColumns maps accepted header spellings to line item fields.
var lineItemColumns = map[string]string{
	"description": "description",
	"item":        "description",
	"uom":         "uom",
	"unit":        "uom",
	"qty":         "quantity",
	"quantity":    "quantity",
	"unit price":  "unit_price",
	"rate":        "unit_price",
	"price":       "unit_price",
}

// ParseLineItemFile reads line items from an uploaded .csv or .xlsx file with
// Description, UOM, Qty and Unit Price columns. Each valid row becomes a
// recomputed LineItem; invalid rows are reported and skipped.
func ParseLineItemFile(r io.Reader, fileName string) ([]LineItem, []ImportRowError, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(r)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(r)
	default:
		return nil, nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, nil, err
	}

	columnKeys := mapLineItemHeaders(headers)
	for _, required := range []string{"description", "quantity", "unit_price"} {
		found := false
		for _, k := range columnKeys {
			if k == required {
				found = true
				break
			}
		}
		if !found {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingHeader, required)
		}
	}

	var (
		items     []LineItem
		rowErrors []ImportRowError
	)

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		rowData := make(map[string]string)
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			rowData[key] = strings.TrimSpace(row[colIdx])
		}

		if rowData["description"] == "" && rowData["quantity"] == "" && rowData["unit_price"] == "" {
			continue
		}

		var errs []ImportRowError
		if rowData["description"] == "" {
			errs = append(errs, ImportRowError{Row: rowNum, Field: "Description", Message: "Description is required"})
		}
		qty, qErr := parseImportNumber(rowData["quantity"])
		if qErr != nil {
			errs = append(errs, ImportRowError{Row: rowNum, Field: "Qty", Message: qErr.Error()})
		}
		price, pErr := parseImportNumber(rowData["unit_price"])
		if pErr != nil {
			errs = append(errs, ImportRowError{Row: rowNum, Field: "Unit Price", Message: pErr.Error()})
		}
		if len(errs) > 0 {
			rowErrors = append(rowErrors, errs...)
			continue
		}

		uom := rowData["uom"]
		if uom == "" {
			uom = UOMOptions[0]
		}

		item := AddItem(nil)[0]
		item.Description = rowData["description"]
		item.UOM = uom
		item.Quantity = qty
		item.UnitPrice = price
		items = append(items, RecomputeLine(item))
	}

	return items, rowErrors, nil
}

// parseImportNumber accepts plain or comma-grouped numbers. Blank is zero.
func parseImportNumber(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must be zero or greater")
	}
	return d, nil
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return rows[0], rows[1:], nil
}

// mapLineItemHeaders maps uploaded column headers to line item field keys,
// one per column. Unrecognized columns map to "".
func mapLineItemHeaders(headers []string) []string {
	mapped := make([]string, len(headers))
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSpace(strings.TrimSuffix(norm, "*"))
		mapped[i] = lineItemColumns[norm]
	}
	return mapped
}

// GenerateErrorReport creates a downloadable .xlsx file from import row errors.
func GenerateErrorReport(errors []ImportRowError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	defaultSheet := f.GetSheetName(0)
	f.SetSheetName(defaultSheet, sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errors {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
