package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateLocationExcel writes a client's site tree in the same
// Location | Building | Apartment layout ParseLocationWorkbook reads, one row
// per apartment. Locations and buildings without children get a row of
// their own so the export re-imports to the same tree.
func GenerateLocationExcel(clientName string, locations []Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, locationSheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	dataStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create data style: %w", err)
	}

	columns := columnLetters(len(locationHeaders))
	lastCol := columns[len(columns)-1]
	for i, h := range locationHeaders {
		f.SetCellValue(locationSheetName, columns[i]+"1", h)
		f.SetColWidth(locationSheetName, columns[i], columns[i], 28)
	}
	f.SetCellStyle(locationSheetName, "A1", lastCol+"1", headerStyle)

	f.SetPanes(locationSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	row := 2
	write := func(loc, bld, apt string) {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(locationSheetName, "A"+rowStr, sanitizeExcelCell(loc))
		f.SetCellValue(locationSheetName, "B"+rowStr, sanitizeExcelCell(bld))
		f.SetCellValue(locationSheetName, "C"+rowStr, sanitizeExcelCell(apt))
		f.SetCellStyle(locationSheetName, "A"+rowStr, lastCol+rowStr, dataStyle)
		row++
	}

	for _, l := range locations {
		if len(l.Buildings) == 0 {
			write(l.Name, "", "")
		}
		for _, b := range l.Buildings {
			if len(b.Apartments) == 0 {
				write(l.Name, b.Name, "")
			}
			for _, a := range b.Apartments {
				write(l.Name, b.Name, a.Number)
			}
		}
	}

	if clientName != "" {
		if err := f.SetDocProps(&excelize.DocProperties{Title: clientName + " - Site Locations"}); err != nil {
			return nil, fmt.Errorf("set doc props: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}
