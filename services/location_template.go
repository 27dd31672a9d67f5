package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const locationSheetName = "Locations"

var locationHeaders = [3]string{"Location", "Building", "Apartment"}

// locationTemplateExamples are the sample rows listed on the Instructions sheet.
var locationTemplateExamples = [][3]string{
	{"Dubai Marina", "Tower A", "1204"},
	{"Dubai Marina", "Tower A", "1205"},
	{"Business Bay", "Block 3", ""},
}

// GenerateLocationTemplate creates a downloadable .xlsx with the Location,
// Building and Apartment columns ParseLocationWorkbook expects.
func GenerateLocationTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, locationSheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	requiredHeaderStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1D4ED8"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create required header style: %w", err)
	}
	optionalHeaderStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#6B7280"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create optional header style: %w", err)
	}

	columns := columnLetters(len(locationHeaders))
	for i, h := range locationHeaders {
		cell := columns[i] + "1"
		if i == 0 {
			f.SetCellValue(locationSheetName, cell, h+" *")
			f.SetCellStyle(locationSheetName, cell, cell, requiredHeaderStyle)
		} else {
			f.SetCellValue(locationSheetName, cell, h)
			f.SetCellStyle(locationSheetName, cell, cell, optionalHeaderStyle)
		}
		f.SetColWidth(locationSheetName, columns[i], columns[i], 24)
	}

	f.SetPanes(locationSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if err := addLocationInstructions(f); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel template: %w", err)
	}
	return buf.Bytes(), nil
}

// addLocationInstructions creates a hidden sheet describing the columns.
func addLocationInstructions(f *excelize.File) error {
	instSheet := "Instructions"
	if _, err := f.NewSheet(instSheet); err != nil {
		return fmt.Errorf("create instructions sheet: %w", err)
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	})

	f.SetCellValue(instSheet, "A1", "Site Locations Import - Instructions")
	f.SetCellStyle(instSheet, "A1", "A1", titleStyle)
	f.SetCellValue(instSheet, "A2", "One row per apartment. Leave Apartment (and Building) blank to add an empty building (or location).")

	cols := columnLetters(len(locationHeaders))
	for i, h := range locationHeaders {
		cell := fmt.Sprintf("%s4", cols[i])
		f.SetCellValue(instSheet, cell, h)
		f.SetCellStyle(instSheet, cell, cell, headerStyle)
		f.SetColWidth(instSheet, cols[i], cols[i], 24)
	}
	for r, ex := range locationTemplateExamples {
		row := fmt.Sprintf("%d", r+5)
		for i, v := range ex {
			f.SetCellValue(instSheet, cols[i]+row, v)
		}
	}

	return f.SetSheetVisible(instSheet, false)
}

// columnLetters returns Excel column letters for n columns: A, B, ... Z, AA, AB ...
func columnLetters(n int) []string {
	cols := make([]string, n)
	for i := 0; i < n; i++ {
		name, _ := excelize.ColumnNumberToName(i + 1)
		cols[i] = name
	}
	return cols
}
