package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the outcome of a location workbook import.
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Imported   int              `json:"imported"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
	RolledBack bool             `json:"rolled_back"`
}

// ImportRowError represents a problem with a specific workbook row.
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrMissingHeader is returned when the workbook lacks one of the
// Location, Building or Apartment columns.
var ErrMissingHeader = errors.New("missing header")

// ParseLocationWorkbook reads a Location | Building | Apartment workbook and
// folds its rows into a site tree. Rows that repeat a location or building
// extend the existing node; a row naming only a location (or only a location
// and building) creates that node with no children. Row numbers in the
// returned errors are 1-indexed and include the header row.
func ParseLocationWorkbook(r io.Reader) ([]Location, []ImportRowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := locationSheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q is empty", ErrMissingHeader, sheet)
	}

	cols, err := locationColumns(rows[0])
	if err != nil {
		return nil, nil, err
	}

	var (
		locations []Location
		rowErrors []ImportRowError
	)
	seen := make(map[[3]string]int)

	for i, row := range rows[1:] {
		rowNum := i + 2
		loc := cellAt(row, cols[0])
		bld := cellAt(row, cols[1])
		apt := cellAt(row, cols[2])

		if loc == "" && bld == "" && apt == "" {
			continue
		}
		if loc == "" {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "Location", Message: "Location is required"})
			continue
		}
		if apt != "" && bld == "" {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "Building", Message: "Building is required when an apartment is given"})
			continue
		}

		key := [3]string{loc, bld, apt}
		if first, ok := seen[key]; ok {
			rowErrors = append(rowErrors, ImportRowError{
				Row:     rowNum,
				Field:   lastField(bld, apt),
				Message: fmt.Sprintf("Duplicate of row %d", first),
			})
			continue
		}
		seen[key] = rowNum

		locations = addToTree(locations, loc, bld, apt)
	}

	return locations, rowErrors, nil
}

// MergeLocations folds incoming into existing by name. Existing order is kept
// and new nodes are appended. Neither input is modified.
func MergeLocations(existing, incoming []Location) []Location {
	out := cloneLocations(existing)
	for _, l := range incoming {
		if len(l.Buildings) == 0 {
			out = addToTree(out, l.Name, "", "")
		}
		for _, b := range l.Buildings {
			if len(b.Apartments) == 0 {
				out = addToTree(out, l.Name, b.Name, "")
			}
			for _, a := range b.Apartments {
				out = addToTree(out, l.Name, b.Name, a.Number)
			}
		}
	}
	return out
}

// CommitLocationImport merges the imported tree into the client's locations
// and saves the client in a single transaction. The clients validate hook
// rejects the save if the merged tree contains duplicate names.
func CommitLocationImport(app core.App, clientID string, locations []Location) (*ImportResult, error) {
	result := &ImportResult{TotalRows: countApartmentRows(locations)}

	err := app.RunInTransaction(func(txApp core.App) error {
		client, err := txApp.FindRecordById("clients", clientID)
		if err != nil {
			return fmt.Errorf("client %s: %w", clientID, err)
		}

		existing, err := ClientLocations(client)
		if err != nil {
			return fmt.Errorf("decode client locations: %w", err)
		}

		client.Set("locations", MergeLocations(existing, locations))
		return txApp.Save(client)
	})
	if err != nil {
		log.Printf("location_import: commit rolled back for client %s: %v", clientID, err)
		result.Failed = result.TotalRows
		result.RolledBack = true
		result.Errors = append(result.Errors, ImportRowError{
			Message: fmt.Sprintf("Failed to save: %s", err.Error()),
		})
		return result, err
	}

	result.Imported = result.TotalRows
	return result, nil
}

// locationColumns finds the column index of each of Location, Building and
// Apartment in the header row. Headers match case-insensitively and may carry
// the template's trailing " *" required marker.
func locationColumns(header []string) ([3]int, error) {
	cols := [3]int{-1, -1, -1}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(h), "*")))
		for j, want := range locationHeaders {
			if h == strings.ToLower(want) && cols[j] < 0 {
				cols[j] = i
			}
		}
	}

	var missing []string
	for j, c := range cols {
		if c < 0 {
			missing = append(missing, locationHeaders[j])
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingHeader, strings.Join(missing, ", "))
	}
	return cols, nil
}

// cellAt returns the trimmed cell, undoing the quote sanitizeExcelCell adds
// in front of formula characters.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	v := strings.TrimSpace(row[idx])
	if len(v) > 1 && v[0] == '\'' && strings.ContainsRune("=+-@|", rune(v[1])) {
		v = v[1:]
	}
	return v
}

func lastField(bld, apt string) string {
	switch {
	case apt != "":
		return "Apartment"
	case bld != "":
		return "Building"
	}
	return "Location"
}

// addToTree returns locations with the loc/bld/apt path present. Blank bld or
// apt stop the path at the level above.
func addToTree(locations []Location, loc, bld, apt string) []Location {
	li := -1
	for i := range locations {
		if locations[i].Name == loc {
			li = i
			break
		}
	}
	if li < 0 {
		locations = append(locations, Location{Name: loc})
		li = len(locations) - 1
	}
	if bld == "" {
		return locations
	}

	buildings := locations[li].Buildings
	bi := -1
	for i := range buildings {
		if buildings[i].Name == bld {
			bi = i
			break
		}
	}
	if bi < 0 {
		buildings = append(buildings, Building{Name: bld})
		bi = len(buildings) - 1
	}

	if apt != "" {
		found := false
		for _, a := range buildings[bi].Apartments {
			if a.Number == apt {
				found = true
				break
			}
		}
		if !found {
			buildings[bi].Apartments = append(buildings[bi].Apartments, Apartment{Number: apt})
		}
	}

	locations[li].Buildings = buildings
	return locations
}

func cloneLocations(locations []Location) []Location {
	if locations == nil {
		return nil
	}
	out := make([]Location, len(locations))
	for i, l := range locations {
		out[i] = Location{Name: l.Name}
		if l.Buildings != nil {
			out[i].Buildings = make([]Building, len(l.Buildings))
			for j, b := range l.Buildings {
				out[i].Buildings[j] = Building{
					Name:       b.Name,
					Apartments: append([]Apartment(nil), b.Apartments...),
				}
			}
		}
	}
	return out
}

// countApartmentRows counts the workbook rows needed to express the tree.
func countApartmentRows(locations []Location) int {
	n := 0
	for _, l := range locations {
		if len(l.Buildings) == 0 {
			n++
		}
		for _, b := range l.Buildings {
			if len(b.Apartments) == 0 {
				n++
			}
			n += len(b.Apartments)
		}
	}
	return n
}
