package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Apartment is the leaf of a client's site tree.
type Apartment struct {
	Number string `json:"number"`
}

// Building groups apartments under one named block.
type Building struct {
	Name       string      `json:"name"`
	Apartments []Apartment `json:"apartments"`
}

// Location is the top level of a client's site tree.
type Location struct {
	Name      string     `json:"name"`
	Buildings []Building `json:"buildings"`
}

// Choice is one level of a cascading selection. The zero value is unselected,
// which is distinct from a selected empty string.
type Choice struct {
	value string
	set   bool
}

// Unselected is the empty Choice.
var Unselected = Choice{}

// Select returns a Choice holding v.
func Select(v string) Choice {
	return Choice{value: v, set: true}
}

// ChoiceFromForm maps a raw form value to a Choice. Blank values are unselected.
func ChoiceFromForm(s string) Choice {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unselected
	}
	return Select(s)
}

// Value returns the selected value and whether one is set.
func (c Choice) Value() (string, bool) {
	return c.value, c.set
}

// IsSet reports whether a value has been selected.
func (c Choice) IsSet() bool {
	return c.set
}

// String returns the selected value, or "" when unselected.
func (c Choice) String() string {
	return c.value
}

// MarshalJSON encodes an unselected Choice as null.
func (c Choice) MarshalJSON() ([]byte, error) {
	if !c.set {
		return []byte("null"), nil
	}
	return json.Marshal(c.value)
}

// UnmarshalJSON decodes null as unselected.
func (c *Choice) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Unselected
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("choice: %w", err)
	}
	*c = Select(s)
	return nil
}

// AddressSelection is the Location -> Building -> Apartment path chosen for a project.
type AddressSelection struct {
	Location  Choice `json:"location"`
	Building  Choice `json:"building"`
	Apartment Choice `json:"apartment"`
}

// NewSelectionFromForm builds a selection from raw form values.
func NewSelectionFromForm(location, building, apartment string) AddressSelection {
	return AddressSelection{
		Location:  ChoiceFromForm(location),
		Building:  ChoiceFromForm(building),
		Apartment: ChoiceFromForm(apartment),
	}
}

var (
	// ErrSelectionIncomplete is returned when a level of the selection is unset.
	ErrSelectionIncomplete = errors.New("address selection incomplete")
	// ErrSelectionUnresolved is returned when a selected name no longer exists under its parent.
	ErrSelectionUnresolved = errors.New("address selection invalid, please re-select")
	// ErrDuplicateLocationName is returned when a tree repeats a name under the same parent.
	ErrDuplicateLocationName = errors.New("duplicate name in location tree")
)

// SelectionError names the level of the selection that failed.
type SelectionError struct {
	Field string
	Err   error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

// BuildingsFor returns the buildings of the named location, or nil when no
// location has that name. First match wins if names repeat.
func BuildingsFor(locations []Location, locationName string) []Building {
	for _, loc := range locations {
		if loc.Name == locationName {
			return loc.Buildings
		}
	}
	return nil
}

// ApartmentsFor returns the apartments of the named building, or nil.
func ApartmentsFor(buildings []Building, buildingName string) []Apartment {
	for _, b := range buildings {
		if b.Name == buildingName {
			return b.Apartments
		}
	}
	return nil
}

// OnLocationChange sets the location and clears both dependent levels, even
// when the new location has a building of the same name.
func OnLocationChange(sel AddressSelection, location Choice) AddressSelection {
	return AddressSelection{Location: location}
}

// OnBuildingChange sets the building and clears the apartment.
func OnBuildingChange(sel AddressSelection, building Choice) AddressSelection {
	return AddressSelection{Location: sel.Location, Building: building}
}

// OnApartmentChange sets the apartment.
func OnApartmentChange(sel AddressSelection, apartment Choice) AddressSelection {
	sel.Apartment = apartment
	return sel
}

// IsComplete reports whether all three levels hold a non-empty value.
func IsComplete(sel AddressSelection) bool {
	return hasValue(sel.Location) && hasValue(sel.Building) && hasValue(sel.Apartment)
}

// IsValid reports whether the selection is complete and every level resolves
// under its parent.
func IsValid(locations []Location, sel AddressSelection) bool {
	_, err := ResolveSelection(locations, sel)
	return err == nil
}

func hasValue(c Choice) bool {
	v, ok := c.Value()
	return ok && v != ""
}

// ResolvedAddress holds the tree entries a valid selection points at.
type ResolvedAddress struct {
	Location  Location
	Building  Building
	Apartment Apartment
}

// Label renders the address as printed on documents.
func (a ResolvedAddress) Label() string {
	return fmt.Sprintf("Apartment %s, %s, %s", a.Apartment.Number, a.Building.Name, a.Location.Name)
}

// ResolveSelection walks the selection down the tree. The returned error is a
// *SelectionError wrapping ErrSelectionIncomplete or ErrSelectionUnresolved.
func ResolveSelection(locations []Location, sel AddressSelection) (ResolvedAddress, error) {
	for _, lvl := range []struct {
		field  string
		choice Choice
	}{
		{"location", sel.Location},
		{"building", sel.Building},
		{"apartment", sel.Apartment},
	} {
		if !hasValue(lvl.choice) {
			return ResolvedAddress{}, &SelectionError{Field: lvl.field, Err: ErrSelectionIncomplete}
		}
	}

	var resolved ResolvedAddress
	loc, ok := findLocation(locations, sel.Location.String())
	if !ok {
		return ResolvedAddress{}, &SelectionError{Field: "location", Err: ErrSelectionUnresolved}
	}
	resolved.Location = loc

	bld, ok := findBuilding(loc.Buildings, sel.Building.String())
	if !ok {
		return ResolvedAddress{}, &SelectionError{Field: "building", Err: ErrSelectionUnresolved}
	}
	resolved.Building = bld

	apt, ok := findApartment(bld.Apartments, sel.Apartment.String())
	if !ok {
		return ResolvedAddress{}, &SelectionError{Field: "apartment", Err: ErrSelectionUnresolved}
	}
	resolved.Apartment = apt

	return resolved, nil
}

func findLocation(locations []Location, name string) (Location, bool) {
	for _, loc := range locations {
		if loc.Name == name {
			return loc, true
		}
	}
	return Location{}, false
}

func findBuilding(buildings []Building, name string) (Building, bool) {
	for _, b := range buildings {
		if b.Name == name {
			return b, true
		}
	}
	return Building{}, false
}

func findApartment(apartments []Apartment, number string) (Apartment, bool) {
	for _, a := range apartments {
		if a.Number == number {
			return a, true
		}
	}
	return Apartment{}, false
}

// selectionLabels maps selection fields to their form labels.
var selectionLabels = map[string]string{
	"location":  "Location",
	"building":  "Building",
	"apartment": "Apartment",
}

// SelectionErrors returns a map of field -> error message for the selection,
// empty when the selection is valid. Only the first failing level is reported
// since the levels below it depend on it.
func SelectionErrors(locations []Location, sel AddressSelection) map[string]string {
	errs := make(map[string]string)

	_, err := ResolveSelection(locations, sel)
	var selErr *SelectionError
	if !errors.As(err, &selErr) {
		return errs
	}

	label := selectionLabels[selErr.Field]
	if errors.Is(selErr, ErrSelectionIncomplete) {
		errs[selErr.Field] = fmt.Sprintf("%s is required", label)
	} else {
		errs[selErr.Field] = fmt.Sprintf("Selected %s no longer exists, please re-select", strings.ToLower(label))
	}
	return errs
}

// LocationNames returns the location names in tree order.
func LocationNames(locations []Location) []string {
	names := make([]string, 0, len(locations))
	for _, loc := range locations {
		names = append(names, loc.Name)
	}
	return names
}

// BuildingNames returns the building names available for the named location.
func BuildingNames(locations []Location, locationName string) []string {
	buildings := BuildingsFor(locations, locationName)
	names := make([]string, 0, len(buildings))
	for _, b := range buildings {
		names = append(names, b.Name)
	}
	return names
}

// ApartmentNumbers returns the apartment numbers available for the named
// location and building.
func ApartmentNumbers(locations []Location, locationName, buildingName string) []string {
	apartments := ApartmentsFor(BuildingsFor(locations, locationName), buildingName)
	numbers := make([]string, 0, len(apartments))
	for _, a := range apartments {
		numbers = append(numbers, a.Number)
	}
	return numbers
}

// DuplicateNames returns the path of every name that repeats under the same
// parent, e.g. "Marina", "Marina / Tower B" or "Marina / Tower B / 101".
// The resolver assumes uniqueness; callers use this to reject a tree on save.
func DuplicateNames(locations []Location) []string {
	var dups []string

	seenLoc := make(map[string]bool)
	for _, loc := range locations {
		if seenLoc[loc.Name] {
			dups = append(dups, loc.Name)
		}
		seenLoc[loc.Name] = true

		seenBld := make(map[string]bool)
		for _, b := range loc.Buildings {
			path := loc.Name + " / " + b.Name
			if seenBld[b.Name] {
				dups = append(dups, path)
			}
			seenBld[b.Name] = true

			seenApt := make(map[string]bool)
			for _, a := range b.Apartments {
				if seenApt[a.Number] {
					dups = append(dups, path+" / "+a.Number)
				}
				seenApt[a.Number] = true
			}
		}
	}

	return dups
}

// ValidateLocationTree returns ErrDuplicateLocationName, listing the offending
// paths, when any name repeats under the same parent.
func ValidateLocationTree(locations []Location) error {
	dups := DuplicateNames(locations)
	if len(dups) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDuplicateLocationName, strings.Join(dups, ", "))
}
