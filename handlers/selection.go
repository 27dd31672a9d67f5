package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fieldoffice/services"
)

// selectionChange is one edit of a cascading address form.
type selectionChange struct {
	Selection services.AddressSelection `json:"selection"`
	Field     string                    `json:"field"`
	Value     services.Choice           `json:"value"`
}

// selectionState is everything the form needs to redraw after an edit.
type selectionState struct {
	Selection  services.AddressSelection `json:"selection"`
	Locations  []string                  `json:"locations"`
	Buildings  []string                  `json:"buildings"`
	Apartments []string                  `json:"apartments"`
	Complete   bool                      `json:"complete"`
	Valid      bool                      `json:"valid"`
	Errors     map[string]string         `json:"errors"`
	Label      string                    `json:"label,omitempty"`
}

func newSelectionState(locations []services.Location, sel services.AddressSelection) selectionState {
	state := selectionState{
		Selection:  sel,
		Locations:  services.LocationNames(locations),
		Buildings:  services.BuildingNames(locations, sel.Location.String()),
		Apartments: services.ApartmentNumbers(locations, sel.Location.String(), sel.Building.String()),
		Complete:   services.IsComplete(sel),
		Valid:      services.IsValid(locations, sel),
		Errors:     services.SelectionErrors(locations, sel),
	}
	if resolved, err := services.ResolveSelection(locations, sel); err == nil {
		state.Label = resolved.Label()
	}
	return state
}

// HandleSelectionChange applies one cascading edit. Changing a level clears
// the levels below it.
// Route: POST /api/clients/{clientId}/selection
func HandleSelectionChange(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		locations, ok, err := loadClientTree(app, e, "selection")
		if !ok {
			return err
		}

		var req selectionChange
		if err := json.NewDecoder(e.Request.Body).Decode(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid selection data", nil)
		}

		sel := req.Selection
		switch req.Field {
		case "location":
			sel = services.OnLocationChange(sel, req.Value)
		case "building":
			sel = services.OnBuildingChange(sel, req.Value)
		case "apartment":
			sel = services.OnApartmentChange(sel, req.Value)
		case "":
			// no edit, report the state of the submitted selection
		default:
			return respondError(e, http.StatusBadRequest, "Unknown selection field", map[string]string{
				"field": "Must be one of location, building or apartment",
			})
		}

		return e.JSON(http.StatusOK, newSelectionState(locations, sel))
	}
}
