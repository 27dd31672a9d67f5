package handlers

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fieldoffice/services"
)

// optionList renders <option> elements for a cascading select. The blank
// placeholder option maps back to an unselected level.
func optionList(placeholder string, values []string, selected string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<option value="">`+templ.EscapeString(placeholder)+`</option>`); err != nil {
			return err
		}
		for _, v := range values {
			attr := ""
			if v == selected {
				attr = " selected"
			}
			if _, err := io.WriteString(w, `<option value="`+templ.EscapeString(v)+`"`+attr+`>`+templ.EscapeString(v)+`</option>`); err != nil {
				return err
			}
		}
		return nil
	})
}

// loadClientTree reads the {clientId} path value and returns that client's
// location tree. On failure the error response has already been written and
// ok is false.
func loadClientTree(app *pocketbase.PocketBase, e *core.RequestEvent, area string) (locations []services.Location, ok bool, err error) {
	clientID := e.Request.PathValue("clientId")
	if clientID == "" {
		return nil, false, respondError(e, http.StatusBadRequest, "Missing client ID", nil)
	}

	locations, err = services.LoadClientLocations(app, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, respondError(e, http.StatusNotFound, "Client not found", nil)
		}
		log.Printf("%s: client %s: %v", area, clientID, err)
		return nil, false, respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.", nil)
	}
	return locations, true, nil
}

// writeOptions renders the option list for HTMX requests and a JSON array otherwise.
func writeOptions(e *core.RequestEvent, placeholder string, values []string, selected string) error {
	if isHTMX(e) {
		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		return optionList(placeholder, values, selected).Render(e.Request.Context(), e.Response)
	}
	return e.JSON(http.StatusOK, values)
}

// HandleLocationOptions lists the locations of a client.
// Route: GET /api/clients/{clientId}/locations
func HandleLocationOptions(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		locations, ok, err := loadClientTree(app, e, "location_options")
		if !ok {
			return err
		}
		return writeOptions(e, "Select location", services.LocationNames(locations), e.Request.URL.Query().Get("selected"))
	}
}

// HandleBuildingOptions lists the buildings under ?location=. An unknown or
// missing location yields an empty list.
// Route: GET /api/clients/{clientId}/buildings
func HandleBuildingOptions(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		locations, ok, err := loadClientTree(app, e, "building_options")
		if !ok {
			return err
		}
		q := e.Request.URL.Query()
		return writeOptions(e, "Select building", services.BuildingNames(locations, q.Get("location")), q.Get("selected"))
	}
}

// HandleApartmentOptions lists the apartments under ?location=&building=.
// Route: GET /api/clients/{clientId}/apartments
func HandleApartmentOptions(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		locations, ok, err := loadClientTree(app, e, "apartment_options")
		if !ok {
			return err
		}
		q := e.Request.URL.Query()
		numbers := services.ApartmentNumbers(locations, q.Get("location"), q.Get("building"))
		return writeOptions(e, "Select apartment", numbers, q.Get("selected"))
	}
}
