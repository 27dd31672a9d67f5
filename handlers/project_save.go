package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fieldoffice/services"
)

var ProjectStatusOptions = []string{"active", "completed", "on_hold"}

// HandleProjectSave creates a project, or updates one when the route carries
// {id}. The address must be a complete selection that resolves against the
// client's location tree; otherwise nothing is saved and the field errors
// are returned.
// Routes: POST /api/projects, POST /api/projects/{id}
func HandleProjectSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid form data", nil)
		}

		projectID := e.Request.PathValue("id")
		name := strings.TrimSpace(e.Request.FormValue("name"))
		clientID := strings.TrimSpace(e.Request.FormValue("client"))
		status := strings.TrimSpace(e.Request.FormValue("status"))
		sel := services.NewSelectionFromForm(
			e.Request.FormValue("location"),
			e.Request.FormValue("building"),
			e.Request.FormValue("apartment"),
		)

		if !slices.Contains(ProjectStatusOptions, status) {
			status = "active"
		}

		fieldErrs := make(map[string]string)
		if name == "" {
			fieldErrs["name"] = "Project name is required"
		}

		var locations []services.Location
		if clientID == "" {
			fieldErrs["client"] = "Client is required"
		} else {
			var err error
			locations, err = services.LoadClientLocations(app, clientID)
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					log.Printf("project_save: load client %s: %v", clientID, err)
				}
				fieldErrs["client"] = "Client not found"
			} else {
				for field, msg := range services.SelectionErrors(locations, sel) {
					fieldErrs[field] = msg
				}
			}
		}

		if len(fieldErrs) > 0 {
			return respondError(e, http.StatusBadRequest, "Please fix the errors below", fieldErrs)
		}

		var record *core.Record
		if projectID != "" {
			existing, err := app.FindRecordById("projects", projectID)
			if err != nil {
				return respondError(e, http.StatusNotFound, "Project not found", nil)
			}
			record = existing
		} else {
			projectsCol, err := app.FindCollectionByNameOrId("projects")
			if err != nil {
				log.Printf("project_save: could not find projects collection: %v", err)
				return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.", nil)
			}
			record = core.NewRecord(projectsCol)
		}

		record.Set("name", name)
		record.Set("client", clientID)
		record.Set("location", sel.Location.String())
		record.Set("building", sel.Building.String())
		record.Set("apartment", sel.Apartment.String())
		record.Set("status", status)

		if err := app.Save(record); err != nil {
			var verrs validation.Errors
			if errors.As(err, &verrs) {
				return respondError(e, http.StatusBadRequest, "Please fix the errors below", verrs)
			}
			log.Printf("project_save: could not save project: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.", nil)
		}

		statusCode := http.StatusCreated
		message := "Project created successfully"
		if projectID != "" {
			statusCode = http.StatusOK
			message = "Project updated successfully"
		}
		SetToast(e, "success", message)

		return e.JSON(statusCode, map[string]any{
			"id":      record.Id,
			"name":    record.GetString("name"),
			"client":  record.GetString("client"),
			"status":  record.GetString("status"),
			"address": services.ProjectSelection(record),
		})
	}
}
