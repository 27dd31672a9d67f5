package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fieldoffice/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleLocationTemplateDownload serves the blank Location | Building |
// Apartment workbook.
// Route: GET /api/clients/{clientId}/locations/template
func HandleLocationTemplateDownload(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		xlsxBytes, err := services.GenerateLocationTemplate()
		if err != nil {
			log.Printf("location_template: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to generate template", nil)
		}

		e.Response.Header().Set("Content-Type", xlsxContentType)
		e.Response.Header().Set("Content-Disposition", `attachment; filename="Locations_Template.xlsx"`)
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleLocationExport downloads a client's location tree in the import layout.
// Route: GET /api/clients/{clientId}/locations/export
func HandleLocationExport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		clientID := e.Request.PathValue("clientId")
		client, err := app.FindRecordById("clients", clientID)
		if err != nil {
			return respondError(e, http.StatusNotFound, "Client not found", nil)
		}

		locations, err := services.ClientLocations(client)
		if err != nil {
			log.Printf("location_export: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.", nil)
		}

		xlsxBytes, err := services.GenerateLocationExcel(client.GetString("name"), locations)
		if err != nil {
			log.Printf("location_export: generate failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to generate Excel file", nil)
		}

		filename := fmt.Sprintf("%s_Locations.xlsx", sanitizeFilename(client.GetString("name")))
		e.Response.Header().Set("Content-Type", xlsxContentType)
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleLocationImport parses an uploaded location workbook and merges it
// into the client's tree. A workbook with any row error is rejected whole.
// Route: POST /api/clients/{clientId}/locations/import
func HandleLocationImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		clientID := e.Request.PathValue("clientId")
		if _, err := app.FindRecordById("clients", clientID); err != nil {
			return respondError(e, http.StatusNotFound, "Client not found", nil)
		}

		// Parse multipart form (max 10MB)
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return respondError(e, http.StatusBadRequest, "File too large or invalid form data", nil)
		}

		file, _, err := e.Request.FormFile("file")
		if err != nil {
			return respondError(e, http.StatusBadRequest, "Please select a file to upload", nil)
		}
		defer file.Close()

		locations, rowErrs, err := services.ParseLocationWorkbook(file)
		if err != nil {
			if !errors.Is(err, services.ErrMissingHeader) {
				log.Printf("location_import: parse: %v", err)
			}
			return respondError(e, http.StatusBadRequest, err.Error(), nil)
		}
		if len(rowErrs) > 0 {
			return e.JSON(http.StatusBadRequest, services.ImportResult{
				Failed:    len(rowErrs),
				Errors:    rowErrs,
			})
		}

		result, err := services.CommitLocationImport(app, clientID, locations)
		if err != nil {
			var verrs validation.Errors
			if errors.As(err, &verrs) || errors.Is(err, sql.ErrNoRows) {
				return e.JSON(http.StatusBadRequest, result)
			}
			log.Printf("location_import: commit: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.", nil)
		}

		SetToast(e, "success", fmt.Sprintf("%d location rows imported successfully", result.Imported))
		return e.JSON(http.StatusOK, result)
	}
}
