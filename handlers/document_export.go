package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fieldoffice/services"
)

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

// documentFilename names a download after the document number and client,
// e.g. "QTN-2026-001_Acme-Properties.pdf".
func documentFilename(data *services.DocumentExportData, ext string) string {
	name := sanitizeFilename(data.Number)
	if data.Client.Name != "" {
		name += "_" + sanitizeFilename(data.Client.Name)
	}
	return name + "." + ext
}

// loadExportData resolves {kind} and {id} and builds the export data. On
// failure the error response has already been written and ok is false.
func loadExportData(app *pocketbase.PocketBase, e *core.RequestEvent, area string) (data *services.DocumentExportData, ok bool, err error) {
	kind, err := documentKind(e)
	if err != nil {
		return nil, false, respondError(e, http.StatusNotFound, "Unknown document type", nil)
	}
	id := e.Request.PathValue("id")
	if id == "" {
		return nil, false, respondError(e, http.StatusBadRequest, "Missing document ID", nil)
	}

	data, err = services.BuildDocumentExportData(app, kind, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, respondError(e, http.StatusNotFound, fmt.Sprintf("%s not found", kind.Title()), nil)
		}
		log.Printf("%s: %s %s: %v", area, kind, id, err)
		return nil, false, respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.", nil)
	}
	return data, true, nil
}

// HandleDocumentExportPDF downloads a quotation or invoice as a PDF.
// Route: GET /api/documents/{kind}/{id}/export/pdf
func HandleDocumentExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, ok, err := loadExportData(app, e, "export_pdf")
		if !ok {
			return err
		}

		pdfBytes, err := services.GenerateDocumentPDF(data)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to generate PDF file", nil)
		}

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, documentFilename(data, "pdf")))
		e.Response.Write(pdfBytes)
		return nil
	}
}

// HandleDocumentExportExcel downloads a quotation or invoice as an Excel workbook.
// Route: GET /api/documents/{kind}/{id}/export/excel
func HandleDocumentExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, ok, err := loadExportData(app, e, "export_excel")
		if !ok {
			return err
		}

		xlsxBytes, err := services.GenerateDocumentExcel(data)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to generate Excel file", nil)
		}

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, documentFilename(data, "xlsx")))
		e.Response.Write(xlsxBytes)
		return nil
	}
}
