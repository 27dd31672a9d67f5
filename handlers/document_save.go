package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fieldoffice/services"
)

// documentKind reads the {kind} path value ("quotations" or "invoices").
func documentKind(e *core.RequestEvent) (services.DocumentKind, error) {
	return services.ParseDocumentKind(e.Request.PathValue("kind"))
}

// documentSummary is the JSON returned after a document is saved.
func documentSummary(kind services.DocumentKind, record *core.Record) map[string]any {
	return map[string]any{
		"id":             record.Id,
		"kind":           kind,
		"number":         record.GetString("number"),
		"status":         record.GetString("status"),
		"client":         record.GetString("client"),
		"project":        record.GetString("project"),
		"issue_date":     record.GetString("issue_date"),
		"due_date":       record.GetString("due_date"),
		"subtotal":       record.GetFloat("subtotal"),
		"tax_percentage": record.GetFloat("tax_percentage"),
		"tax_amount":     record.GetFloat("tax_amount"),
		"net_amount":     record.GetFloat("net_amount"),
	}
}

// HandleDocumentSave creates a quotation or invoice, or updates one when the
// route carries {id}. Totals are always recomputed from the submitted items.
// Routes: POST /api/documents/{kind}, POST /api/documents/{kind}/{id}
func HandleDocumentSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		kind, err := documentKind(e)
		if err != nil {
			return respondError(e, http.StatusNotFound, "Unknown document type", nil)
		}
		id := e.Request.PathValue("id")

		var form services.DocumentForm
		if err := json.NewDecoder(e.Request.Body).Decode(&form); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid document data", nil)
		}

		record, err := services.SaveDocument(app, kind, id, form, time.Now())
		if err != nil {
			var verrs validation.Errors
			switch {
			case errors.As(err, &verrs):
				return respondError(e, http.StatusBadRequest, "Please fix the errors below", verrs)
			case errors.Is(err, sql.ErrNoRows):
				return respondError(e, http.StatusNotFound, fmt.Sprintf("%s not found", kind.Title()), nil)
			}
			log.Printf("document_save: %s %s: %v", kind, id, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.", nil)
		}

		statusCode := http.StatusCreated
		verb := "created"
		if id != "" {
			statusCode = http.StatusOK
			verb = "updated"
		}
		SetToast(e, "success", fmt.Sprintf("%s %s %s", kind.Title(), record.GetString("number"), verb))

		return e.JSON(statusCode, documentSummary(kind, record))
	}
}

// HandleQuotationConvert turns a quotation into a draft invoice.
// Route: POST /api/documents/quotations/{id}/invoice
func HandleQuotationConvert(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quotationID := e.Request.PathValue("id")
		if quotationID == "" {
			return respondError(e, http.StatusBadRequest, "Missing quotation ID", nil)
		}

		invoice, err := services.ConvertQuotationToInvoice(app, quotationID, time.Now())
		if err != nil {
			switch {
			case errors.Is(err, services.ErrQuotationRejected), errors.Is(err, services.ErrAlreadyInvoiced):
				return respondError(e, http.StatusConflict, err.Error(), nil)
			case errors.Is(err, sql.ErrNoRows):
				return respondError(e, http.StatusNotFound, "Quotation not found", nil)
			}
			log.Printf("document_convert: quotation %s: %v", quotationID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.", nil)
		}

		SetToast(e, "success", fmt.Sprintf("Invoice %s created", invoice.GetString("number")))
		return e.JSON(http.StatusCreated, documentSummary(services.KindInvoice, invoice))
	}
}
