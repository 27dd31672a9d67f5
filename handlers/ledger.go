package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"fieldoffice/services"
)

// ledgerRequest is the edit-loop payload: the current items and tax rate,
// plus an optional structural edit applied before recomputing.
type ledgerRequest struct {
	Items         []services.LineItem `json:"items"`
	TaxPercentage decimal.Decimal     `json:"tax_percentage"`
	Op            string              `json:"op"`
	Index         int                 `json:"index"`
}

// ledgerResponse is the recomputed ledger with its printable figures.
type ledgerResponse struct {
	services.Ledger
	SubtotalDisplay string `json:"subtotal_display"`
	TaxDisplay      string `json:"tax_amount_display"`
	NetDisplay      string `json:"net_amount_display"`
	AmountInWords   string `json:"amount_in_words"`
}

func newLedgerResponse(ledger services.Ledger) ledgerResponse {
	c := services.DefaultCurrency
	return ledgerResponse{
		Ledger:          ledger,
		SubtotalDisplay: c.FormatMoney(ledger.Subtotal),
		TaxDisplay:      c.FormatMoney(ledger.TaxAmount),
		NetDisplay:      c.FormatMoney(ledger.NetAmount),
		AmountInWords:   ledger.AmountInWords(c),
	}
}

// HandleLedgerRecompute recomputes a document ledger while it is edited.
// op "add" appends a blank line; op "remove" drops the line at index.
// Route: POST /api/ledger
func HandleLedgerRecompute(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req ledgerRequest
		if err := json.NewDecoder(e.Request.Body).Decode(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid ledger data", nil)
		}

		items := req.Items
		switch req.Op {
		case "":
		case "add":
			items = services.AddItem(items)
		case "remove":
			items = services.RemoveItem(items, req.Index)
		default:
			return respondError(e, http.StatusBadRequest, "Unknown ledger operation", map[string]string{
				"op": "Must be add or remove",
			})
		}

		if req.TaxPercentage.IsNegative() || req.TaxPercentage.GreaterThan(decimal.NewFromInt(100)) {
			return respondError(e, http.StatusBadRequest, "Please fix the errors below", map[string]string{
				"tax_percentage": "Tax must be between 0 and 100",
			})
		}

		return e.JSON(http.StatusOK, newLedgerResponse(services.RecomputeLedger(items, req.TaxPercentage)))
	}
}

// HandleLedgerImport parses an uploaded CSV or Excel sheet of line items and
// returns them recomputed at the submitted tax rate, or
// services.DefaultTaxPercentage when none is given. Nothing is saved; the editor
// merges the result into the open document.
// Route: POST /api/ledger/import
func HandleLedgerImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		// Parse multipart form (max 10MB)
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return respondError(e, http.StatusBadRequest, "File too large or invalid form data", nil)
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return respondError(e, http.StatusBadRequest, "Please select a file to upload", nil)
		}
		defer file.Close()

		tax := services.DefaultTaxPercentage
		if raw := e.Request.FormValue("tax"); raw != "" {
			if tax, err = decimal.NewFromString(raw); err != nil {
				return respondError(e, http.StatusBadRequest, "Invalid tax percentage", nil)
			}
		}

		items, rowErrs, err := services.ParseLineItemFile(file, header.Filename)
		if err != nil {
			if !errors.Is(err, services.ErrMissingHeader) {
				log.Printf("ledger_import: %v", err)
			}
			return respondError(e, http.StatusBadRequest, err.Error(), nil)
		}
		if len(rowErrs) > 0 {
			return respondError(e, http.StatusBadRequest,
				fmt.Sprintf("%d rows have errors", len(rowErrs)), rowErrs)
		}

		SetToast(e, "success", fmt.Sprintf("%d line items imported", len(items)))
		return e.JSON(http.StatusOK, newLedgerResponse(services.RecomputeLedger(items, tax)))
	}
}

// HandleImportErrorReport turns posted import row errors into a downloadable
// Excel report.
// Route: POST /api/import/errors
func HandleImportErrorReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var rowErrs []services.ImportRowError
		if err := json.NewDecoder(e.Request.Body).Decode(&rowErrs); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid error data", nil)
		}

		xlsxBytes, err := services.GenerateErrorReport(rowErrs)
		if err != nil {
			log.Printf("error_report: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.", nil)
		}

		filename := fmt.Sprintf("Import_Errors_%s.xlsx", time.Now().Format("2006-01-02"))
		e.Response.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}
