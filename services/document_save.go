package services

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"
)

const dateLayout = "2006-01-02"

// invoiceDueDays is the default payment window of a converted invoice.
const invoiceDueDays = 30

var (
	ErrQuotationRejected = errors.New("quotation was rejected")
	ErrAlreadyInvoiced   = errors.New("quotation already has an invoice")
	ErrProjectMismatch   = errors.New("project does not belong to client")
)

// ApplyLedger writes the items and every derived total of ledger onto a
// quotation or invoice record.
func ApplyLedger(record *core.Record, ledger Ledger) {
	record.Set("items", ledger.Items)
	record.Set("tax_percentage", ledger.TaxPercentage.InexactFloat64())
	record.Set("subtotal", ledger.Subtotal.InexactFloat64())
	record.Set("tax_amount", ledger.TaxAmount.InexactFloat64())
	record.Set("net_amount", ledger.NetAmount.InexactFloat64())
}

// SaveDocument validates form and creates (id == "") or updates a quotation
// or invoice. New documents get the next number for their kind. Validation
// failures are returned as validation.Errors keyed by form field.
func SaveDocument(app core.App, kind DocumentKind, id string, form DocumentForm, now time.Time) (*core.Record, error) {
	if kind.Collection() == "" {
		return nil, fmt.Errorf("unknown document kind %q", kind)
	}

	if form.Status == "" {
		form.Status = "draft"
	}
	if form.IssueDate == "" {
		form.IssueDate = now.Format(dateLayout)
	}

	if err := form.Validate(); err != nil {
		return nil, err
	}
	if err := validation.Validate(form.Status, validation.In(toAny(DocumentStatusOptions[kind])...)); err != nil {
		return nil, validation.Errors{"status": err}
	}

	var saved *core.Record
	err := app.RunInTransaction(func(txApp core.App) error {
		if form.Project != "" {
			project, err := txApp.FindRecordById("projects", form.Project)
			if err != nil {
				return validation.Errors{"project": errors.New("project not found")}
			}
			if project.GetString("client") != form.Client {
				return validation.Errors{"project": ErrProjectMismatch}
			}
		}

		var record *core.Record
		if id == "" {
			col, err := txApp.FindCollectionByNameOrId(kind.Collection())
			if err != nil {
				return fmt.Errorf("%s collection not found: %w", kind.Collection(), err)
			}
			number, err := GenerateDocumentNumber(txApp, kind, now)
			if err != nil {
				return fmt.Errorf("generate %s number: %w", kind, err)
			}
			record = core.NewRecord(col)
			record.Set("number", number)
		} else {
			existing, err := txApp.FindRecordById(kind.Collection(), id)
			if err != nil {
				return fmt.Errorf("%s %s not found: %w", kind, id, err)
			}
			record = existing
		}

		record.Set("client", form.Client)
		record.Set("project", form.Project)
		record.Set("issue_date", form.IssueDate)
		record.Set("status", form.Status)
		record.Set("notes", form.Notes)
		if kind == KindInvoice {
			record.Set("due_date", form.DueDate)
		}
		ApplyLedger(record, form.Ledger())

		if err := txApp.Save(record); err != nil {
			return err
		}
		saved = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// ConvertQuotationToInvoice creates a draft invoice carrying the quotation's
// client, project, items, tax and notes, and marks the quotation accepted.
// A rejected quotation, or one already invoiced, is refused.
func ConvertQuotationToInvoice(app core.App, quotationID string, now time.Time) (*core.Record, error) {
	var invoice *core.Record

	err := app.RunInTransaction(func(txApp core.App) error {
		quotation, err := txApp.FindRecordById("quotations", quotationID)
		if err != nil {
			return fmt.Errorf("quotation %s not found: %w", quotationID, err)
		}
		if quotation.GetString("status") == "rejected" {
			return ErrQuotationRejected
		}

		existing, err := txApp.FindRecordsByFilter(
			"invoices",
			"quotation = {:quotationId}",
			"",
			1,
			0,
			map[string]any{"quotationId": quotationID},
		)
		if err == nil && len(existing) > 0 {
			return fmt.Errorf("%w: %s", ErrAlreadyInvoiced, existing[0].GetString("number"))
		}

		ledger, err := DocumentLedger(quotation)
		if err != nil {
			return err
		}

		col, err := txApp.FindCollectionByNameOrId("invoices")
		if err != nil {
			return fmt.Errorf("invoices collection not found: %w", err)
		}
		number, err := GenerateDocumentNumber(txApp, KindInvoice, now)
		if err != nil {
			return fmt.Errorf("generate invoice number: %w", err)
		}

		record := core.NewRecord(col)
		record.Set("number", number)
		record.Set("quotation", quotation.Id)
		record.Set("client", quotation.GetString("client"))
		record.Set("project", quotation.GetString("project"))
		record.Set("issue_date", now.Format(dateLayout))
		record.Set("due_date", now.AddDate(0, 0, invoiceDueDays).Format(dateLayout))
		record.Set("status", "draft")
		record.Set("notes", quotation.GetString("notes"))
		ApplyLedger(record, ledger)

		if err := txApp.Save(record); err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}

		if quotation.GetString("status") != "accepted" {
			quotation.Set("status", "accepted")
			if err := txApp.Save(quotation); err != nil {
				return fmt.Errorf("mark quotation accepted: %w", err)
			}
		}

		invoice = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}
