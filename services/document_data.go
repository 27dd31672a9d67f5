package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// DocumentExportData holds all data needed to print a quotation or invoice.
type DocumentExportData struct {
	// Company (hardcoded for now)
	CompanyName    string
	CompanyAddress string
	CompanyEmail   string

	// Header
	Kind         DocumentKind
	Number       string
	IssueDate    string
	DueDate      string
	Status       string
	QuotationRef string

	Client      DocumentExportClient
	ProjectName string
	SiteAddress string

	LineItems []DocumentExportLineItem

	// Totals
	Currency      Currency
	Subtotal      decimal.Decimal
	TaxPercentage decimal.Decimal
	TaxAmount     decimal.Decimal
	NetAmount     decimal.Decimal
	AmountInWords string

	Notes string
}

// DocumentExportClient holds client details for export.
type DocumentExportClient struct {
	Name  string
	Email string
	Phone string
}

// DocumentExportLineItem holds a single line item for export.
type DocumentExportLineItem struct {
	SINo        int
	Description string
	UOM         string
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Attachment  string
}

// ClientLocations decodes the location tree stored on a client record.
// An empty field yields no locations.
func ClientLocations(client *core.Record) ([]Location, error) {
	raw := strings.TrimSpace(client.GetString("locations"))
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var locations []Location
	if err := json.Unmarshal([]byte(raw), &locations); err != nil {
		return nil, fmt.Errorf("decode locations of client %s: %w", client.Id, err)
	}
	return locations, nil
}

// LoadClientLocations fetches a client and decodes its location tree.
func LoadClientLocations(app core.App, clientID string) ([]Location, error) {
	client, err := app.FindRecordById("clients", clientID)
	if err != nil {
		return nil, fmt.Errorf("client not found: %w", err)
	}
	return ClientLocations(client)
}

// DocumentItems decodes the line items stored on a quotation or invoice record.
func DocumentItems(doc *core.Record) ([]LineItem, error) {
	raw := strings.TrimSpace(doc.GetString("items"))
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode items of %s: %w", doc.Id, err)
	}
	return items, nil
}

// DocumentLedger recomputes the ledger of a stored document from its items
// and tax percentage.
func DocumentLedger(doc *core.Record) (Ledger, error) {
	items, err := DocumentItems(doc)
	if err != nil {
		return Ledger{}, err
	}
	return RecomputeLedger(items, decimal.NewFromFloat(doc.GetFloat("tax_percentage"))), nil
}

// ProjectSelection reads the address selection stored on a project record.
func ProjectSelection(project *core.Record) AddressSelection {
	return NewSelectionFromForm(
		project.GetString("location"),
		project.GetString("building"),
		project.GetString("apartment"),
	)
}

// BuildDocumentExportData assembles all data needed for export from PocketBase records.
func BuildDocumentExportData(app core.App, kind DocumentKind, id string) (*DocumentExportData, error) {
	// 1. Find document record
	doc, err := app.FindRecordById(kind.Collection(), id)
	if err != nil {
		return nil, fmt.Errorf("%s not found: %w", kind, err)
	}

	// 2. Recompute the ledger so printed figures always match the engine
	ledger, err := DocumentLedger(doc)
	if err != nil {
		return nil, err
	}

	// 3. Client
	client := DocumentExportClient{}
	var locations []Location
	if clientID := doc.GetString("client"); clientID != "" {
		c, err := app.FindRecordById("clients", clientID)
		if err != nil {
			log.Printf("document_export: could not find client %s: %v", clientID, err)
		} else {
			client = DocumentExportClient{
				Name:  c.GetString("name"),
				Email: c.GetString("email"),
				Phone: c.GetString("phone"),
			}
			if locations, err = ClientLocations(c); err != nil {
				log.Printf("document_export: %v", err)
			}
		}
	}

	// 4. Project and resolved site address
	var projectName, siteAddress string
	if projectID := doc.GetString("project"); projectID != "" {
		p, err := app.FindRecordById("projects", projectID)
		if err != nil {
			log.Printf("document_export: could not find project %s: %v", projectID, err)
		} else {
			projectName = p.GetString("name")
			resolved, err := ResolveSelection(locations, ProjectSelection(p))
			if err != nil {
				log.Printf("document_export: project %s address: %v", projectID, err)
			} else {
				siteAddress = resolved.Label()
			}
		}
	}

	// 5. Quotation reference for invoices
	var quotationRef string
	if qID := doc.GetString("quotation"); kind == KindInvoice && qID != "" {
		if q, err := app.FindRecordById("quotations", qID); err == nil {
			quotationRef = q.GetString("number")
		} else {
			log.Printf("document_export: could not find quotation %s: %v", qID, err)
		}
	}

	// 6. Line items
	lineItems := make([]DocumentExportLineItem, 0, len(ledger.Items))
	for i, item := range ledger.Items {
		lineItems = append(lineItems, DocumentExportLineItem{
			SINo:        i + 1,
			Description: item.Description,
			UOM:         item.UOM,
			Qty:         item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
			Attachment:  item.Attachment,
		})
	}

	return &DocumentExportData{
		CompanyName:    "FIELD OFFICE CONTRACTING",
		CompanyAddress: "Dubai, United Arab Emirates",
		CompanyEmail:   "accounts@fieldoffice.ae",

		Kind:         kind,
		Number:       doc.GetString("number"),
		IssueDate:    doc.GetString("issue_date"),
		DueDate:      doc.GetString("due_date"),
		Status:       doc.GetString("status"),
		QuotationRef: quotationRef,

		Client:      client,
		ProjectName: projectName,
		SiteAddress: siteAddress,

		LineItems: lineItems,

		Currency:      DefaultCurrency,
		Subtotal:      ledger.Subtotal,
		TaxPercentage: ledger.TaxPercentage,
		TaxAmount:     ledger.TaxAmount,
		NetAmount:     ledger.NetAmount,
		AmountInWords: ledger.AmountInWords(DefaultCurrency),

		Notes: doc.GetString("notes"),
	}, nil
}
