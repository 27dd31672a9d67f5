package services

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// DocumentKind identifies a quotation or an invoice.
type DocumentKind string

const (
	KindQuotation DocumentKind = "quotation"
	KindInvoice   DocumentKind = "invoice"
)

// Collection returns the PocketBase collection holding documents of this kind.
func (k DocumentKind) Collection() string {
	switch k {
	case KindQuotation:
		return "quotations"
	case KindInvoice:
		return "invoices"
	}
	return ""
}

// Title is the heading printed on the document.
func (k DocumentKind) Title() string {
	return strings.ToUpper(string(k))
}

// ParseDocumentKind accepts either the kind or its collection name.
func ParseDocumentKind(s string) (DocumentKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quotation", "quotations":
		return KindQuotation, nil
	case "invoice", "invoices":
		return KindInvoice, nil
	}
	return "", fmt.Errorf("unknown document kind %q", s)
}

// LineItemForm is a line item as submitted by the editing form.
type LineItemForm struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	UOM         string  `json:"uom"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Attachment  string  `json:"attachment"`
}

// Validate checks the fields the form layer requires before a document is saved.
func (f LineItemForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Description, validation.Required.Error("Description is required")),
		validation.Field(&f.UOM, validation.Required.Error("Unit of measure is required"), validation.In(toAny(UOMOptions)...)),
		validation.Field(&f.Quantity, validation.Min(0.0).Error("Quantity must be zero or greater")),
		validation.Field(&f.UnitPrice, validation.Min(0.0).Error("Unit price must be zero or greater")),
	)
}

// LineItem converts the form row into a ledger line. TotalPrice is left for
// RecomputeLedger.
func (f LineItemForm) LineItem() LineItem {
	return LineItem{
		ID:          f.ID,
		Description: strings.TrimSpace(f.Description),
		UOM:         strings.TrimSpace(f.UOM),
		Quantity:    decimal.NewFromFloat(f.Quantity),
		UnitPrice:   decimal.NewFromFloat(f.UnitPrice),
		Attachment:  f.Attachment,
	}
}

// DocumentForm is a quotation or invoice as submitted by the editing form.
type DocumentForm struct {
	Client        string         `json:"client"`
	Project       string         `json:"project"`
	IssueDate     string         `json:"issue_date"`
	DueDate       string         `json:"due_date"`
	Status        string         `json:"status"`
	TaxPercentage float64        `json:"tax_percentage"`
	Items         []LineItemForm `json:"items"`
	Notes         string         `json:"notes"`
}

// Validate enforces the form-level rules the ledger arithmetic itself does not:
// tax within 0-100, at least one item, non-negative quantities and prices.
func (f DocumentForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Client, validation.Required.Error("Client is required")),
		validation.Field(&f.IssueDate, validation.Date("2006-01-02").Error("Date must be YYYY-MM-DD")),
		validation.Field(&f.DueDate, validation.Date("2006-01-02").Error("Date must be YYYY-MM-DD")),
		validation.Field(&f.TaxPercentage,
			validation.Min(0.0).Error("Tax must be between 0 and 100"),
			validation.Max(100.0).Error("Tax must be between 0 and 100"),
		),
		validation.Field(&f.Items, validation.Required.Error("Add at least one line item")),
	)
}

// Ledger recomputes the submitted items at the submitted tax rate.
func (f DocumentForm) Ledger() Ledger {
	items := make([]LineItem, len(f.Items))
	for i, it := range f.Items {
		items[i] = it.LineItem()
	}
	return RecomputeLedger(items, decimal.NewFromFloat(f.TaxPercentage))
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
