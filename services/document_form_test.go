package services

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func validForm() DocumentForm {
	return DocumentForm{
		Client:        "client1",
		IssueDate:     "2026-03-01",
		Status:        "draft",
		TaxPercentage: 5,
		Items: []LineItemForm{
			{Description: "Tiling", UOM: "Sqm", Quantity: 3, UnitPrice: 12.505},
		},
	}
}

func TestDocumentForm_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(f *DocumentForm)
		wantField string
	}{
		{"valid", func(f *DocumentForm) {}, ""},
		{"missing client", func(f *DocumentForm) { f.Client = "" }, "client"},
		{"bad issue date", func(f *DocumentForm) { f.IssueDate = "01/03/2026" }, "issue_date"},
		{"bad due date", func(f *DocumentForm) { f.DueDate = "tomorrow" }, "due_date"},
		{"tax above 100", func(f *DocumentForm) { f.TaxPercentage = 150 }, "tax_percentage"},
		{"negative tax", func(f *DocumentForm) { f.TaxPercentage = -1 }, "tax_percentage"},
		{"no items", func(f *DocumentForm) { f.Items = nil }, "items"},
		{"item without description", func(f *DocumentForm) { f.Items[0].Description = "" }, "items"},
		{"item with unknown uom", func(f *DocumentForm) { f.Items[0].UOM = "Bucket" }, "items"},
		{"item with negative qty", func(f *DocumentForm) { f.Items[0].Quantity = -1 }, "items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			err := f.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}

			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() = %v, want validation.Errors", err)
			}
			if _, ok := verrs[tt.wantField]; !ok {
				t.Errorf("expected error on %q, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestDocumentForm_Ledger(t *testing.T) {
	f := validForm()
	f.Items = append(f.Items, LineItemForm{Description: "Grout", UOM: "Kg", Quantity: 1, UnitPrice: 0.005})

	l := f.Ledger()
	assertDecimal(t, "Subtotal", l.Subtotal, "37.53")
	assertDecimal(t, "TaxAmount", l.TaxAmount, "1.88")
	assertDecimal(t, "NetAmount", l.NetAmount, "39.41")
	if l.Items[0].Description != "Tiling" {
		t.Errorf("Items[0].Description = %q", l.Items[0].Description)
	}
}

func TestParseDocumentKind(t *testing.T) {
	tests := []struct {
		input   string
		want    DocumentKind
		wantErr bool
	}{
		{"quotation", KindQuotation, false},
		{"quotations", KindQuotation, false},
		{" Invoice ", KindInvoice, false},
		{"invoices", KindInvoice, false},
		{"receipt", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDocumentKind(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDocumentKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseDocumentKind(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if KindInvoice.Collection() != "invoices" || KindQuotation.Collection() != "quotations" {
		t.Error("unexpected collection names")
	}
	if KindQuotation.Title() != "QUOTATION" {
		t.Errorf("Title() = %q", KindQuotation.Title())
	}
}
