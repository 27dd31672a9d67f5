package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func sampleExportData(kind DocumentKind) *DocumentExportData {
	ledger := RecomputeLedger([]LineItem{
		{Description: "Wall tiling", UOM: "Sqm", Quantity: d("3"), UnitPrice: d("12.505")},
		{Description: "=cmd|' /C calc'!A0", UOM: "Nos", Quantity: d("1"), UnitPrice: d("1000")},
	}, d("5"))

	data := &DocumentExportData{
		CompanyName:    "FIELD OFFICE CONTRACTING",
		CompanyAddress: "Dubai, United Arab Emirates",
		CompanyEmail:   "accounts@fieldoffice.ae",
		Kind:           kind,
		Number:         "QTN-2026-001",
		IssueDate:      "2026-03-01",
		Status:         "draft",
		Client:         DocumentExportClient{Name: "Emaar", Email: "ops@emaar.test"},
		ProjectName:    "Marina refit",
		SiteAddress:    "Apartment 1204, Tower A, Dubai Marina",
		Currency:       DefaultCurrency,
		Subtotal:       ledger.Subtotal,
		TaxPercentage:  ledger.TaxPercentage,
		TaxAmount:      ledger.TaxAmount,
		NetAmount:      ledger.NetAmount,
		AmountInWords:  ledger.AmountInWords(DefaultCurrency),
		Notes:          "Valid for 30 days",
	}
	for i, item := range ledger.Items {
		data.LineItems = append(data.LineItems, DocumentExportLineItem{
			SINo:        i + 1,
			Description: item.Description,
			UOM:         item.UOM,
			Qty:         item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return data
}

func TestGenerateDocumentPDF(t *testing.T) {
	for _, kind := range []DocumentKind{KindQuotation, KindInvoice} {
		t.Run(string(kind), func(t *testing.T) {
			data := sampleExportData(kind)
			if kind == KindInvoice {
				data.Number = "INV-2026-001"
				data.DueDate = "2026-03-31"
				data.QuotationRef = "QTN-2026-001"
			}

			pdf, err := GenerateDocumentPDF(data)
			if err != nil {
				t.Fatalf("GenerateDocumentPDF() error: %v", err)
			}
			if !bytes.HasPrefix(pdf, []byte("%PDF")) {
				t.Errorf("output does not start with %%PDF header")
			}
		})
	}
}

func TestGenerateDocumentPDF_NoItemsNoWords(t *testing.T) {
	data := sampleExportData(KindQuotation)
	data.LineItems = nil
	data.AmountInWords = ""
	data.Notes = ""

	pdf, err := GenerateDocumentPDF(data)
	if err != nil {
		t.Fatalf("GenerateDocumentPDF() error: %v", err)
	}
	if len(pdf) == 0 {
		t.Error("expected non-empty PDF")
	}
}

func TestGenerateDocumentExcel(t *testing.T) {
	data := sampleExportData(KindQuotation)

	xlsx, err := GenerateDocumentExcel(data)
	if err != nil {
		t.Fatalf("GenerateDocumentExcel() error: %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(xlsx))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet != "QTN-2026-001" {
		t.Errorf("sheet name = %q", sheet)
	}

	title, _ := f.GetCellValue(sheet, "A1")
	if title != "QUOTATION QTN-2026-001" {
		t.Errorf("title = %q", title)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}

	var sawSanitized, sawNet, sawWords bool
	for _, row := range rows {
		joined := strings.Join(row, "|")
		if strings.Contains(joined, "'=cmd") {
			sawSanitized = true
		}
		if strings.Contains(joined, "Net Amount (AED):") {
			sawNet = true
		}
		if strings.Contains(joined, "Amount in Words: One thousand") {
			sawWords = true
		}
	}
	if !sawSanitized {
		t.Error("formula-like description should be sanitized")
	}
	if !sawNet {
		t.Error("missing net amount row")
	}
	if !sawWords {
		t.Error("missing amount in words row")
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"", ""},
		{"Normal text", "Normal text"},
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+1", "'+1"},
		{"-1", "'-1"},
		{"@cmd", "'@cmd"},
	}
	for _, tt := range tests {
		if got := sanitizeExcelCell(tt.input); got != tt.expect {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.input, got, tt.expect)
		}
	}
}
