package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"fieldoffice/testhelpers"
)

type ledgerBody struct {
	Items []struct {
		ID         string `json:"id"`
		TotalPrice string `json:"total_price"`
	} `json:"items"`
	Subtotal      string `json:"subtotal"`
	TaxAmount     string `json:"tax_amount"`
	NetAmount     string `json:"net_amount"`
	NetDisplay    string `json:"net_amount_display"`
	AmountInWords string `json:"amount_in_words"`
}

func postLedger(t *testing.T, body string) (*httptest.ResponseRecorder, ledgerBody) {
	t.Helper()
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ledger", strings.NewReader(body))
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleLedgerRecompute(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var resp ledgerBody
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, resp
}

func TestHandleLedgerRecompute(t *testing.T) {
	rec, resp := postLedger(t, `{
		"items": [
			{"id":"a","description":"Tiles","uom":"Sqm","quantity":"3","unit_price":"12.505","total_price":"999"},
			{"id":"b","description":"Labour","uom":"Day","quantity":1,"unit_price":100}
		],
		"tax_percentage": 5
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if resp.Items[0].TotalPrice != "37.52" {
		t.Errorf("authored line total should be overwritten, got %s", resp.Items[0].TotalPrice)
	}
	if resp.Subtotal != "137.52" || resp.TaxAmount != "6.88" || resp.NetAmount != "144.4" {
		t.Errorf("totals = %s / %s / %s", resp.Subtotal, resp.TaxAmount, resp.NetAmount)
	}
	if resp.NetDisplay != "AED 144.40" {
		t.Errorf("net display = %q", resp.NetDisplay)
	}
	if resp.AmountInWords != "One hundred and forty four Dirhams and forty Fils only" {
		t.Errorf("words = %q", resp.AmountInWords)
	}
}

func TestHandleLedgerRecompute_Ops(t *testing.T) {
	items := `[{"id":"a","quantity":"1","unit_price":"10"},{"id":"b","quantity":"2","unit_price":"5.5"}]`

	t.Run("add", func(t *testing.T) {
		_, resp := postLedger(t, `{"items":`+items+`,"tax_percentage":0,"op":"add"}`)
		if len(resp.Items) != 3 || resp.Items[2].ID == "" {
			t.Fatalf("expected a new line with an id, got %+v", resp.Items)
		}
		if resp.Subtotal != "21" {
			t.Errorf("blank line should not change subtotal, got %s", resp.Subtotal)
		}
	})

	t.Run("remove", func(t *testing.T) {
		_, resp := postLedger(t, `{"items":`+items+`,"tax_percentage":0,"op":"remove","index":0}`)
		if len(resp.Items) != 1 || resp.Items[0].ID != "b" {
			t.Fatalf("expected only line b, got %+v", resp.Items)
		}
		if resp.Subtotal != "11" {
			t.Errorf("subtotal = %s, want 11", resp.Subtotal)
		}
	})

	t.Run("remove out of range", func(t *testing.T) {
		_, resp := postLedger(t, `{"items":`+items+`,"tax_percentage":0,"op":"remove","index":7}`)
		if len(resp.Items) != 2 {
			t.Errorf("expected items unchanged, got %d", len(resp.Items))
		}
	})
}

func TestHandleLedgerRecompute_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"items":`},
		{"unknown op", `{"items":[],"op":"duplicate"}`},
		{"tax above 100", `{"items":[],"tax_percentage":101}`},
		{"negative tax", `{"items":[],"tax_percentage":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := postLedger(t, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func multipartUpload(t *testing.T, fileName string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestHandleLedgerImport_CSV(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	csvData := "Description,UOM,Qty,Unit Price\nTiles,Sqm,3,12.505\nLabour,,1,\"1,000\"\n"
	body, contentType := multipartUpload(t, "items.csv", []byte(csvData), map[string]string{"tax": "5"})

	req := httptest.NewRequest(http.MethodPost, "/api/ledger/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleLedgerImport(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ledgerBody
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Items) != 2 || resp.Subtotal != "1037.52" {
		t.Errorf("items = %d, subtotal = %s", len(resp.Items), resp.Subtotal)
	}
	if resp.TaxAmount != "51.88" {
		t.Errorf("tax = %s, want 51.88", resp.TaxAmount)
	}
}

func TestHandleLedgerImport_RowErrors(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	csvData := "Description,Qty,Unit Price\n,3,10\nPaint,abc,10\n"
	body, contentType := multipartUpload(t, "items.csv", []byte(csvData), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ledger/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleLedgerImport(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Data []struct {
			Row   int    `json:"row"`
			Field string `json:"field"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 row errors, got %+v", resp.Data)
	}
}

func TestHandleLedgerImport_UnsupportedFile(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	body, contentType := multipartUpload(t, "items.txt", []byte("hello"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ledger/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleLedgerImport(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleImportErrorReport(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	payload := `[{"row":2,"field":"Quantity","message":"Quantity must be a number"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/import/errors", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleImportErrorReport(app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "Import_Errors_") {
		t.Errorf("unexpected Content-Disposition %q", rec.Header().Get("Content-Disposition"))
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil || len(rows) < 2 {
		t.Fatalf("expected header and one error row, got %v (%v)", rows, err)
	}
}
