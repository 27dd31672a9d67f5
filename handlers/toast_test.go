package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase/core"
)

func parseToast(t *testing.T, header string) (map[string]json.RawMessage, map[string]string) {
	t.Helper()
	if header == "" {
		t.Fatal("expected HX-Trigger header to be set")
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(header), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	var toast map[string]string
	if err := json.Unmarshal(parsed["showToast"], &toast); err != nil {
		t.Fatalf("showToast value is not valid JSON: %v", err)
	}
	return parsed, toast
}

func TestSetToast(t *testing.T) {
	tests := []struct {
		name      string
		toastType string
		message   string
	}{
		{"success", "success", "Quotation saved"},
		{"error", "error", "Something went wrong"},
		{"quotes", "info", `Item "Special" saved`},
		{"markup", "warning", `<script>alert("xss")</script>`},
		{"newline", "info", "line1\nline2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := &core.RequestEvent{}
			e.Response = rec

			SetToast(e, tt.toastType, tt.message)

			_, toast := parseToast(t, rec.Header().Get("HX-Trigger"))
			if toast["type"] != tt.toastType {
				t.Errorf("expected type %q, got %q", tt.toastType, toast["type"])
			}
			if toast["message"] != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, toast["message"])
			}

			cookies := rec.Result().Cookies()
			if len(cookies) != 1 || cookies[0].Name != "flash_toast" {
				t.Errorf("expected flash_toast cookie, got %v", cookies)
			}
		})
	}
}

func TestSetToast_MergesWithExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	rec.Header().Set("HX-Trigger", `{"ledgerChanged":{"net":"144.40"}}`)

	SetToast(e, "success", "Merged toast")

	parsed, toast := parseToast(t, rec.Header().Get("HX-Trigger"))
	if _, ok := parsed["ledgerChanged"]; !ok {
		t.Error("expected ledgerChanged key to be preserved after merge")
	}
	if toast["message"] != "Merged toast" {
		t.Errorf("expected message %q, got %q", "Merged toast", toast["message"])
	}
}

func TestSetToast_OverwritesInvalidExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	rec.Header().Set("HX-Trigger", "notValidJSON")

	SetToast(e, "error", "Overwritten")

	parsed, toast := parseToast(t, rec.Header().Get("HX-Trigger"))
	if len(parsed) != 1 || toast["message"] != "Overwritten" {
		t.Errorf("expected only the new toast, got %v", parsed)
	}
}

func TestErrorToast(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(nil, req, rec)

	if err := ErrorToast(e, http.StatusBadRequest, "Bad input"); err != nil {
		t.Fatalf("ErrorToast returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Errorf("expected HX-Reswap none, got %q", rec.Header().Get("HX-Reswap"))
	}
	if rec.Body.String() != "Bad input" {
		t.Errorf("expected body %q, got %q", "Bad input", rec.Body.String())
	}
}

func TestRespondError(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		rec := httptest.NewRecorder()
		e := newTestRequestEvent(nil, req, rec)

		err := respondError(e, http.StatusBadRequest, "Please fix the errors below", map[string]string{"name": "Project name is required"})
		if err != nil {
			t.Fatalf("respondError returned error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		var body apiError
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("body is not JSON: %v", err)
		}
		if body.Message != "Please fix the errors below" || body.Status != http.StatusBadRequest {
			t.Errorf("unexpected body %+v", body)
		}
		if data, _ := body.Data.(map[string]any); data["name"] != "Project name is required" {
			t.Errorf("expected name field error, got %v", body.Data)
		}
		if rec.Header().Get("HX-Trigger") != "" {
			t.Error("JSON errors should not set a toast")
		}
	})

	t.Run("htmx", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		e := newTestRequestEvent(nil, req, rec)

		if err := respondError(e, http.StatusNotFound, "Client not found", nil); err != nil {
			t.Fatalf("respondError returned error: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if !strings.Contains(rec.Header().Get("HX-Trigger"), "Client not found") {
			t.Errorf("expected toast with message, got %q", rec.Header().Get("HX-Trigger"))
		}
	})
}
