// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fieldoffice/collections"
	"fieldoffice/services"
)

// FixedNow is the clock used for documents created by the helpers, so their
// numbers and dates are predictable (QTN-2026-001, issue date 2026-03-01).
var FixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app, runs collections.Setup to create all tables and
// registers the record hooks. The temporary directory is cleaned up
// automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)
	collections.RegisterHooks(app)

	return app
}

// SamplePortfolio returns a two-location tree in which both locations have
// a building called "Tower A".
func SamplePortfolio() []services.Location {
	return []services.Location{
		{Name: "Dubai Marina", Buildings: []services.Building{
			{Name: "Tower A", Apartments: []services.Apartment{{Number: "1204"}, {Number: "1205"}}},
			{Name: "Tower B", Apartments: []services.Apartment{{Number: "301"}}},
		}},
		{Name: "Business Bay", Buildings: []services.Building{
			{Name: "Tower A", Apartments: []services.Apartment{{Number: "9"}}},
		}},
	}
}

// CreateTestClient creates a client record owning the given location tree.
func CreateTestClient(t *testing.T, app *pocketbase.PocketBase, name string, locations []services.Location) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("clients")
	if err != nil {
		t.Fatalf("failed to find clients collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("email", strings.ToLower(strings.ReplaceAll(name, " ", ""))+"@example.com")
	record.Set("locations", locations)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test client: %v", err)
	}

	return record
}

// CreateTestProject creates a project for clientID at the given address and
// returns it. Pass empty strings for a project without an address.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, clientID, name, location, building, apartment string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("client", clientID)
	record.Set("location", location)
	record.Set("building", building)
	record.Set("apartment", apartment)
	record.Set("status", "active")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// CreateTestDocument saves a quotation or invoice through services.SaveDocument
// and returns it.
func CreateTestDocument(t *testing.T, app *pocketbase.PocketBase, kind services.DocumentKind, form services.DocumentForm) *core.Record {
	t.Helper()

	record, err := services.SaveDocument(app, kind, "", form, FixedNow)
	if err != nil {
		t.Fatalf("failed to save test %s: %v", kind, err)
	}

	return record
}

// CreateTestQuotation creates a quotation with two lines (3 x 12.505 and
// 1 x 100) at taxPercentage for the client and project.
func CreateTestQuotation(t *testing.T, app *pocketbase.PocketBase, clientID, projectID string, taxPercentage float64) *core.Record {
	t.Helper()

	return CreateTestDocument(t, app, services.KindQuotation, services.DocumentForm{
		Client:        clientID,
		Project:       projectID,
		TaxPercentage: taxPercentage,
		Items: []services.LineItemForm{
			{Description: "Wall tiling", UOM: "Sqm", Quantity: 3, UnitPrice: 12.505},
			{Description: "Site visit", UOM: "Visit", Quantity: 1, UnitPrice: 100},
		},
	})
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
