package collections_test

import (
	"testing"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"

	"fieldoffice/collections"
	"fieldoffice/testhelpers"
)

// corruptTotals writes net_amount straight to the table, bypassing the
// record hooks.
func corruptTotals(t *testing.T, app *pocketbase.PocketBase, table, id string) {
	t.Helper()

	_, err := app.DB().NewQuery("UPDATE " + table + " SET net_amount = 1, subtotal = 1 WHERE id = {:id}").
		Bind(dbx.Params{"id": id}).
		Execute()
	if err != nil {
		t.Fatalf("corrupt %s %s: %v", table, id, err)
	}
}

func TestMigrateDocumentTotals_FixesDrift(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	client := testhelpers.CreateTestClient(t, app, "Drift Client", testhelpers.SamplePortfolio())
	q := testhelpers.CreateTestQuotation(t, app, client.Id, "", 5)

	corruptTotals(t, app, "quotations", q.Id)

	stale, _ := app.FindRecordById("quotations", q.Id)
	if stale.GetFloat("net_amount") != 1 {
		t.Fatalf("setup: net_amount = %v, want 1", stale.GetFloat("net_amount"))
	}

	if err := collections.MigrateDocumentTotals(app); err != nil {
		t.Fatalf("MigrateDocumentTotals() error: %v", err)
	}

	fixed, _ := app.FindRecordById("quotations", q.Id)
	// 37.52 + 100 = 137.52; 5% = 6.876 -> 6.88; net 144.40
	if got := fixed.GetFloat("subtotal"); got != 137.52 {
		t.Errorf("subtotal = %v, want 137.52", got)
	}
	if got := fixed.GetFloat("net_amount"); got != 144.4 {
		t.Errorf("net_amount = %v, want 144.4", got)
	}
}

func TestMigrateDocumentTotals_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	client := testhelpers.CreateTestClient(t, app, "Stable Client", nil)
	q := testhelpers.CreateTestQuotation(t, app, client.Id, "", 0)
	before, _ := app.FindRecordById("quotations", q.Id)

	for i := 0; i < 2; i++ {
		if err := collections.MigrateDocumentTotals(app); err != nil {
			t.Fatalf("run %d error: %v", i+1, err)
		}
	}

	after, _ := app.FindRecordById("quotations", q.Id)
	if after.GetDateTime("updated").String() != before.GetDateTime("updated").String() {
		t.Error("document already in agreement should not be re-saved")
	}
	if after.GetFloat("net_amount") != 137.52 {
		t.Errorf("net_amount = %v, want 137.52", after.GetFloat("net_amount"))
	}
}

func TestMigrateDocumentTotals_Empty(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if err := collections.MigrateDocumentTotals(app); err != nil {
		t.Fatalf("MigrateDocumentTotals() on empty DB error: %v", err)
	}
}
