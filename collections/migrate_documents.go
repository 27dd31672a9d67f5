package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"

	"fieldoffice/services"
)

// MigrateDocumentTotals re-saves every quotation and invoice whose stored
// subtotal, tax or net amount differs from the recomputed ledger. The save
// hook does the actual recompute. Safe to call on every startup: documents
// that already agree are left untouched.
func MigrateDocumentTotals(app *pocketbase.PocketBase) error {
	fixed := 0

	for _, kind := range []services.DocumentKind{services.KindQuotation, services.KindInvoice} {
		records, err := app.FindAllRecords(kind.Collection())
		if err != nil {
			return fmt.Errorf("migrate: could not query %s: %w", kind.Collection(), err)
		}

		for _, r := range records {
			ledger, err := services.DocumentLedger(r)
			if err != nil {
				log.Printf("migrate: %s %s has unreadable items: %v\n", kind, r.Id, err)
				continue
			}

			if ledger.Subtotal.InexactFloat64() == r.GetFloat("subtotal") &&
				ledger.TaxAmount.InexactFloat64() == r.GetFloat("tax_amount") &&
				ledger.NetAmount.InexactFloat64() == r.GetFloat("net_amount") {
				continue
			}

			if err := app.Save(r); err != nil {
				log.Printf("migrate: failed to recompute %s %s: %v\n", kind, r.GetString("number"), err)
				continue
			}
			fixed++
			log.Printf("migrate: %s %s net amount -> %s\n", kind, r.GetString("number"), ledger.NetAmount.StringFixed(2))
		}
	}

	if fixed > 0 {
		log.Printf("migrate: recomputed totals of %d document(s).\n", fixed)
	}
	return nil
}
