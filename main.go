package main

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"fieldoffice/collections"
	"fieldoffice/handlers"
	"fieldoffice/services"
)

func main() {
	app := pocketbase.New()

	var (
		currencyCode  string
		currencyMajor string
		currencyMinor string
		defaultTax    float64
		seed          bool
	)
	flags := app.RootCmd.PersistentFlags()
	flags.StringVar(&currencyCode, "currency", services.DefaultCurrency.Code, "currency code printed next to amounts")
	flags.StringVar(&currencyMajor, "currencyMajor", services.DefaultCurrency.Major, "major currency unit used in amounts in words")
	flags.StringVar(&currencyMinor, "currencyMinor", services.DefaultCurrency.Minor, "minor currency unit used in amounts in words")
	flags.Float64Var(&defaultTax, "defaultTax", services.DefaultTaxPercentage.InexactFloat64(), "tax percentage applied when none is given")
	flags.BoolVar(&seed, "seed", false, "create demo clients, projects and documents on an empty database")

	collections.RegisterHooks(app)

	// Create collections, fix stored totals and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		services.DefaultCurrency = services.Currency{Code: currencyCode, Major: currencyMajor, Minor: currencyMinor}
		services.DefaultTaxPercentage = decimal.NewFromFloat(defaultTax)

		collections.Setup(app)
		if seed {
			if err := collections.Seed(app); err != nil {
				log.Printf("Warning: seed data failed: %v", err)
			}
		}
		if err := collections.MigrateDocumentTotals(app); err != nil {
			log.Printf("Warning: document totals migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Client locations ─────────────────────────────────────
		se.Router.GET("/api/clients/{clientId}/locations", handlers.HandleLocationOptions(app))
		se.Router.GET("/api/clients/{clientId}/buildings", handlers.HandleBuildingOptions(app))
		se.Router.GET("/api/clients/{clientId}/apartments", handlers.HandleApartmentOptions(app))
		se.Router.POST("/api/clients/{clientId}/selection", handlers.HandleSelectionChange(app))

		se.Router.GET("/api/clients/{clientId}/locations/template", handlers.HandleLocationTemplateDownload(app))
		se.Router.GET("/api/clients/{clientId}/locations/export", handlers.HandleLocationExport(app))
		se.Router.POST("/api/clients/{clientId}/locations/import", handlers.HandleLocationImport(app))

		// ── Projects ─────────────────────────────────────────────
		se.Router.POST("/api/projects", handlers.HandleProjectSave(app))
		se.Router.POST("/api/projects/{id}", handlers.HandleProjectSave(app))

		// ── Ledger edit loop ─────────────────────────────────────
		se.Router.POST("/api/ledger", handlers.HandleLedgerRecompute(app))
		se.Router.POST("/api/ledger/import", handlers.HandleLedgerImport(app))
		se.Router.POST("/api/import/errors", handlers.HandleImportErrorReport(app))

		// ── Quotations and invoices ──────────────────────────────
		se.Router.POST("/api/documents/quotations/{id}/invoice", handlers.HandleQuotationConvert(app))
		se.Router.POST("/api/documents/{kind}", handlers.HandleDocumentSave(app))
		se.Router.POST("/api/documents/{kind}/{id}", handlers.HandleDocumentSave(app))
		se.Router.GET("/api/documents/{kind}/{id}/export/pdf", handlers.HandleDocumentExportPDF(app))
		se.Router.GET("/api/documents/{kind}/{id}/export/excel", handlers.HandleDocumentExportExcel(app))

		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/_/")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
