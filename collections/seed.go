package collections

import (
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fieldoffice/services"
)

// ── Definition structs ───────────────────────────────────────────────────

type clientDef struct {
	name      string
	email     string
	phone     string
	locations []services.Location
}

type projectDef struct {
	name      string
	client    int // index into the client defs
	location  string
	building  string
	apartment string
	status    string
}

type quotationDef struct {
	project int // index into the project defs
	tax     float64
	notes   string
	items   []services.LineItemForm
	invoice bool // convert to an invoice after creation
}

var seedClients = []clientDef{
	{
		name:  "Emaar Community Management",
		email: "facilities@emaar-cm.example",
		phone: "+971 4 366 1688",
		locations: []services.Location{
			{Name: "Dubai Marina", Buildings: []services.Building{
				{Name: "Marina Promenade Tower A", Apartments: []services.Apartment{{Number: "1204"}, {Number: "1205"}, {Number: "2301"}}},
				{Name: "Marina Promenade Tower B", Apartments: []services.Apartment{{Number: "301"}, {Number: "302"}}},
			}},
			{Name: "Downtown Dubai", Buildings: []services.Building{
				{Name: "Burj Views A", Apartments: []services.Apartment{{Number: "905"}}},
				{Name: "South Ridge 4", Apartments: []services.Apartment{{Number: "1710"}, {Number: "1711"}}},
			}},
		},
	},
	{
		name:  "Nakheel Asset Services",
		email: "maintenance@nakheel-as.example",
		phone: "+971 4 390 3333",
		locations: []services.Location{
			{Name: "Palm Jumeirah", Buildings: []services.Building{
				{Name: "Shoreline Al Haseer", Apartments: []services.Apartment{{Number: "G04"}, {Number: "504"}}},
			}},
			{Name: "Jumeirah Village Circle", Buildings: []services.Building{
				{Name: "Block 3"},
			}},
		},
	},
}

var seedProjects = []projectDef{
	{name: "Kitchen Refit - Tower A 1204", client: 0, location: "Dubai Marina", building: "Marina Promenade Tower A", apartment: "1204", status: "active"},
	{name: "Waterproofing - South Ridge 1710", client: 0, location: "Downtown Dubai", building: "South Ridge 4", apartment: "1710", status: "active"},
	{name: "AC Servicing - Al Haseer 504", client: 1, location: "Palm Jumeirah", building: "Shoreline Al Haseer", apartment: "504", status: "on_hold"},
}

var seedQuotations = []quotationDef{
	{
		project: 0,
		tax:     5,
		notes:   "Prices valid for 30 days. Materials as per approved samples.",
		items: []services.LineItemForm{
			{Description: "Strip out existing kitchen cabinets and worktop", UOM: "Lumpsum", Quantity: 1, UnitPrice: 1850},
			{Description: "Supply and install wall tiles 300x600 matt white", UOM: "Sqm", Quantity: 14.5, UnitPrice: 96.75},
			{Description: "Quartz worktop 20mm incl. sink cut-out", UOM: "Rmt", Quantity: 4.2, UnitPrice: 1125.5},
			{Description: "Plumbing first and second fix", UOM: "Lot", Quantity: 1, UnitPrice: 2400},
		},
		invoice: true,
	},
	{
		project: 1,
		tax:     5,
		notes:   "Balcony area only. Flood test 48 hours included.",
		items: []services.LineItemForm{
			{Description: "Remove existing tiles and screed", UOM: "Sqm", Quantity: 22, UnitPrice: 35},
			{Description: "Cementitious waterproofing membrane, two coats", UOM: "Sqm", Quantity: 22, UnitPrice: 62.505},
			{Description: "Re-tile with anti-slip porcelain", UOM: "Sqm", Quantity: 22, UnitPrice: 118},
		},
	},
	{
		project: 2,
		tax:     0,
		items: []services.LineItemForm{
			{Description: "Split unit deep clean and gas top-up", UOM: "Nos", Quantity: 4, UnitPrice: 275},
			{Description: "Call-out charge", UOM: "Visit", Quantity: 1, UnitPrice: 150},
		},
	},
}

// Seed populates the collections with demo clients, projects and
// quotations. It is safe to call on every startup because it returns early
// if any client records already exist.
func Seed(app *pocketbase.PocketBase) error {
	// ── idempotency: skip if clients already exist ───────────────────
	clientsCol, err := app.FindCollectionByNameOrId("clients")
	if err != nil {
		return fmt.Errorf("seed: could not find clients collection: %w", err)
	}
	existing, err := app.FindAllRecords(clientsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query clients: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: clients collection is empty – inserting seed data …")

	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}

	now := time.Now()

	// ── clients ──────────────────────────────────────────────────────
	clientIDs := make([]string, len(seedClients))
	for i, d := range seedClients {
		r := core.NewRecord(clientsCol)
		r.Set("name", d.name)
		r.Set("email", d.email)
		r.Set("phone", d.phone)
		r.Set("locations", d.locations)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save client %q: %w", d.name, err)
		}
		clientIDs[i] = r.Id
	}

	// ── projects ─────────────────────────────────────────────────────
	projectIDs := make([]string, len(seedProjects))
	for i, d := range seedProjects {
		r := core.NewRecord(projectsCol)
		r.Set("name", d.name)
		r.Set("client", clientIDs[d.client])
		r.Set("location", d.location)
		r.Set("building", d.building)
		r.Set("apartment", d.apartment)
		r.Set("status", d.status)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save project %q: %w", d.name, err)
		}
		projectIDs[i] = r.Id
	}

	// ── quotations (and converted invoices) ──────────────────────────
	invoices := 0
	for i, d := range seedQuotations {
		form := services.DocumentForm{
			Client:        clientIDs[seedProjects[d.project].client],
			Project:       projectIDs[d.project],
			IssueDate:     now.AddDate(0, 0, -7*(len(seedQuotations)-i)).Format("2006-01-02"),
			Status:        "sent",
			TaxPercentage: d.tax,
			Items:         d.items,
			Notes:         d.notes,
		}
		q, err := services.SaveDocument(app, services.KindQuotation, "", form, now)
		if err != nil {
			return fmt.Errorf("seed: save quotation for project %q: %w", seedProjects[d.project].name, err)
		}

		if d.invoice {
			if _, err := services.ConvertQuotationToInvoice(app, q.Id, now); err != nil {
				return fmt.Errorf("seed: convert quotation %s: %w", q.GetString("number"), err)
			}
			invoices++
		}
	}

	log.Printf("seed: all seed data inserted successfully (%d clients, %d projects, %d quotations, %d invoices)\n",
		len(seedClients), len(seedProjects), len(seedQuotations), invoices)
	return nil
}
