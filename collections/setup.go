package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fieldoffice/services"
)

const datePattern = `^\d{4}-\d{2}-\d{2}$`

// Setup programmatically creates/ensures the clients, projects, quotations
// and invoices collections exist.
func Setup(app *pocketbase.PocketBase) {
	clients := ensureCollection(app, "clients", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.EmailField{Name: "email"})
		c.Fields.Add(&core.TextField{Name: "phone"})
		c.Fields.Add(&core.JSONField{Name: "locations"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "client",
			Required:     true,
			CollectionId: clients.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "location"})
		c.Fields.Add(&core.TextField{Name: "building"})
		c.Fields.Add(&core.TextField{Name: "apartment"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"active", "completed", "on_hold"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	documentFields := func(c *core.Collection, kind services.DocumentKind) {
		c.Fields.Add(&core.TextField{Name: "number", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "client",
			Required:     true,
			CollectionId: clients.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "project",
			CollectionId: projects.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "issue_date", Pattern: datePattern})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    services.DocumentStatusOptions[kind],
			MaxSelect: 1,
		})
		c.Fields.Add(&core.JSONField{Name: "items"})
		c.Fields.Add(&core.NumberField{Name: "tax_percentage", Min: floatPtr(0), Max: floatPtr(100)})
		c.Fields.Add(&core.NumberField{Name: "subtotal"})
		c.Fields.Add(&core.NumberField{Name: "tax_amount"})
		c.Fields.Add(&core.NumberField{Name: "net_amount"})
		c.Fields.Add(&core.TextField{Name: "notes"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_"+c.Name+"_number", true, "number", "")
	}

	quotations := ensureCollection(app, "quotations", func(c *core.Collection) {
		documentFields(c, services.KindQuotation)
	})

	ensureCollection(app, "invoices", func(c *core.Collection) {
		documentFields(c, services.KindInvoice)
		c.Fields.Add(&core.RelationField{
			Name:         "quotation",
			CollectionId: quotations.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "due_date", Pattern: datePattern})
	})
}

func floatPtr(v float64) *float64 {
	return &v
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
