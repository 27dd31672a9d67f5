package collections

import (
	"errors"
	"log"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"fieldoffice/services"
)

// RegisterHooks binds the record hooks that keep stored documents and
// project addresses consistent with the services package:
//   - quotation/invoice totals are always re-derived from items and tax
//   - a project's address must resolve against its client's locations
//   - a client's location tree may not repeat a name under one parent
func RegisterHooks(app *pocketbase.PocketBase) {
	app.OnRecordCreate("quotations", "invoices").BindFunc(recomputeDocumentHook)
	app.OnRecordUpdate("quotations", "invoices").BindFunc(recomputeDocumentHook)

	app.OnRecordValidate("projects").BindFunc(func(e *core.RecordEvent) error {
		if err := validateProjectAddress(e.App, e.Record); err != nil {
			return err
		}
		return e.Next()
	})

	app.OnRecordValidate("clients").BindFunc(func(e *core.RecordEvent) error {
		if err := validateClientLocations(e.Record); err != nil {
			return err
		}
		return e.Next()
	})
}

// recomputeDocumentHook overwrites every derived total before the record is
// persisted, so stored figures can never drift from the items.
func recomputeDocumentHook(e *core.RecordEvent) error {
	ledger, err := services.DocumentLedger(e.Record)
	if err != nil {
		log.Printf("hooks: recompute %s %s: %v", e.Record.Collection().Name, e.Record.Id, err)
		return validation.Errors{"items": errors.New("line items could not be read")}
	}
	if authored := e.Record.GetFloat("net_amount"); authored != 0 && authored != ledger.NetAmount.InexactFloat64() {
		e.App.Logger().Debug("document totals overwritten",
			"collection", e.Record.Collection().Name,
			"id", e.Record.Id,
			"authored", authored,
			"net", ledger.NetAmount.StringFixed(2),
		)
	}
	services.ApplyLedger(e.Record, ledger)

	if e.Record.GetString("status") == "" {
		e.Record.Set("status", "draft")
	}
	return e.Next()
}

// validateProjectAddress rejects a project whose location, building and
// apartment do not resolve against the client's current tree. A project
// with no address at all is allowed.
func validateProjectAddress(app core.App, project *core.Record) error {
	sel := services.ProjectSelection(project)
	if !sel.Location.IsSet() && !sel.Building.IsSet() && !sel.Apartment.IsSet() {
		return nil
	}

	clientID := project.GetString("client")
	if clientID == "" {
		// the required-field check on client reports this one
		return nil
	}

	locations, err := services.LoadClientLocations(app, clientID)
	if err != nil {
		log.Printf("hooks: project %s: %v", project.Id, err)
		return validation.Errors{"client": errors.New("client not found")}
	}

	fieldErrs := services.SelectionErrors(locations, sel)
	if len(fieldErrs) == 0 {
		return nil
	}

	verrs := validation.Errors{}
	for field, msg := range fieldErrs {
		verrs[field] = errors.New(msg)
	}
	return verrs
}

func validateClientLocations(client *core.Record) error {
	locations, err := services.ClientLocations(client)
	if err != nil {
		return validation.Errors{"locations": errors.New("locations must be a list of {name, buildings}")}
	}
	if err := services.ValidateLocationTree(locations); err != nil {
		return validation.Errors{"locations": err}
	}
	return nil
}
