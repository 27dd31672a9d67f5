package services

import "github.com/shopspring/decimal"

// UOMOptions returns the list of Unit of Measurement options for line items.
var UOMOptions = []string{
	"Nos",
	"Sqm",
	"Sqft",
	"Rmt",
	"Lm",
	"Cum",
	"Kg",
	"Ltr",
	"Lot",
	"Set",
	"Lumpsum",
	"Visit",
	"Day",
	"Month",
	"Hour",
}

// TaxOptions returns the tax percentage presets offered on documents.
var TaxOptions = []int{0, 5}

// DefaultTaxPercentage applies where a tax rate is not supplied, such as
// line item imports. main overrides it from the --defaultTax flag.
var DefaultTaxPercentage = decimal.NewFromInt(5)

// DocumentStatusOptions lists the statuses each document kind can take.
var DocumentStatusOptions = map[DocumentKind][]string{
	KindQuotation: {"draft", "sent", "accepted", "rejected"},
	KindInvoice:   {"draft", "issued", "paid", "cancelled"},
}
