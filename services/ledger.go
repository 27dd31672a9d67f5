package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is a single row on a quotation or invoice. TotalPrice is derived
// from Quantity and UnitPrice and is overwritten on every recompute.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	UOM         string          `json:"uom"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Attachment  string          `json:"attachment,omitempty"` // optional image/file reference
}

// Ledger holds the line items of a document and the totals derived from them.
type Ledger struct {
	Items         []LineItem      `json:"items"`
	TaxPercentage decimal.Decimal `json:"tax_percentage"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	NetAmount     decimal.Decimal `json:"net_amount"`
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// NewLineItem builds a recomputed line item from plain numbers.
func NewLineItem(description, uom string, qty, unitPrice float64) LineItem {
	return RecomputeLine(LineItem{
		ID:          uuid.NewString(),
		Description: description,
		UOM:         uom,
		Quantity:    decimal.NewFromFloat(qty),
		UnitPrice:   decimal.NewFromFloat(unitPrice),
	})
}

// RecomputeLine returns a copy of item with TotalPrice = round2(Quantity * UnitPrice).
// Negative values are computed, not rejected.
func RecomputeLine(item LineItem) LineItem {
	item.TotalPrice = Round2(item.Quantity.Mul(item.UnitPrice))
	return item
}

// RecomputeLedger recomputes every line, then the subtotal, tax and net
// amounts, rounding at each level. Calling it again on its own output
// yields the same ledger. The items slice is not modified.
func RecomputeLedger(items []LineItem, taxPercentage decimal.Decimal) Ledger {
	lines := make([]LineItem, len(items))
	sum := decimal.Zero
	for i, item := range items {
		lines[i] = RecomputeLine(item)
		sum = sum.Add(lines[i].TotalPrice)
	}

	subtotal := Round2(sum)
	taxAmount := Round2(subtotal.Mul(taxPercentage).Shift(-2))

	return Ledger{
		Items:         lines,
		TaxPercentage: taxPercentage,
		Subtotal:      subtotal,
		TaxAmount:     taxAmount,
		NetAmount:     Round2(subtotal.Add(taxAmount)),
	}
}

// Recompute re-derives all totals of the ledger.
func (l Ledger) Recompute() Ledger {
	return RecomputeLedger(l.Items, l.TaxPercentage)
}

// WithTaxPercentage returns the ledger recomputed at a new tax rate.
func (l Ledger) WithTaxPercentage(taxPercentage decimal.Decimal) Ledger {
	return RecomputeLedger(l.Items, taxPercentage)
}

// AmountInWords renders the net amount in words for printed documents.
func (l Ledger) AmountInWords(c Currency) string {
	return c.DecimalToWords(l.NetAmount)
}

// AddItem returns a new slice with a zero-valued line appended.
func AddItem(items []LineItem) []LineItem {
	out := make([]LineItem, len(items), len(items)+1)
	copy(out, items)
	return append(out, LineItem{
		ID:         uuid.NewString(),
		Quantity:   decimal.Zero,
		UnitPrice:  decimal.Zero,
		TotalPrice: decimal.Zero,
	})
}

// RemoveItem returns a new slice without the line at index. An index out of
// range returns an unchanged copy. Totals are not rebalanced; callers run
// RecomputeLedger afterwards.
func RemoveItem(items []LineItem, index int) []LineItem {
	if index < 0 || index >= len(items) {
		out := make([]LineItem, len(items))
		copy(out, items)
		return out
	}
	out := make([]LineItem, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...)
}
