package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(qty, price string) LineItem {
	return LineItem{Description: "item", UOM: "Nos", Quantity: d(qty), UnitPrice: d(price)}
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s = %s, want %s", label, got.String(), want)
	}
}

func TestRecomputeLine(t *testing.T) {
	tests := []struct {
		name  string
		qty   string
		price string
		want  string
	}{
		{"whole numbers", "3", "100", "300"},
		{"half cent rounds up", "3", "12.505", "37.52"},
		{"half cent below rounds down", "1", "0.004", "0"},
		{"exact half", "1", "0.125", "0.13"},
		{"negative rounds away from zero", "1", "-0.125", "-0.13"},
		{"negative quantity", "-2", "10", "-20"},
		{"fractional quantity", "2.5", "4.1", "10.25"},
		{"zero", "0", "99.99", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecomputeLine(line(tt.qty, tt.price))
			assertDecimal(t, "TotalPrice", got.TotalPrice, tt.want)
		})
	}
}

func TestRecomputeLine_OverwritesStaleTotal(t *testing.T) {
	item := line("2", "5")
	item.TotalPrice = d("999")
	got := RecomputeLine(item)
	assertDecimal(t, "TotalPrice", got.TotalPrice, "10")
	assertDecimal(t, "input TotalPrice", item.TotalPrice, "999")
}

func TestRecomputeLedger(t *testing.T) {
	tests := []struct {
		name     string
		items    []LineItem
		tax      string
		subtotal string
		taxAmt   string
		net      string
	}{
		{
			name:     "single line five percent",
			items:    []LineItem{line("1", "100")},
			tax:      "5",
			subtotal: "100",
			taxAmt:   "5",
			net:      "105",
		},
		{
			name:     "rounded lines summed",
			items:    []LineItem{line("3", "12.505"), line("1", "0.005")},
			tax:      "5",
			subtotal: "37.53",
			taxAmt:   "1.88",
			net:      "39.41",
		},
		{
			name:     "zero tax",
			items:    []LineItem{line("2", "1000"), line("1", "50.75")},
			tax:      "0",
			subtotal: "2050.75",
			taxAmt:   "0",
			net:      "2050.75",
		},
		{
			name:     "empty ledger",
			items:    nil,
			tax:      "5",
			subtotal: "0",
			taxAmt:   "0",
			net:      "0",
		},
		{
			name:     "credit line",
			items:    []LineItem{line("1", "100"), line("-1", "40")},
			tax:      "5",
			subtotal: "60",
			taxAmt:   "3",
			net:      "63",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecomputeLedger(tt.items, d(tt.tax))
			assertDecimal(t, "Subtotal", got.Subtotal, tt.subtotal)
			assertDecimal(t, "TaxAmount", got.TaxAmount, tt.taxAmt)
			assertDecimal(t, "NetAmount", got.NetAmount, tt.net)
			if len(got.Items) != len(tt.items) {
				t.Errorf("len(Items) = %d, want %d", len(got.Items), len(tt.items))
			}
		})
	}
}

func TestRecomputeLedger_Idempotent(t *testing.T) {
	fixtures := [][]LineItem{
		nil,
		{line("3", "12.505")},
		{line("0.333", "0.333"), line("7", "1.115"), line("1", "-0.005")},
		{line("1000000", "999.999"), line("12.5", "80.125")},
	}
	taxes := []string{"0", "5", "7.5", "12.345"}

	for _, items := range fixtures {
		for _, tax := range taxes {
			first := RecomputeLedger(items, d(tax))
			second := first.Recompute()

			if !first.Subtotal.Equal(second.Subtotal) ||
				!first.TaxAmount.Equal(second.TaxAmount) ||
				!first.NetAmount.Equal(second.NetAmount) {
				t.Errorf("tax %s: recompute changed totals: %+v -> %+v", tax, first, second)
			}
			for i := range first.Items {
				if !first.Items[i].TotalPrice.Equal(second.Items[i].TotalPrice) {
					t.Errorf("tax %s: line %d changed %s -> %s", tax, i,
						first.Items[i].TotalPrice, second.Items[i].TotalPrice)
				}
			}
		}
	}
}

func TestRecomputeLedger_DoesNotMutateInput(t *testing.T) {
	items := []LineItem{line("3", "12.505")}
	RecomputeLedger(items, d("5"))
	if !items[0].TotalPrice.IsZero() {
		t.Errorf("input TotalPrice modified to %s", items[0].TotalPrice)
	}
}

func TestLedger_WithTaxPercentage(t *testing.T) {
	l := RecomputeLedger([]LineItem{line("1", "200")}, d("0"))
	got := l.WithTaxPercentage(d("5"))
	assertDecimal(t, "TaxAmount", got.TaxAmount, "10")
	assertDecimal(t, "NetAmount", got.NetAmount, "210")
	assertDecimal(t, "original NetAmount", l.NetAmount, "200")
}

func TestLedger_AmountInWords(t *testing.T) {
	l := RecomputeLedger([]LineItem{line("1", "100")}, d("5"))
	if got, want := l.AmountInWords(DefaultCurrency), "One hundred and five Dirhams only"; got != want {
		t.Errorf("AmountInWords = %q, want %q", got, want)
	}
}

func TestNewLineItem(t *testing.T) {
	item := NewLineItem("Paint", "Sqm", 3, 12.505)
	if item.ID == "" {
		t.Error("expected an ID")
	}
	assertDecimal(t, "TotalPrice", item.TotalPrice, "37.52")
}

func TestAddItem(t *testing.T) {
	items := []LineItem{line("1", "5")}
	got := AddItem(items)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if len(items) != 1 {
		t.Errorf("input length changed to %d", len(items))
	}
	added := got[1]
	if added.ID == "" || added.ID == got[0].ID {
		t.Errorf("added line needs a fresh ID, got %q", added.ID)
	}
	if !added.Quantity.IsZero() || !added.UnitPrice.IsZero() || !added.TotalPrice.IsZero() {
		t.Errorf("added line should be zero-valued, got %+v", added)
	}

	if got := AddItem(nil); len(got) != 1 {
		t.Errorf("AddItem(nil) len = %d, want 1", len(got))
	}
}

func TestRemoveItem(t *testing.T) {
	items := []LineItem{line("1", "1"), line("2", "2"), line("3", "3")}
	for i := range items {
		items[i].ID = string(rune('a' + i))
	}

	tests := []struct {
		name  string
		index int
		want  string
	}{
		{"first", 0, "bc"},
		{"middle", 1, "ac"},
		{"last", 2, "ab"},
		{"negative index", -1, "abc"},
		{"past end", 3, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemoveItem(items, tt.index)
			ids := ""
			for _, it := range got {
				ids += it.ID
			}
			if ids != tt.want {
				t.Errorf("RemoveItem(%d) ids = %q, want %q", tt.index, ids, tt.want)
			}
		})
	}

	if len(items) != 3 || items[1].ID != "b" {
		t.Errorf("input modified: %+v", items)
	}
}

func TestRemoveItem_DoesNotRebalanceTotals(t *testing.T) {
	l := RecomputeLedger([]LineItem{line("1", "100"), line("1", "50")}, d("5"))
	l.Items = RemoveItem(l.Items, 1)
	assertDecimal(t, "stale NetAmount", l.NetAmount, "157.5")

	l = l.Recompute()
	assertDecimal(t, "NetAmount", l.NetAmount, "105")
}
