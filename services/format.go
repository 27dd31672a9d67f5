package services

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatAmount formats an amount with thousands separators and exactly two
// decimal places, rounding half away from zero (e.g. 1234567.891 → "1,234,567.89").
func FormatAmount(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	raw := Round2(amount.Abs()).StringFixed(2)

	parts := strings.SplitN(raw, ".", 2)
	intPart := applyThousandsGrouping(parts[0])

	result := intPart + "." + parts[1]
	if negative && raw != "0.00" {
		result = "-" + result
	}
	return result
}

// FormatMoney prefixes FormatAmount with the currency code, e.g. "AED 1,050.75".
func (c Currency) FormatMoney(amount decimal.Decimal) string {
	formatted := FormatAmount(amount)
	if strings.HasPrefix(formatted, "-") {
		return "-" + c.Code + " " + formatted[1:]
	}
	return c.Code + " " + formatted
}

// FormatMoney formats amount in the default currency.
func FormatMoney(amount decimal.Decimal) string {
	return DefaultCurrency.FormatMoney(amount)
}

// FormatQty prints a quantity without trailing zeros ("3", "2.5").
func FormatQty(qty decimal.Decimal) string {
	return qty.String()
}

// applyThousandsGrouping inserts commas every three digits of a non-negative
// integer string. Values that fit in an int64 go through humanize.
func applyThousandsGrouping(s string) string {
	if d, err := decimal.NewFromString(s); err == nil && len(s) < 19 {
		return humanize.Comma(d.IntPart())
	}

	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
