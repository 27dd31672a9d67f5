package services

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Currency names the units used when printing amounts.
type Currency struct {
	Code  string // ISO code printed next to figures, e.g. "AED"
	Major string // major unit word, e.g. "Dirhams"
	Minor string // minor unit word, e.g. "Fils"
}

// DefaultCurrency is used by AmountToWords and the document exports.
// main overrides it from command-line flags.
var DefaultCurrency = Currency{Code: "AED", Major: "Dirhams", Minor: "Fils"}

var (
	thousand = decimal.NewFromInt(1000)
	hundred  = decimal.NewFromInt(100)
)

// scaleWords are the short-scale names of each base-1000 chunk. Chunks beyond
// the table are rendered without a scale word.
var scaleWords = []string{"", "thousand", "million", "billion", "trillion"}

// AmountToWords converts an amount to English words in the default currency.
// Example: 1050.75 → "One thousand fifty Dirhams and seventy five Fils only"
func AmountToWords(amount float64) string {
	return DefaultCurrency.AmountToWords(amount)
}

// AmountToWords converts amount to words. NaN and infinities yield "" so
// renderers can skip the line instead of failing the document.
func (c Currency) AmountToWords(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ""
	}
	return c.DecimalToWords(decimal.NewFromFloat(amount))
}

// DecimalToWords converts amount to words. Negative amounts are prefixed with
// "Minus"; the minor part is rounded half away from zero to two digits.
func (c Currency) DecimalToWords(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	amount = amount.Abs()

	major := amount.Floor()
	minor := amount.Sub(major).Shift(2).Round(0)
	if minor.GreaterThanOrEqual(hundred) {
		major = major.Add(decimal.NewFromInt(1))
		minor = decimal.Zero
	}

	if major.IsZero() && minor.IsZero() {
		return capitalizeFirst("zero " + c.Major + " only")
	}

	var parts []string
	if negative {
		parts = append(parts, "minus")
	}
	if !major.IsZero() {
		parts = append(parts, integerToWords(major), c.Major)
	}
	if !minor.IsZero() {
		if !major.IsZero() {
			parts = append(parts, "and")
		}
		parts = append(parts, chunkToWords(int(minor.IntPart())), c.Minor)
	}
	parts = append(parts, "only")

	return capitalizeFirst(strings.Join(parts, " "))
}

// integerToWords renders a non-negative whole number in base-1000 chunks,
// most significant first.
func integerToWords(n decimal.Decimal) string {
	var chunks []int
	for n.IsPositive() {
		chunks = append(chunks, int(n.Mod(thousand).IntPart()))
		n = n.Shift(-3).Floor()
	}

	var parts []string
	for i := len(chunks) - 1; i >= 0; i-- {
		if chunks[i] == 0 {
			continue
		}
		words := chunkToWords(chunks[i])
		if i > 0 && i < len(scaleWords) {
			words += " " + scaleWords[i]
		}
		parts = append(parts, words)
	}

	return strings.Join(parts, " ")
}

// chunkToWords renders 1-999, e.g. 105 → "one hundred and five".
func chunkToWords(n int) string {
	var parts []string

	if n >= 100 {
		parts = append(parts, ones[n/100]+" hundred")
		n %= 100
	}

	if n > 0 {
		if len(parts) > 0 {
			parts = append(parts, "and "+convertUnder100(n))
		} else {
			parts = append(parts, convertUnder100(n))
		}
	}

	return strings.Join(parts, " ")
}

func convertUnder100(n int) string {
	if n < 20 {
		return ones[n]
	}
	result := tens[n/10]
	if n%10 != 0 {
		result += " " + ones[n%10]
	}
	return result
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

var ones = []string{
	"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tens = []string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}
