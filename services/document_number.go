package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// numberPrefixes maps a document kind to its printed number prefix.
var numberPrefixes = map[DocumentKind]string{
	KindQuotation: "QTN",
	KindInvoice:   "INV",
}

// formatDocumentNumber constructs the number string from components.
func formatDocumentNumber(kind DocumentKind, year, sequence int) string {
	return fmt.Sprintf("%s-%d-%03d", numberPrefixes[kind], year, sequence)
}

// parseSequence extracts the trailing sequence from a number built by
// formatDocumentNumber, or 0 if it does not carry the expected prefix.
func parseSequence(number, prefix string) int {
	if !strings.HasPrefix(number, prefix) {
		return 0
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
	if err != nil {
		return 0
	}
	return seq
}

// GenerateDocumentNumber creates the next number for a document kind.
// Format: {QTN|INV}-{year}-{sequence}
// - year: calendar year of now
// - sequence: 3-digit zero-padded, one past the highest issued this year
func GenerateDocumentNumber(app core.App, kind DocumentKind, now time.Time) (string, error) {
	collection := kind.Collection()
	if collection == "" {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}

	year := now.Year()
	prefix := fmt.Sprintf("%s-%d-", numberPrefixes[kind], year)

	existing, err := app.FindRecordsByFilter(
		collection,
		"number ~ {:prefix}",
		"",
		0,
		0,
		map[string]any{"prefix": prefix + "%"},
	)
	if err != nil {
		// If collection is empty or missing, start at 1
		existing = nil
	}

	highest := 0
	for _, rec := range existing {
		if seq := parseSequence(rec.GetString("number"), prefix); seq > highest {
			highest = seq
		}
	}

	return formatDocumentNumber(kind, year, highest+1), nil
}
