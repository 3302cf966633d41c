package dataprocessing

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// dateLayouts are tried before the permissive parser. They cover what
// spreadsheet exports write most often and keep those inputs independent of
// dateparse's heuristics.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// numberReplacer strips currency and thousands separators
var numberReplacer = strings.NewReplacer("$", "", ",", "")

// CoerceNumber parses a noisy numeric cell. Surrounding space, dollar signs
// and thousands separators are ignored. ok is false for blank or
// unparseable input.
func CoerceNumber(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(numberReplacer.Replace(strings.TrimSpace(raw)))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// CoerceDate parses a date cell in loc. Values without a time of day land on
// midnight. Ambiguous numeric forms such as 01/02/2024 are read month first;
// forms that are only valid day first, such as 13/01/2024, are read day first.
func CoerceDate(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	t, err := dateparse.ParseIn(s, loc, dateparse.RetryAmbiguousDateWithSwap(true))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
