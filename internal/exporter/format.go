package exporter

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"weeklyreport/pkg/contracts/domain"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04"
	dateTimeLayout  = "2006-01-02 15:04:05"
)

// humanizeMetricName turns Total_Revenue into "Total Revenue"
func humanizeMetricName(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// isRevenueLike reports whether a column or metric carries money
func isRevenueLike(name, revenueColumn string) bool {
	if revenueColumn == "" {
		return false
	}
	return strings.Contains(name, revenueColumn)
}

// formatDate writes dates without a time of day as plain dates
func formatDate(t time.Time) string {
	h, m, s := t.Clock()
	if h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(dateTimeLayout)
}

// formatValue renders a cleaned cell for text output
func formatValue(v domain.Value) string {
	switch v.Kind {
	case domain.KindNumber:
		return v.Number.String()
	case domain.KindDate:
		return formatDate(v.Date)
	case domain.KindText:
		return v.Raw
	default:
		return ""
	}
}

// asSheetTime keeps the wall clock of t; workbook cells carry no zone.
func asSheetTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
