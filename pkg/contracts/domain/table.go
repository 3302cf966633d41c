package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one ingested row keyed by column name. Values are the strings
// as they appeared in the source; a missing key means the row had no cell for
// that column.
type RawRecord struct {
	Line   int               `json:"line"`
	Fields map[string]string `json:"fields"`
}

// Get returns the raw cell for column and whether the row carried it.
func (r RawRecord) Get(column string) (string, bool) {
	v, ok := r.Fields[column]
	return v, ok
}

// RawTable is the ordered output of ingestion.
type RawTable struct {
	Columns []string    `json:"columns"`
	Records []RawRecord `json:"records"`
}

// Len returns the number of records
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// HasColumn reports whether the header contains column.
func (t *RawTable) HasColumn(column string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// ValueKind identifies what a cleaned cell holds.
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindText
	KindNumber
	KindDate
)

// String returns the kind name
func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "missing"
	}
}

// Value is a typed cell of a cleaned record. Raw keeps the ingested text so
// coercion losses stay auditable.
type Value struct {
	Kind   ValueKind       `json:"kind"`
	Raw    string          `json:"raw,omitempty"`
	Number decimal.Decimal `json:"number,omitempty"`
	Date   time.Time       `json:"date,omitempty"`
}

// Missing returns a missing value that remembers its raw text.
func Missing(raw string) Value {
	return Value{Kind: KindMissing, Raw: raw}
}

// Text returns a text value
func Text(raw string) Value {
	return Value{Kind: KindText, Raw: raw}
}

// Number returns a numeric value
func Number(raw string, d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Raw: raw, Number: d}
}

// Date returns a date value
func Date(raw string, t time.Time) Value {
	return Value{Kind: KindDate, Raw: raw, Date: t}
}

// IsMissing reports whether the value is missing.
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// CleanedRecord is a row after coercion. Every configured numeric column holds
// a KindNumber value and the date column holds a KindDate value.
type CleanedRecord struct {
	Line   int              `json:"line"`
	Values map[string]Value `json:"values"`
}

// Get returns the value for column; absent columns come back as missing.
func (r CleanedRecord) Get(column string) Value {
	if v, ok := r.Values[column]; ok {
		return v
	}
	return Value{Kind: KindMissing}
}

// CleanedTable is the ordered output of the cleaner.
type CleanedTable struct {
	Columns        []string        `json:"columns"`
	DateColumn     string          `json:"date_column"`
	NumericColumns []string        `json:"numeric_columns"`
	Records        []CleanedRecord `json:"records"`
}

// Len returns the number of records
func (t *CleanedTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// HasColumn reports whether the header contains column.
func (t *CleanedTable) HasColumn(column string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// IsNumeric reports whether column was coerced to numbers.
func (t *CleanedTable) IsNumeric(column string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.NumericColumns {
		if c == column {
			return true
		}
	}
	return false
}
