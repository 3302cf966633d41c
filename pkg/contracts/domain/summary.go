package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Metric names produced by the aggregator
const (
	MetricTotalRecords      = "Total_Records"
	MetricReportDate        = "Report_Date"
	MetricTopProduct        = "Top_Product"
	MetricTopProductRevenue = "Top_Product_Revenue"
	MetricTopRegion         = "Top_Region"
	MetricTopRegionRevenue  = "Top_Region_Revenue"
)

// Per-column metric name prefixes
const (
	PrefixTotal = "Total_"
	PrefixAvg   = "Avg_"
	PrefixMax   = "Max_"
	PrefixMin   = "Min_"
)

// MetricKind describes the type of a summary value
type MetricKind string

const (
	MetricNumber    MetricKind = "number"
	MetricCount     MetricKind = "count"
	MetricText      MetricKind = "text"
	MetricTimestamp MetricKind = "timestamp"
)

// Metric is one named scalar of a summary report. Number is nullable so that
// statistics over an empty table can be represented without a sentinel.
type Metric struct {
	Name   string              `json:"name"`
	Kind   MetricKind          `json:"kind"`
	Number decimal.NullDecimal `json:"number,omitempty"`
	Count  int                 `json:"count,omitempty"`
	Text   string              `json:"text,omitempty"`
	Time   time.Time           `json:"time,omitempty"`
}

// NumberMetric builds a numeric metric
func NumberMetric(name string, d decimal.Decimal) Metric {
	return Metric{Name: name, Kind: MetricNumber, Number: decimal.NewNullDecimal(d)}
}

// NullMetric builds a numeric metric with no value
func NullMetric(name string) Metric {
	return Metric{Name: name, Kind: MetricNumber}
}

// CountMetric builds an integer metric
func CountMetric(name string, n int) Metric {
	return Metric{Name: name, Kind: MetricCount, Count: n}
}

// TextMetric builds a text metric
func TextMetric(name, text string) Metric {
	return Metric{Name: name, Kind: MetricText, Text: text}
}

// TimestampMetric builds a timestamp metric
func TimestampMetric(name string, t time.Time) Metric {
	return Metric{Name: name, Kind: MetricTimestamp, Time: t}
}

// IsNull reports whether a numeric metric has no value.
func (m Metric) IsNull() bool {
	return m.Kind == MetricNumber && !m.Number.Valid
}

// SummaryReport is an ordered, read-only set of metrics derived from one
// cleaned table snapshot.
type SummaryReport struct {
	generatedAt time.Time
	metrics     []Metric
	index       map[string]int
}

// NewSummaryReport copies metrics into a new report. Later metrics with a
// duplicate name replace earlier ones in place.
func NewSummaryReport(generatedAt time.Time, metrics []Metric) *SummaryReport {
	s := &SummaryReport{
		generatedAt: generatedAt,
		metrics:     make([]Metric, 0, len(metrics)),
		index:       make(map[string]int, len(metrics)),
	}
	for _, m := range metrics {
		if i, ok := s.index[m.Name]; ok {
			s.metrics[i] = m
			continue
		}
		s.index[m.Name] = len(s.metrics)
		s.metrics = append(s.metrics, m)
	}
	return s
}

// GeneratedAt returns the run timestamp the report was built for
func (s *SummaryReport) GeneratedAt() time.Time {
	return s.generatedAt
}

// Metrics returns a copy of the metrics in report order
func (s *SummaryReport) Metrics() []Metric {
	out := make([]Metric, len(s.metrics))
	copy(out, s.metrics)
	return out
}

// Get looks up a metric by name
func (s *SummaryReport) Get(name string) (Metric, bool) {
	i, ok := s.index[name]
	if !ok {
		return Metric{}, false
	}
	return s.metrics[i], true
}

// Has reports whether the report carries name
func (s *SummaryReport) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of metrics
func (s *SummaryReport) Len() int {
	return len(s.metrics)
}
