package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"weeklyreport/internal/infrastructure"
	"weeklyreport/pkg/contracts/domain"
)

// AggregatorConfig names the grouping roles. Empty names disable the
// matching leaderboard metrics.
type AggregatorConfig struct {
	ProductColumn string
	RegionColumn  string
	RevenueColumn string
}

// Aggregator derives a SummaryReport from a cleaned table
type Aggregator struct {
	logger *slog.Logger
	config AggregatorConfig
}

// NewAggregator creates an aggregator
func NewAggregator(logger *slog.Logger, config AggregatorConfig) *Aggregator {
	return &Aggregator{
		logger: infrastructure.WithComponent(logger, "aggregator"),
		config: config,
	}
}

// columnStats accumulates one numeric column
type columnStats struct {
	count int
	sum   decimal.Decimal
	max   decimal.Decimal
	min   decimal.Decimal
}

func (s *columnStats) add(d decimal.Decimal) {
	if s.count == 0 {
		s.max, s.min = d, d
	} else {
		s.max = decimal.Max(s.max, d)
		s.min = decimal.Min(s.min, d)
	}
	s.sum = s.sum.Add(d)
	s.count++
}

// Summarize computes the report metrics for table as of now. It never fails:
// statistics over an empty table are zero totals and null averages and
// extremes.
func (a *Aggregator) Summarize(ctx context.Context, table *domain.CleanedTable, now time.Time) *domain.SummaryReport {
	var metrics []domain.Metric

	if table != nil {
		for _, col := range table.NumericColumns {
			metrics = append(metrics, numericMetrics(table, col)...)
		}
	}

	metrics = append(metrics,
		domain.CountMetric(domain.MetricTotalRecords, table.Len()),
		domain.TimestampMetric(domain.MetricReportDate, now),
	)

	metrics = append(metrics, a.topMetrics(table, a.config.ProductColumn,
		domain.MetricTopProduct, domain.MetricTopProductRevenue)...)
	metrics = append(metrics, a.topMetrics(table, a.config.RegionColumn,
		domain.MetricTopRegion, domain.MetricTopRegionRevenue)...)

	report := domain.NewSummaryReport(now, metrics)

	a.logger.InfoContext(ctx, "Summary computed",
		slog.Int("metrics", report.Len()),
		slog.Int("records", table.Len()))

	return report
}

func numericMetrics(table *domain.CleanedTable, col string) []domain.Metric {
	stats := columnStats{sum: decimal.Zero}
	for _, rec := range table.Records {
		v := rec.Get(col)
		if v.Kind == domain.KindNumber {
			stats.add(v.Number)
		}
	}

	total := domain.NumberMetric(domain.PrefixTotal+col, stats.sum)
	if stats.count == 0 {
		return []domain.Metric{
			total,
			domain.NullMetric(domain.PrefixAvg + col),
			domain.NullMetric(domain.PrefixMax + col),
			domain.NullMetric(domain.PrefixMin + col),
		}
	}

	return []domain.Metric{
		total,
		domain.NumberMetric(domain.PrefixAvg+col, stats.sum.Div(decimal.NewFromInt(int64(stats.count)))),
		domain.NumberMetric(domain.PrefixMax+col, stats.max),
		domain.NumberMetric(domain.PrefixMin+col, stats.min),
	}
}

func (a *Aggregator) topMetrics(table *domain.CleanedTable, groupColumn, labelName, valueName string) []domain.Metric {
	if table.Len() == 0 {
		return nil
	}

	top := Leaderboard(table, groupColumn, a.config.RevenueColumn, 1)
	if len(top) == 0 {
		a.logger.Debug("Leaderboard metric omitted",
			slog.String("metric", labelName),
			slog.String("group_column", groupColumn),
			slog.String("value_column", a.config.RevenueColumn))
		return nil
	}

	return []domain.Metric{
		domain.TextMetric(labelName, top[0].Label),
		domain.NumberMetric(valueName, top[0].Total),
	}
}
