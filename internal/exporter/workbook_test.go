package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "weeklyreport/internal/errors"
	"weeklyreport/pkg/contracts/domain"
)

var renderNow = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

func sampleTable() *domain.CleanedTable {
	row := func(line int, date, product, units, revenue string) domain.CleanedRecord {
		d, _ := time.Parse("2006-01-02", date)
		return domain.CleanedRecord{Line: line, Values: map[string]domain.Value{
			"Date":    domain.Date(date, d),
			"Product": domain.Text(product),
			"Units":   domain.Number(units, decimal.RequireFromString(units)),
			"Revenue": domain.Number(revenue, decimal.RequireFromString(revenue)),
		}}
	}
	return &domain.CleanedTable{
		Columns:        []string{"Date", "Product", "Units", "Revenue"},
		DateColumn:     "Date",
		NumericColumns: []string{"Units", "Revenue"},
		Records: []domain.CleanedRecord{
			row(2, "2024-01-14", "A", "1200", "100"),
			row(3, "2024-01-13", "B", "3", "300.5"),
			row(4, "2024-01-12", "A", "2", "50"),
		},
	}
}

func sampleSummary() *domain.SummaryReport {
	return domain.NewSummaryReport(renderNow, []domain.Metric{
		domain.NumberMetric("Total_Revenue", decimal.RequireFromString("450.5")),
		domain.NullMetric("Avg_Units"),
		domain.NumberMetric("Total_Units", decimal.NewFromInt(1205)),
		domain.CountMetric(domain.MetricTotalRecords, 3),
		domain.TimestampMetric(domain.MetricReportDate, renderNow),
		domain.TextMetric(domain.MetricTopProduct, "B"),
	})
}

func testRenderer() *ReportRenderer {
	return NewReportRenderer(nil, RenderConfig{ProductColumn: "Product", RevenueColumn: "Revenue", ChartTopN: 10})
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestReportRenderer_Render(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weekly_report_20240115.xlsx")
	require.NoError(t, testRenderer().Render(context.Background(), path, sampleTable(), sampleSummary()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetData, SheetCharts}, f.GetSheetList())
	assert.Equal(t, 0, f.GetActiveSheetIndex())

	// Summary
	assert.Equal(t, "Weekly Report Summary", raw(t, f, SheetSummary, "A1"))
	assert.Equal(t, "Report Generated:", raw(t, f, SheetSummary, "A3"))
	assert.Equal(t, "2024-01-15 09:30", raw(t, f, SheetSummary, "B3"))
	assert.Equal(t, "Total Revenue", raw(t, f, SheetSummary, "A5"))
	assert.Equal(t, "450.5", raw(t, f, SheetSummary, "B5"))
	assert.Equal(t, "Avg Units", raw(t, f, SheetSummary, "A6"))
	assert.Empty(t, raw(t, f, SheetSummary, "B6"), "null metrics render empty")
	assert.Equal(t, "1205", raw(t, f, SheetSummary, "B7"))
	assert.Equal(t, "3", raw(t, f, SheetSummary, "B8"))
	assert.Equal(t, "2024-01-15", raw(t, f, SheetSummary, "B9"))
	assert.Equal(t, "Top Product", raw(t, f, SheetSummary, "A10"))
	assert.Equal(t, "B", raw(t, f, SheetSummary, "B10"))

	formatted, err := f.GetCellValue(SheetSummary, "B5")
	require.NoError(t, err)
	assert.Equal(t, "$450.50", formatted)

	// Raw Data
	assert.Equal(t, "Date", raw(t, f, SheetData, "A1"))
	assert.Equal(t, "Revenue", raw(t, f, SheetData, "D1"))
	assert.Equal(t, "A", raw(t, f, SheetData, "B2"))
	assert.Equal(t, "300.5", raw(t, f, SheetData, "D3"))
	units, err := f.GetCellValue(SheetData, "C2")
	require.NoError(t, err)
	assert.Equal(t, "1,200", units)
	date, err := f.GetCellValue(SheetData, "A2")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-14", date)

	// Charts: leaderboard sorted by revenue
	assert.Equal(t, "Data Visualizations", raw(t, f, SheetCharts, "A1"))
	assert.Equal(t, "Product", raw(t, f, SheetCharts, "A3"))
	assert.Equal(t, "Revenue", raw(t, f, SheetCharts, "B3"))
	assert.Equal(t, "B", raw(t, f, SheetCharts, "A4"))
	assert.Equal(t, "300.5", raw(t, f, SheetCharts, "B4"))
	assert.Equal(t, "A", raw(t, f, SheetCharts, "A5"))
	assert.Equal(t, "150", raw(t, f, SheetCharts, "B5"))
}

func TestReportRenderer_ChartTopN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top1.xlsx")
	r := NewReportRenderer(nil, RenderConfig{ProductColumn: "Product", RevenueColumn: "Revenue", ChartTopN: 1})
	require.NoError(t, r.Render(context.Background(), path, sampleTable(), sampleSummary()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "B", raw(t, f, SheetCharts, "A4"))
	assert.Empty(t, raw(t, f, SheetCharts, "A5"))
}

func TestReportRenderer_EmptyTable(t *testing.T) {
	table := &domain.CleanedTable{
		Columns:        []string{"Date", "Product", "Revenue"},
		DateColumn:     "Date",
		NumericColumns: []string{"Revenue"},
	}
	summary := domain.NewSummaryReport(renderNow, []domain.Metric{
		domain.NumberMetric("Total_Revenue", decimal.Zero),
		domain.NullMetric("Avg_Revenue"),
		domain.CountMetric(domain.MetricTotalRecords, 0),
	})

	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, testRenderer().Render(context.Background(), path, table, summary))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetData, SheetCharts}, f.GetSheetList())
	assert.Equal(t, "Revenue", raw(t, f, SheetData, "C1"))
	assert.Empty(t, raw(t, f, SheetData, "A2"))
	assert.Equal(t, "Data Visualizations", raw(t, f, SheetCharts, "A1"))
	assert.Empty(t, raw(t, f, SheetCharts, "A3"), "no leaderboard without rows")
}

func TestReportRenderer_NoProductColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noproduct.xlsx")
	r := NewReportRenderer(nil, RenderConfig{RevenueColumn: "Revenue"})
	require.NoError(t, r.Render(context.Background(), path, sampleTable(), sampleSummary()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Empty(t, raw(t, f, SheetCharts, "A3"))
}

func TestReportRenderer_FailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	tests := []struct {
		name string
		path string
	}{
		{name: "parent is a file", path: filepath.Join(blocker, "report.xlsx")},
		{name: "wrong extension", path: filepath.Join(dir, "report.csv")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testRenderer().Render(context.Background(), tt.path, sampleTable(), sampleSummary())
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))

			_, statErr := os.Stat(tt.path)
			assert.Error(t, statErr)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestReportRenderer_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	require.NoError(t, testRenderer().Render(context.Background(), path, sampleTable(), sampleSummary()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "Weekly Report Summary", raw(t, f, SheetSummary, "A1"))
}

func TestReportRenderer_NilSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nil.xlsx")
	err := testRenderer().Render(context.Background(), path, sampleTable(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
