package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"weeklyreport/internal/dataprocessing"
	apperrors "weeklyreport/internal/errors"
	"weeklyreport/internal/infrastructure"
	"weeklyreport/internal/validation"
	"weeklyreport/pkg/contracts/domain"
)

// Sheet names of the generated workbook
const (
	SheetSummary = "Summary"
	SheetData    = "Raw Data"
	SheetCharts  = "Charts"
)

const (
	summaryTitle   = "Weekly Report Summary"
	chartsTitle    = "Data Visualizations"
	chartTitle     = "Top Products by Revenue"
	currencyFormat = "$#,##0.00"
	integerFormat  = "#,##0"
	dateNumFormat  = "yyyy-mm-dd"

	summaryMaxWidth = 50
	dataMaxWidth    = 30

	// summaryFirstRow is where metric rows start on the summary sheet
	summaryFirstRow = 5
	// chartTableRow is the header row of the leaderboard table
	chartTableRow = 3
)

// RenderConfig controls workbook content
type RenderConfig struct {
	ProductColumn string
	RevenueColumn string
	ChartTopN     int
}

// ReportRenderer writes the weekly workbook
type ReportRenderer struct {
	logger    *slog.Logger
	config    RenderConfig
	validator *validation.FileValidator
}

// NewReportRenderer creates a renderer. ChartTopN defaults to 10.
func NewReportRenderer(logger *slog.Logger, config RenderConfig) *ReportRenderer {
	logger = infrastructure.WithComponent(logger, "renderer")
	if config.ChartTopN <= 0 {
		config.ChartTopN = 10
	}
	return &ReportRenderer{
		logger:    logger,
		config:    config,
		validator: validation.NewFileValidator(logger),
	}
}

// styles holds the style ids shared by all sheets
type styles struct {
	title       int
	subtitle    int
	metricLabel int
	header      int
	currency    int
	integer     int
	date        int
}

// Render builds the workbook for table and summary and writes it to path.
// The file is written next to path under a temporary name and renamed into
// place, so a failed render leaves no file at path.
func (r *ReportRenderer) Render(ctx context.Context, path string, table *domain.CleanedTable, summary *domain.SummaryReport) error {
	if summary == nil {
		return apperrors.NewRenderError("no summary to render", nil)
	}
	if err := r.validator.ValidateWorkbookPath(path); err != nil {
		return apperrors.NewRenderError("invalid output path", err).WithContext("path", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := r.build(f, table, summary); err != nil {
		r.logger.ErrorContext(ctx, "Failed to build workbook", slog.String("error", err.Error()))
		return apperrors.NewRenderError("failed to build workbook", err).WithContext("path", path)
	}

	if err := writeAtomic(f, path); err != nil {
		r.logger.ErrorContext(ctx, "Failed to save workbook",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return apperrors.NewRenderError("failed to save workbook", err).WithContext("path", path)
	}

	r.logger.InfoContext(ctx, "Workbook saved",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Int("metrics", summary.Len()))
	return nil
}

func (r *ReportRenderer) build(f *excelize.File, table *domain.CleanedTable, summary *domain.SummaryReport) error {
	st, err := newStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetData); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetCharts); err != nil {
		return err
	}

	if err := r.writeSummary(f, st, summary); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := r.writeData(f, st, table); err != nil {
		return fmt.Errorf("data sheet: %w", err)
	}
	if err := r.writeCharts(f, st, table); err != nil {
		return fmt.Errorf("charts sheet: %w", err)
	}

	idx, err := f.GetSheetIndex(SheetSummary)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	return nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	currency := currencyFormat
	integer := integerFormat
	date := dateNumFormat

	defs := []struct {
		id    *int
		style *excelize.Style
	}{
		{&st.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}},
		{&st.subtitle, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{&st.metricLabel, &excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6FA"}},
		}},
		{&st.header, &excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		}},
		{&st.currency, &excelize.Style{CustomNumFmt: &currency}},
		{&st.integer, &excelize.Style{CustomNumFmt: &integer}},
		{&st.date, &excelize.Style{CustomNumFmt: &date}},
	}

	for _, d := range defs {
		if *d.id, err = f.NewStyle(d.style); err != nil {
			return st, err
		}
	}
	return st, nil
}

// widthTracker records the widest text per column
type widthTracker struct {
	widths map[int]int
	max    int
}

func newWidthTracker(max int) *widthTracker {
	return &widthTracker{widths: make(map[int]int), max: max}
}

func (w *widthTracker) observe(col int, text string) {
	if n := utf8.RuneCountInString(text); n > w.widths[col] {
		w.widths[col] = n
	}
}

func (w *widthTracker) apply(f *excelize.File, sheet string) error {
	for col, n := range w.widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		width := n + 2
		if width > w.max {
			width = w.max
		}
		if err := f.SetColWidth(sheet, name, name, float64(width)); err != nil {
			return err
		}
	}
	return nil
}

func (r *ReportRenderer) writeSummary(f *excelize.File, st styles, summary *domain.SummaryReport) error {
	sheet := SheetSummary
	widths := newWidthTracker(summaryMaxWidth)

	if err := f.SetCellValue(sheet, "A1", summaryTitle); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", st.title); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", "D1"); err != nil {
		return err
	}

	generated := summary.GeneratedAt().Format(timestampLayout)
	if err := f.SetCellValue(sheet, "A3", "Report Generated:"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "B3", generated); err != nil {
		return err
	}
	widths.observe(1, "Report Generated:")
	widths.observe(2, generated)

	row := summaryFirstRow
	for _, m := range summary.Metrics() {
		label := humanizeMetricName(m.Name)
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)

		if err := f.SetCellValue(sheet, labelCell, label); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, labelCell, labelCell, st.metricLabel); err != nil {
			return err
		}
		widths.observe(1, label)

		text, err := r.writeMetric(f, st, sheet, valueCell, m)
		if err != nil {
			return err
		}
		widths.observe(2, text)
		row++
	}

	return widths.apply(f, sheet)
}

// writeMetric writes one metric value and returns its display text for
// column sizing. Null numbers leave the cell empty.
func (r *ReportRenderer) writeMetric(f *excelize.File, st styles, sheet, cell string, m domain.Metric) (string, error) {
	switch m.Kind {
	case domain.MetricNumber:
		if m.IsNull() {
			return "", nil
		}
		if err := f.SetCellValue(sheet, cell, m.Number.Decimal.InexactFloat64()); err != nil {
			return "", err
		}
		if isRevenueLike(m.Name, r.config.RevenueColumn) {
			if err := f.SetCellStyle(sheet, cell, cell, st.currency); err != nil {
				return "", err
			}
			return "$" + m.Number.Decimal.StringFixed(2), nil
		}
		return m.Number.Decimal.String(), nil
	case domain.MetricCount:
		return fmt.Sprint(m.Count), f.SetCellValue(sheet, cell, m.Count)
	case domain.MetricTimestamp:
		text := m.Time.Format(dateLayout)
		return text, f.SetCellValue(sheet, cell, text)
	default:
		return m.Text, f.SetCellValue(sheet, cell, m.Text)
	}
}

func (r *ReportRenderer) writeData(f *excelize.File, st styles, table *domain.CleanedTable) error {
	sheet := SheetData
	widths := newWidthTracker(dataMaxWidth)

	if table == nil {
		return nil
	}

	for i, col := range table.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
		widths.observe(i+1, col)
	}
	if len(table.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(table.Columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, st.header); err != nil {
			return err
		}
	}

	for idx, rec := range table.Records {
		row := idx + 2
		for i, col := range table.Columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			v := rec.Get(col)

			switch v.Kind {
			case domain.KindMissing:
				continue
			case domain.KindDate:
				if err := f.SetCellValue(sheet, cell, asSheetTime(v.Date)); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, st.date); err != nil {
					return err
				}
			case domain.KindNumber:
				if err := f.SetCellValue(sheet, cell, v.Number.InexactFloat64()); err != nil {
					return err
				}
				style := st.integer
				if isRevenueLike(col, r.config.RevenueColumn) {
					style = st.currency
				}
				if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
					return err
				}
			default:
				if err := f.SetCellValue(sheet, cell, v.Raw); err != nil {
					return err
				}
			}
			widths.observe(i+1, formatValue(v))
		}
	}

	return widths.apply(f, sheet)
}

func (r *ReportRenderer) writeCharts(f *excelize.File, st styles, table *domain.CleanedTable) error {
	sheet := SheetCharts

	if err := f.SetCellValue(sheet, "A1", chartsTitle); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", st.subtitle); err != nil {
		return err
	}

	board := dataprocessing.Leaderboard(table, r.config.ProductColumn, r.config.RevenueColumn, r.config.ChartTopN)
	if len(board) == 0 {
		r.logger.Debug("Chart omitted, no product revenue available")
		return nil
	}

	header := chartTableRow
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", header), &[]interface{}{"Product", "Revenue"}); err != nil {
		return err
	}
	for i, entry := range board {
		row := header + 1 + i
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), entry.Label); err != nil {
			return err
		}
		cell := fmt.Sprintf("B%d", row)
		if err := f.SetCellValue(sheet, cell, entry.Total.InexactFloat64()); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.currency); err != nil {
			return err
		}
	}

	last := header + len(board)
	return f.AddChart(sheet, "D3", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$%d", sheet, header),
			Categories: fmt.Sprintf("'%s'!$A$%d:$A$%d", sheet, header+1, last),
			Values:     fmt.Sprintf("'%s'!$B$%d:$B$%d", sheet, header+1, last),
		}},
		Title:  []excelize.RichTextRun{{Text: chartTitle}},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Products"}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Revenue"}}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	})
}

// writeAtomic saves f to a temporary file in the directory of path and
// renames it into place.
func writeAtomic(f *excelize.File, path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".weekly_report_*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = f.WriteTo(tmp); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync workbook: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close workbook: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move workbook into place: %w", err)
	}
	return nil
}
