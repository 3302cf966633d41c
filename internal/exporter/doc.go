// Package exporter writes run output.
//
// ReportRenderer builds the weekly workbook with excelize: a Summary sheet of
// metrics, a Raw Data sheet with the cleaned rows and a Charts sheet with the
// top products by revenue. The workbook is saved under a temporary name in
// the destination directory and renamed into place.
//
// CSVWriter writes delimited files with an optional UTF-8 BOM for Excel. It
// exports the cleaned table and streams generated sample data.
//
// Example usage:
//
//	renderer := exporter.NewReportRenderer(logger, exporter.RenderConfig{
//	    ProductColumn: "Product",
//	    RevenueColumn: "Revenue",
//	    ChartTopN:     10,
//	})
//	err := renderer.Render(ctx, "weekly_report_20240115.xlsx", table, summary)
package exporter
