// Package dataprocessing turns an ingested table into report figures.
//
// # Architecture
//
// The package has two stages that run in sequence:
//
//  1. Cleaner: coerces the date and numeric columns, drops rows missing any
//     critical value and keeps rows dated within the recency window
//  2. Aggregator: computes per-column totals, averages and extremes, the
//     record count and the top product and region by revenue
//
// Both stages take the run timestamp from the caller so that the window and
// the report date agree.
//
// # Usage
//
//	cleaner := dataprocessing.NewCleaner(logger, dataprocessing.CleanerConfig{
//	    DateColumn:     "Date",
//	    NumericColumns: []string{"Sales", "Units", "Revenue"},
//	    Window:         7 * 24 * time.Hour,
//	})
//	table, stats, err := cleaner.Clean(ctx, raw, now)
//
//	agg := dataprocessing.NewAggregator(logger, dataprocessing.AggregatorConfig{
//	    ProductColumn: "Product",
//	    RegionColumn:  "Region",
//	    RevenueColumn: "Revenue",
//	})
//	report := agg.Summarize(ctx, table, now)
//
// # Error Handling
//
// Row level problems never fail a run. Unparseable cells become missing
// values, the rows holding them are dropped, and the counts are returned in
// CleanStats. Clean fails only when a critical column is absent from the
// header.
package dataprocessing
