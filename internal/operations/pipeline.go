package operations

import (
	"log/slog"

	"weeklyreport/internal/config"
	"weeklyreport/internal/dataprocessing"
	"weeklyreport/internal/exporter"
	"weeklyreport/internal/infrastructure"
	"weeklyreport/internal/ingest"
)

// NewReportManager wires the standard report steps from cfg: ingest, clean,
// summarize and render, followed by the CSV export when a cleaned CSV path
// is configured.
func NewReportManager(cfg *config.Config, logger *slog.Logger, tel *infrastructure.Telemetry) (*Manager, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	registry := NewRegistry()
	steps := []Step{
		NewIngestStep(ingest.NewIngestor(logger, cfg.Encodings), cfg.DataColumns, logger),
		NewCleanStep(dataprocessing.NewCleaner(logger, dataprocessing.CleanerConfig{
			DateColumn:     cfg.DateColumn,
			NumericColumns: cfg.NumericColumns,
			Window:         cfg.Window(),
		})),
		NewSummarizeStep(dataprocessing.NewAggregator(logger, dataprocessing.AggregatorConfig{
			ProductColumn: cfg.ProductColumn,
			RegionColumn:  cfg.RegionColumn,
			RevenueColumn: cfg.RevenueColumn,
		})),
		NewRenderStep(exporter.NewReportRenderer(logger, exporter.RenderConfig{
			ProductColumn: cfg.ProductColumn,
			RevenueColumn: cfg.RevenueColumn,
			ChartTopN:     cfg.ChartTopN,
		})),
	}
	if cfg.CleanedCSVFile != "" {
		steps = append(steps, NewExportCSVStep(exporter.NewCSVWriter(logger)))
	}

	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}

	return NewManager(logger, registry, NewRunTracer(tel)), nil
}

// RequestFromConfig builds the run request for cfg
func RequestFromConfig(cfg *config.Config) RunRequest {
	return RunRequest{
		InputPath:  cfg.InputFile,
		OutputPath: cfg.OutputFile,
		CSVPath:    cfg.CleanedCSVFile,
	}
}
