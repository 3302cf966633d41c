package operations

import (
	"context"
	"time"

	"weeklyreport/internal/dataprocessing"
	"weeklyreport/internal/ingest"
	"weeklyreport/pkg/contracts/domain"
)

// Loader reads the source table
type Loader interface {
	Load(ctx context.Context, path string) (*domain.RawTable, ingest.IngestStats, error)
}

// TableCleaner coerces and filters a raw table
type TableCleaner interface {
	Clean(ctx context.Context, raw *domain.RawTable, now time.Time) (*domain.CleanedTable, dataprocessing.CleanStats, error)
}

// Summarizer derives report metrics
type Summarizer interface {
	Summarize(ctx context.Context, table *domain.CleanedTable, now time.Time) *domain.SummaryReport
}

// Renderer writes the workbook
type Renderer interface {
	Render(ctx context.Context, path string, table *domain.CleanedTable, summary *domain.SummaryReport) error
}

// TableExporter writes the cleaned table as delimited text
type TableExporter interface {
	WriteCleanedTable(ctx context.Context, path string, table *domain.CleanedTable) error
}
