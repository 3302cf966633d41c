package operations

import (
	"context"
	"log/slog"

	"weeklyreport/internal/validation"
)

// IngestStep loads the input file
type IngestStep struct {
	BaseStage
	loader    Loader
	expected  []string
	validator *validation.FileValidator
}

// NewIngestStep creates the ingest step. Expected columns missing from the
// input are logged, not treated as errors.
func NewIngestStep(loader Loader, expected []string, logger *slog.Logger) *IngestStep {
	return &IngestStep{
		BaseStage: NewBaseStage(StepIDIngest, StepNameIngest),
		loader:    loader,
		expected:  expected,
		validator: validation.NewFileValidator(logger),
	}
}

// Execute loads state.InputPath
func (s *IngestStep) Execute(ctx context.Context, state *RunState) error {
	raw, stats, err := s.loader.Load(ctx, state.InputPath)
	state.IngestStats = stats
	if err != nil {
		return err
	}
	state.Raw = raw
	s.validator.MissingColumns(raw.Columns, s.expected)
	return nil
}

// CleanStep coerces and filters the ingested table
type CleanStep struct {
	BaseStage
	cleaner TableCleaner
}

// NewCleanStep creates the clean step
func NewCleanStep(cleaner TableCleaner) *CleanStep {
	return &CleanStep{
		BaseStage: NewBaseStage(StepIDClean, StepNameClean),
		cleaner:   cleaner,
	}
}

// Execute cleans state.Raw as of state.Now
func (s *CleanStep) Execute(ctx context.Context, state *RunState) error {
	if state.Raw == nil {
		return NewInvalidStateError(s.ID(), "no ingested table")
	}
	table, stats, err := s.cleaner.Clean(ctx, state.Raw, state.Now)
	state.CleanStats = stats
	if err != nil {
		return err
	}
	state.Cleaned = table
	return nil
}

// SummarizeStep computes the summary metrics
type SummarizeStep struct {
	BaseStage
	summarizer Summarizer
}

// NewSummarizeStep creates the summarize step
func NewSummarizeStep(summarizer Summarizer) *SummarizeStep {
	return &SummarizeStep{
		BaseStage:  NewBaseStage(StepIDSummarize, StepNameSummarize),
		summarizer: summarizer,
	}
}

// Execute summarizes state.Cleaned as of state.Now
func (s *SummarizeStep) Execute(ctx context.Context, state *RunState) error {
	if state.Cleaned == nil {
		return NewInvalidStateError(s.ID(), "no cleaned table")
	}
	state.Summary = s.summarizer.Summarize(ctx, state.Cleaned, state.Now)
	return nil
}

// RenderStep writes the workbook
type RenderStep struct {
	BaseStage
	renderer Renderer
}

// NewRenderStep creates the render step
func NewRenderStep(renderer Renderer) *RenderStep {
	return &RenderStep{
		BaseStage: NewBaseStage(StepIDRender, StepNameRender),
		renderer:  renderer,
	}
}

// Execute renders to state.OutputPath
func (s *RenderStep) Execute(ctx context.Context, state *RunState) error {
	if state.Summary == nil {
		return NewInvalidStateError(s.ID(), "no summary")
	}
	return s.renderer.Render(ctx, state.OutputPath, state.Cleaned, state.Summary)
}

// ExportCSVStep writes the cleaned table to state.CSVPath
type ExportCSVStep struct {
	BaseStage
	exporter TableExporter
}

// NewExportCSVStep creates the CSV export step
func NewExportCSVStep(exporter TableExporter) *ExportCSVStep {
	return &ExportCSVStep{
		BaseStage: NewBaseStage(StepIDExportCSV, StepNameExportCSV),
		exporter:  exporter,
	}
}

// Execute exports state.Cleaned
func (s *ExportCSVStep) Execute(ctx context.Context, state *RunState) error {
	if state.CSVPath == "" {
		return NewValidationError(s.ID(), "no CSV path configured")
	}
	if state.Cleaned == nil {
		return NewInvalidStateError(s.ID(), "no cleaned table")
	}
	return s.exporter.WriteCleanedTable(ctx, state.CSVPath, state.Cleaned)
}
