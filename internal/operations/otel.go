package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"weeklyreport/internal/infrastructure"
)

const (
	TracerName = "weeklyreport.operation"
)

// RunTracer provides OpenTelemetry instrumentation for report runs. A nil
// telemetry yields a tracer that records nothing.
type RunTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.RunMetrics
}

// NewRunTracer creates a run tracer from the process telemetry
func NewRunTracer(tel *infrastructure.Telemetry) *RunTracer {
	if tel == nil {
		return &RunTracer{tracer: noop.NewTracerProvider().Tracer(TracerName)}
	}
	return &RunTracer{tracer: tel.Tracer, metrics: tel.Metrics}
}

// TraceRun creates the root span of a run
func (t *RunTracer) TraceRun(ctx context.Context, state *RunState) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "report.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.ID),
			attribute.String("run.input", state.InputPath),
			attribute.String("run.output", state.OutputPath),
			attribute.String("run.now", state.Now.Format(time.RFC3339)),
		),
	)
}

// TraceStep creates a span for one step
func (t *RunTracer) TraceStep(ctx context.Context, runID, stepID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "report.step."+stepID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStep ends a step span and records its duration
func (t *RunTracer) RecordStep(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(
		attribute.String("step.status", status),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	span.End()

	if t.metrics != nil {
		t.metrics.StepDuration.Record(ctx, duration.Seconds(),
			metric.WithAttributes(
				attribute.String("step", stepID),
				attribute.String("status", status),
			),
		)
	}
}

// RecordRun ends the run span and records row and run counters
func (t *RunTracer) RecordRun(ctx context.Context, span trace.Span, result *RunResult) {
	span.SetAttributes(
		attribute.String("run.status", string(result.Status)),
		attribute.String("run.encoding", result.Ingest.Encoding),
		attribute.Int("run.rows_read", result.Ingest.RowsRead),
		attribute.Int("run.rows_kept", result.Clean.OutputRows),
		attribute.Int("run.rows_dropped_incomplete", result.Clean.DroppedIncomplete),
		attribute.Int("run.rows_dropped_out_of_window", result.Clean.DroppedOutOfWindow),
	)
	if result.Error != nil {
		span.RecordError(result.Error)
		span.SetStatus(codes.Error, result.Error.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	if t.metrics == nil {
		return
	}

	t.metrics.RowsRead.Add(ctx, int64(result.Ingest.RowsRead))
	t.metrics.RowsDropped.Add(ctx, int64(result.Clean.DroppedIncomplete),
		metric.WithAttributes(attribute.String("reason", "incomplete")))
	t.metrics.RowsDropped.Add(ctx, int64(result.Clean.DroppedOutOfWindow),
		metric.WithAttributes(attribute.String("reason", "out_of_window")))
	t.metrics.RowsKept.Add(ctx, int64(result.Clean.OutputRows))
	t.metrics.Runs.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", string(result.Status))))
}
