// Package operations runs a weekly report as a sequence of steps.
//
// Core Components:
//
// Manager: executes the registered steps in order against a shared RunState.
// The first failing step aborts the run and every later step is marked
// skipped. Each step runs inside its own OpenTelemetry span.
//
// Step: a single unit of work. The standard steps are ingest, clean,
// summarize, render and the optional export_csv.
//
// RunState: carries step outputs and the run timestamp. The timestamp is read
// once when the run starts, so the recency window and the report date agree.
//
// Example usage:
//
//	manager, err := operations.NewReportManager(cfg, logger, telemetry)
//	if err != nil {
//	    return err
//	}
//	result, err := manager.Run(ctx, operations.RequestFromConfig(cfg))
//	fmt.Println(result.Status, result.RowsLost())
package operations
