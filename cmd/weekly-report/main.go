package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"weeklyreport/internal/audit"
	"weeklyreport/internal/config"
	"weeklyreport/internal/exporter"
	"weeklyreport/internal/infrastructure"
	"weeklyreport/internal/operations"
	"weeklyreport/internal/sampledata"
	"weeklyreport/pkg/contracts"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one report generation and returns the process exit code.
// Trace output goes to stderr, apart from the JSON logs and the result lines.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("weekly-report", flag.ContinueOnError)
	flags.SetOutput(stdout)
	configPath := flags.String("config", "", "path to a YAML or JSON config file (defaults to config.yaml if present)")
	inFile := flags.String("in", "", "input CSV file, overrides input_file")
	outFile := flags.String("out", "", "output workbook, overrides output_file")
	sampleIfMissing := flags.Bool("sample-if-missing", false, "write demonstration data when the input file does not exist")
	history := flags.Int("history", 0, "print the last N recorded runs from the audit database and exit")
	showVersion := flags.Bool("version", false, "print version information and exit")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		fmt.Fprintf(stdout, "Configuration error: %v\n", err)
		return 1
	}
	if *inFile != "" {
		cfg.InputFile = *inFile
	}
	if *outFile != "" {
		cfg.OutputFile = *outFile
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if *history > 0 {
		return printHistory(ctx, cfg, logger, *history, stdout)
	}

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger, stderr)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		fmt.Fprintf(stdout, "Telemetry error: %v\n", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Starting weekly report generation",
		slog.String("version", contracts.Version),
		slog.String("input_file", cfg.InputFile),
		slog.String("output_file", cfg.OutputFile),
		slog.Int("window_days", cfg.WindowDays))

	if *sampleIfMissing {
		if err := ensureSampleData(ctx, cfg.InputFile, logger); err != nil {
			logger.Error("Failed to create sample data", slog.String("error", err.Error()))
			fmt.Fprintf(stdout, "Sample data error: %v\n", err)
			return 1
		}
	}

	manager, err := operations.NewReportManager(cfg, logger, tel)
	if err != nil {
		logger.Error("Failed to build pipeline", slog.String("error", err.Error()))
		return 1
	}

	result, runErr := manager.Run(ctx, operations.RequestFromConfig(cfg))

	if cfg.Audit.Path != "" {
		recordRun(ctx, cfg.Audit.Path, logger, result)
	}

	if runErr != nil {
		fmt.Fprintf(stdout, "Report generation failed at step %q: %v\n", operations.FailedStep(runErr), runErr)
		fmt.Fprintln(stdout, "Check logs for details.")
		return 1
	}

	fmt.Fprintln(stdout, "Weekly report generated successfully")
	fmt.Fprintf(stdout, "Report saved as: %s\n", result.OutputPath)
	if result.CSVPath != "" {
		fmt.Fprintf(stdout, "Cleaned data saved as: %s\n", result.CSVPath)
	}
	fmt.Fprintf(stdout, "Rows read: %d, kept: %d, lost: %d\n",
		result.Ingest.RowsRead, result.Clean.OutputRows, result.RowsLost())
	return 0
}

// ensureSampleData writes demonstration data to path unless it already exists
func ensureSampleData(ctx context.Context, path string, logger *slog.Logger) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	logger.Info("Input file missing, generating sample data", slog.String("path", path))
	opts := sampledata.DefaultOptions()
	opts.Seed = time.Now().UnixNano()
	gen := sampledata.NewGenerator(logger, opts)
	_, err := gen.WriteFile(ctx, exporter.NewCSVWriter(logger), path, time.Now())
	return err
}

// recordRun appends result to the audit ledger. Ledger failures are logged
// and never change the exit code.
func recordRun(ctx context.Context, path string, logger *slog.Logger, result *operations.RunResult) {
	store, err := audit.Open(ctx, path, logger)
	if err != nil {
		logger.Warn("Audit ledger unavailable", slog.String("error", err.Error()))
		return
	}
	defer store.Close()

	if err := store.Record(ctx, audit.FromResult(result)); err != nil {
		logger.Warn("Failed to record run", slog.String("error", err.Error()))
	}
}

func printHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger, limit int, stdout io.Writer) int {
	if cfg.Audit.Path == "" {
		fmt.Fprintln(stdout, "Audit database is not configured (set audit.path)")
		return 1
	}

	store, err := audit.Open(ctx, cfg.Audit.Path, logger)
	if err != nil {
		fmt.Fprintf(stdout, "Audit error: %v\n", err)
		return 1
	}
	defer store.Close()

	runs, err := store.Recent(ctx, limit)
	if err != nil {
		fmt.Fprintf(stdout, "Audit error: %v\n", err)
		return 1
	}

	for _, r := range runs {
		line := fmt.Sprintf("%s  %-9s  read=%d kept=%d incomplete=%d out_of_window=%d  %s",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status,
			r.RowsRead, r.RowsKept, r.DroppedIncomplete, r.DroppedOutOfWindow, r.OutputPath)
		if r.FailedStep != "" {
			line += fmt.Sprintf("  failed at %s", r.FailedStep)
		}
		fmt.Fprintln(stdout, line)
	}
	return 0
}
