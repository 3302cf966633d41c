package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"weeklyreport/internal/config"
	"weeklyreport/internal/exporter"
	"weeklyreport/internal/infrastructure"
	"weeklyreport/internal/sampledata"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout))
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	def := sampledata.DefaultOptions()

	flags := flag.NewFlagSet("sampledata", flag.ContinueOnError)
	flags.SetOutput(stdout)
	out := flags.String("out", config.DefaultInputFile, "output CSV file")
	rows := flags.Int("rows", def.Rows, "number of generated rows")
	days := flags.Int("days", def.SpanDays, "number of days the dates are spread over")
	recent := flags.Float64("recent", def.RecentShare, "share of rows dated within the last 7 days")
	dirty := flags.Float64("dirty", def.DirtyShare, "share of rows with currency or thousands formatting")
	seed := flags.Int64("seed", 0, "random seed (0 uses the current time)")
	problems := flags.Bool("problems", true, "append a row with blank Sales and one with an invalid date")
	level := flags.String("log-level", "info", "log level")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	logger := infrastructure.NewLogger(config.LoggingConfig{Level: *level, Format: "text"}, os.Stderr)

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	gen := sampledata.NewGenerator(logger, sampledata.Options{
		Rows:        *rows,
		SpanDays:    *days,
		RecentShare: *recent,
		DirtyShare:  *dirty,
		Seed:        *seed,
		Problems:    *problems,
	})

	n, err := gen.WriteFile(ctx, exporter.NewCSVWriter(logger), *out, time.Now())
	if err != nil {
		logger.Error("Failed to write sample data", slog.String("error", err.Error()))
		fmt.Fprintf(stdout, "Failed to write sample data: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Created sample data with %d records: %s\n", n, *out)
	return 0
}
