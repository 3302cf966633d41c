// Package sampledata writes demonstration sales CSVs for the report
// generator. The output deliberately carries the quality issues the cleaner
// handles: currency-formatted revenue, thousands separators, a blank
// critical cell and an unparseable date.
package sampledata

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	apperrors "weeklyreport/internal/errors"
	"weeklyreport/internal/exporter"
	"weeklyreport/internal/infrastructure"
)

// Columns is the header of every generated file
var Columns = []string{"Date", "Product", "Sales", "Units", "Revenue", "Region"}

var (
	defaultProducts = []string{"Product A", "Product B", "Product C", "Product D", "Product E"}
	defaultRegions  = []string{"North", "South", "East", "West", "Central"}
)

// Options controls generation
type Options struct {
	Rows        int
	SpanDays    int
	RecentShare float64
	DirtyShare  float64
	Seed        int64
	Products    []string
	Regions     []string
	// Problems appends one row with a blank Sales cell and one with an
	// invalid date.
	Problems bool
}

// DefaultOptions returns the demonstration settings
func DefaultOptions() Options {
	return Options{
		Rows:        200,
		SpanDays:    30,
		RecentShare: 0.4,
		DirtyShare:  0.05,
		Seed:        1,
		Products:    defaultProducts,
		Regions:     defaultRegions,
		Problems:    true,
	}
}

// Generator produces sample rows
type Generator struct {
	opts   Options
	logger *slog.Logger
	rng    *rand.Rand
}

// NewGenerator creates a generator. Zero fields of opts fall back to
// DefaultOptions.
func NewGenerator(logger *slog.Logger, opts Options) *Generator {
	def := DefaultOptions()
	if opts.Rows <= 0 {
		opts.Rows = def.Rows
	}
	if opts.SpanDays <= 0 {
		opts.SpanDays = def.SpanDays
	}
	if len(opts.Products) == 0 {
		opts.Products = def.Products
	}
	if len(opts.Regions) == 0 {
		opts.Regions = def.Regions
	}
	return &Generator{
		opts:   opts,
		logger: infrastructure.WithComponent(logger, "sampledata"),
		rng:    rand.New(rand.NewSource(opts.Seed)),
	}
}

// Records returns the generated rows, header excluded. Dates are relative
// to now.
func (g *Generator) Records(now time.Time) [][]string {
	out := make([][]string, 0, g.opts.Rows+2)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for i := 0; i < g.opts.Rows; i++ {
		var date time.Time
		if g.rng.Float64() < g.opts.RecentShare {
			date = today.AddDate(0, 0, -g.rng.Intn(7))
		} else {
			date = today.AddDate(0, 0, -g.rng.Intn(g.opts.SpanDays+1))
		}

		units := 1 + g.rng.Intn(100)
		price := decimal.NewFromFloat(10 + g.rng.Float64()*490)
		revenue := price.Mul(decimal.NewFromInt(int64(units))).Round(2)
		sales := 1 + g.rng.Intn(20)

		unitsCell := strconv.Itoa(units)
		revenueCell := revenue.StringFixed(2)
		if g.rng.Float64() < g.opts.DirtyShare {
			if g.rng.Intn(2) == 0 {
				revenueCell = "$" + groupThousands(revenue.StringFixed(2))
			} else {
				unitsCell = groupThousands(strconv.Itoa(units * 100))
			}
		}

		out = append(out, []string{
			date.Format("2006-01-02"),
			g.opts.Products[g.rng.Intn(len(g.opts.Products))],
			strconv.Itoa(sales),
			unitsCell,
			revenueCell,
			g.opts.Regions[g.rng.Intn(len(g.opts.Regions))],
		})
	}

	if g.opts.Problems {
		out = append(out,
			[]string{today.Format("2006-01-02"), g.opts.Products[0], "", "10", "12000", g.opts.Regions[0]},
			[]string{"invalid-date", g.opts.Products[len(g.opts.Products)-1], "5", "15", "13500", g.opts.Regions[len(g.opts.Regions)-1]},
		)
	}
	return out
}

// WriteFile writes a sample CSV to path and returns the number of data rows
func (g *Generator) WriteFile(ctx context.Context, writer *exporter.CSVWriter, path string, now time.Time) (int, error) {
	records := g.Records(now)

	stream, err := writer.CreateStreamWriter(path, Columns, false)
	if err != nil {
		return 0, apperrors.NewStorageError("failed to create sample file", err).WithContext("path", path)
	}
	for _, rec := range records {
		if err := stream.WriteRecord(rec); err != nil {
			stream.Close()
			return 0, apperrors.NewStorageError("failed to write sample row", err).WithContext("path", path)
		}
	}
	if err := stream.Close(); err != nil {
		return 0, apperrors.NewStorageError("failed to close sample file", err).WithContext("path", path)
	}

	g.logger.InfoContext(ctx, "Sample data created",
		slog.String("path", path),
		slog.Int("rows", len(records)))
	return len(records), nil
}

// groupThousands inserts commas into the integer part of a plain decimal
// string: "1234.50" becomes "1,234.50".
func groupThousands(s string) string {
	intPart, frac := s, ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart, frac = s[:i], s[i:]
			break
		}
	}
	if len(intPart) <= 3 {
		return s
	}

	head := len(intPart) % 3
	out := intPart[:head]
	for i := head; i < len(intPart); i += 3 {
		if out != "" {
			out += ","
		}
		out += intPart[i : i+3]
	}
	return out + frac
}
