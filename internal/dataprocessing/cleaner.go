package dataprocessing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "weeklyreport/internal/errors"
	"weeklyreport/internal/infrastructure"
	"weeklyreport/pkg/contracts/domain"
)

// CleanerConfig names the critical columns and the recency window
type CleanerConfig struct {
	DateColumn     string
	NumericColumns []string
	Window         time.Duration
}

// CleanStats counts what each cleaning step removed
type CleanStats struct {
	InputRows          int            `json:"input_rows"`
	InvalidDates       int            `json:"invalid_dates"`
	InvalidNumbers     map[string]int `json:"invalid_numbers"`
	DroppedIncomplete  int            `json:"dropped_incomplete"`
	DroppedOutOfWindow int            `json:"dropped_out_of_window"`
	OutputRows         int            `json:"output_rows"`
}

// RowsDropped returns the total number of rows removed
func (s CleanStats) RowsDropped() int {
	return s.DroppedIncomplete + s.DroppedOutOfWindow
}

// Cleaner coerces critical columns and filters rows
type Cleaner struct {
	logger *slog.Logger
	config CleanerConfig
}

// NewCleaner creates a cleaner. A zero window defaults to seven days.
func NewCleaner(logger *slog.Logger, config CleanerConfig) *Cleaner {
	if config.Window <= 0 {
		config.Window = 7 * 24 * time.Hour
	}
	return &Cleaner{
		logger: infrastructure.WithComponent(logger, "cleaner"),
		config: config,
	}
}

// Clean coerces the date and numeric columns of raw, drops incomplete rows
// and keeps only rows dated within [now-window, now]. It fails only when a
// critical column is absent from the header; bad rows are counted, not
// reported as errors.
func (c *Cleaner) Clean(ctx context.Context, raw *domain.RawTable, now time.Time) (*domain.CleanedTable, CleanStats, error) {
	stats := CleanStats{
		InputRows:      raw.Len(),
		InvalidNumbers: make(map[string]int, len(c.config.NumericColumns)),
	}

	if missing := c.missingCritical(raw); len(missing) > 0 {
		c.logger.ErrorContext(ctx, "Critical columns missing from input",
			slog.Any("columns", missing))
		return nil, stats, apperrors.NewCleaningError(
			"critical columns missing: "+strings.Join(missing, ", "), nil).
			WithContext("columns", missing)
	}

	table := &domain.CleanedTable{
		Columns:        append([]string(nil), raw.Columns...),
		DateColumn:     c.config.DateColumn,
		NumericColumns: append([]string(nil), c.config.NumericColumns...),
		Records:        make([]domain.CleanedRecord, 0, len(raw.Records)),
	}

	coerced := c.coerce(raw, now.Location(), &stats)
	c.logger.InfoContext(ctx, "Columns coerced",
		slog.Int("invalid_dates", stats.InvalidDates),
		slog.Any("invalid_numbers", stats.InvalidNumbers))

	complete := make([]domain.CleanedRecord, 0, len(coerced))
	for _, rec := range coerced {
		if c.isComplete(rec) {
			complete = append(complete, rec)
		}
	}
	stats.DroppedIncomplete = len(coerced) - len(complete)
	c.logger.InfoContext(ctx, "Removed rows with missing critical values",
		slog.Int("dropped", stats.DroppedIncomplete),
		slog.Int("remaining", len(complete)))

	cutoff := now.Add(-c.config.Window)
	for _, rec := range complete {
		d := rec.Get(c.config.DateColumn).Date
		if d.Before(cutoff) || d.After(now) {
			continue
		}
		table.Records = append(table.Records, rec)
	}
	stats.DroppedOutOfWindow = len(complete) - len(table.Records)
	stats.OutputRows = len(table.Records)
	c.logger.InfoContext(ctx, "Filtered to recency window",
		slog.Time("from", cutoff),
		slog.Time("to", now),
		slog.Int("dropped", stats.DroppedOutOfWindow),
		slog.Int("remaining", stats.OutputRows))

	if stats.OutputRows == 0 {
		c.logger.WarnContext(ctx, "No rows remain after cleaning",
			slog.Int("input_rows", stats.InputRows))
	}

	return table, stats, nil
}

func (c *Cleaner) missingCritical(raw *domain.RawTable) []string {
	var missing []string
	if !raw.HasColumn(c.config.DateColumn) {
		missing = append(missing, c.config.DateColumn)
	}
	for _, col := range c.config.NumericColumns {
		if !raw.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

func (c *Cleaner) coerce(raw *domain.RawTable, loc *time.Location, stats *CleanStats) []domain.CleanedRecord {
	numeric := make(map[string]bool, len(c.config.NumericColumns))
	for _, col := range c.config.NumericColumns {
		numeric[col] = true
	}

	out := make([]domain.CleanedRecord, 0, raw.Len())
	for _, rec := range raw.Records {
		values := make(map[string]domain.Value, len(rec.Fields))
		for col, cell := range rec.Fields {
			switch {
			case col == c.config.DateColumn:
				if t, ok := CoerceDate(cell, loc); ok {
					values[col] = domain.Date(cell, t)
				} else {
					if strings.TrimSpace(cell) != "" {
						stats.InvalidDates++
					}
					values[col] = domain.Missing(cell)
				}
			case numeric[col]:
				if d, ok := CoerceNumber(cell); ok {
					values[col] = domain.Number(cell, d)
				} else {
					if strings.TrimSpace(cell) != "" {
						stats.InvalidNumbers[col]++
					}
					values[col] = domain.Missing(cell)
				}
			case strings.TrimSpace(cell) == "":
				values[col] = domain.Missing(cell)
			default:
				values[col] = domain.Text(cell)
			}
		}
		out = append(out, domain.CleanedRecord{Line: rec.Line, Values: values})
	}
	return out
}

// isComplete requires a date and every numeric value; a single missing
// critical cell disqualifies the row.
func (c *Cleaner) isComplete(rec domain.CleanedRecord) bool {
	if rec.Get(c.config.DateColumn).Kind != domain.KindDate {
		return false
	}
	for _, col := range c.config.NumericColumns {
		if rec.Get(col).Kind != domain.KindNumber {
			return false
		}
	}
	return true
}
