package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	apperrors "weeklyreport/internal/errors"
	"weeklyreport/internal/infrastructure"
	"weeklyreport/internal/operations"
)

const schema = `CREATE TABLE IF NOT EXISTS "report_runs" (
	"run_id" TEXT PRIMARY KEY,
	"started_at" TEXT NOT NULL,
	"finished_at" TEXT NOT NULL,
	"report_date" TEXT NOT NULL,
	"status" TEXT NOT NULL,
	"input_path" TEXT NOT NULL,
	"output_path" TEXT NOT NULL,
	"encoding" TEXT,
	"rows_read" INTEGER NOT NULL,
	"dropped_incomplete" INTEGER NOT NULL,
	"dropped_out_of_window" INTEGER NOT NULL,
	"rows_kept" INTEGER NOT NULL,
	"failed_step" TEXT,
	"error" TEXT
)`

const indexSchema = `CREATE INDEX IF NOT EXISTS idx_report_runs_started ON report_runs(started_at)`

// RunRecord is one row of the run ledger
type RunRecord struct {
	RunID              string    `json:"run_id"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
	ReportDate         time.Time `json:"report_date"`
	Status             string    `json:"status"`
	InputPath          string    `json:"input_path"`
	OutputPath         string    `json:"output_path"`
	Encoding           string    `json:"encoding"`
	RowsRead           int       `json:"rows_read"`
	DroppedIncomplete  int       `json:"dropped_incomplete"`
	DroppedOutOfWindow int       `json:"dropped_out_of_window"`
	RowsKept           int       `json:"rows_kept"`
	FailedStep         string    `json:"failed_step,omitempty"`
	Error              string    `json:"error,omitempty"`
}

// FromResult converts a pipeline result into a ledger row
func FromResult(result *operations.RunResult) RunRecord {
	rec := RunRecord{
		RunID:              result.RunID,
		StartedAt:          result.StartTime,
		FinishedAt:         result.EndTime,
		ReportDate:         result.Now,
		Status:             string(result.Status),
		InputPath:          result.InputPath,
		OutputPath:         result.OutputPath,
		Encoding:           result.Ingest.Encoding,
		RowsRead:           result.Ingest.RowsRead,
		DroppedIncomplete:  result.Clean.DroppedIncomplete,
		DroppedOutOfWindow: result.Clean.DroppedOutOfWindow,
		RowsKept:           result.Clean.OutputRows,
	}
	if result.Error != nil {
		rec.FailedStep = operations.FailedStep(result.Error)
		rec.Error = result.Error.Error()
	}
	return rec
}

// Store is the SQLite run ledger
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the ledger at path
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, apperrors.NewStorageError("audit database path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create audit directory", err).
			WithContext("path", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open audit database", err).
			WithContext("path", path)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{schema, indexSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, apperrors.NewStorageError("failed to initialize audit schema", err).
				WithContext("path", path)
		}
	}

	return &Store{
		db:     db,
		logger: infrastructure.WithComponent(logger, "audit"),
	}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts rec, replacing an earlier row with the same run id
func (s *Store) Record(ctx context.Context, rec RunRecord) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO "report_runs" (
		"run_id", "started_at", "finished_at", "report_date", "status",
		"input_path", "output_path", "encoding", "rows_read",
		"dropped_incomplete", "dropped_out_of_window", "rows_kept",
		"failed_step", "error"
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		formatTime(rec.StartedAt),
		formatTime(rec.FinishedAt),
		formatTime(rec.ReportDate),
		rec.Status,
		rec.InputPath,
		rec.OutputPath,
		rec.Encoding,
		rec.RowsRead,
		rec.DroppedIncomplete,
		rec.DroppedOutOfWindow,
		rec.RowsKept,
		rec.FailedStep,
		rec.Error,
	)
	if err != nil {
		return apperrors.NewStorageError("failed to record run", err).WithContext("run_id", rec.RunID)
	}

	s.logger.DebugContext(ctx, "Run recorded",
		slog.String("status", rec.Status),
		slog.Int("rows_kept", rec.RowsKept))
	return nil
}

// Recent returns up to limit runs, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `SELECT
		"run_id", "started_at", "finished_at", "report_date", "status",
		"input_path", "output_path", "encoding", "rows_read",
		"dropped_incomplete", "dropped_out_of_window", "rows_kept",
		"failed_step", "error"
	FROM "report_runs" ORDER BY "started_at" DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query runs", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started, finished, reportDate string
		var encoding, failedStep, errText sql.NullString
		if err := rows.Scan(
			&rec.RunID, &started, &finished, &reportDate, &rec.Status,
			&rec.InputPath, &rec.OutputPath, &encoding, &rec.RowsRead,
			&rec.DroppedIncomplete, &rec.DroppedOutOfWindow, &rec.RowsKept,
			&failedStep, &errText,
		); err != nil {
			return nil, apperrors.NewStorageError("failed to scan run", err)
		}

		if rec.StartedAt, err = parseTime(started); err != nil {
			return nil, apperrors.NewStorageError("invalid started_at", err).WithContext("run_id", rec.RunID)
		}
		if rec.FinishedAt, err = parseTime(finished); err != nil {
			return nil, apperrors.NewStorageError("invalid finished_at", err).WithContext("run_id", rec.RunID)
		}
		if rec.ReportDate, err = parseTime(reportDate); err != nil {
			return nil, apperrors.NewStorageError("invalid report_date", err).WithContext("run_id", rec.RunID)
		}
		rec.Encoding = encoding.String
		rec.FailedStep = failedStep.String
		rec.Error = errText.String

		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to read runs", err)
	}
	return out, nil
}

// storedTimeLayout has a fixed width so that text ordering matches time
// ordering. Times are stored in UTC.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(storedTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", s, err)
	}
	return t, nil
}
