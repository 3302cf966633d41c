package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	apperrors "weeklyreport/internal/errors"
	"weeklyreport/internal/infrastructure"
	"weeklyreport/internal/validation"
	"weeklyreport/pkg/contracts/domain"
)

// DefaultEncodings is the candidate order used when none is configured
var DefaultEncodings = []string{"utf-8", "windows-1252", "iso-8859-1"}

// IngestStats describes one load
type IngestStats struct {
	Encoding  string `json:"encoding"`
	BytesRead int64  `json:"bytes_read"`
	RowsRead  int    `json:"rows_read"`
	ShortRows int    `json:"short_rows"`
}

// Ingestor loads a delimited file into a RawTable
type Ingestor struct {
	logger    *slog.Logger
	encodings []string
	validator *validation.FileValidator
}

// NewIngestor creates an ingestor trying encodings in order
func NewIngestor(logger *slog.Logger, encodings []string) *Ingestor {
	logger = infrastructure.WithComponent(logger, "ingestor")
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}
	return &Ingestor{
		logger:    logger,
		encodings: encodings,
		validator: validation.NewFileValidator(logger),
	}
}

// Load reads path once, decodes it with the first candidate encoding that
// accepts the whole content and parses it as comma separated text.
func (i *Ingestor) Load(ctx context.Context, path string) (*domain.RawTable, IngestStats, error) {
	var stats IngestStats

	decoders, err := ResolveDecoders(i.encodings)
	if err != nil {
		return nil, stats, apperrors.NewIngestError("invalid encoding configuration", err)
	}

	if err := i.validator.ValidateCSVFile(path); err != nil {
		return nil, stats, apperrors.NewIngestError("cannot read input file", err).
			WithContext("path", path)
	}

	data, err := readAll(path)
	if err != nil {
		return nil, stats, apperrors.NewIngestError("cannot read input file", err).
			WithContext("path", path)
	}
	stats.BytesRead = int64(len(data))

	text, used, err := decode(data, decoders)
	if err != nil {
		i.logger.ErrorContext(ctx, "No candidate encoding could decode the input",
			slog.String("path", path),
			slog.Any("encodings", i.encodings))
		return nil, stats, apperrors.NewIngestError("could not decode input file", err).
			WithContext("path", path)
	}
	stats.Encoding = used

	table, shortRows, err := parse(text)
	if err != nil {
		return nil, stats, apperrors.NewIngestError("could not parse input file", err).
			WithContext("path", path)
	}
	stats.RowsRead = table.Len()
	stats.ShortRows = shortRows

	i.logger.InfoContext(ctx, "Input loaded",
		slog.String("path", path),
		slog.String("encoding", used),
		slog.Int("rows", stats.RowsRead),
		slog.Int("columns", len(table.Columns)),
		slog.Int("short_rows", shortRows))

	return table, stats, nil
}

func readAll(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

func decode(data []byte, decoders []Decoder) ([]byte, string, error) {
	var errs []error
	for _, d := range decoders {
		out, err := d.Decode(data)
		if err == nil {
			return out, d.Name(), nil
		}
		errs = append(errs, err)
	}
	return nil, "", errors.Join(errs...)
}

// parse reads text as CSV. The first record is the header. Rows shorter than
// the header leave trailing columns absent; cells beyond the header are
// dropped. Blank lines are skipped by the reader.
func parse(text []byte) (*domain.RawTable, int, error) {
	reader := csv.NewReader(bytes.NewReader(text))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("input has no header row")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]string, len(header))
	for idx, h := range header {
		columns[idx] = strings.TrimSpace(h)
	}

	table := &domain.RawTable{Columns: columns}
	shortRows := 0

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if len(row) < len(columns) {
			shortRows++
		}

		fields := make(map[string]string, len(columns))
		for idx, col := range columns {
			if idx >= len(row) {
				break
			}
			if _, dup := fields[col]; dup {
				continue
			}
			fields[col] = row[idx]
		}

		table.Records = append(table.Records, domain.RawRecord{Line: line, Fields: fields})
	}

	return table, shortRows, nil
}
