package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "weeklyreport/internal/errors"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestIngestorLoadUTF8(t *testing.T) {
	path := writeFile(t, "raw_data.csv", []byte(
		"\xEF\xBB\xBF Date , Product,Revenue\n"+
			"2024-01-15,A,100\n"+
			"\n"+
			"2024-01-14,B,\"1,200.50\"\n"))

	table, stats, err := NewIngestor(nil, nil).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Product", "Revenue"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "utf-8", stats.Encoding)
	assert.Equal(t, 2, stats.RowsRead)
	assert.Equal(t, int64(len("\xEF\xBB\xBF Date , Product,Revenue\n2024-01-15,A,100\n\n2024-01-14,B,\"1,200.50\"\n")), stats.BytesRead)

	first := table.Records[0]
	assert.Equal(t, 2, first.Line)
	v, ok := first.Get("Product")
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	second := table.Records[1]
	assert.Equal(t, 4, second.Line)
	v, _ = second.Get("Revenue")
	assert.Equal(t, "1,200.50", v)
}

func TestIngestorLoadFallsBackWithoutRowLoss(t *testing.T) {
	content := []byte("Date,Product,Revenue\n" +
		"2024-01-15,Caf\xe9,100\n" +
		"2024-01-15,Cr\xe8me,200\n" +
		"2024-01-14,Plain,300\n")
	path := writeFile(t, "latin.csv", content)

	table, stats, err := NewIngestor(nil, []string{"utf-8", "windows-1252", "iso-8859-1"}).
		Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "windows-1252", stats.Encoding)
	require.Equal(t, 3, table.Len())
	v, _ := table.Records[0].Get("Product")
	assert.Equal(t, "Café", v)
	v, _ = table.Records[1].Get("Product")
	assert.Equal(t, "Crème", v)
}

func TestIngestorLoadShortRows(t *testing.T) {
	path := writeFile(t, "short.csv", []byte("Date,Product,Revenue\n2024-01-15,A\n2024-01-15,B,10,extra\n"))

	table, stats, err := NewIngestor(nil, nil).Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, 1, stats.ShortRows)

	_, ok := table.Records[0].Get("Revenue")
	assert.False(t, ok, "trailing column of a short row is absent")

	v, ok := table.Records[1].Get("Revenue")
	assert.True(t, ok)
	assert.Equal(t, "10", v)
	assert.Len(t, table.Records[1].Fields, 3)
}

func TestIngestorLoadHeaderOnly(t *testing.T) {
	path := writeFile(t, "empty.csv", []byte("Date,Product,Revenue\n"))

	table, stats, err := NewIngestor(nil, nil).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, stats.RowsRead)
	assert.True(t, table.HasColumn("Revenue"))
}

func TestIngestorLoadErrors(t *testing.T) {
	tests := []struct {
		name      string
		path      func(t *testing.T) string
		encodings []string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") },
		},
		{
			name: "directory",
			path: func(t *testing.T) string { return t.TempDir() },
		},
		{
			name: "empty file",
			path: func(t *testing.T) string { return writeFile(t, "blank.csv", nil) },
		},
		{
			name:      "undecodable",
			path:      func(t *testing.T) string { return writeFile(t, "bin.csv", []byte("Date\n\xff\xfe\n")) },
			encodings: []string{"utf-8"},
		},
		{
			name:      "unknown encoding",
			path:      func(t *testing.T) string { return writeFile(t, "ok.csv", []byte("Date\n")) },
			encodings: []string{"utf-8", "klingon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, _, err := NewIngestor(nil, tt.encodings).Load(context.Background(), tt.path(t))
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIngest))
		})
	}
}

func TestIngestorLoadMissingFileIsNotFound(t *testing.T) {
	_, _, err := NewIngestor(nil, nil).Load(context.Background(), filepath.Join(t.TempDir(), "raw_data.csv"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeIngest, apperrors.TypeOf(err))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.False(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}
