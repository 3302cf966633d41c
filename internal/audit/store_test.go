package audit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "weeklyreport/internal/errors"
	"weeklyreport/internal/operations"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "audit", "runs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, store.Record(ctx, RunRecord{
			RunID:      id,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + time.Second),
			ReportDate: base,
			Status:     "completed",
			InputPath:  "raw_data.csv",
			OutputPath: "weekly_report_20240115.xlsx",
			Encoding:   "utf-8",
			RowsRead:   10 + i,
			RowsKept:   8,
		}))
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "run-3", recent[0].RunID)
	assert.Equal(t, "run-2", recent[1].RunID)
	assert.Equal(t, 12, recent[0].RowsRead)
	assert.Equal(t, "utf-8", recent[0].Encoding)
	assert.True(t, base.Add(2*time.Minute).Equal(recent[0].StartedAt))
	assert.True(t, base.Equal(recent[0].ReportDate))
}

func TestStoreRecordReplacesSameRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	rec := RunRecord{RunID: "run", StartedAt: now, FinishedAt: now, ReportDate: now, Status: "running"}
	require.NoError(t, store.Record(ctx, rec))
	rec.Status = "failed"
	rec.FailedStep = "clean"
	rec.Error = "critical columns missing"
	require.NoError(t, store.Record(ctx, rec))

	recent, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "failed", recent[0].Status)
	assert.Equal(t, "clean", recent[0].FailedStep)
	assert.Equal(t, "critical columns missing", recent[0].Error)
}

func TestStoreReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()
	now := time.Now()

	store, err := Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, RunRecord{RunID: "keep", StartedAt: now, FinishedAt: now, ReportDate: now, Status: "completed"}))
	require.NoError(t, store.Close())

	store, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer store.Close()

	recent, err := store.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "keep", recent[0].RunID)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(context.Background(), "", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	_, err = Open(context.Background(), filepath.Join(blocker, "runs.db"), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestFromResult(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	result := &operations.RunResult{
		RunID:      "abc",
		Status:     operations.RunStatusFailed,
		Now:        now,
		StartTime:  now,
		EndTime:    now.Add(time.Second),
		InputPath:  "in.csv",
		OutputPath: "out.xlsx",
		Error:      operations.NewExecutionError(operations.StepIDRender, errors.New("disk full")),
	}
	result.Ingest.RowsRead = 5
	result.Ingest.Encoding = "windows-1252"
	result.Clean.DroppedIncomplete = 1
	result.Clean.DroppedOutOfWindow = 2
	result.Clean.OutputRows = 2

	rec := FromResult(result)
	assert.Equal(t, "abc", rec.RunID)
	assert.Equal(t, "failed", rec.Status)
	assert.Equal(t, "windows-1252", rec.Encoding)
	assert.Equal(t, 5, rec.RowsRead)
	assert.Equal(t, 1, rec.DroppedIncomplete)
	assert.Equal(t, 2, rec.DroppedOutOfWindow)
	assert.Equal(t, 2, rec.RowsKept)
	assert.Equal(t, operations.StepIDRender, rec.FailedStep)
	assert.Contains(t, rec.Error, "disk full")
}
