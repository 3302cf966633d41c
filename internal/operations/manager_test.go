package operations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weeklyreport/internal/infrastructure"
)

// fakeStep records the run timestamp it saw and optionally fails
type fakeStep struct {
	BaseStage
	err    error
	called bool
	sawNow time.Time
}

func (s *fakeStep) Execute(ctx context.Context, state *RunState) error {
	s.called = true
	s.sawNow = state.Now
	return s.err
}

func newFake(id string, err error) *fakeStep {
	return &fakeStep{BaseStage: NewBaseStage(id, id), err: err}
}

func newTestManager(t *testing.T, steps ...Step) *Manager {
	t.Helper()
	r := NewRegistry()
	for _, s := range steps {
		require.NoError(t, r.Register(s))
	}
	return NewManager(nil, r, nil)
}

func TestManagerRunsStepsInOrder(t *testing.T) {
	a, b, c := newFake("a", nil), newFake("b", nil), newFake("c", nil)
	m := newTestManager(t, a, b, c)

	fixed := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	calls := 0
	m.SetClock(func() time.Time {
		calls++
		return fixed.Add(time.Duration(calls-1) * time.Hour)
	})

	result, err := m.Run(context.Background(), RunRequest{InputPath: "in.csv", OutputPath: "out.xlsx"})
	require.NoError(t, err)

	assert.True(t, result.Succeeded())
	assert.Equal(t, 1, calls, "clock is read once per run")
	for _, s := range []*fakeStep{a, b, c} {
		assert.True(t, s.called)
		assert.True(t, fixed.Equal(s.sawNow))
	}
	assert.True(t, fixed.Equal(result.Now))
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "in.csv", result.InputPath)

	require.Len(t, result.Steps, 3)
	for _, s := range result.Steps {
		assert.Equal(t, StepStatusCompleted, s.GetStatus())
	}
}

func TestManagerAbortsOnFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	a, b, c := newFake("a", nil), newFake("b", boom), newFake("c", nil)
	m := newTestManager(t, a, b, c)

	result, err := m.Run(context.Background(), RunRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "b", FailedStep(err))

	require.NotNil(t, result)
	assert.Equal(t, RunStatusFailed, result.Status)
	assert.Same(t, err, result.Error)
	assert.False(t, c.called)

	assert.Equal(t, StepStatusCompleted, result.Steps[0].GetStatus())
	assert.Equal(t, StepStatusFailed, result.Steps[1].GetStatus())
	assert.Equal(t, StepStatusSkipped, result.Steps[2].GetStatus())
	assert.Contains(t, result.Steps[2].Message, "b")
}

func TestManagerKeepsRunIDFromContext(t *testing.T) {
	m := newTestManager(t, newFake("a", nil))
	ctx := infrastructure.WithRunID(context.Background(), "fixed-run")

	result, err := m.Run(ctx, RunRequest{})
	require.NoError(t, err)
	assert.Equal(t, "fixed-run", result.RunID)
}

func TestRunResultRowsLost(t *testing.T) {
	r := &RunResult{}
	r.Ingest.RowsRead = 10
	r.Clean.OutputRows = 7
	assert.Equal(t, 3, r.RowsLost())
}

func TestStepsRequireInputs(t *testing.T) {
	state := NewRunState("run", time.Now())
	ctx := context.Background()

	tests := []struct {
		name string
		step Step
	}{
		{"clean", NewCleanStep(nil)},
		{"summarize", NewSummarizeStep(nil)},
		{"render", NewRenderStep(nil)},
		{"export", NewExportCSVStep(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.step.Execute(ctx, state))
		})
	}
}

func TestExportCSVStepRequiresPath(t *testing.T) {
	state := NewRunState("run", time.Now())

	err := NewExportCSVStep(nil).Execute(context.Background(), state)
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrorTypeValidation, opErr.Type)
	assert.Equal(t, StepIDExportCSV, FailedStep(err))
}
