package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "weeklyreport/internal/errors"
	"weeklyreport/internal/infrastructure"
)

// RunRequest names the files of one run
type RunRequest struct {
	InputPath  string
	OutputPath string
	CSVPath    string
}

// Manager runs registered steps in order and stops at the first failure
type Manager struct {
	logger   *slog.Logger
	registry *Registry
	tracer   *RunTracer
	clock    func() time.Time
}

// NewManager creates a manager. A nil tracer records nothing.
func NewManager(logger *slog.Logger, registry *Registry, tracer *RunTracer) *Manager {
	if tracer == nil {
		tracer = NewRunTracer(nil)
	}
	return &Manager{
		logger:   infrastructure.WithComponent(logger, "pipeline"),
		registry: registry,
		tracer:   tracer,
		clock:    time.Now,
	}
}

// SetClock replaces the source of the run timestamp
func (m *Manager) SetClock(clock func() time.Time) {
	m.clock = clock
}

// Run executes every step against a fresh RunState. The run timestamp is
// read once from the clock before the first step. The returned result is
// never nil; err is the error of the failed step.
func (m *Manager) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	ctx, runID := infrastructure.EnsureRunID(ctx)
	start := time.Now()

	state := NewRunState(runID, m.clock())
	state.InputPath = req.InputPath
	state.OutputPath = req.OutputPath
	state.CSVPath = req.CSVPath

	steps := m.registry.Steps()
	for _, step := range steps {
		state.SetStep(NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceRun(ctx, state)

	m.logger.InfoContext(ctx, "Run started",
		slog.String("input", req.InputPath),
		slog.String("output", req.OutputPath),
		slog.Time("now", state.Now),
		slog.Int("steps", len(steps)))

	err := m.executeSequential(ctx, state, steps)

	result := &RunResult{
		RunID:      runID,
		Status:     RunStatusCompleted,
		Now:        state.Now,
		StartTime:  start,
		EndTime:    time.Now(),
		InputPath:  state.InputPath,
		OutputPath: state.OutputPath,
		CSVPath:    state.CSVPath,
		Ingest:     state.IngestStats,
		Clean:      state.CleanStats,
		Summary:    state.Summary,
		Steps:      state.StepStates(),
		Error:      err,
	}
	if err != nil {
		result.Status = RunStatusFailed
	}

	m.tracer.RecordRun(ctx, span, result)

	if err != nil {
		infrastructure.WithError(m.logger, err).ErrorContext(ctx, "Run failed",
			slog.String("step", FailedStep(err)),
			slog.String("error_type", string(apperrors.TypeOf(err))),
			slog.Duration("duration", result.Duration()))
	} else {
		m.logger.InfoContext(ctx, "Run completed",
			slog.Int("rows_read", result.Ingest.RowsRead),
			slog.Int("rows_kept", result.Clean.OutputRows),
			slog.Int("rows_lost", result.RowsLost()),
			slog.Duration("duration", result.Duration()))
	}

	return result, err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *RunState, steps []Step) error {
	for i, step := range steps {
		if err := m.executeStep(ctx, state, step, i+1, len(steps)); err != nil {
			m.skipRemaining(ctx, state, steps[i+1:], step.ID())
			return err
		}
	}
	return nil
}

func (m *Manager) executeStep(ctx context.Context, state *RunState, step Step, n, total int) error {
	stepState := state.GetStep(step.ID())

	stepCtx, span := m.tracer.TraceStep(ctx, state.ID, step.ID())
	logger := m.logger.With(slog.String("step", step.ID()))

	logger.InfoContext(stepCtx, "Executing step",
		slog.Int("step_number", n),
		slog.Int("total_steps", total))

	stepState.Start()
	err := step.Execute(stepCtx, state)
	if err != nil {
		if FailedStep(err) == "" {
			err = NewExecutionError(step.ID(), err)
		}
		stepState.Fail(err)
	} else {
		stepState.Complete()
	}
	m.tracer.RecordStep(stepCtx, span, step.ID(), stepState.Duration(), err)

	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(stepCtx, "Step failed",
			slog.Duration("duration", stepState.Duration()))
		return err
	}

	logger.InfoContext(stepCtx, "Step completed",
		slog.Duration("duration", stepState.Duration()))
	return nil
}

func (m *Manager) skipRemaining(ctx context.Context, state *RunState, steps []Step, failedID string) {
	for _, step := range steps {
		state.GetStep(step.ID()).Skip(fmt.Sprintf("Previous step %s failed", failedID))
		m.logger.InfoContext(ctx, "Step skipped",
			slog.String("step", step.ID()),
			slog.String("failed_step", failedID))
	}
}
