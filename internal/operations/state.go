package operations

import (
	"time"

	"weeklyreport/internal/dataprocessing"
	"weeklyreport/internal/ingest"
	"weeklyreport/pkg/contracts/domain"
)

// RunState carries step outputs through one run. Now is captured once when
// the run starts and used by every step that needs a reference time.
type RunState struct {
	ID  string
	Now time.Time

	InputPath  string
	OutputPath string
	CSVPath    string

	Raw         *domain.RawTable
	IngestStats ingest.IngestStats
	Cleaned     *domain.CleanedTable
	CleanStats  dataprocessing.CleanStats
	Summary     *domain.SummaryReport

	steps map[string]*StepState
	order []string
}

// NewRunState creates the state of a run starting at now
func NewRunState(id string, now time.Time) *RunState {
	return &RunState{
		ID:    id,
		Now:   now,
		steps: make(map[string]*StepState),
	}
}

// SetStep registers the state of a step
func (s *RunState) SetStep(state *StepState) {
	if _, ok := s.steps[state.ID]; !ok {
		s.order = append(s.order, state.ID)
	}
	s.steps[state.ID] = state
}

// GetStep returns the state of a step
func (s *RunState) GetStep(id string) *StepState {
	return s.steps[id]
}

// StepStates returns the step states in execution order
func (s *RunState) StepStates() []*StepState {
	out := make([]*StepState, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.steps[id])
	}
	return out
}

// RunResult is the outcome of a run returned to the caller
type RunResult struct {
	RunID      string                    `json:"run_id"`
	Status     RunStatus                 `json:"status"`
	Now        time.Time                 `json:"now"`
	StartTime  time.Time                 `json:"start_time"`
	EndTime    time.Time                 `json:"end_time"`
	InputPath  string                    `json:"input_path"`
	OutputPath string                    `json:"output_path"`
	CSVPath    string                    `json:"csv_path,omitempty"`
	Ingest     ingest.IngestStats        `json:"ingest"`
	Clean      dataprocessing.CleanStats `json:"clean"`
	Summary    *domain.SummaryReport     `json:"-"`
	Steps      []*StepState              `json:"steps"`
	Error      error                     `json:"-"`
}

// Succeeded reports whether every executed step completed
func (r *RunResult) Succeeded() bool {
	return r.Status == RunStatusCompleted
}

// RowsLost returns how many ingested rows did not reach the report
func (r *RunResult) RowsLost() int {
	return r.Ingest.RowsRead - r.Clean.OutputRows
}

// Duration returns the wall time of the run
func (r *RunResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
