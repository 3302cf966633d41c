package operations

// Step identifiers
const (
	StepIDIngest    = "ingest"
	StepIDClean     = "clean"
	StepIDSummarize = "summarize"
	StepIDRender    = "render"
	StepIDExportCSV = "export_csv"
)

// Step names
const (
	StepNameIngest    = "Data Ingestion"
	StepNameClean     = "Data Cleaning"
	StepNameSummarize = "Summary Statistics"
	StepNameRender    = "Workbook Rendering"
	StepNameExportCSV = "Cleaned CSV Export"
)

// RunStatus represents the overall status of a run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)
