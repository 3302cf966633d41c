package config

// Application constants
const (
	AppName = "Weekly Report Generator"

	// EnvPrefix namespaces environment overrides, e.g. WEEKLY_INPUT_FILE
	EnvPrefix  = "WEEKLY"
	DotEnvFile = ".env"

	DefaultInputFile    = "raw_data.csv"
	DefaultTemplateFile = "report_template.xlsx"
	DefaultWindowDays   = 7
	DefaultChartTopN    = 10

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "both"
	DefaultLogFile   = "weekly_report.log"
)
