package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "weeklyreport/internal/errors"
)

// Config represents the complete application configuration. Report options
// sit at the top level so that flat JSON override files load unchanged.
type Config struct {
	InputFile      string   `yaml:"input_file" envconfig:"INPUT_FILE" validate:"required"`
	OutputFile     string   `yaml:"output_file" envconfig:"OUTPUT_FILE" validate:"required"`
	TemplateFile   string   `yaml:"template_file" envconfig:"TEMPLATE_FILE"`
	CleanedCSVFile string   `yaml:"cleaned_csv_file" envconfig:"CLEANED_CSV_FILE"`
	DataColumns    []string `yaml:"data_columns" envconfig:"DATA_COLUMNS"`
	DateColumn     string   `yaml:"date_column" envconfig:"DATE_COLUMN" validate:"required"`
	NumericColumns []string `yaml:"numeric_columns" envconfig:"NUMERIC_COLUMNS" validate:"required,min=1,dive,required"`
	ProductColumn  string   `yaml:"product_column" envconfig:"PRODUCT_COLUMN"`
	RegionColumn   string   `yaml:"region_column" envconfig:"REGION_COLUMN"`
	RevenueColumn  string   `yaml:"revenue_column" envconfig:"REVENUE_COLUMN"`
	Encodings      []string `yaml:"encodings" envconfig:"ENCODINGS" validate:"required,min=1,dive,required"`
	WindowDays     int      `yaml:"window_days" envconfig:"WINDOW_DAYS" validate:"min=1"`
	ChartTopN      int      `yaml:"chart_top_n" envconfig:"CHART_TOP_N" validate:"min=1"`

	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Audit     AuditConfig     `yaml:"audit" envconfig:"AUDIT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig controls tracing and the metrics textfile
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	Environment   string `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// AuditConfig controls the SQLite run ledger. An empty path disables it.
type AuditConfig struct {
	Path string `yaml:"path" envconfig:"DB_PATH"`
}

// Window returns the recency window as a duration
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowDays) * 24 * time.Hour
}

// CriticalColumns returns the date column followed by every numeric column
func (c *Config) CriticalColumns() []string {
	cols := make([]string, 0, len(c.NumericColumns)+1)
	cols = append(cols, c.DateColumn)
	return append(cols, c.NumericColumns...)
}

// Load resolves configuration from defaults, the override file and the
// environment, in increasing order of precedence. An empty path searches the
// usual locations. A broken override file is logged and ignored so that the
// run proceeds on defaults.
func Load(path string) (*Config, error) {
	return LoadAt(path, time.Now())
}

// LoadAt is Load with an explicit clock for the dated output file name.
func LoadAt(path string, now time.Time) (*Config, error) {
	cfg := DefaultAt(now)

	if err := loadDotEnv(DotEnvFile); err != nil {
		slog.Warn("Could not load .env file", slog.String("error", err.Error()))
	}

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			slog.Warn("Could not load config file, using defaults",
				slog.String("path", path),
				slog.String("error", err.Error()))
			cfg = DefaultAt(now)
		} else {
			slog.Info("Loaded config file", slog.String("path", path))
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML (or JSON) file at filePath onto cfg. Keys
// absent from the file keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv exports variables from a dotenv file. A missing file is not an
// error and existing environment variables win.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

var structValidator = validator.New()

// validate validates the configuration
func (c *Config) validate() error {
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.Output == "" {
		c.Logging.Output = DefaultLogOutput
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Telemetry.TraceExporter == "" {
		c.Telemetry.TraceExporter = "none"
	}
	if (c.Logging.Output == "file" || c.Logging.Output == "both") && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	if err := structValidator.Struct(c); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.NumericColumns))
	for _, col := range c.NumericColumns {
		if col == c.DateColumn {
			return fmt.Errorf("column %q cannot be both the date column and numeric", col)
		}
		if seen[col] {
			return fmt.Errorf("numeric column %q listed twice", col)
		}
		seen[col] = true
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// OutputFileName returns the dated default workbook name for now
func OutputFileName(now time.Time) string {
	return fmt.Sprintf("weekly_report_%s.xlsx", now.Format("20060102"))
}

// Default returns default configuration
func Default() *Config {
	return DefaultAt(time.Now())
}

// DefaultAt returns default configuration with the output file dated at now
func DefaultAt(now time.Time) *Config {
	return &Config{
		InputFile:      DefaultInputFile,
		OutputFile:     OutputFileName(now),
		TemplateFile:   DefaultTemplateFile,
		DataColumns:    []string{"Date", "Product", "Sales", "Units", "Revenue", "Region"},
		DateColumn:     "Date",
		NumericColumns: []string{"Sales", "Units", "Revenue"},
		ProductColumn:  "Product",
		RegionColumn:   "Region",
		RevenueColumn:  "Revenue",
		Encodings:      []string{"utf-8", "windows-1252", "iso-8859-1"},
		WindowDays:     DefaultWindowDays,
		ChartTopN:      DefaultChartTopN,
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
			Environment:   "development",
		},
	}
}
