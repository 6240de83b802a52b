package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete pipeline configuration.
type Config struct {
	Dataset    DatasetConfig    `yaml:"dataset" envconfig:"DATASET"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Cleaning   CleaningConfig   `yaml:"cleaning" envconfig:"CLEANING"`
	Validation ValidationConfig `yaml:"validation" envconfig:"VALIDATION"`
	Features   FeaturesConfig   `yaml:"features" envconfig:"FEATURES"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
}

// DatasetConfig identifies the source workbook and its sheets.
type DatasetConfig struct {
	WorkbookFile string   `yaml:"workbook_file" envconfig:"WORKBOOK_FILE" validate:"required"`
	Sheets       []string `yaml:"sheets" envconfig:"SHEETS" validate:"required,min=1"`
}

// PathsConfig contains file system locations for pipeline artifacts.
type PathsConfig struct {
	InterimDir   string `yaml:"interim_dir" envconfig:"INTERIM_DIR" validate:"required"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// CleanedCSVPath returns the path of the cleaned transaction table.
func (p PathsConfig) CleanedCSVPath() string {
	return filepath.Join(p.InterimDir, "cleaned_retail_data.csv")
}

// SnapshotPath returns the path of the binary snapshot written alongside
// the cleaned CSV for fast reload.
func (p PathsConfig) SnapshotPath() string {
	return filepath.Join(p.InterimDir, "cleaned_retail_data.gob")
}

// FeaturesCSVPath returns the path of the customer feature table.
func (p PathsConfig) FeaturesCSVPath() string {
	return filepath.Join(p.ProcessedDir, "customers_features.csv")
}

// CleaningConfig holds thresholds for the cleaning stages.
type CleaningConfig struct {
	// MinUnitPrice is the minimum valid unit price; rows below it are
	// dropped before duplicate aggregation.
	MinUnitPrice float64 `yaml:"min_unit_price" envconfig:"MIN_UNIT_PRICE" validate:"gt=0"`
}

// ValidationConfig holds the expected temporal coverage of the dataset.
// Records outside the range are reported, never dropped.
type ValidationConfig struct {
	MinYear int `yaml:"min_year" envconfig:"MIN_YEAR" validate:"required,min=1900"`
	MaxYear int `yaml:"max_year" envconfig:"MAX_YEAR" validate:"required,gtefield=MinYear"`
}

// FeaturesConfig defines the observation/outcome windows and cohort
// eligibility thresholds for feature engineering.
type FeaturesConfig struct {
	ObservationStart string `yaml:"observation_start" envconfig:"OBSERVATION_START" validate:"required,datetime=2006-01-02"`
	ObservationEnd   string `yaml:"observation_end" envconfig:"OBSERVATION_END" validate:"required,datetime=2006-01-02"`
	OutcomeStart     string `yaml:"outcome_start" envconfig:"OUTCOME_START" validate:"required,datetime=2006-01-02"`
	OutcomeEnd       string `yaml:"outcome_end" envconfig:"OUTCOME_END" validate:"required,datetime=2006-01-02"`
	MinTenureDays    int    `yaml:"min_tenure_days" envconfig:"MIN_TENURE_DAYS" validate:"min=0"`
	MinFrequency     int    `yaml:"min_frequency" envconfig:"MIN_FREQUENCY" validate:"min=1"`
}

// ObservationEndDate parses the observation window end.
func (f FeaturesConfig) ObservationEndDate() (time.Time, error) {
	return time.Parse("2006-01-02", f.ObservationEnd)
}

// OutcomeStartDate parses the outcome window start.
func (f FeaturesConfig) OutcomeStartDate() (time.Time, error) {
	return time.Parse("2006-01-02", f.OutcomeStart)
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Load reads configuration from the YAML file at configPath, applies
// RETAIL_* environment overrides, fills defaults, and validates the
// result. Configuration errors are fatal at startup, before any data is
// touched.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath != "" {
		fileCfg, err := loadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = *fileCfg
	}

	// Environment variables override file values.
	if err := envconfig.Process("RETAIL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Dataset.WorkbookFile == "" {
		cfg.Dataset.WorkbookFile = filepath.Join("data", "raw", "online_retail_II.xlsx")
	}
	if len(cfg.Dataset.Sheets) == 0 {
		cfg.Dataset.Sheets = []string{"Year 2009-2010", "Year 2010-2011"}
	}
	if cfg.Paths.InterimDir == "" {
		cfg.Paths.InterimDir = filepath.Join("data", "interim")
	}
	if cfg.Paths.ProcessedDir == "" {
		cfg.Paths.ProcessedDir = filepath.Join("data", "processed")
	}
	if cfg.Paths.LogsDir == "" {
		cfg.Paths.LogsDir = "logs"
	}
	if cfg.Cleaning.MinUnitPrice == 0 {
		cfg.Cleaning.MinUnitPrice = 0.01
	}
	if cfg.Validation.MinYear == 0 {
		cfg.Validation.MinYear = 2009
	}
	if cfg.Validation.MaxYear == 0 {
		cfg.Validation.MaxYear = 2011
	}
	if cfg.Features.ObservationStart == "" {
		cfg.Features.ObservationStart = "2009-12-01"
	}
	if cfg.Features.ObservationEnd == "" {
		cfg.Features.ObservationEnd = "2011-05-31"
	}
	if cfg.Features.OutcomeStart == "" {
		cfg.Features.OutcomeStart = "2011-06-01"
	}
	if cfg.Features.OutcomeEnd == "" {
		cfg.Features.OutcomeEnd = "2011-12-09"
	}
	if cfg.Features.MinTenureDays == 0 {
		cfg.Features.MinTenureDays = 90
	}
	if cfg.Features.MinFrequency == 0 {
		cfg.Features.MinFrequency = 2
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = filepath.Join(cfg.Paths.LogsDir, "pipeline.log")
	}
}

// Validate checks the assembled configuration against its struct tags and
// cross-field constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	obsEnd, err := c.Features.ObservationEndDate()
	if err != nil {
		return fmt.Errorf("invalid observation_end: %w", err)
	}
	outStart, err := c.Features.OutcomeStartDate()
	if err != nil {
		return fmt.Errorf("invalid outcome_start: %w", err)
	}
	if !obsEnd.Before(outStart) {
		return fmt.Errorf("observation_end %s must precede outcome_start %s",
			c.Features.ObservationEnd, c.Features.OutcomeStart)
	}

	return nil
}

// EnsureDirectories creates the output directories if they do not exist.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.InterimDir, c.Paths.ProcessedDir, c.Paths.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WithDefaults returns a configuration populated entirely from defaults.
// Intended for tests that do not touch the filesystem or environment.
func WithDefaults() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}
