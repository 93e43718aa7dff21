// Package config provides functionality for loading and validating
// the dashboard configuration file (YAML).
//
// Configuration is resolved in three steps: defaults, then the optional
// YAML file, then RANKDASH_* environment variable overrides. The merged
// document is validated against an embedded JSON schema before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/logger"
)

// Default configuration values. DatasetPath and the listen port follow the
// layout the refresh pipeline produces (conf/records.parquet, port 8050).
const (
	DefaultDatasetPath = "conf/records.parquet"
	DefaultListenAddr  = ":8050"
	DefaultMetricsAddr = ":9090"
	DefaultMaxPageSize = 250
)

// Common errors
var (
	// ErrInvalidConfig is returned when the configuration fails schema validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds the dashboard runtime configuration.
type Config struct {
	// DatasetPath is the path to the persisted parquet table.
	DatasetPath string `yaml:"datasetPath" json:"datasetPath"`

	// ListenAddr is the address the dashboard HTTP server binds to.
	ListenAddr string `yaml:"listenAddr" json:"listenAddr"`

	// MetricsAddr is the address the Prometheus metrics endpoint binds to.
	MetricsAddr string `yaml:"metricsAddr" json:"metricsAddr"`

	// MaxPageSize caps the number of rows returned per render.
	MaxPageSize int `yaml:"maxPageSize" json:"maxPageSize"`

	// LogLevel is one of: debug, info, warn, error.
	LogLevel string `yaml:"logLevel" json:"logLevel"`

	// LogFormat is one of: json, human.
	LogFormat string `yaml:"logFormat" json:"logFormat"`

	// Refresh configures the metadata refresh (CSV to parquet) step.
	Refresh RefreshConfig `yaml:"refresh" json:"refresh"`
}

// RefreshConfig holds paths for the metadata refresh step.
type RefreshConfig struct {
	// UsersCSV is the path to the downloaded Users.csv.
	UsersCSV string `yaml:"usersCsv" json:"usersCsv"`

	// AchievementsCSV is the path to the downloaded UserAchievements.csv.
	AchievementsCSV string `yaml:"achievementsCsv" json:"achievementsCsv"`

	// OutputPath is where the joined parquet table is written.
	OutputPath string `yaml:"outputPath" json:"outputPath"`
}

// ConfigError describes a configuration load or validation failure.
type ConfigError struct {
	// Path is the configuration file path ("" when loading defaults only)
	Path string
	// Message is the human-readable error message
	Message string
	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("config: %s", e.Message)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		DatasetPath: DefaultDatasetPath,
		ListenAddr:  DefaultListenAddr,
		MetricsAddr: DefaultMetricsAddr,
		MaxPageSize: DefaultMaxPageSize,
		LogLevel:    "info",
		LogFormat:   "json",
		Refresh: RefreshConfig{
			UsersCSV:        "conf/Users.csv",
			AchievementsCSV: "conf/UserAchievements.csv",
			OutputPath:      DefaultDatasetPath,
		},
	}
}

// Load resolves the configuration from defaults, the optional YAML file at
// path, and environment overrides. An empty path skips the file step.
// Returns a *ConfigError on read, parse, or validation failures.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigError{
				Path:    path,
				Message: fmt.Sprintf("failed to read file: %v", err),
				Err:     err,
			}
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, &ConfigError{
				Path:    path,
				Message: fmt.Sprintf("failed to parse YAML: %v", err),
				Err:     err,
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, &ConfigError{
			Path:    path,
			Message: err.Error(),
			Err:     err,
		}
	}

	return cfg, nil
}

// applyEnvOverrides applies RANKDASH_* environment variables on top of the
// current values. A .env file in the working directory is honored when present.
func applyEnvOverrides(cfg *Config) {
	// Missing .env is the normal case, not an error.
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded environment overrides from .env")
	}

	if v := os.Getenv("RANKDASH_DATASET_PATH"); v != "" {
		cfg.DatasetPath = v
	}
	if v := os.Getenv("RANKDASH_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("RANKDASH_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("RANKDASH_MAX_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxPageSize = n
		} else {
			logger.Warn("ignoring non-numeric RANKDASH_MAX_PAGE_SIZE", "value", v)
		}
	}
	if v := os.Getenv("RANKDASH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("RANKDASH_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
