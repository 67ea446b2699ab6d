// Package config provides unified configuration loading for reportsummary.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvandessel/reportsummary/internal/constants"
	"github.com/nvandessel/reportsummary/internal/reports"
	"github.com/nvandessel/reportsummary/internal/store"
	"gopkg.in/yaml.v3"
)

// Config contains all reportsummary configuration settings.
type Config struct {
	// Reports describes where run reports live and how their units convert.
	Reports ReportsConfig `json:"reports" yaml:"reports"`

	// Render controls chart output.
	Render RenderConfig `json:"render" yaml:"render"`

	// Export controls tabular export of averaged results.
	Export ExportConfig `json:"export" yaml:"export"`

	// Parse controls report parsing.
	Parse ParseConfig `json:"parse" yaml:"parse"`

	// Logging contains settings for operational logging and aggregation traces.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Store configures the archive of averaged results.
	Store StoreConfig `json:"store" yaml:"store"`

	// MCP configures the MCP server.
	MCP MCPConfig `json:"mcp" yaml:"mcp"`
}

// ReportsConfig configures report discovery and unit conversion.
type ReportsConfig struct {
	// Scenario is the simulator scenario name prefixing most report files.
	Scenario string `json:"scenario" yaml:"scenario"`

	// TimeDivisor converts simulator seconds into axis units (60 = minutes).
	TimeDivisor float64 `json:"time_divisor" yaml:"time_divisor"`

	// DataSyncInterval is the minimum axis distance between kept data sync samples.
	DataSyncInterval float64 `json:"data_sync_interval" yaml:"data_sync_interval"`
}

// RenderConfig configures chart output.
type RenderConfig struct {
	// Format is the chart image format: "png" (default), "svg", or "pdf".
	Format string `json:"format" yaml:"format"`

	// Width and Height are chart dimensions in inches.
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`

	// PDF enables the multi-page document holding every chart.
	PDF bool `json:"pdf" yaml:"pdf"`
}

// ExportConfig configures tabular export.
type ExportConfig struct {
	// Format is "csv" (default), "arrow", or "parquet".
	Format string `json:"format" yaml:"format"`

	// Compression applies to parquet output: "zstd" (default), "snappy", "gzip", or "none".
	Compression string `json:"compression" yaml:"compression"`
}

// ParseConfig configures report parsing.
type ParseConfig struct {
	// Workers bounds how many seeds are parsed concurrently per family.
	Workers int `json:"workers" yaml:"workers"`
}

// LoggingConfig configures reportsummary's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables the aggregation trace in .reportsummary/trace.jsonl.
	// "trace" additionally includes every parsed run's sample counts.
	Level string `json:"level" yaml:"level"`
}

// StoreConfig configures the summary archive.
type StoreConfig struct {
	// Enabled archives every averaged result after a run.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path overrides the archive location. Supports ${VAR} syntax.
	// Defaults to <root>/.reportsummary/summaries.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	// AllowedDirs restricts the reports directories tools may read.
	// Empty means the workspace root only.
	AllowedDirs []string `json:"allowed_dirs,omitempty" yaml:"allowed_dirs,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Reports: ReportsConfig{
			Scenario:         constants.DefaultScenario,
			TimeDivisor:      constants.DefaultTimeDivisor,
			DataSyncInterval: constants.DefaultDataSyncInterval,
		},
		Render: RenderConfig{
			Format: string(constants.ChartPNG),
			Width:  constants.DefaultChartWidth,
			Height: constants.DefaultChartHeight,
			PDF:    true,
		},
		Export: ExportConfig{
			Format:      string(constants.ExportCSV),
			Compression: "zstd",
		},
		Parse: ParseConfig{
			Workers: constants.DefaultParseWorkers,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Enabled: false,
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.reportsummary/config.yaml -> environment variables
func Load() (*Config, error) {
	return LoadWithFile("")
}

// LoadWithFile is Load with an explicit config file layered between the
// home config and the environment. An empty path behaves like Load.
// Order: defaults -> ~/.reportsummary/config.yaml -> path -> environment variables
func LoadWithFile(path string) (*Config, error) {
	config := Default()

	// Try to load from default config file
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, constants.DataDir, "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			if loadErr := overlayFile(config, configPath); loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
		}
	}

	if path != "" {
		if err := overlayFile(config, path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	config := Default()
	if err := overlayFile(config, path); err != nil {
		return nil, err
	}
	return config, nil
}

// overlayFile unmarshals the YAML file at path on top of config.
func overlayFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	// Expand environment variables in paths
	config.Store.Path = expandEnvVars(config.Store.Path)
	for i, dir := range config.MCP.AllowedDirs {
		config.MCP.AllowedDirs[i] = expandEnvVars(dir)
	}

	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Reports.Scenario == "" {
		return fmt.Errorf("reports.scenario must not be empty")
	}

	if c.Reports.TimeDivisor <= 0 {
		return fmt.Errorf("time_divisor must be positive, got %v", c.Reports.TimeDivisor)
	}

	if c.Reports.DataSyncInterval < 0 {
		return fmt.Errorf("data_sync_interval must be non-negative, got %v", c.Reports.DataSyncInterval)
	}

	if !constants.ChartFormat(c.Render.Format).Valid() {
		return fmt.Errorf("invalid render format: %s (valid: png, svg, pdf)", c.Render.Format)
	}

	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render dimensions must be positive, got %vx%v", c.Render.Width, c.Render.Height)
	}

	if !constants.ExportFormat(c.Export.Format).Valid() {
		return fmt.Errorf("invalid export format: %s (valid: csv, arrow, parquet)", c.Export.Format)
	}

	validCompression := map[string]bool{"": true, "zstd": true, "snappy": true, "gzip": true, "none": true}
	if !validCompression[c.Export.Compression] {
		return fmt.Errorf("invalid export compression: %s (valid: zstd, snappy, gzip, none)", c.Export.Compression)
	}

	if c.Parse.Workers < 1 || c.Parse.Workers > constants.MaxParseWorkers {
		return fmt.Errorf("parse.workers must be between 1 and %d, got %d", constants.MaxParseWorkers, c.Parse.Workers)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// ReportOptions returns the parser options implied by the config.
func (c *Config) ReportOptions() reports.Options {
	return reports.Options{
		TimeDivisor:    c.Reports.TimeDivisor,
		SampleInterval: c.Reports.DataSyncInterval,
	}
}

// StorePath returns the archive path for the workspace root.
func (c *Config) StorePath(root string) string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return store.DefaultArchivePath(root)
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("REPORTSUMMARY_SCENARIO"); v != "" {
		config.Reports.Scenario = v
	}

	if v := os.Getenv("REPORTSUMMARY_TIME_DIVISOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Reports.TimeDivisor = f
		}
	}

	if v := os.Getenv("REPORTSUMMARY_DATA_SYNC_INTERVAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Reports.DataSyncInterval = f
		}
	}

	if v := os.Getenv("REPORTSUMMARY_RENDER_FORMAT"); v != "" {
		config.Render.Format = strings.ToLower(v)
	}

	if v := os.Getenv("REPORTSUMMARY_PDF"); v != "" {
		config.Render.PDF = v == "true" || v == "1"
	}

	if v := os.Getenv("REPORTSUMMARY_EXPORT_FORMAT"); v != "" {
		config.Export.Format = strings.ToLower(v)
	}

	if v := os.Getenv("REPORTSUMMARY_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Parse.Workers = n
		}
	}

	if v := os.Getenv("REPORTSUMMARY_STORE"); v != "" {
		config.Store.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("REPORTSUMMARY_STORE_PATH"); v != "" {
		config.Store.Path = expandEnvVars(v)
	}

	if v := os.Getenv("REPORTSUMMARY_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
