package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/cybertec-postgresql/sqlsplit/internal/report"
	"github.com/cybertec-postgresql/sqlsplit/pkg/types"
	"gopkg.in/yaml.v3"
)

// Config is an alias for the shared Config type
type Config = types.Config

// ConfigError is an alias for the shared ConfigError type
type ConfigError = types.ConfigError

// DefaultConfig provides default configuration values.
// MaxStatementSize stays 0 so the splitter derives the ceiling from the
// chunk size: scanner.DefaultMaxTokenSize, or the chunk size when larger.
var DefaultConfig = Config{
	OutputDir: ".",
	Format:    string(report.FormatJSON),
	Progress:  true,
}

// Flags carries command-line values; zero values leave the config untouched
type Flags struct {
	MaxChunkSize      int64
	MaxStatementSize  int64
	OutputDir         string
	ProgressWidth     int
	NoProgress        bool
	Atomic            bool
	Manifest          string
	Format            string
	Connection        string
	SingleTransaction bool
	Verbose           bool
}

// LoadConfigFile reads a YAML config file on top of the defaults
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{
			Field:      "config",
			Value:      path,
			Message:    fmt.Sprintf("failed to read config file: %v", err),
			Suggestion: "Check the --config path.",
		}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{
			Field:      "config",
			Value:      path,
			Message:    fmt.Sprintf("failed to parse config file: %v", err),
			Suggestion: "The config file must be YAML, see the README for the keys.",
		}
	}

	return &cfg, nil
}

// ApplyFlagsToConfig applies command-line flag values to configuration
func ApplyFlagsToConfig(c *Config, f Flags) {
	if f.MaxChunkSize != 0 {
		c.MaxChunkSize = f.MaxChunkSize
	}
	if f.MaxStatementSize != 0 {
		c.MaxStatementSize = f.MaxStatementSize
	}
	if f.OutputDir != "" {
		c.OutputDir = f.OutputDir
	}
	if f.ProgressWidth != 0 {
		c.ProgressWidth = f.ProgressWidth
	}
	if f.NoProgress {
		c.Progress = false
	}
	if f.Atomic {
		c.Atomic = true
	}
	if f.Manifest != "" {
		c.Manifest = f.Manifest
	}
	if f.Format != "" {
		c.Format = f.Format
	}
	if f.Connection != "" {
		c.ConnectionString = f.Connection
	}
	if f.SingleTransaction {
		c.SingleTransaction = true
	}
	if f.Verbose {
		c.Verbose = true
	}
}

// ValidateSplit checks a configuration before splitting
func ValidateSplit(c *Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Manifest != "" && !report.ValidFormat(c.Format) {
		return &ConfigError{
			Field:      "manifest-format",
			Value:      c.Format,
			Message:    fmt.Sprintf("unsupported manifest format %q", c.Format),
			Suggestion: "Supported formats: " + strings.Join(report.SupportedFormats(), ", ") + ".",
		}
	}
	return nil
}
