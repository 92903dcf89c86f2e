package types

import "fmt"

// Config holds runtime configuration combining the config file, flags, and defaults
type Config struct {
	// Splitting
	MaxChunkSize     int64 `yaml:"max_chunk_size"`     // Upper bound for every output chunk, in bytes
	MaxStatementSize int64 `yaml:"max_statement_size"` // Runaway ceiling for a single statement; 0 derives it from the chunk size

	// Output
	OutputDir string `yaml:"output_dir"` // Directory receiving the chunks
	Atomic    bool   `yaml:"atomic"`     // Write via temp file + rename
	Manifest  string `yaml:"manifest"`   // Optional manifest path ("" disables)
	Format    string `yaml:"manifest_format"`

	// Presentation
	Progress      bool `yaml:"progress"`       // Draw the progress bar on stdout
	ProgressWidth int  `yaml:"progress_width"` // Bar width; 0 means detect from terminal
	Verbose       bool `yaml:"verbose"`        // Enable debug logging

	// Loading
	ConnectionString  string `yaml:"connection"`
	SingleTransaction bool   `yaml:"single_transaction"`
}

// ConfigError represents invalid configuration
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	if e.Suggestion != "" {
		msg += "\nSuggestion: " + e.Suggestion
	}
	return msg
}

// ConfigField returns the offending field name
func (e *ConfigError) ConfigField() string {
	return e.Field
}

// ChunkInfo describes one flushed output chunk
type ChunkInfo struct {
	Sequence   int    `json:"sequence"`
	Path       string `json:"path"`
	Bytes      int64  `json:"bytes"`
	Statements int    `json:"statements"`
	SHA256     string `json:"sha256,omitempty"`
}
