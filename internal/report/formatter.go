package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cybertec-postgresql/sqlsplit/pkg/types"
)

// Manifest describes the outcome of one split
type Manifest struct {
	Version      string            `json:"version"`
	Timestamp    time.Time         `json:"timestamp"`
	Input        string            `json:"input"`
	InputBytes   int64             `json:"input_bytes"`
	MaxChunkSize int64             `json:"max_chunk_size"`
	Statements   int               `json:"statements"`
	Chunks       []types.ChunkInfo `json:"chunks"`
}

// Formatter is an interface for manifest formatters
type Formatter interface {
	// Format formats the manifest and writes to the writer
	Format(m *Manifest, writer io.Writer) error
}

// FormatType represents supported manifest formats
type FormatType string

const (
	FormatJSON FormatType = "json"
	FormatText FormatType = "text"
)

// GetFormatter returns a formatter for the specified format type
func GetFormatter(format FormatType) (Formatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONReporter(), nil
	case FormatText:
		return NewTextReporter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(SupportedFormats(), ", "))
	}
}

// ValidFormat checks if a format string is valid
func ValidFormat(format string) bool {
	switch FormatType(format) {
	case FormatJSON, FormatText:
		return true
	default:
		return false
	}
}

// SupportedFormats returns a list of supported format names
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatText)}
}
