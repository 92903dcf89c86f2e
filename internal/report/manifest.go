package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cybertec-postgresql/sqlsplit/pkg/types"
)

// ManifestVersion is bumped whenever a field changes meaning
const ManifestVersion = "1.0"

// NewManifest builds a manifest for a finished split
func NewManifest(input string, maxChunkSize int64, chunks []types.ChunkInfo) *Manifest {
	m := &Manifest{
		Version:      ManifestVersion,
		Timestamp:    time.Now().UTC(),
		Input:        input,
		MaxChunkSize: maxChunkSize,
		Chunks:       chunks,
	}
	for _, c := range chunks {
		m.InputBytes += c.Bytes
		m.Statements += c.Statements
	}
	return m
}

// WriteManifest saves the manifest to path in the given format
func WriteManifest(m *Manifest, format FormatType, path string) error {
	formatter, err := GetFormatter(format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest file: %w", err)
	}
	defer f.Close()

	if err := formatter.Format(m, f); err != nil {
		return fmt.Errorf("failed to format manifest: %w", err)
	}
	return f.Close()
}

// ReadManifest loads a JSON manifest written by WriteManifest
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s (only json manifests can be read back): %w", path, err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %q, expected %q", m.Version, ManifestVersion)
	}
	return &m, nil
}
