package discovery

import "time"

// DiscoveredChunk represents a chunk file found next to its siblings
type DiscoveredChunk struct {
	Path     string    // Absolute path to file
	Name     string    // Base name, e.g. 00003-dump.sql
	Sequence int       // Parsed sequence number
	Size     int64     // Size in bytes
	ModTime  time.Time // Last modification time
}

// FileType indicates what a file in the output directory is
type FileType int

const (
	FileTypeOther      FileType = iota // Unrelated file
	FileTypeChunk                      // Matches NNNNN-<base>
	FileTypeDiagnostic                 // Matches NNNNN-<base>.oversized
)

// String returns a string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeChunk:
		return "chunk"
	case FileTypeDiagnostic:
		return "diagnostic"
	default:
		return "other"
	}
}
