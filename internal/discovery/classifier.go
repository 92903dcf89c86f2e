package discovery

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	sequenceDigits   = 5
	diagnosticSuffix = ".oversized"
)

// ChunkName returns the file name of chunk seq of the input named base
func ChunkName(seq int, base string) string {
	return fmt.Sprintf("%0*d-%s", sequenceDigits, seq, base)
}

// DiagnosticName returns the file name for an unpackable statement found
// while filling chunk seq
func DiagnosticName(seq int, base string) string {
	return ChunkName(seq, base) + diagnosticSuffix
}

// ParseChunkName classifies filename against the input basename and returns
// its sequence number for chunks and diagnostics
func ParseChunkName(filename, base string) (FileType, int) {
	filename = filepath.Base(filename)

	ft := FileTypeChunk
	if strings.HasSuffix(filename, diagnosticSuffix) && !strings.HasSuffix(base, diagnosticSuffix) {
		ft = FileTypeDiagnostic
		filename = strings.TrimSuffix(filename, diagnosticSuffix)
	}

	// Sequence numbers grow past five digits once 100000 chunks exist
	dash := strings.IndexByte(filename, '-')
	if dash < sequenceDigits || filename[dash+1:] != base {
		return FileTypeOther, -1
	}
	seq, err := strconv.Atoi(filename[:dash])
	if err != nil || seq < 0 {
		return FileTypeOther, -1
	}
	if filename[:dash] != fmt.Sprintf("%0*d", sequenceDigits, seq) {
		return FileTypeOther, -1
	}
	return ft, seq
}
