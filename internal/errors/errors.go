package errors

import (
	"errors"
	"fmt"
)

// Process exit codes. The numbering is kept stable for scripts that wrap the tool.
const (
	ExitOK               = 0
	ExitBadArguments     = 1
	ExitCannotOpenInput  = 2
	ExitPrematureEnd     = 3
	ExitCannotOpenOutput = 4
	ExitWriteFailure     = 5
	ExitMaxSizeExceeded  = 6
	ExitUnknown          = 7
)

// UsageError represents missing or malformed command-line arguments
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// NewUsageError creates a new UsageError
func NewUsageError(format string, args ...interface{}) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// OpenInputError represents failure to open the dump file for reading
type OpenInputError struct {
	Path string
	Err  error
}

func (e *OpenInputError) Error() string {
	return fmt.Sprintf("can't open file (%s) for reading: %v", e.Path, e.Err)
}

func (e *OpenInputError) Unwrap() error { return e.Err }

// OpenOutputError represents failure to create an output file
type OpenOutputError struct {
	Path string
	Err  error
}

func (e *OpenOutputError) Error() string {
	return fmt.Sprintf("failed to open (%s) for writing: %v", e.Path, e.Err)
}

func (e *OpenOutputError) Unwrap() error { return e.Err }

// WriteError represents a failed or short write to an output file
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write to output file (%s): %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError represents an I/O fault while reading the input stream
type ReadError struct {
	Offset int64
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read failed at byte %d: %v", e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// MaxSizeExceededError reports a single statement larger than the chunk size.
// No chunk can ever hold it, so the run aborts.
type MaxSizeExceededError struct {
	Size           int64
	Max            int64
	Offset         int64  // input offset of the statement's first byte
	DiagnosticPath string // where the raw statement was dumped, if anywhere
	Statement      []byte
}

func (e *MaxSizeExceededError) Error() string {
	msg := fmt.Sprintf("smallest statement is bigger (%d) than given bytesize (%d) at offset %d", e.Size, e.Max, e.Offset)
	if e.DiagnosticPath != "" {
		msg += fmt.Sprintf("; statement written to %s", e.DiagnosticPath)
	}
	return msg
}

// RunawayStatementError reports a statement that grew past the hard ceiling
// while still being scanned, usually an unterminated quote.
type RunawayStatementError struct {
	Size           int64
	Limit          int64
	Offset         int64
	DiagnosticPath string
	Statement      []byte
}

func (e *RunawayStatementError) Error() string {
	msg := fmt.Sprintf("statement starting at offset %d exceeded %d bytes without a terminator (unbalanced quote?)", e.Offset, e.Limit)
	if e.DiagnosticPath != "" {
		msg += fmt.Sprintf("; partial statement written to %s", e.DiagnosticPath)
	}
	return msg
}

// PrematureEndError reports chunks that end before the input does
type PrematureEndError struct {
	Chunk  string
	Offset int64
}

func (e *PrematureEndError) Error() string {
	if e.Chunk == "" {
		return fmt.Sprintf("no chunks cover input beyond byte %d", e.Offset)
	}
	return fmt.Sprintf("chunk %s ends at byte %d before the input does", e.Chunk, e.Offset)
}

// MismatchError reports a chunk whose content diverges from the input
type MismatchError struct {
	Chunk   string
	Offset  int64
	Message string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("chunk %s: %s (input offset %d)", e.Chunk, e.Message, e.Offset)
}

// DatabaseError represents a failure while loading chunks into PostgreSQL
type DatabaseError struct {
	Chunk      string
	Message    string
	Suggestion string
	Err        error
}

func (e *DatabaseError) Error() string {
	msg := e.Message
	if e.Chunk != "" {
		msg = fmt.Sprintf("%s: %s", e.Chunk, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Suggestion != "" {
		msg += "\nSuggestion: " + e.Suggestion
	}
	return msg
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by a command to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		usage    *UsageError
		openIn   *OpenInputError
		openOut  *OpenOutputError
		write    *WriteError
		maxSize  *MaxSizeExceededError
		runaway  *RunawayStatementError
		premEnd  *PrematureEndError
		asConfig interface{ ConfigField() string }
	)

	switch {
	case errors.As(err, &usage), errors.As(err, &asConfig):
		return ExitBadArguments
	case errors.As(err, &openIn):
		return ExitCannotOpenInput
	case errors.As(err, &openOut):
		return ExitCannotOpenOutput
	case errors.As(err, &write):
		return ExitWriteFailure
	case errors.As(err, &maxSize), errors.As(err, &runaway):
		return ExitMaxSizeExceeded
	case errors.As(err, &premEnd):
		return ExitPrematureEnd
	default:
		return ExitUnknown
	}
}
