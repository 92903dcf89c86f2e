/*
 * Package scanner finds statement boundaries in a dump stream.
 *
 * It is deliberately not a SQL lexer. The only state it tracks is whether the
 * current byte is inside a single-quoted span and whether the previous byte
 * was an unescaped backslash. That is enough to recognise the terminating
 * semicolon of every statement produced by dump tools that escape with a
 * backslash (MySQL style), while never reading more than one statement into
 * memory.
 *
 * Transition table, applied per byte in priority order:
 *
 *	escaped            -> clear escaped, byte is literal
 *	'\\'               -> set escaped
 *	'\''               -> toggle inQuote
 *	';' && !inQuote    -> statement ends (terminator included)
 *	anything else      -> ordinary byte
 *
 * Two consecutive quotes ('') are two independent toggles.
 */
package scanner

import (
	"bufio"
	"bytes"
	"io"

	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
)

const (
	Terminator byte = ';'
	Quote      byte = '\''
	Escape     byte = '\\'

	// DefaultMaxTokenSize is the runaway ceiling for a single statement.
	DefaultMaxTokenSize int64 = 1 << 30
)

// state is reset at the start of every statement
type state struct {
	inQuote bool
	escaped bool
}

// step consumes one byte and reports whether it terminates the statement.
func (st *state) step(c byte) bool {
	switch {
	case st.escaped:
		st.escaped = false
	case c == Escape:
		st.escaped = true
	case c == Quote:
		st.inQuote = !st.inQuote
	case c == Terminator && !st.inQuote:
		return true
	}
	return false
}

// Scanner yields one statement per Next call
type Scanner struct {
	r            io.ByteReader
	maxTokenSize int64
	offset       int64 // bytes consumed so far
	start        int64 // offset of the statement most recently returned
	done         bool
}

// Option configures a Scanner
type Option func(*Scanner)

// WithMaxTokenSize overrides the runaway ceiling. Values <= 0 keep the default.
func WithMaxTokenSize(n int64) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.maxTokenSize = n
		}
	}
}

// NewScanner creates a scanner reading from r. Readers that are not already
// an io.ByteReader are buffered.
func NewScanner(r io.Reader, opts ...Option) *Scanner {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReaderSize(r, 64*1024)
	}
	s := &Scanner{r: br, maxTokenSize: DefaultMaxTokenSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the next statement including its terminator.
//
// When the stream ends before a terminator, the remaining bytes (possibly
// none) are returned together with io.EOF, like bufio.Reader.ReadBytes.
// Every later call returns nil, io.EOF.
//
// A statement longer than the runaway ceiling aborts with
// *errors.RunawayStatementError; other read failures are returned as
// *errors.ReadError. In both cases the bytes read so far are returned too.
func (s *Scanner) Next() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}

	s.start = s.offset
	var tok []byte
	var st state

	for {
		c, err := s.r.ReadByte()
		if err != nil {
			s.done = true
			if err == io.EOF {
				return tok, io.EOF
			}
			return tok, &errors.ReadError{Offset: s.offset, Err: err}
		}

		tok = append(tok, c)
		s.offset++

		if int64(len(tok)) > s.maxTokenSize {
			s.done = true
			return tok, &errors.RunawayStatementError{
				Size:      int64(len(tok)),
				Limit:     s.maxTokenSize,
				Offset:    s.start,
				Statement: tok,
			}
		}

		if st.step(c) {
			return tok, nil
		}
	}
}

// StatementStart returns the input offset of the statement returned last
func (s *Scanner) StatementStart() int64 { return s.start }

// Blank reports whether tok holds only whitespace. Blank tokens (the line
// break after the last terminator, typically) are not counted as statements.
func Blank(tok []byte) bool {
	return len(bytes.TrimSpace(tok)) == 0
}
