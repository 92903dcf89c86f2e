package splitter

import (
	"bytes"
	"crypto/sha256"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/scanner"
	"github.com/cybertec-postgresql/sqlsplit/pkg/types"
)

// Sink receives flushed chunks and diagnostic dumps
type Sink interface {
	// WriteChunk persists chunk seq and returns where it went
	WriteChunk(seq int, data []byte) (string, error)

	// WriteDiagnostic persists a statement that could not be packed
	WriteDiagnostic(seq int, data []byte) (string, error)
}

// Observer is notified as statements are packed and chunks are flushed
type Observer interface {
	StatementPacked(seq int, chunkLen int64, statement []byte)
	ChunkWritten(info types.ChunkInfo)
}

// Options configures a Splitter
type Options struct {
	MaxChunkSize     int64
	MaxStatementSize int64 // runaway ceiling, 0 = max(scanner default, MaxChunkSize)
	Observer         Observer
}

// Result summarizes a split, including a partial one that aborted
type Result struct {
	Chunks     []types.ChunkInfo
	Statements int
	Bytes      int64
}

// Splitter packs statements greedily into size-bounded chunks
type Splitter struct {
	sink Sink
	opts Options
}

// New creates a Splitter writing to sink
func New(sink Sink, opts Options) (*Splitter, error) {
	if opts.MaxChunkSize <= 0 {
		return nil, fmt.Errorf("max chunk size must be positive, got %d", opts.MaxChunkSize)
	}
	if opts.MaxStatementSize < 0 {
		return nil, fmt.Errorf("max statement size cannot be negative, got %d", opts.MaxStatementSize)
	}
	if opts.MaxStatementSize == 0 {
		opts.MaxStatementSize = max(scanner.DefaultMaxTokenSize, opts.MaxChunkSize)
	}
	if opts.MaxStatementSize < opts.MaxChunkSize {
		return nil, fmt.Errorf("max statement size %d is below max chunk size %d",
			opts.MaxStatementSize, opts.MaxChunkSize)
	}
	return &Splitter{sink: sink, opts: opts}, nil
}

// cycle is the state carried from one output chunk to the next
type cycle struct {
	seq        int
	pending    []byte
	hasPending bool
	exhausted  bool
}

// chunk is the in-flight output unit
type chunk struct {
	buf        bytes.Buffer
	statements int
}

func (c *chunk) add(tok []byte) {
	c.buf.Write(tok)
	if !scanner.Blank(tok) {
		c.statements++
	}
}

// Split reads statements from r and flushes them to the sink in chunks no
// larger than MaxChunkSize. Every error is fatal; chunks already flushed stay
// on the sink and are reported in the returned Result.
func (s *Splitter) Split(r io.Reader) (*Result, error) {
	sc := scanner.NewScanner(r, scanner.WithMaxTokenSize(s.opts.MaxStatementSize))
	res := &Result{}
	st := &cycle{}

	for {
		c, fatal := s.fill(sc, st)
		if fatal != nil && !flushable(fatal) {
			return res, fatal
		}

		if err := s.flush(res, st.seq, c); err != nil {
			return res, err
		}

		if fatal != nil {
			return res, s.diagnose(st.seq, fatal)
		}

		if st.exhausted && !st.hasPending {
			return res, nil
		}
		st.seq++
	}
}

// fill builds one chunk. The returned error, if any, is fatal; the chunk
// holds everything packed before it.
func (s *Splitter) fill(sc *scanner.Scanner, st *cycle) (*chunk, error) {
	c := &chunk{}
	if st.hasPending {
		c.add(st.pending)
		if s.opts.Observer != nil {
			s.opts.Observer.StatementPacked(st.seq, int64(c.buf.Len()), st.pending)
		}
		st.pending, st.hasPending = nil, false
	}

	limit := s.opts.MaxChunkSize
	for !st.exhausted {
		tok, err := sc.Next()
		if err == io.EOF {
			st.exhausted = true
		} else if err != nil {
			st.exhausted = true
			return c, err
		}

		size := int64(len(tok))
		if size > limit {
			return c, &errors.MaxSizeExceededError{
				Size:      size,
				Max:       limit,
				Offset:    sc.StatementStart(),
				Statement: tok,
			}
		}

		if int64(c.buf.Len())+size > limit {
			logger.Debug("chunk %05d full at %d bytes, carrying %d byte statement", st.seq, c.buf.Len(), size)
			st.pending, st.hasPending = tok, true
			break
		}

		c.add(tok)
		if s.opts.Observer != nil && size > 0 {
			s.opts.Observer.StatementPacked(st.seq, int64(c.buf.Len()), tok)
		}
	}
	return c, nil
}

func (s *Splitter) flush(res *Result, seq int, c *chunk) error {
	path, err := s.sink.WriteChunk(seq, c.buf.Bytes())
	if err != nil {
		return err
	}

	info := types.ChunkInfo{
		Sequence:   seq,
		Path:       path,
		Bytes:      int64(c.buf.Len()),
		Statements: c.statements,
		SHA256:     fmt.Sprintf("%x", sha256.Sum256(c.buf.Bytes())),
	}
	res.Chunks = append(res.Chunks, info)
	res.Statements += c.statements
	res.Bytes += info.Bytes

	logger.Debug("wrote chunk %05d: %d bytes, %d statements", seq, info.Bytes, info.Statements)
	if s.opts.Observer != nil {
		s.opts.Observer.ChunkWritten(info)
	}
	return nil
}

// flushable reports whether the packed data should still be written before
// the run aborts with err.
func flushable(err error) bool {
	var maxSize *errors.MaxSizeExceededError
	var runaway *errors.RunawayStatementError
	return stderrors.As(err, &maxSize) || stderrors.As(err, &runaway)
}

// diagnose dumps the offending statement next to the chunks and returns the
// capacity error annotated with its location.
func (s *Splitter) diagnose(seq int, fatal error) error {
	var maxSize *errors.MaxSizeExceededError
	var runaway *errors.RunawayStatementError

	var stmt []byte
	var pathField *string
	switch {
	case stderrors.As(fatal, &maxSize):
		stmt, pathField = maxSize.Statement, &maxSize.DiagnosticPath
	case stderrors.As(fatal, &runaway):
		stmt, pathField = runaway.Statement, &runaway.DiagnosticPath
	default:
		return fatal
	}

	path, err := s.sink.WriteDiagnostic(seq, stmt)
	if err != nil {
		logger.Error("could not write diagnostic statement dump: %v", err)
		return fatal
	}
	*pathField = path
	return fatal
}
