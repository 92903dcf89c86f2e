package verify

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/scanner"
)

// Report summarizes a successful verification
type Report struct {
	Chunks     int
	Bytes      int64
	Statements int
}

// Verify checks that chunks, concatenated in order, reproduce the input
// exactly, that every chunk but the last ends on a statement boundary, and,
// when maxChunkSize > 0, that no chunk exceeds it.
func Verify(inputPath string, chunks []discovery.DiscoveredChunk, maxChunkSize int64) (*Report, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return nil, &errors.OpenInputError{Path: inputPath, Err: err}
	}
	defer in.Close()

	input := &comparer{r: bufio.NewReaderSize(in, 64*1024)}
	rep := &Report{}

	for i, chunk := range chunks {
		if maxChunkSize > 0 && chunk.Size > maxChunkSize {
			return rep, &errors.MismatchError{
				Chunk:   chunk.Name,
				Offset:  input.offset,
				Message: fmt.Sprintf("size %d exceeds maximum %d", chunk.Size, maxChunkSize),
			}
		}

		n, err := verifyChunk(input, chunk, i == len(chunks)-1)
		if err != nil {
			return rep, err
		}
		rep.Chunks++
		rep.Statements += n
		logger.Debug("verified %s (%d statements)", chunk.Name, n)
	}

	if _, err := input.r.ReadByte(); err != io.EOF {
		last := ""
		if len(chunks) > 0 {
			last = chunks[len(chunks)-1].Name
		}
		return rep, &errors.PrematureEndError{Chunk: last, Offset: input.offset}
	}

	rep.Bytes = input.offset
	return rep, nil
}

// verifyChunk streams one chunk through the scanner while comparing every
// byte with the input, and returns the number of statements it holds.
func verifyChunk(input *comparer, chunk discovery.DiscoveredChunk, last bool) (int, error) {
	f, err := os.Open(chunk.Path)
	if err != nil {
		return 0, &errors.OpenInputError{Path: chunk.Path, Err: err}
	}
	defer f.Close()

	input.chunk = chunk.Name
	sc := scanner.NewScanner(io.TeeReader(f, input))

	statements := 0
	for {
		tok, err := sc.Next()
		if err == io.EOF {
			if len(tok) > 0 {
				if !last {
					return statements, &errors.MismatchError{
						Chunk:   chunk.Name,
						Offset:  input.offset,
						Message: "chunk ends inside a statement",
					}
				}
				if !scanner.Blank(tok) {
					statements++
				}
			}
			return statements, nil
		}
		if err != nil {
			var mismatch *errors.MismatchError
			if stderrors.As(err, &mismatch) {
				return statements, mismatch
			}
			return statements, err
		}
		statements++
	}
}

// comparer is an io.Writer that checks written bytes against the input
type comparer struct {
	r      *bufio.Reader
	offset int64
	chunk  string
	buf    []byte
}

func (c *comparer) Write(p []byte) (int, error) {
	if cap(c.buf) < len(p) {
		c.buf = make([]byte, len(p))
	}
	want := c.buf[:len(p)]

	n, err := io.ReadFull(c.r, want)
	if i := mismatchAt(p[:n], want[:n]); i >= 0 {
		return i, &errors.MismatchError{Chunk: c.chunk, Offset: c.offset + int64(i), Message: "content differs from input"}
	}
	c.offset += int64(n)
	if err != nil {
		return n, &errors.MismatchError{Chunk: c.chunk, Offset: c.offset, Message: "chunk extends past the end of input"}
	}
	return n, nil
}

func mismatchAt(a, b []byte) int {
	if bytes.Equal(a, b) {
		return -1
	}
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}
