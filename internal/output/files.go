package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
)

const defaultBufSize = 64 * 1024

// Files writes chunks as sequentially numbered files in one directory
type Files struct {
	Dir    string
	Base   string      // basename of the input file
	Atomic bool        // temp file + rename instead of writing in place
	Perm   os.FileMode // 0 means 0644
}

// NewFiles creates a Files sink for chunks of inputPath inside dir
func NewFiles(dir, inputPath string, atomic bool) (*Files, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &errors.OpenOutputError{Path: dir, Err: err}
	}
	return &Files{Dir: dir, Base: filepath.Base(inputPath), Atomic: atomic}, nil
}

// WriteChunk writes chunk seq
func (f *Files) WriteChunk(seq int, data []byte) (string, error) {
	return f.write(filepath.Join(f.Dir, discovery.ChunkName(seq, f.Base)), data)
}

// WriteDiagnostic writes an unpackable statement next to the chunks
func (f *Files) WriteDiagnostic(seq int, data []byte) (string, error) {
	return f.write(filepath.Join(f.Dir, discovery.DiagnosticName(seq, f.Base)), data)
}

func (f *Files) perm() os.FileMode {
	if f.Perm == 0 {
		return 0644
	}
	return f.Perm
}

func (f *Files) write(dest string, data []byte) (string, error) {
	if f.Atomic {
		return dest, f.writeAtomic(dest, data)
	}
	return dest, f.writeOverwrite(dest, data)
}

func (f *Files) writeOverwrite(dest string, data []byte) error {
	file, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.perm())
	if err != nil {
		return &errors.OpenOutputError{Path: dest, Err: err}
	}

	if err := writeAll(file, data); err != nil {
		_ = file.Close()
		return &errors.WriteError{Path: dest, Err: err}
	}
	if err := file.Close(); err != nil {
		return &errors.WriteError{Path: dest, Err: err}
	}
	return nil
}

func (f *Files) writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &errors.OpenOutputError{Path: dest, Err: err}
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, f.perm())

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &errors.WriteError{Path: dest, Err: err}
	}

	if err := writeAll(tmp, data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &errors.WriteError{Path: dest, Err: err}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return &errors.WriteError{Path: dest, Err: err}
	}
	syncDir(dir)
	return nil
}

// writeAll writes data through a buffer and turns short writes into errors
func writeAll(w io.Writer, data []byte) error {
	bw := bufio.NewWriterSize(w, defaultBufSize)
	n, err := bw.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("%w: wrote %d of %d bytes", io.ErrShortWrite, n, len(data))
	}
	return bw.Flush()
}

// syncDir is best effort; not every platform can fsync a directory
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
