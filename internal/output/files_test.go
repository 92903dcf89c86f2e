package output

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles_WriteChunk(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		t.Run(map[bool]string{false: "overwrite", true: "atomic"}[atomic], func(t *testing.T) {
			dir := t.TempDir()
			f, err := NewFiles(dir, "/data/dump.sql", atomic)
			require.NoError(t, err)

			path, err := f.WriteChunk(3, []byte("SELECT 1;"))
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "00003-dump.sql"), path)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "SELECT 1;", string(data))

			// rewriting truncates
			_, err = f.WriteChunk(3, []byte("x"))
			require.NoError(t, err)
			data, err = os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "x", string(data))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no temp files should remain")
		})
	}
}

func TestFiles_WriteEmptyChunk(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFiles(dir, "empty.sql", false)
	require.NoError(t, err)

	path, err := f.WriteChunk(0, nil)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestFiles_WriteDiagnostic(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFiles(dir, "dump.sql", false)
	require.NoError(t, err)

	path, err := f.WriteDiagnostic(1, []byte("huge;"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "00001-dump.sql.oversized"), path)
}

func TestNewFiles_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	_, err := NewFiles(dir, "dump.sql", false)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestFiles_OpenOutputError(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		f := &Files{Dir: filepath.Join(t.TempDir(), "missing"), Base: "dump.sql", Atomic: atomic}

		_, err := f.WriteChunk(0, []byte("x"))
		var openErr *errors.OpenOutputError
		require.True(t, stderrors.As(err, &openErr), "atomic=%v: expected OpenOutputError, got %v", atomic, err)
		assert.Equal(t, errors.ExitCannotOpenOutput, errors.ExitCode(err))
	}
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return len(p) - 1, nil
}

func TestWriteAll_ShortWrite(t *testing.T) {
	err := writeAll(shortWriter{}, make([]byte, defaultBufSize+1))
	require.Error(t, err)
}
