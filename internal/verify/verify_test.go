package verify

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, input string, chunks ...string) (string, []discovery.DiscoveredChunk) {
	t.Helper()
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "dump.sql")
	require.NoError(t, os.WriteFile(inputPath, []byte(input), 0644))

	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0755))
	testutil.WriteChunks(t, out, "dump.sql", chunks...)

	found, err := discovery.DiscoverChunks(out, "dump.sql")
	require.NoError(t, err)
	return inputPath, found
}

func TestVerify_OK(t *testing.T) {
	input := "a;b'c;d'e;f"
	inputPath, chunks := setup(t, input, "a;", "b'c;d'e;f")

	rep, err := Verify(inputPath, chunks, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Chunks)
	assert.Equal(t, 3, rep.Statements)
	assert.Equal(t, int64(len(input)), rep.Bytes)
}

func TestVerify_TrailingNewlineNotCounted(t *testing.T) {
	input := "a;\nb;\nc;\n"
	inputPath, chunks := setup(t, input, "a;\nb;", "\nc;\n")

	rep, err := Verify(inputPath, chunks, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Statements)
}

func TestVerify_EmptyInput(t *testing.T) {
	inputPath, chunks := setup(t, "", "")

	rep, err := Verify(inputPath, chunks, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Chunks)
	assert.Zero(t, rep.Statements)
}

func TestVerify_Failures(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		chunks   []string
		max      int64
		wantType interface{}
		wantMsg  string
	}{
		{"content differs", "a;b;", []string{"a;", "x;"}, 0, &errors.MismatchError{}, "differs"},
		{"straddling statement", "ab;cd;", []string{"ab;c", "d;"}, 0, &errors.MismatchError{}, "inside a statement"},
		{"quoted boundary", "a';';b;", []string{"a';", "';b;"}, 0, &errors.MismatchError{}, "inside a statement"},
		{"oversized chunk", "aaaa;", []string{"aaaa;"}, 3, &errors.MismatchError{}, "exceeds"},
		{"chunk past input", "a;", []string{"a;", "b;"}, 0, &errors.MismatchError{}, "past the end"},
		{"input past chunks", "a;b;", []string{"a;"}, 0, &errors.PrematureEndError{}, "before the input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputPath, chunks := setup(t, tt.input, tt.chunks...)
			_, err := Verify(inputPath, chunks, tt.max)
			require.Error(t, err)

			switch tt.wantType.(type) {
			case *errors.MismatchError:
				var m *errors.MismatchError
				assert.True(t, stderrors.As(err, &m), "expected MismatchError, got %T: %v", err, err)
			case *errors.PrematureEndError:
				var p *errors.PrematureEndError
				assert.True(t, stderrors.As(err, &p), "expected PrematureEndError, got %T: %v", err, err)
				assert.Equal(t, errors.ExitPrematureEnd, errors.ExitCode(err))
			}
			assert.True(t, strings.Contains(err.Error(), tt.wantMsg), "error %q should mention %q", err, tt.wantMsg)
		})
	}
}

func TestVerify_MismatchOffset(t *testing.T) {
	inputPath, chunks := setup(t, "abc;def;", "abc;", "dXf;")

	_, err := Verify(inputPath, chunks, 0)
	var m *errors.MismatchError
	require.True(t, stderrors.As(err, &m))
	assert.Equal(t, int64(5), m.Offset)
	assert.Equal(t, "00001-dump.sql", m.Chunk)
}

func TestVerify_MissingInput(t *testing.T) {
	_, err := Verify(filepath.Join(t.TempDir(), "nope.sql"), nil, 0)
	assert.Equal(t, errors.ExitCannotOpenInput, errors.ExitCode(err))
}
