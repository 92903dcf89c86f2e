package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cybertec-postgresql/sqlsplit/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, 10, 100)

	assert.Equal(t, "00000[          ]", b.Render(0, 0, ""))
	assert.Equal(t, "00002[=====     ] x", b.Render(2, 50, " x"))
	assert.Equal(t, "00001[==========]", b.Render(1, 100, ""))
	assert.Equal(t, "00001[==========]", b.Render(1, 250, ""), "overfull clamps")
}

func TestNew_DefaultWidth(t *testing.T) {
	b := New(&bytes.Buffer{}, 0, 10)
	assert.Equal(t, DefaultWidth, b.Width())
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "SELECT 1;", Preview([]byte("SELECT 1;")))
	assert.Equal(t, "INSERT INTO t VALUES (1);", Preview([]byte("INSERT INTO t\r\n VALUES (1);")))

	long := strings.Repeat("a", 100)
	assert.Len(t, Preview([]byte(long)), previewLen)
}

func TestNonTTYPrintsOneLinePerChunk(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, 4, 8)

	b.StatementPacked(0, 4, []byte("abc;"))
	assert.Empty(t, buf.String(), "non-tty output should not redraw per statement")

	b.ChunkWritten(types.ChunkInfo{Sequence: 0, Path: "00000-x.sql", Bytes: 8})
	b.ChunkWritten(types.ChunkInfo{Sequence: 1, Path: "00001-x.sql", Bytes: 2})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"00000[====] Writing to file 00000-x.sql",
		"00001[=   ] Writing to file 00001-x.sql",
	}, lines)
}
