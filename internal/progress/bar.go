package progress

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cybertec-postgresql/sqlsplit/pkg/types"
)

const (
	// DefaultWidth is used when neither the caller nor the terminal gives one
	DefaultWidth = 60
	previewLen   = 40
	labelWidth   = 5
)

// Bar draws a per-chunk fill gauge with a preview of the current statement:
//
//	00003[=============                 ] INSERT INTO `users` VALUES (1,'a'),...
//
// On a terminal the line is redrawn in place; otherwise one line is printed
// per flushed chunk.
type Bar struct {
	w     io.Writer
	width int
	max   int64
	isTTY bool
	last  int // length of the last in-place line
}

// New creates a bar for chunks of at most maxBytes. A width of 0 sizes the
// bar from the terminal.
func New(w io.Writer, width int, maxBytes int64) *Bar {
	if w == nil {
		w = os.Stdout
	}
	b := &Bar{w: w, max: maxBytes}
	if f, ok := w.(*os.File); ok && os.Getenv("CI") == "" {
		if fi, err := f.Stat(); err == nil {
			b.isTTY = fi.Mode()&os.ModeCharDevice != 0
		}
	}
	if width <= 0 {
		width = DefaultWidth
		if cols := terminalColumns(w); cols > 0 {
			// label, brackets, a space and the preview with its ellipsis
			if fit := cols - labelWidth - 2 - 1 - previewLen - 3; fit > 10 {
				width = fit
			}
		}
	}
	b.width = width
	return b
}

// Width returns the number of cells inside the brackets
func (b *Bar) Width() int { return b.width }

// StatementPacked redraws the gauge after a statement joined chunk seq
func (b *Bar) StatementPacked(seq int, chunkLen int64, statement []byte) {
	if !b.isTTY {
		return
	}
	b.redraw(b.Render(seq, chunkLen, " "+Preview(statement)+"..."))
}

// ChunkWritten prints the final state of a flushed chunk on its own line
func (b *Bar) ChunkWritten(info types.ChunkInfo) {
	line := b.Render(info.Sequence, info.Bytes, " Writing to file "+info.Path)
	if b.isTTY {
		b.redraw(line)
		fmt.Fprint(b.w, "\n")
		b.last = 0
		return
	}
	fmt.Fprintln(b.w, line)
}

// Render formats one bar line
func (b *Bar) Render(seq int, filled int64, suffix string) string {
	cells := 0
	if b.max > 0 {
		cells = int(float64(filled) / float64(b.max) * float64(b.width))
	}
	if cells > b.width {
		cells = b.width
	}
	if cells < 0 {
		cells = 0
	}
	return fmt.Sprintf("%0*d[%s%s]%s", labelWidth, seq,
		strings.Repeat("=", cells), strings.Repeat(" ", b.width-cells), suffix)
}

func (b *Bar) redraw(line string) {
	pad := ""
	if n := b.last - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprint(b.w, "\r"+line+pad)
	b.last = len(line)
}

// Preview returns the first bytes of a statement with line breaks removed
func Preview(statement []byte) string {
	p := statement
	if len(p) > previewLen {
		p = p[:previewLen]
	}
	p = bytes.ReplaceAll(p, []byte("\n"), nil)
	p = bytes.ReplaceAll(p, []byte("\r"), nil)
	return string(p)
}
