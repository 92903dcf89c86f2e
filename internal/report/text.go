package report

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// TextReporter formats a manifest as an aligned table
type TextReporter struct{}

// NewTextReporter creates a new text reporter
func NewTextReporter() *TextReporter {
	return &TextReporter{}
}

// Format writes the table to the writer
func (r *TextReporter) Format(m *Manifest, writer io.Writer) error {
	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "Input:\t%s\t\n", m.Input)
	fmt.Fprintf(tw, "Bytes:\t%d\t\n", m.InputBytes)
	fmt.Fprintf(tw, "Statements:\t%d\t\n", m.Statements)
	fmt.Fprintf(tw, "Chunks:\t%d (max %d bytes)\t\n", len(m.Chunks), m.MaxChunkSize)
	fmt.Fprintln(tw, "\t\t")

	fmt.Fprintln(tw, "Seq\tBytes\tStatements\tFill\tPath\t")
	for _, c := range m.Chunks {
		fill := 0.0
		if m.MaxChunkSize > 0 {
			fill = float64(c.Bytes) / float64(m.MaxChunkSize) * 100
		}
		fmt.Fprintf(tw, "%05d\t%d\t%d\t%.1f%%\t%s\t\n", c.Sequence, c.Bytes, c.Statements, fill, c.Path)
	}

	return tw.Flush()
}
