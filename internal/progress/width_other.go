//go:build !unix

package progress

import "io"

func terminalColumns(io.Writer) int { return 0 }
