package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/output"
	"github.com/cybertec-postgresql/sqlsplit/internal/progress"
	"github.com/cybertec-postgresql/sqlsplit/internal/report"
	"github.com/cybertec-postgresql/sqlsplit/internal/splitter"
)

// Split runs the splitter workflow for one input file. Progress and the
// summary go to stdout.
func Split(config *Config, inputPath string, stdout io.Writer) error {
	startTime := time.Now()

	// Step 1: Open input
	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	fmt.Fprintf(stdout, "Will split %s to a maximum of %d bytes\n", inputPath, config.MaxChunkSize)

	// Step 2: Prepare output
	sink, err := output.NewFiles(config.OutputDir, inputPath, config.Atomic)
	if err != nil {
		return err
	}

	opts := splitter.Options{
		MaxChunkSize:     config.MaxChunkSize,
		MaxStatementSize: config.MaxStatementSize,
	}
	if config.Progress {
		opts.Observer = progress.New(stdout, config.ProgressWidth, config.MaxChunkSize)
	}

	s, err := splitter.New(sink, opts)
	if err != nil {
		return fmt.Errorf("failed to create splitter: %w", err)
	}

	// Step 3: Split
	res, err := s.Split(in)
	if err != nil {
		logger.Debug("aborted after %d chunk(s)", len(res.Chunks))
		return err
	}

	// Step 4: Manifest
	manifest := report.NewManifest(filepath.Base(inputPath), config.MaxChunkSize, res.Chunks)
	if config.Manifest != "" {
		if err := report.WriteManifest(manifest, report.FormatType(config.Format), config.Manifest); err != nil {
			return &errors.WriteError{Path: config.Manifest, Err: err}
		}
		logger.Debug("manifest written to %s", config.Manifest)
	}

	// Step 5: Summary
	fmt.Fprintf(stdout, "\n")
	fmt.Fprintf(stdout, "Chunks:     %d\n", len(res.Chunks))
	fmt.Fprintf(stdout, "Statements: %d\n", res.Statements)
	fmt.Fprintf(stdout, "Bytes:      %d\n", res.Bytes)
	fmt.Fprintf(stdout, "Time:       %v\n", time.Since(startTime).Round(time.Millisecond))

	return nil
}

// openInput opens a dump for reading. Directories open fine on most
// platforms but fail on the first read, so they are rejected here.
func openInput(path string) (*os.File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, &errors.OpenInputError{Path: path, Err: err}
	}

	info, err := in.Stat()
	if err != nil {
		in.Close()
		return nil, &errors.OpenInputError{Path: path, Err: err}
	}
	if info.IsDir() {
		in.Close()
		return nil, &errors.OpenInputError{Path: path, Err: fmt.Errorf("is a directory")}
	}
	return in, nil
}
