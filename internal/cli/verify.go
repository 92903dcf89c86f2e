package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/report"
	"github.com/cybertec-postgresql/sqlsplit/internal/verify"
)

// Verify checks the chunks of inputPath found in the output directory. When
// a manifest is configured, chunk digests are checked against it as well.
func Verify(ctx context.Context, config *Config, inputPath string, stdout io.Writer) error {
	chunks, err := discovery.DiscoverChunks(config.OutputDir, inputPath)
	if err != nil {
		return fmt.Errorf("failed to discover chunks: %w", err)
	}
	logger.Debug("found %d chunk(s) in %s", len(chunks), config.OutputDir)

	if diags, err := discovery.DiscoverDiagnostics(config.OutputDir, inputPath); err == nil && len(diags) > 0 {
		logger.Warn("%d oversized statement dump(s) present, the split that produced these chunks aborted", len(diags))
	}

	rep, err := verify.Verify(inputPath, chunks, config.MaxChunkSize)
	if err != nil {
		return err
	}

	if config.Manifest != "" {
		m, err := report.ReadManifest(config.Manifest)
		if err != nil {
			return err
		}
		if len(m.Chunks) != len(chunks) {
			return &errors.MismatchError{
				Chunk:   config.Manifest,
				Offset:  rep.Bytes,
				Message: fmt.Sprintf("manifest lists %d chunk(s), found %d", len(m.Chunks), len(chunks)),
			}
		}
		pool := verify.NewChecksumPool(runtime.GOMAXPROCS(0))
		if err := pool.Check(ctx, config.OutputDir, m.Chunks); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "OK: %d chunk(s), %d statement(s), %d bytes\n", rep.Chunks, rep.Statements, rep.Bytes)
	return nil
}
