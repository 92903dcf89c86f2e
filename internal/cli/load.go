package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/cybertec-postgresql/sqlsplit/internal/database"
	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
)

// Load executes the chunks of inputPath against PostgreSQL in order
func Load(ctx context.Context, config *Config, inputPath string, stdout io.Writer) error {
	chunks, err := discovery.DiscoverChunks(config.OutputDir, inputPath)
	if err != nil {
		return fmt.Errorf("failed to discover chunks: %w", err)
	}

	pool, err := database.NewPool(ctx, config.ConnectionString)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Debug("connected, server_version_num %d", pool.ServerVersion())
	if config.SingleTransaction {
		logger.Debug("loading %d chunk(s) in a single transaction", len(chunks))
	}

	res, err := database.NewLoader(pool, config.SingleTransaction).Load(ctx, chunks)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Loaded %d chunk(s), %d bytes in %v\n", res.Chunks, res.Bytes, res.Duration)
	return nil
}
