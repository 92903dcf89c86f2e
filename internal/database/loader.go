package database

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// LoadResult summarizes a load run
type LoadResult struct {
	Chunks   int
	Bytes    int64
	Duration time.Duration
}

// Loader executes chunk files against PostgreSQL in sequence order
type Loader struct {
	pool              *Pool
	singleTransaction bool
}

// NewLoader creates a loader. With singleTransaction all chunks commit or
// roll back together; otherwise each chunk is its own implicit transaction.
func NewLoader(pool *Pool, singleTransaction bool) *Loader {
	return &Loader{pool: pool, singleTransaction: singleTransaction}
}

// Load executes every chunk. The first failure aborts the run.
func (l *Loader) Load(ctx context.Context, chunks []discovery.DiscoveredChunk) (*LoadResult, error) {
	start := time.Now()
	res := &LoadResult{}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return res, &errors.DatabaseError{Message: "failed to acquire connection", Err: err}
	}
	defer conn.Release()

	exec := func(c *pgx.Conn) error {
		for _, chunk := range chunks {
			n, err := execChunk(ctx, c.PgConn(), chunk)
			if err != nil {
				return err
			}
			res.Chunks++
			res.Bytes += n
		}
		return nil
	}

	if !l.singleTransaction {
		err = exec(conn.Conn())
		res.Duration = time.Since(start)
		return res, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return res, &errors.DatabaseError{Message: "failed to begin transaction", Err: err}
	}
	if err := exec(tx.Conn()); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.Error("rollback failed: %v", rbErr)
		}
		res.Duration = time.Since(start)
		return res, err
	}
	if err := tx.Commit(ctx); err != nil {
		return res, &errors.DatabaseError{Message: "failed to commit", Err: err}
	}
	res.Duration = time.Since(start)
	return res, nil
}

// execChunk runs one chunk over the simple query protocol, which accepts
// several statements per round trip.
func execChunk(ctx context.Context, conn *pgconn.PgConn, chunk discovery.DiscoveredChunk) (int64, error) {
	sql, err := os.ReadFile(chunk.Path)
	if err != nil {
		return 0, &errors.DatabaseError{Chunk: chunk.Name, Message: "failed to read chunk", Err: err}
	}
	if len(sql) == 0 {
		logger.Debug("skipping empty chunk %s", chunk.Name)
		return 0, nil
	}

	logger.Debug("executing %s (%d bytes)", chunk.Name, len(sql))
	if _, err := conn.Exec(ctx, string(sql)).ReadAll(); err != nil {
		return 0, chunkError(chunk.Name, err)
	}
	return int64(len(sql)), nil
}

func chunkError(name string, err error) error {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return &errors.DatabaseError{
			Chunk:      name,
			Message:    fmt.Sprintf("[%s] %s", pgErr.Code, pgErr.Message),
			Suggestion: pgErr.Hint,
			Err:        err,
		}
	}
	return &errors.DatabaseError{Chunk: name, Message: "execution failed", Err: err}
}
