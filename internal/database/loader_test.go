package database

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/cybertec-postgresql/sqlsplit/internal/testutil"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkError_PgError(t *testing.T) {
	err := chunkError("00001-dump.sql", &pgconn.PgError{Code: "42P01", Message: `relation "x" does not exist`, Hint: "create it"})

	var dbErr *errors.DatabaseError
	require.True(t, stderrors.As(err, &dbErr))
	assert.Equal(t, "00001-dump.sql", dbErr.Chunk)
	assert.Contains(t, dbErr.Message, "42P01")
	assert.Equal(t, "create it", dbErr.Suggestion)
	assert.Equal(t, errors.ExitUnknown, errors.ExitCode(err))
}

func TestNewPool_InvalidConnString(t *testing.T) {
	_, err := NewPool(context.Background(), "postgres://%zz")
	var dbErr *errors.DatabaseError
	require.True(t, stderrors.As(err, &dbErr), "expected DatabaseError, got %v", err)
	assert.NotEmpty(t, dbErr.Suggestion)
}

func setupLoad(t *testing.T, contents ...string) (*Pool, []discovery.DiscoveredChunk) {
	t.Helper()
	connString, cleanup := testutil.SetupPostgresContainer(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	pool, err := NewPool(ctx, connString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	assert.Greater(t, pool.ServerVersion(), 100000)

	dir := t.TempDir()
	testutil.WriteChunks(t, dir, "dump.sql", contents...)
	chunks, err := discovery.DiscoverChunks(dir, "dump.sql")
	require.NoError(t, err)
	return pool, chunks
}

func countRows(t *testing.T, pool *Pool) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), "SELECT count(*) FROM items").Scan(&n))
	return n
}

func TestLoader_Load(t *testing.T) {
	pool, chunks := setupLoad(t,
		"CREATE TABLE items (id int, name text);\nINSERT INTO items VALUES (1, 'a;b');",
		"INSERT INTO items VALUES (2, 'it''s');\nINSERT INTO items VALUES (3, 'c');",
		"",
	)

	res, err := NewLoader(pool, false).Load(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, 3, countRows(t, pool))
}

func TestLoader_FailureAbortsWithoutTransaction(t *testing.T) {
	pool, chunks := setupLoad(t,
		"CREATE TABLE items (id int);INSERT INTO items VALUES (1);",
		"INSERT INTO missing VALUES (2);",
		"INSERT INTO items VALUES (3);",
	)

	res, err := NewLoader(pool, false).Load(context.Background(), chunks)
	var dbErr *errors.DatabaseError
	require.True(t, stderrors.As(err, &dbErr), "expected DatabaseError, got %v", err)
	assert.Equal(t, "00001-dump.sql", dbErr.Chunk)
	assert.Equal(t, 1, res.Chunks)
	assert.Equal(t, 1, countRows(t, pool), "first chunk stays committed")
}

func TestLoader_SingleTransactionRollsBack(t *testing.T) {
	pool, chunks := setupLoad(t,
		"CREATE TABLE items (id int);INSERT INTO items VALUES (1);",
		"INSERT INTO missing VALUES (2);",
	)

	_, err := NewLoader(pool, true).Load(context.Background(), chunks)
	require.Error(t, err)

	var exists bool
	require.NoError(t, pool.QueryRow(context.Background(),
		"SELECT to_regclass('items') IS NOT NULL").Scan(&exists))
	assert.False(t, exists, "table creation should have been rolled back")
}
