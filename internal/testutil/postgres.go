// Package testutil provides helpers for integration tests that need a real
// PostgreSQL server to load chunks into.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// PostgresImage is the Docker image used for PostgreSQL test containers
	PostgresImage = "docker.io/postgres:16-alpine"

	// Default test database credentials
	TestDatabase = "sqlsplit"
	TestUsername = "sqlsplit"
	TestPassword = "sqlsplit"
)

// SetupPostgresContainer starts a PostgreSQL container and returns a connection string and cleanup function.
// The test is skipped in -short mode.
func SetupPostgresContainer(t *testing.T) (string, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL container in short mode")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithDatabase(TestDatabase),
		postgres.WithUsername(TestUsername),
		postgres.WithPassword(TestPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("PostgreSQL container not available: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	connString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		cleanup()
		t.Fatalf("Failed to get connection string: %v", err)
	}

	return connString, cleanup
}

// WriteChunks writes contents as consecutive chunk files of base into dir
func WriteChunks(t *testing.T, dir, base string, contents ...string) {
	t.Helper()
	for i, c := range contents {
		name := filepath.Join(dir, fmt.Sprintf("%05d-%s", i, base))
		if err := os.WriteFile(name, []byte(c), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}
