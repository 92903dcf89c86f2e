package integration_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cybertec-postgresql/sqlsplit/internal/cli"
	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/testutil"
	"github.com/jackc/pgx/v5"
)

// dump builds a plain-format dump with quoted semicolons and escapes so chunk
// boundaries land in interesting places
func dump(rows int) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE items (id int PRIMARY KEY, note text);\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "INSERT INTO items VALUES (%d, E'row %d; it\\'s fine');\n", i, i)
	}
	b.WriteString("CREATE INDEX items_note ON items (note);\n")
	return b.String()
}

// TestEndToEndWithTestcontainers splits a dump, verifies the chunks and
// loads them into a real PostgreSQL instance
func TestEndToEndWithTestcontainers(t *testing.T) {
	ctx := context.Background()

	const rows = 500
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "items.sql")
	if err := os.WriteFile(inputPath, []byte(dump(rows)), 0644); err != nil {
		t.Fatalf("Failed to write dump: %v", err)
	}

	config := cli.DefaultConfig
	config.MaxChunkSize = 1024
	config.OutputDir = filepath.Join(dir, "chunks")
	config.Progress = false
	config.Manifest = filepath.Join(dir, "chunks", "manifest.json")

	// Phase 1: Split
	t.Run("Split", func(t *testing.T) {
		var out bytes.Buffer
		if err := cli.Split(&config, inputPath, &out); err != nil {
			t.Fatalf("Split failed: %v", err)
		}

		chunks, err := discovery.DiscoverChunks(config.OutputDir, inputPath)
		if err != nil {
			t.Fatalf("Failed to discover chunks: %v", err)
		}
		if len(chunks) < 2 {
			t.Fatalf("expected several chunks, got %d", len(chunks))
		}
		for _, c := range chunks {
			if c.Size > config.MaxChunkSize {
				t.Errorf("%s is %d bytes, over the %d limit", c.Name, c.Size, config.MaxChunkSize)
			}
		}
		t.Logf("Split into %d chunks", len(chunks))
	})

	// Phase 2: Verify
	t.Run("Verify", func(t *testing.T) {
		var out bytes.Buffer
		if err := cli.Verify(ctx, &config, inputPath, &out); err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if !strings.HasPrefix(out.String(), "OK:") {
			t.Errorf("unexpected verify output: %q", out.String())
		}
	})

	// Phase 3: Load
	t.Run("Load", func(t *testing.T) {
		connString, cleanup := testutil.SetupPostgresContainer(t)
		defer cleanup()

		config.ConnectionString = connString
		config.SingleTransaction = true

		var out bytes.Buffer
		if err := cli.Load(ctx, &config, inputPath, &out); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		conn, err := pgx.Connect(ctx, connString)
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer conn.Close(ctx)

		var count int
		if err := conn.QueryRow(ctx, "SELECT count(*) FROM items WHERE note LIKE '%; it''s fine'").Scan(&count); err != nil {
			t.Fatalf("Failed to count rows: %v", err)
		}
		if count != rows {
			t.Errorf("expected %d rows, got %d", rows, count)
		}
	})
}
