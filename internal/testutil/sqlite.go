package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"registration-service/internal/db"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// NewSQLiteDB creates a file-backed SQLite database in a temp directory with
// tables for models. The database is closed when the test completes.
func NewSQLiteDB(t testing.TB, models ...interface{}) *bun.DB {
	t.Helper()

	database, err := db.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close(database) })

	require.NoError(t, db.RunMigrations(context.Background(), database, models...))
	return database
}

// CleanupTables removes every row from tables and restarts their id sequences.
func CleanupTables(t testing.TB, database *bun.DB, tables ...string) {
	t.Helper()
	ctx := context.Background()

	for _, table := range tables {
		if database.Dialect().Name() == dialect.PG {
			_, err := database.ExecContext(ctx, "TRUNCATE "+table+" RESTART IDENTITY CASCADE")
			require.NoError(t, err, "failed to truncate table: %s", table)
			continue
		}

		_, err := database.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err, "failed to clean table: %s", table)
		_, _ = database.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = ?", table)
	}
}
