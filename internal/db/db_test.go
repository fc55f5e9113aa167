package db_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"registration-service/internal/config"
	"registration-service/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type account struct {
	bun.BaseModel `bun:"table:accounts"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Email string `bun:"email,notnull,unique"`
}

func TestNew_SQLite(t *testing.T) {
	ctx := context.Background()
	database, err := db.New(config.DatabaseConfig{
		Driver: db.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(database) })

	require.NoError(t, db.RunMigrations(ctx, database, (*account)(nil)))
	// Running twice is a no-op
	require.NoError(t, db.RunMigrations(ctx, database, (*account)(nil)))

	first := &account{Email: "ali@example.com"}
	_, err = database.NewInsert().Model(first).Exec(ctx)
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	_, err = database.NewInsert().Model(&account{Email: "ali@example.com"}).Exec(ctx)
	require.Error(t, err)

	detail, ok := db.UniqueViolation(fmt.Errorf("insert: %w", err))
	assert.True(t, ok)
	assert.Contains(t, detail, "accounts.email")
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := db.New(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestUniqueViolation_OtherErrors(t *testing.T) {
	_, ok := db.UniqueViolation(nil)
	assert.False(t, ok)

	_, ok = db.UniqueViolation(errors.New("connection refused"))
	assert.False(t, ok)
}
