//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/greenleaf-study/greenleaf/internal/ciutil"
	"github.com/greenleaf-study/greenleaf/internal/platform/postgres"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// EnvDatabaseURL names the variable holding the test database URL.
const EnvDatabaseURL = ciutil.EnvTestDatabaseURL

// TestTimeout bounds setup queries.
const TestTimeout = 5 * time.Second

var migrateOnce sync.Once

// DatabaseURL returns the configured test database URL, or "".
func DatabaseURL() string {
	return ciutil.TestDatabaseURL(nil)
}

// Open connects to the test database and migrates it once per process.
// The test is skipped when no database is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skipf("%s not set, skipping integration test", EnvDatabaseURL)
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")

	var migrateErr error
	migrateOnce.Do(func() { migrateErr = Migrate(db) })
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}

// Migrate applies every embedded migration.
func Migrate(db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(postgres.Migrations)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, postgres.MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
