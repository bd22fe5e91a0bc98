package mocks

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// NewTxDB returns an empty in-memory SQLite database. It satisfies
// store.Beginner so services can open and commit real transactions while
// their stores are mocked.
func NewTxDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
