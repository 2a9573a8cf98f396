// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"database/sql"
	"testing"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"facilitydesk/internal/adapters/storage"
)

// Open returns a migrated in-memory SQLite database closed when the test ends.
// The pool is pinned to one connection because every new :memory: connection is a
// fresh, empty database.
func Open(t testing.TB) *storage.TimedDB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := storage.InitDB(db, storage.DialectSQLite); err != nil {
		t.Fatalf("init db: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return storage.NewTimedDB(db, storage.DialectSQLite, storage.WithLogger(logger))
}

// Exec runs raw SQL fixtures, failing the test on error.
func Exec(t testing.TB, db *storage.TimedDB, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		if _, err := db.RawDB().Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}
