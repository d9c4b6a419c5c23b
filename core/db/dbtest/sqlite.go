// Package dbtest provides SQLite-backed fixtures for tests that need a real
// database/sql driver.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/fbz-tec/vexport/core/db"
	_ "github.com/mattn/go-sqlite3"
)

// Driver is the database/sql driver name used by the fixtures.
const Driver = "sqlite3"

// NewDatabase creates a SQLite file in a temporary directory, runs the
// given statements against it and returns its DSN.
func NewDatabase(t testing.TB, statements ...string) string {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "fixture.db")
	conn, err := sql.Open(Driver, dsn)
	if err != nil {
		t.Fatalf("open fixture database: %v", err)
	}
	defer conn.Close()

	for _, stmt := range statements {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("fixture statement %q: %v", stmt, err)
		}
	}
	return dsn
}

// Factory returns a db.Factory that ignores the connection parameters and
// always opens dsn. Every store it creates is counted in opened.
func Factory(dsn string, opened *int) db.Factory {
	return db.FactoryFunc(func(db.ConnParams) (db.Store, error) {
		if opened != nil {
			*opened++
		}
		return db.NewSQLStore(Driver, dsn), nil
	})
}

// Samples is the fixture used across export tests: two text columns with
// a NULL in the second row.
var Samples = []string{
	`CREATE TABLE samples (id INTEGER PRIMARY KEY, col1 TEXT, col2 TEXT)`,
	`INSERT INTO samples (col1, col2) VALUES ('v1', 'v2'), ('v3', NULL), ('v5', 'v6')`,
}

// SamplesQuery selects Samples in insertion order.
const SamplesQuery = "SELECT col1, col2 FROM samples ORDER BY id"
