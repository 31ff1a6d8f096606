// Package integration exercises the database, relation and storage packages
// together.
package integration

import (
	"testing"

	"relstore/pkg/database"
	"relstore/pkg/relation"
)

// TestDatabase wraps database instance with cleanup
type TestDatabase struct {
	DB      *database.Database
	DataDir string
	cleanup func()
}

// SetupTestDB creates a new test database instance with cleanup
func SetupTestDB(t testing.TB) *TestDatabase {
	t.Helper()
	return OpenTestDB(t, t.TempDir())
}

// OpenTestDB opens a database over an existing data directory.
func OpenTestDB(t testing.TB, dataDir string) *TestDatabase {
	t.Helper()

	cfg := database.DefaultConfig()
	cfg.Name = "testdb"
	cfg.DataDir = dataDir

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	return &TestDatabase{
		DB:      db,
		DataDir: dataDir,
		cleanup: func() {
			if err := db.Close(); err != nil {
				t.Logf("warning: failed to close database: %v", err)
			}
		},
	}
}

// Cleanup closes the database
func (td *TestDatabase) Cleanup() {
	if td.cleanup != nil {
		td.cleanup()
		td.cleanup = nil
	}
}

// MustCreate creates a table from whitespace-separated names and domain tags
// and fails the test on error.
func (td *TestDatabase) MustCreate(t *testing.T, name, attrs, domains, key string) *relation.Table {
	t.Helper()
	tbl, err := td.DB.CreateTableFromStrings(name, attrs, domains, key)
	if err != nil {
		t.Fatalf("create table %s failed: %v", name, err)
	}
	return tbl
}

// MustInsert inserts a row and fails the test on error.
func MustInsert(t *testing.T, tbl *relation.Table, values ...any) {
	t.Helper()
	if err := tbl.InsertValues(values...); err != nil {
		t.Fatalf("insert into %s failed: %v", tbl.Name(), err)
	}
}

// Rows renders every row of tbl in order.
func Rows(tbl *relation.Table) []string {
	var out []string
	for r := range tbl.All() {
		out = append(out, r.String())
	}
	return out
}
