package migrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

var testMigrations = fstest.MapFS{
	"migrations/001_create_settings.up.sql":    {Data: []byte(`CREATE TABLE settings (key TEXT PRIMARY KEY, value TEXT NOT NULL);`)},
	"migrations/001_create_settings.down.sql":  {Data: []byte(`DROP TABLE settings;`)},
	"migrations/002_create_locations.up.sql":   {Data: []byte(`CREATE TABLE locations (key TEXT PRIMARY KEY);`)},
	"migrations/002_create_locations.down.sql": {Data: []byte(`DROP TABLE locations;`)},
	"migrations/README.md":                     {Data: []byte(`ignored`)},
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n == 1
}

func TestGetMigrations(t *testing.T) {
	migrations, err := NewFSProvider(testMigrations, "migrations", "").GetMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "create settings" || migrations[0].Down == "" {
		t.Errorf("unexpected first migration %+v", migrations[0])
	}
	if migrations[1].Version != 2 {
		t.Errorf("expected sorted versions, got %d", migrations[1].Version)
	}
}

func TestMigrateUpAndDown(t *testing.T) {
	db := openDB(t)
	m := NewMigrator(db, NewFSProvider(testMigrations, "migrations", "schema_migrations"))

	pending, err := m.GetPendingMigrations()
	if err != nil || len(pending) != 2 {
		t.Fatalf("expected 2 pending migrations, got %d (%v)", len(pending), err)
	}

	if err := m.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	if v, _ := m.GetCurrentVersion(); v != 2 {
		t.Errorf("expected version 2, got %d", v)
	}
	if !tableExists(t, db, "settings") || !tableExists(t, db, "locations") {
		t.Error("expected both tables after migrating up")
	}

	// Running again is a no-op
	if err := m.MigrateUp(); err != nil {
		t.Fatalf("second MigrateUp: %v", err)
	}

	if err := m.MigrateTo(1); err != nil {
		t.Fatalf("MigrateTo(1): %v", err)
	}
	if v, _ := m.GetCurrentVersion(); v != 1 {
		t.Errorf("expected version 1, got %d", v)
	}
	if tableExists(t, db, "locations") || !tableExists(t, db, "settings") {
		t.Error("expected only settings after rolling back to 1")
	}

	if err := m.MigrateTo(0); err != nil {
		t.Fatalf("MigrateTo(0): %v", err)
	}
	if v, _ := m.GetCurrentVersion(); v != 0 {
		t.Errorf("expected version 0, got %d", v)
	}
}

func TestMissingDownMigration(t *testing.T) {
	fsys := fstest.MapFS{
		"m/001_only_up.up.sql": {Data: []byte(`CREATE TABLE t (id INTEGER);`)},
	}
	m := NewMigrator(openDB(t), NewFSProvider(fsys, "m", ""))
	if err := m.MigrateUp(); err != nil {
		t.Fatal(err)
	}
	if err := m.MigrateTo(0); err == nil {
		t.Error("expected an error rolling back without down SQL")
	}
}
