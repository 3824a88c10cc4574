package migration

import (
	"database/sql"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/pibble/migrations"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func memFS(files map[string]string) fstest.MapFS {
	out := fstest.MapFS{}
	for name, body := range files {
		out[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return out
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n); err != nil {
		t.Fatalf("sqlite_master query failed: %v", err)
	}
	return n == 1
}

func TestCurrentVersionRoundTrip(t *testing.T) {
	runner := NewRunner(openTestDB(t), memFS(map[string]string{
		"001_entries.sql": "CREATE TABLE entries (key TEXT);",
	}), DriverSQLite)

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("fresh database version = %d, want 0", version)
	}

	if err := runner.SetVersion(4); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if version, _ := runner.GetCurrentVersion(); version != 4 {
		t.Errorf("version = %d, want 4", version)
	}
}

func TestReadMigrationFilesSorted(t *testing.T) {
	runner := NewRunner(openTestDB(t), memFS(map[string]string{
		"003_meta.sql":    "CREATE TABLE meta (k TEXT);",
		"001_entries.sql": "CREATE TABLE entries (key TEXT);",
		"002_index.sql":   "CREATE INDEX entries_key ON entries (key);",
		"README.md":       "ignored",
	}), DriverSQLite)

	got, err := runner.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles failed: %v", err)
	}

	want := []struct {
		version int
		name    string
	}{{1, "entries"}, {2, "index"}, {3, "meta"}}
	if len(got) != len(want) {
		t.Fatalf("got %d migrations, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Version != w.version || got[i].Name != w.name {
			t.Errorf("migration %d = (%d, %q), want (%d, %q)", i, got[i].Version, got[i].Name, w.version, w.name)
		}
	}

	latest, err := runner.GetLatestVersion()
	if err != nil || latest != 3 {
		t.Errorf("GetLatestVersion() = %d, %v; want 3", latest, err)
	}
}

func TestApplyMigrations(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	write("001_entries.sql", "CREATE TABLE entries (key TEXT PRIMARY KEY, body TEXT);")

	runner := NewRunner(db, os.DirFS(dir), DriverSQLite)

	var logs []string
	count, err := runner.ApplyMigrations(func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 1 {
		t.Errorf("applied %d, want 1", count)
	}
	if !tableExists(t, db, "entries") {
		t.Error("entries table was not created")
	}
	if len(logs) == 0 {
		t.Error("expected progress messages")
	}

	write("002_meta.sql", "CREATE TABLE meta (k TEXT);")
	count, err = runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("incremental ApplyMigrations failed: %v", err)
	}
	if count != 1 {
		t.Errorf("incremental applied %d, want 1", count)
	}

	count, err = runner.ApplyMigrations(nil)
	if err != nil || count != 0 {
		t.Errorf("repeat ApplyMigrations = %d, %v; want 0, nil", count, err)
	}
	if version, _ := runner.GetCurrentVersion(); version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
}

func TestApplyMigrationsRollsBack(t *testing.T) {
	db := openTestDB(t)
	runner := NewRunner(db, memFS(map[string]string{
		"001_broken.sql": "CREATE TABLE entries (key TEXT);\nNOT VALID SQL;",
	}), DriverSQLite)

	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("ApplyMigrations should fail on invalid SQL")
	}
	if version, _ := runner.GetCurrentVersion(); version != 0 {
		t.Errorf("version = %d after failed migration, want 0", version)
	}
	if tableExists(t, db, "entries") {
		t.Error("entries table should not survive a rolled back migration")
	}
}

func TestNewerSchemaRejected(t *testing.T) {
	runner := NewRunner(openTestDB(t), memFS(map[string]string{
		"001_entries.sql": "CREATE TABLE entries (key TEXT);",
	}), DriverSQLite)

	if err := runner.SetVersion(9); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if err := runner.ValidateVersion(); err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("ValidateVersion() = %v, want newer schema error", err)
	}
	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Error("ApplyMigrations should refuse a newer schema")
	}
}

func TestMigrationFilenameErrors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantMsg string
	}{
		{"missing underscore", map[string]string{"001entries.sql": "SELECT 1;"}, "expected NNN_name.sql"},
		{"non numeric", map[string]string{"abc_entries.sql": "SELECT 1;"}, "invalid version number"},
		{"zero version", map[string]string{"000_entries.sql": "SELECT 1;"}, "version must be at least 1"},
		{"duplicate", map[string]string{"001_a.sql": "SELECT 1;", "001_b.sql": "SELECT 1;"}, "duplicate migration version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(openTestDB(t), memFS(tt.files), DriverSQLite)
			_, err := runner.ReadMigrationFiles()
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("ReadMigrationFiles() error = %v, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestEmbeddedSQLiteMigrations(t *testing.T) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("fs.Sub failed: %v", err)
	}

	db := openTestDB(t)
	runner := NewRunner(db, sub, DriverSQLite)
	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("embedded migrations failed: %v", err)
	}
	if !tableExists(t, db, "cache_entries") {
		t.Error("cache_entries table missing after embedded migrations")
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion() = %v", err)
	}
}
