package migration

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/komaplan/migrations"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	return db, func() { db.Close() }
}

func setupTestMigrations(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test migration %s: %v", name, err)
		}
	}
	return dir
}

func newRunner(t *testing.T, db *sql.DB, dir string) *Runner {
	t.Helper()
	runner, err := NewRunner(db, os.DirFS(dir), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	return runner
}

func TestNewRunnerRejectsUnknownDriver(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	if _, err := NewRunner(db, os.DirFS(t.TempDir()), Driver("mysql")); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestVersionRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	runner := newRunner(t, db, setupTestMigrations(t, map[string]string{"001_test.sql": "CREATE TABLE test (id INTEGER);"}))

	version, err := runner.GetCurrentVersion()
	if err != nil || version != 0 {
		t.Fatalf("fresh database version = %d, %v", version, err)
	}
	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if version, _ = runner.GetCurrentVersion(); version != 5 {
		t.Errorf("expected version 5, got %d", version)
	}
	if err := runner.ValidateVersion(); err == nil || !strings.Contains(err.Error(), "newer") {
		t.Errorf("expected newer-schema error, got %v", err)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	tests := []struct {
		name    string
		files   map[string]string
		want    []int
		wantErr bool
	}{
		{
			name:  "sorted",
			files: map[string]string{"002_b.sql": "SELECT 1;", "001_a.sql": "SELECT 1;", "README.md": "ignored"},
			want:  []int{1, 2},
		},
		{name: "bad name", files: map[string]string{"init.sql": "SELECT 1;"}, wantErr: true},
		{name: "bad version", files: map[string]string{"abc_init.sql": "SELECT 1;"}, wantErr: true},
		{name: "zero version", files: map[string]string{"000_init.sql": "SELECT 1;"}, wantErr: true},
		{name: "duplicate", files: map[string]string{"001_a.sql": "SELECT 1;", "0001_b.sql": "SELECT 1;"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newRunner(t, db, setupTestMigrations(t, tt.files))
			got, err := runner.ReadMigrationFiles()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadMigrationFiles() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d migrations, want %d", len(got), len(tt.want))
			}
			for i, m := range got {
				if m.Version != tt.want[i] {
					t.Errorf("migration %d version = %d, want %d", i, m.Version, tt.want[i])
				}
			}
		})
	}
}

func TestApplyMigrationsRollsBackFailure(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	runner := newRunner(t, db, setupTestMigrations(t, map[string]string{
		"001_ok.sql":  "CREATE TABLE ok (id INTEGER);",
		"002_bad.sql": "CREATE TABLE broken (id INTEGER",
	}))

	applied, err := runner.ApplyMigrations(nil)
	if err == nil {
		t.Fatal("expected failure on malformed migration")
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
	if version, _ := runner.GetCurrentVersion(); version != 1 {
		t.Errorf("version after failure = %d, want 1", version)
	}
}

func TestEmbeddedSQLiteMigrations(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	runner, err := NewRunner(db, migrations.SQLite(), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	var logs []string
	applied, err := runner.ApplyMigrations(func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if applied < 1 {
		t.Errorf("expected at least one embedded migration, got %d", applied)
	}
	if len(logs) == 0 {
		t.Errorf("expected progress messages")
	}

	for _, table := range []string{"settings", "annual_targets", "exceptions", "daily_plan"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	current, latest, err := runner.Status()
	if err != nil || current != latest {
		t.Errorf("Status() = %d, %d, %v", current, latest, err)
	}
	if again, err := runner.ApplyMigrations(nil); err != nil || again != 0 {
		t.Errorf("second run applied %d, %v", again, err)
	}
}
