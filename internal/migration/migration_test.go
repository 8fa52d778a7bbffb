package migration

import (
	"database/sql"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestApplyFreshDatabase(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"001_init.sql":       {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
		"002_add_labels.sql": {Data: []byte("ALTER TABLE items ADD COLUMN label TEXT;")},
	}
	runner := NewRunner(db, fsys, SQLite, nil)

	applied, err := runner.Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied != 2 {
		t.Errorf("expected 2 migrations applied, got %d", applied)
	}

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("current version: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	if _, err := db.Exec("INSERT INTO items (id, label) VALUES ('a', 'x')"); err != nil {
		t.Errorf("schema not applied: %v", err)
	}

	// Re-running is a no-op
	applied, err = runner.Apply()
	if err != nil {
		t.Fatalf("re-apply: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected 0 migrations on re-apply, got %d", applied)
	}
}

func TestApplyPartialUpgrade(t *testing.T) {
	db := openTestDB(t)
	v1 := fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
	}
	if _, err := NewRunner(db, v1, SQLite, nil).Apply(); err != nil {
		t.Fatalf("apply v1: %v", err)
	}

	v2 := fstest.MapFS{
		"001_init.sql":       v1["001_init.sql"],
		"002_add_labels.sql": {Data: []byte("ALTER TABLE items ADD COLUMN label TEXT;")},
	}
	applied, err := NewRunner(db, v2, SQLite, nil).Apply()
	if err != nil {
		t.Fatalf("apply v2: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied, got %d", applied)
	}
}

func TestApplyFailureRollsBack(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
		"002_bad.sql":  {Data: []byte("ALTER TABLE missing ADD COLUMN x TEXT;")},
	}
	runner := NewRunner(db, fsys, SQLite, nil)

	applied, err := runner.Apply()
	if err == nil {
		t.Fatal("expected error from bad migration")
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied before failure, got %d", applied)
	}

	// Version stays at the last good migration
	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("current version: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1 after failed migration, got %d", version)
	}
}

func TestValidateRejectsNewerSchema(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
	}
	runner := NewRunner(db, fsys, SQLite, nil)
	if _, err := runner.Apply(); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	err := runner.Validate()
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("expected newer-schema error, got: %v", err)
	}
}

func TestLoadRejectsBadFilenames(t *testing.T) {
	db := openTestDB(t)
	cases := []string{"init.sql", "abc_init.sql", "000_init.sql"}
	for _, name := range cases {
		fsys := fstest.MapFS{name: {Data: []byte("SELECT 1;")}}
		if _, err := NewRunner(db, fsys, SQLite, nil).Load(); err == nil {
			t.Errorf("expected error for filename %q", name)
		}
	}
}

func TestLoadRejectsDuplicateVersions(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"001_b.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := NewRunner(db, fsys, SQLite, nil).Load(); err == nil {
		t.Error("expected error for duplicate versions")
	}
}
