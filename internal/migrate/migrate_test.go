package migrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "github.com/tursodatabase/go-libsql"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"002_add_tags.up.sql": {Data: []byte("ALTER TABLE t ADD COLUMN tags TEXT")},
		"001_init.up.sql":     {Data: []byte("CREATE TABLE t (id TEXT)")},
		"001_init.down.sql":   {Data: []byte("DROP TABLE t")},
		"README.md":           {Data: []byte("ignored")},
		"003_broken.down.sql": {Data: []byte("orphan down files are ignored")},
	}

	got, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(got))
	}
	if got[0].Version != 1 || got[0].Name != "init" || got[0].DownSQL != "DROP TABLE t" {
		t.Errorf("unexpected first migration: %+v", got[0])
	}
	if got[1].Version != 2 || got[1].DownSQL != "" {
		t.Errorf("unexpected second migration: %+v", got[1])
	}
}

func TestLoad_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.up.sql": {Data: []byte("SELECT 1")},
		"01_b.up.sql":  {Data: []byte("SELECT 1")},
	}
	if _, err := Load(fsys); err == nil {
		t.Fatal("expected duplicate version error")
	}
}

func TestSplitSQL(t *testing.T) {
	got := SplitSQL("CREATE TABLE a (x);\n\n  CREATE TABLE b (y);\n")
	if len(got) != 2 || got[0] != "CREATE TABLE a (x)" || got[1] != "CREATE TABLE b (y)" {
		t.Errorf("unexpected statements: %q", got)
	}
}

func TestMigrator_UpAndDown(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	m, err := New(db)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	n, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("Up failed: %v", err)
	}
	if n != len(m.Migrations()) {
		t.Errorf("expected %d applied, got %d", len(m.Migrations()), n)
	}

	version, dirty, err := m.Version(ctx)
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != m.Latest() || dirty {
		t.Errorf("expected version %d clean, got %d dirty=%v", m.Latest(), version, dirty)
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO projects (name) VALUES ('p')`); err != nil {
		t.Fatalf("schema not applied: %v", err)
	}

	n, err = m.Up(ctx)
	if err != nil || n != 0 {
		t.Errorf("second Up should be a no-op, got n=%d err=%v", n, err)
	}

	if _, err := m.To(ctx, 0); err != nil {
		t.Fatalf("To(0) failed: %v", err)
	}
	version, _, _ = m.Version(ctx)
	if version != 0 {
		t.Errorf("expected version 0 after rollback, got %d", version)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO projects (name) VALUES ('p')`); err == nil {
		t.Error("expected projects table to be dropped")
	}
}

func TestMigrator_DirtyRefused(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	m, err := New(db)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := m.ensureTable(ctx); err != nil {
		t.Fatalf("ensureTable failed: %v", err)
	}
	if err := m.setVersion(ctx, 1, true); err != nil {
		t.Fatalf("setVersion failed: %v", err)
	}

	if _, err := m.Up(ctx); err == nil {
		t.Fatal("expected dirty database to be refused")
	}
}

func TestMigrator_UnknownTarget(t *testing.T) {
	m, err := New(openMemoryDB(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := m.To(context.Background(), m.Latest()+1); err == nil {
		t.Fatal("expected error for unknown version")
	}
}
