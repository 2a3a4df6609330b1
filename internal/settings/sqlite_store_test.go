package settings

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func openTestSQLiteStore(t *testing.T) (*SQLiteStore, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "ccmeter.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := NewSQLiteStore(db)
	store.now = func() time.Time {
		return time.Date(2026, time.February, 22, 13, 30, 0, 0, time.UTC)
	}
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return store, db
}

func TestSQLiteStoreInit_CreatesTable(t *testing.T) {
	_, db := openTestSQLiteStore(t)
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='kv'`).Scan(&name)
	if err != nil {
		t.Fatalf("table kv missing: %v", err)
	}
}

func TestSQLiteStore_LoadEmptyReturnsDefaults(t *testing.T) {
	store, _ := openTestSQLiteStore(t)
	s, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.SelectedRuntime != RuntimeNPX || s.Initialized {
		t.Errorf("expected defaults, got %+v", s)
	}
}

func TestSQLiteStore_SaveOverwritesSingleRow(t *testing.T) {
	ctx := context.Background()
	store, db := openTestSQLiteStore(t)

	if err := store.Save(ctx, RuntimeSettings{SelectedRuntime: RuntimeBunx, Initialized: true}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Save(ctx, RuntimeSettings{SelectedRuntime: RuntimePNPM, Initialized: true}); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	var rows int
	if err := db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("kv rows = %d, want 1", rows)
	}

	var updatedAt string
	if err := db.QueryRow(`SELECT updated_at FROM kv WHERE key = ?`, StorageKey).Scan(&updatedAt); err != nil {
		t.Fatal(err)
	}
	if updatedAt != "2026-02-22T13:30:00Z" {
		t.Errorf("updated_at = %q", updatedAt)
	}

	s, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.SelectedRuntime != RuntimePNPM {
		t.Errorf("runtime = %q, want pnpm", s.SelectedRuntime)
	}
}

func TestSQLiteStore_Reset(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestSQLiteStore(t)

	if err := store.Save(ctx, RuntimeSettings{SelectedRuntime: RuntimeDeno, Initialized: true}); err != nil {
		t.Fatal(err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	s, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.Initialized {
		t.Error("expected defaults after reset")
	}
}
