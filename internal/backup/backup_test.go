package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

func setupTestStore(t *testing.T) (*storage.Engine, *Manager, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tracker.db")
	engine, err := storage.Open(dbPath, storage.Options{
		Calendar: models.Calendar{Location: time.UTC, FirstWeekday: models.Monday},
	})
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	if _, err := storage.NewCategoryRepository(engine); err != nil {
		t.Fatalf("failed to create default category: %v", err)
	}

	mgr := NewManager(dbPath)
	cleanup := func() {
		engine.Close()
	}
	return engine, mgr, cleanup
}

func countCategories(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT count(*) FROM categories").Scan(&n); err != nil {
		t.Fatalf("failed to count categories in %s: %v", path, err)
	}
	return n
}

func TestCreate(t *testing.T) {
	engine, mgr, cleanup := setupTestStore(t)
	defer cleanup()

	path, err := mgr.Create(engine)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if filepath.Dir(path) != mgr.Dir() {
		t.Errorf("backup written to %s, want directory %s", path, mgr.Dir())
	}
	if n := countCategories(t, path); n != 1 {
		t.Errorf("backup has %d categories, want 1", n)
	}
}

func TestCreateSameSecondGetsCounter(t *testing.T) {
	engine, mgr, cleanup := setupTestStore(t)
	defer cleanup()

	fixed := time.Date(2024, time.March, 13, 8, 30, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	first, err := mgr.Create(engine)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := mgr.Create(engine)
	if err != nil {
		t.Fatalf("second Create() error = %v", err)
	}
	if first == second {
		t.Fatalf("Create() reused path %s", first)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("List() = %d backups, want 2", len(backups))
	}
	if !backups[0].Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", backups[0].Timestamp, fixed)
	}
}

func TestRotation(t *testing.T) {
	engine, mgr, cleanup := setupTestStore(t)
	defer cleanup()

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	for i := 0; i < MaxBackups+3; i++ {
		at := start.Add(time.Duration(i) * time.Hour)
		mgr.now = func() time.Time { return at }
		if _, err := mgr.Create(engine); err != nil {
			t.Fatalf("Create() #%d error = %v", i, err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != MaxBackups {
		t.Fatalf("List() = %d backups, want %d", len(backups), MaxBackups)
	}
	newest := start.Add(time.Duration(MaxBackups+2) * time.Hour)
	if !backups[0].Timestamp.Equal(newest) {
		t.Errorf("newest backup = %v, want %v", backups[0].Timestamp, newest)
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	_, mgr, cleanup := setupTestStore(t)
	defer cleanup()

	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "tracker-garbage.db", "other-20240101-000000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("List() = %+v, want none", backups)
	}
}

func TestRestore(t *testing.T) {
	engine, mgr, cleanup := setupTestStore(t)
	defer cleanup()

	path, err := mgr.Create(engine)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	categories, _ := storage.NewCategoryRepository(engine)
	if _, err := categories.Create("Work"); err != nil {
		t.Fatalf("categories.Create() error = %v", err)
	}
	dbPath := engine.Path()
	engine.Close()

	if n := countCategories(t, dbPath); n != 2 {
		t.Fatalf("database has %d categories before restore, want 2", n)
	}

	// the pre-restore copy must not collide with the backup being restored
	mgr.now = func() time.Time { return time.Now().Add(time.Hour) }
	if err := mgr.Restore(path); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if n := countCategories(t, dbPath); n != 1 {
		t.Errorf("database has %d categories after restore, want 1", n)
	}

	backups, _ := mgr.List()
	if len(backups) != 2 {
		t.Errorf("List() after restore = %d backups, want 2", len(backups))
	}
}

func TestRestoreRejectsInvalidFile(t *testing.T) {
	_, mgr, cleanup := setupTestStore(t)
	defer cleanup()

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Restore(bogus); err == nil {
		t.Error("Restore() error = nil, want error")
	}
}

func TestResolve(t *testing.T) {
	engine, mgr, cleanup := setupTestStore(t)
	defer cleanup()

	path, err := mgr.Create(engine)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := mgr.Resolve(filepath.Base(path))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != path {
		t.Errorf("Resolve() = %s, want %s", got, path)
	}
	if _, err := mgr.Resolve("missing.db"); err == nil {
		t.Error("Resolve(missing) error = nil, want error")
	}
}
