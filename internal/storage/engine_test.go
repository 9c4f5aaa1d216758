package storage

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/tracker/internal/events"
	"github.com/julianstephens/tracker/internal/models"
)

// testNow is a Wednesday.
var testNow = time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

type testStore struct {
	engine     *Engine
	categories *CategoryRepository
	trackers   *TrackerRepository
	records    *RecordRepository
	clock      *time.Time
}

func setupTestEngine(t *testing.T) (*testStore, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tracker.db")
	clock := testNow
	engine, err := Open(dbPath, Options{
		Calendar: models.Calendar{Location: time.UTC, FirstWeekday: models.Monday},
		Now:      func() time.Time { return clock },
	})
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}

	categories, err := NewCategoryRepository(engine)
	if err != nil {
		t.Fatalf("failed to create category repository: %v", err)
	}

	s := &testStore{
		engine:     engine,
		categories: categories,
		trackers:   NewTrackerRepository(engine),
		records:    NewRecordRepository(engine),
		clock:      &clock,
	}
	cleanup := func() {
		engine.Close()
	}
	return s, cleanup
}

func (s *testStore) defaultCategory(t *testing.T) models.Category {
	t.Helper()
	c, err := s.categories.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	return c
}

func (s *testStore) addTracker(t *testing.T, title string, categoryID int64, schedule models.Schedule) models.Tracker {
	t.Helper()
	kind := models.KindHabit
	if schedule.IsEmpty() {
		kind = models.KindIrregular
	}
	tr, err := s.trackers.Create(models.TrackerInput{
		Title:    title,
		Color:    "#FF8800",
		Emoji:    "🏃",
		Kind:     kind,
		Schedule: schedule,
	}, categoryID)
	if err != nil {
		t.Fatalf("Create(%q) error = %v", title, err)
	}
	return tr
}

func TestMissingTables(t *testing.T) {
	s, cleanup := setupTestEngine(t)
	defer cleanup()

	if _, err := s.engine.db.Exec("DROP TABLE records"); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}
	missing, err := s.engine.MissingTables()
	if err != nil {
		t.Fatalf("MissingTables() error = %v", err)
	}
	if len(missing) != 1 || missing[0] != "records" {
		t.Errorf("MissingTables() = %v, want [records]", missing)
	}
}

func TestOpenMigratesSchema(t *testing.T) {
	s, cleanup := setupTestEngine(t)
	defer cleanup()

	missing, err := s.engine.MissingTables()
	if err != nil {
		t.Fatalf("MissingTables() error = %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("MissingTables() = %v after Open, want none", missing)
	}

	var version int
	if err := s.engine.db.QueryRow("SELECT version FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version != 3 {
		t.Errorf("schema version = %d, want 3", version)
	}
}

func TestOpenKeepsDataAcrossRestarts(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tracker.db")
	opts := Options{
		Calendar: models.Calendar{Location: time.UTC, FirstWeekday: models.Monday},
		Now:      func() time.Time { return testNow },
	}

	engine, err := Open(dbPath, opts)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	categories, err := NewCategoryRepository(engine)
	if err != nil {
		t.Fatalf("NewCategoryRepository() error = %v", err)
	}
	if _, err := categories.Create("Health"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	engine.Close()

	engine, err = Open(dbPath, opts)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer engine.Close()

	categories, err = NewCategoryRepository(engine)
	if err != nil {
		t.Fatalf("NewCategoryRepository() error = %v", err)
	}
	list, err := categories.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("List() returned %d categories, want 2", len(list))
	}
}

func TestOpenRefusesNewerSchema(t *testing.T) {
	s, cleanup := setupTestEngine(t)
	path := s.engine.Path()
	if _, err := s.engine.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("failed to bump schema version: %v", err)
	}
	cleanup()

	_, err := Open(path, Options{})
	if err == nil {
		t.Fatal("Open() error = nil, want newer schema error")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("Open() error = %v, want newer schema error", err)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open("", Options{}); err == nil {
		t.Error("Open(\"\") error = nil, want error")
	}
}

func TestSavePublishesAfterCommit(t *testing.T) {
	s, cleanup := setupTestEngine(t)
	defer cleanup()

	loop := events.NewLoop()
	var got []events.Topic
	sub := s.engine.Bus().Subscribe(loop, func(e events.Event) { got = append(got, e.Topic) })
	defer sub.Unsubscribe()

	before := s.engine.Version()
	err := s.engine.Save(func(u *UnitOfWork) error {
		if _, err := u.Exec("INSERT INTO categories (title) VALUES ('Work')"); err != nil {
			return err
		}
		u.Touch(events.TrackersChanged, events.CategoriesChanged)
		return nil
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(got) != 0 {
		t.Fatalf("callbacks ran before Drain: %v", got)
	}
	loop.Drain()

	want := []events.Topic{events.CategoriesChanged, events.TrackersChanged}
	if len(got) != len(want) {
		t.Fatalf("got topics %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topic[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if s.engine.Version() != before+1 {
		t.Errorf("Version() = %d, want %d", s.engine.Version(), before+1)
	}
}

func TestSaveWithoutChangesIsSilent(t *testing.T) {
	s, cleanup := setupTestEngine(t)
	defer cleanup()

	loop := events.NewLoop()
	calls := 0
	sub := s.engine.Bus().Subscribe(loop, func(events.Event) { calls++ })
	defer sub.Unsubscribe()

	before := s.engine.Version()
	err := s.engine.Save(func(u *UnitOfWork) error {
		if _, err := u.Exec("DELETE FROM records WHERE id = -1"); err != nil {
			return err
		}
		u.Touch(events.RecordsChanged)
		return nil
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loop.Drain()
	if calls != 0 {
		t.Errorf("no-op save delivered %d events, want 0", calls)
	}
	if s.engine.Version() != before {
		t.Errorf("Version() = %d, want %d", s.engine.Version(), before)
	}
}

func TestSaveRollsBackOnError(t *testing.T) {
	s, cleanup := setupTestEngine(t)
	defer cleanup()

	err := s.engine.Save(func(u *UnitOfWork) error {
		if _, err := u.Exec("INSERT INTO categories (title) VALUES ('Doomed')"); err != nil {
			return err
		}
		_, err := u.Exec("INSERT INTO no_such_table VALUES (1)")
		return err
	})
	if err == nil {
		t.Fatal("Save() error = nil, want error")
	}

	_, ok, err := s.categories.FindByTitle("Doomed")
	if err != nil {
		t.Fatalf("FindByTitle() error = %v", err)
	}
	if ok {
		t.Error("insert from a failed unit of work was committed")
	}
}

func TestToday(t *testing.T) {
	s, cleanup := setupTestEngine(t)
	defer cleanup()

	want := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)
	if got := s.engine.Today(); !got.Equal(want) {
		t.Errorf("Today() = %v, want %v", got, want)
	}
}
