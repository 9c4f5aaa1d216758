package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/prefs"
	"github.com/julianstephens/tracker/internal/storage"
)

// Wednesday
var testNow = time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

type testBoard struct {
	engine   *storage.Engine
	trackers *storage.TrackerRepository
	records  *storage.RecordRepository
	prefs    *prefs.Store
	model    Model
}

func setupTestBoard(t *testing.T) (*testBoard, func()) {
	t.Helper()
	dir := t.TempDir()

	engine, err := storage.Open(filepath.Join(dir, "tracker.db"), storage.Options{
		Calendar: models.Calendar{Location: time.UTC, FirstWeekday: models.Monday},
		Now:      func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	categories, err := storage.NewCategoryRepository(engine)
	if err != nil {
		t.Fatalf("failed to prepare categories: %v", err)
	}
	p, err := prefs.Open(filepath.Join(dir, "prefs.env"))
	if err != nil {
		t.Fatalf("failed to open prefs: %v", err)
	}

	b := &testBoard{
		engine:   engine,
		trackers: storage.NewTrackerRepository(engine),
		records:  storage.NewRecordRepository(engine),
		prefs:    p,
	}

	def, _ := categories.Default()
	for _, in := range []models.TrackerInput{
		{Title: "Run", Color: "#FF0000", Emoji: "🏃", Kind: models.KindHabit, Schedule: models.EveryDay()},
		{Title: "Read", Color: "#00FF00", Emoji: "📚", Kind: models.KindHabit, Schedule: models.NewSchedule(models.Wednesday)},
		{Title: "Swim", Color: "#0000FF", Emoji: "🏊", Kind: models.KindHabit, Schedule: models.NewSchedule(models.Tuesday)},
	} {
		if _, err := b.trackers.Create(in, def.ID); err != nil {
			t.Fatalf("Create(%q) error = %v", in.Title, err)
		}
	}

	// the board gets its own list so filters don't leak between them
	b.model, err = NewModel(Config{
		Trackers: storage.NewTrackerRepository(engine),
		Records:  b.records,
		Prefs:    p,
		Calendar: engine.Calendar(),
		Today:    engine.Today,
	})
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}

	cleanup := func() {
		b.model.Close()
		engine.Close()
	}
	return b, cleanup
}

func (b *testBoard) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	next, _ := b.model.Update(msg)
	b.model = next.(Model)
	if err := b.model.Err(); err != nil {
		t.Fatalf("Update(%v) error = %v", msg, err)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func titles(m Model) []string {
	var out []string
	for _, r := range m.Rows() {
		if r.Header == "" {
			out = append(out, r.Tracker.Title)
		}
	}
	return out
}

func TestNewModel_DefaultFilter(t *testing.T) {
	b, cleanup := setupTestBoard(t)
	defer cleanup()

	if b.model.Mode() != models.FilterToday {
		t.Errorf("Mode() = %v, want %v", b.model.Mode(), models.FilterToday)
	}
	// Swim is only scheduled on Tuesdays
	if got := strings.Join(titles(b.model), ","); got != "Read,Run" {
		t.Errorf("rows = %s, want Read,Run", got)
	}
	sel, ok := b.model.Selected()
	if !ok || sel.Title != "Read" {
		t.Errorf("Selected() = %v, %v, want Read", sel.Title, ok)
	}
}

func TestUpdate_ToggleRefreshesOnChange(t *testing.T) {
	b, cleanup := setupTestBoard(t)
	defer cleanup()

	b.send(t, tea.KeyMsg{Type: tea.KeySpace})

	done, err := b.records.IsCompleted(mustSelected(t, b.model).ID, testNow)
	if err != nil || !done {
		t.Fatalf("IsCompleted() = %v, %v, want true", done, err)
	}

	// the row only changes once the store notification is delivered
	if b.model.Rows()[1].Done {
		t.Error("row marked done before the change notification ran")
	}
	b.send(t, changedMsg{})
	if !b.model.Rows()[1].Done || b.model.Rows()[1].Days != 1 {
		t.Errorf("row after change = %+v, want done with 1 day", b.model.Rows()[1])
	}

	// toggling again clears it
	b.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	b.send(t, changedMsg{})
	if b.model.Rows()[1].Done {
		t.Error("row still done after second toggle")
	}
}

func TestUpdate_ExternalChange(t *testing.T) {
	b, cleanup := setupTestBoard(t)
	defer cleanup()

	run, _ := b.trackers.FindByTitle("Run")
	if err := b.trackers.SetPinned(run[0].ID, true); err != nil {
		t.Fatalf("SetPinned() error = %v", err)
	}
	b.send(t, changedMsg{})

	rows := b.model.Rows()
	if rows[0].Header != "Pinned" || rows[1].Tracker.Title != "Run" {
		t.Errorf("rows = %+v, want Run pinned first", rows)
	}
}

func TestUpdate_Navigation(t *testing.T) {
	b, cleanup := setupTestBoard(t)
	defer cleanup()

	b.send(t, runes("j"))
	if got := mustSelected(t, b.model).Title; got != "Run" {
		t.Errorf("after down Selected() = %s, want Run", got)
	}
	// the last row stays selected
	b.send(t, runes("j"))
	if got := mustSelected(t, b.model).Title; got != "Run" {
		t.Errorf("after second down Selected() = %s, want Run", got)
	}
	b.send(t, runes("k"))
	if got := mustSelected(t, b.model).Title; got != "Read" {
		t.Errorf("after up Selected() = %s, want Read", got)
	}
}

func TestUpdate_Days(t *testing.T) {
	b, cleanup := setupTestBoard(t)
	defer cleanup()

	b.send(t, runes("h"))
	want := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)
	if !b.model.Date().Equal(want) {
		t.Errorf("Date() = %v, want %v", b.model.Date(), want)
	}
	if got := strings.Join(titles(b.model), ","); got != "Run,Swim" {
		t.Errorf("Tuesday rows = %s, want Run,Swim", got)
	}

	b.send(t, runes("l"))
	b.send(t, runes("l"))
	if !b.model.Date().Equal(testNow.Truncate(24 * time.Hour)) {
		t.Errorf("Date() = %v, want today", b.model.Date())
	}
}

func TestUpdate_FilterIsSaved(t *testing.T) {
	b, cleanup := setupTestBoard(t)
	defer cleanup()

	b.send(t, runes("f"))
	if b.model.Mode() != models.FilterCompleted {
		t.Errorf("Mode() = %v, want %v", b.model.Mode(), models.FilterCompleted)
	}
	if len(b.model.Rows()) != 0 {
		t.Errorf("completed rows = %d, want 0", len(b.model.Rows()))
	}

	reopened, err := prefs.Open(b.prefs.Path())
	if err != nil {
		t.Fatalf("prefs.Open() error = %v", err)
	}
	if reopened.FilterMode() != models.FilterCompleted {
		t.Errorf("saved mode = %v, want %v", reopened.FilterMode(), models.FilterCompleted)
	}
}

func TestUpdate_Search(t *testing.T) {
	b, cleanup := setupTestBoard(t)
	defer cleanup()

	b.send(t, runes("/"))
	b.send(t, runes("ru"))
	if got := strings.Join(titles(b.model), ","); got != "Run" {
		t.Errorf("search rows = %s, want Run", got)
	}

	// keys go to the search box while it is focused
	b.send(t, runes("q"))
	if got := len(titles(b.model)); got != 0 {
		t.Errorf("rows after typing q = %d, want 0", got)
	}

	b.send(t, tea.KeyMsg{Type: tea.KeyEsc})
	if got := strings.Join(titles(b.model), ","); got != "Read,Run" {
		t.Errorf("rows after clearing search = %s, want Read,Run", got)
	}
}

func TestView(t *testing.T) {
	b, cleanup := setupTestBoard(t)
	defer cleanup()

	b.send(t, tea.WindowSizeMsg{Width: 80, Height: 24})
	view := b.model.View()
	for _, want := range []string{"Today", "Important", "Read", "Run"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}

	b.send(t, runes("q"))
	if v := b.model.View(); v != "" {
		t.Errorf("View() after quit = %q, want empty", v)
	}
}

func mustSelected(t *testing.T, m Model) models.Tracker {
	t.Helper()
	sel, ok := m.Selected()
	if !ok {
		t.Fatal("nothing selected")
	}
	return sel
}
