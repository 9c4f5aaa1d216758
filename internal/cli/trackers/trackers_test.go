package trackers

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/tracker/internal/cli"
	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/prefs"
	"github.com/julianstephens/tracker/internal/storage"
)

// Wednesday
var testNow = time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer, func()) {
	t.Helper()
	dir := t.TempDir()

	engine, err := storage.Open(filepath.Join(dir, "tracker.db"), storage.Options{
		Calendar: models.Calendar{Location: time.UTC, FirstWeekday: models.Monday},
		Now:      func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	p, err := prefs.Open(filepath.Join(dir, "prefs.env"))
	if err != nil {
		t.Fatalf("failed to open prefs: %v", err)
	}
	ctx, err := cli.NewContext(engine, p)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.AssumeYes = true

	cleanup := func() {
		ctx.Close()
		engine.Close()
	}
	return ctx, out, cleanup
}

func TestTrackerAddCmd(t *testing.T) {
	ctx, out, cleanup := setupTestContext(t)
	defer cleanup()

	cmd := &TrackerAddCmd{Title: " Run ", Emoji: "🏃", Color: "f80", Schedule: "mon,wed"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Added tracker") {
		t.Errorf("output = %q", out.String())
	}

	got, err := ctx.ResolveTracker("Run")
	if err != nil {
		t.Fatalf("ResolveTracker() error = %v", err)
	}
	if got.Color.Hex() != "#FF8800" || got.Schedule != models.NewSchedule(models.Monday, models.Wednesday) {
		t.Errorf("tracker = %+v", got)
	}

	once := &TrackerAddCmd{Title: "Dentist", Emoji: "🦷", Color: "#00AAFF", Schedule: "daily", Once: true}
	if err := once.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	dentist, _ := ctx.ResolveTracker("Dentist")
	if dentist.Kind() != models.KindIrregular {
		t.Errorf("Kind() = %v, want irregular", dentist.Kind())
	}

	bad := &TrackerAddCmd{Title: "Bad", Emoji: "🏃", Color: "#FF0000", Schedule: "someday"}
	if err := bad.Run(ctx); err == nil {
		t.Error("Run() with a bad schedule error = nil, want error")
	}
	missing := &TrackerAddCmd{Title: "Lost", Emoji: "🏃", Color: "#FF0000", Schedule: "daily", Category: "Nope"}
	if err := missing.Run(ctx); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Run() in unknown category error = %v, want ErrNotFound", err)
	}
}

func TestTrackerEditCmd(t *testing.T) {
	ctx, _, cleanup := setupTestContext(t)
	defer cleanup()

	(&TrackerAddCmd{Title: "Run", Emoji: "🏃", Color: "#FF0000", Schedule: "daily"}).Run(ctx)
	(&TrackerAddCmd{Title: "Dentist", Emoji: "🦷", Color: "#FF0000", Once: true}).Run(ctx)
	if _, err := ctx.Categories.Create("Sport"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	edit := &TrackerEditCmd{Tracker: "Run", Title: "Jog", Schedule: "weekends", Category: "Sport"}
	if err := edit.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got, err := ctx.ResolveTracker("Jog")
	if err != nil {
		t.Fatalf("ResolveTracker() error = %v", err)
	}
	sport, _, _ := ctx.Categories.FindByTitle("Sport")
	if got.Schedule != models.NewSchedule(models.Saturday, models.Sunday) || got.CategoryID != sport.ID {
		t.Errorf("tracker after edit = %+v", got)
	}

	if err := (&TrackerEditCmd{Tracker: "Dentist", Schedule: "daily"}).Run(ctx); err == nil {
		t.Error("editing the schedule of a one-off event error = nil, want error")
	}
}

func TestPinAndList(t *testing.T) {
	ctx, out, cleanup := setupTestContext(t)
	defer cleanup()

	(&TrackerAddCmd{Title: "Water", Emoji: "💧", Color: "#0000FF", Schedule: "daily"}).Run(ctx)
	(&TrackerAddCmd{Title: "Gym", Emoji: "🏋", Color: "#FF0000", Schedule: "fri"}).Run(ctx)
	(&TrackerAddCmd{Title: "Stretch", Emoji: "🧘", Color: "#00FF00", Schedule: "daily"}).Run(ctx)

	if err := (&TrackerPinCmd{Tracker: "Water"}).Run(ctx); err != nil {
		t.Fatalf("Pin Run() error = %v", err)
	}
	out.Reset()

	list := &TrackerListCmd{Date: "today"}
	if err := list.Run(ctx); err != nil {
		t.Fatalf("List Run() error = %v", err)
	}
	text := out.String()
	pinned := strings.Index(text, "Pinned")
	water := strings.Index(text, "Water")
	stretch := strings.Index(text, "Stretch")
	if pinned < 0 || water < pinned || stretch < water {
		t.Errorf("list output order wrong:\n%s", text)
	}
	if strings.Contains(text, "Gym") {
		t.Errorf("Friday-only tracker listed on a Wednesday:\n%s", text)
	}

	out.Reset()
	if err := (&TrackerListCmd{Date: "today", Filter: "all", Search: "gy"}).Run(ctx); err != nil {
		t.Fatalf("List Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Gym") || strings.Contains(out.String(), "Water") {
		t.Errorf("search output:\n%s", out.String())
	}

	out.Reset()
	if err := (&TrackerListCmd{Date: "today", Search: "zzz"}).Run(ctx); err != nil {
		t.Fatalf("List Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Nothing found") {
		t.Errorf("empty search output = %q", out.String())
	}
}

func TestMarkUnmarkToggle(t *testing.T) {
	ctx, _, cleanup := setupTestContext(t)
	defer cleanup()

	(&TrackerAddCmd{Title: "Run", Emoji: "🏃", Color: "#FF0000", Schedule: "daily"}).Run(ctx)
	run, _ := ctx.ResolveTracker("Run")

	if err := (&MarkCmd{Tracker: "Run", Date: "yesterday"}).Run(ctx); err != nil {
		t.Fatalf("Mark Run() error = %v", err)
	}
	if done, _ := ctx.Records.IsCompleted(run.ID, testNow.AddDate(0, 0, -1)); !done {
		t.Error("yesterday not marked")
	}

	if err := (&MarkCmd{Tracker: "Run", Date: "2024-03-14"}).Run(ctx); !errors.Is(err, apperrors.ErrFutureDate) {
		t.Errorf("Mark Run() tomorrow error = %v, want ErrFutureDate", err)
	}

	if err := (&UnmarkCmd{Tracker: "Run", Date: "yesterday"}).Run(ctx); err != nil {
		t.Fatalf("Unmark Run() error = %v", err)
	}
	if done, _ := ctx.Records.IsCompleted(run.ID, testNow.AddDate(0, 0, -1)); done {
		t.Error("yesterday still marked after unmark")
	}

	if err := (&ToggleCmd{Tracker: "Run", Date: "today"}).Run(ctx); err != nil {
		t.Fatalf("Toggle Run() error = %v", err)
	}
	if done, _ := ctx.Records.IsCompleted(run.ID, testNow); !done {
		t.Error("today not marked after toggle")
	}
}

func TestTrackerDeleteCmd(t *testing.T) {
	ctx, _, cleanup := setupTestContext(t)
	defer cleanup()

	(&TrackerAddCmd{Title: "Run", Emoji: "🏃", Color: "#FF0000", Schedule: "daily"}).Run(ctx)

	ctx.AssumeYes = false
	ctx.Confirm = func(string, string) (bool, error) { return false, nil }
	if err := (&TrackerDeleteCmd{Tracker: "Run"}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := ctx.ResolveTracker("Run"); err != nil {
		t.Errorf("tracker deleted although the prompt was declined: %v", err)
	}

	ctx.AssumeYes = true
	if err := (&TrackerDeleteCmd{Tracker: "Run"}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := ctx.ResolveTracker("Run"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("ResolveTracker() after delete error = %v, want ErrNotFound", err)
	}
}

func TestFilterCmd(t *testing.T) {
	ctx, out, cleanup := setupTestContext(t)
	defer cleanup()

	if err := (&FilterCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "* today") {
		t.Errorf("output = %q, want today marked", out.String())
	}

	if err := (&FilterCmd{Mode: "completed"}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := ctx.Prefs.FilterMode(); got != models.FilterCompleted {
		t.Errorf("FilterMode() = %v, want %v", got, models.FilterCompleted)
	}
	if err := (&FilterCmd{Mode: "sometimes"}).Run(ctx); err == nil {
		t.Error("Run() with an unknown mode error = nil, want error")
	}
}
