package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tracker/internal/backup"
	"github.com/julianstephens/tracker/internal/constants"
	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/events"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/prefs"
	"github.com/julianstephens/tracker/internal/stats"
	"github.com/julianstephens/tracker/internal/storage"
)

// Context is handed to every command. It owns the open store and the
// event loop that change notifications are delivered on.
type Context struct {
	Engine     *storage.Engine
	Categories storage.Categories
	Trackers   storage.Trackers
	Records    storage.Records
	Stats      *stats.Aggregator
	Prefs      *prefs.Store
	Calendar   models.Calendar
	Loop       *events.Loop
	Out        io.Writer

	// AssumeYes skips confirmation prompts.
	AssumeYes bool
	// Confirm asks the user a yes/no question. Defaults to a huh prompt.
	Confirm func(title, description string) (bool, error)

	subs []*events.Subscription
}

// NewContext builds the repositories on top of an open engine.
func NewContext(engine *storage.Engine, p *prefs.Store) (*Context, error) {
	categories, err := storage.NewCategoryRepository(engine)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare categories: %w", err)
	}
	trackers := storage.NewTrackerRepository(engine)
	records := storage.NewRecordRepository(engine)

	ctx := &Context{
		Engine:     engine,
		Categories: categories,
		Trackers:   trackers,
		Records:    records,
		Stats:      stats.NewAggregator(trackers, records, engine.Calendar(), engine.Now),
		Prefs:      p,
		Calendar:   engine.Calendar(),
		Loop:       events.NewLoop(),
		Out:        os.Stdout,
		Confirm:    confirmPrompt,
	}

	ctx.subs = append(ctx.subs, engine.Bus().Subscribe(ctx.Loop, func(e events.Event) {
		logger.Debug("Store changed", "topic", e.Topic, "version", e.Version)
	}))
	return ctx, nil
}

// Close drains pending notifications and releases subscriptions.
func (c *Context) Close() {
	c.Loop.Drain()
	for _, sub := range c.subs {
		sub.Unsubscribe()
	}
	c.subs = nil
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Today is midnight of the current day in the configured calendar.
func (c *Context) Today() time.Time {
	return c.Engine.Today()
}

// Ask returns true when the user confirmed or AssumeYes is set.
func (c *Context) Ask(title, description string) (bool, error) {
	if c.AssumeYes {
		return true, nil
	}
	if c.Confirm == nil {
		return false, fmt.Errorf("confirmation required; pass --yes")
	}
	return c.Confirm(title, description)
}

func confirmPrompt(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeDracula()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// PerformAutomaticBackup snapshots the database and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Engine.Path())
	if _, err := mgr.Create(c.Engine); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveTracker finds a tracker by id or exact title.
func (c *Context) ResolveTracker(ref string) (models.Tracker, error) {
	t, err := c.Trackers.Get(ref)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return models.Tracker{}, err
	}

	matches, err := c.Trackers.FindByTitle(ref)
	if err != nil {
		return models.Tracker{}, err
	}
	switch len(matches) {
	case 0:
		return models.Tracker{}, apperrors.NotFound("tracker", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Tracker{}, fmt.Errorf("%d trackers are titled %q, use the id instead", len(matches), ref)
	}
}

// ResolveCategory finds a category by title or numeric id. An empty ref
// means the default category.
func (c *Context) ResolveCategory(ref string) (models.Category, error) {
	if strings.TrimSpace(ref) == "" {
		return c.Categories.Default()
	}
	cat, ok, err := c.Categories.FindByTitle(ref)
	if err != nil {
		return models.Category{}, err
	}
	if ok {
		return cat, nil
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return c.Categories.Get(id)
	}
	return models.Category{}, apperrors.NotFound("category", ref)
}

// ParseDate accepts "", "today", "yesterday" or YYYY-MM-DD.
func (c *Context) ParseDate(s string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return c.Today(), nil
	case "yesterday":
		return c.Calendar.AddDays(c.Today(), -1), nil
	}
	d, err := c.Calendar.ParseDay(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected %s, today or yesterday)", s, constants.DateFormat)
	}
	return d, nil
}
