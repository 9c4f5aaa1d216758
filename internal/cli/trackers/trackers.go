package trackers

import (
	"fmt"
	"strings"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/models"
)

type TrackerAddCmd struct {
	Title    string `arg:"" help:"Tracker title."`
	Emoji    string `short:"e" help:"A single emoji." required:""`
	Color    string `short:"c" help:"Colour as #RRGGBB." default:"#FD4C49"`
	Schedule string `short:"s" help:"Days the habit recurs on (daily, weekdays, weekends or a list like 'mon,wed')." default:"daily"`
	Once     bool   `help:"Create a one-off event instead of a habit."`
	Category string `short:"g" help:"Category title or ID. Defaults to the default category."`
	Pin      bool   `help:"Pin the tracker."`
}

func (c *TrackerAddCmd) Run(ctx *cli.Context) error {
	cat, err := ctx.ResolveCategory(c.Category)
	if err != nil {
		return err
	}

	in := models.TrackerInput{
		Title:  strings.TrimSpace(c.Title),
		Color:  normalizeColor(c.Color),
		Emoji:  c.Emoji,
		Kind:   models.KindHabit,
		Pinned: c.Pin,
	}
	if c.Once {
		in.Kind = models.KindIrregular
	} else {
		if in.Schedule, err = models.ParseSchedule(c.Schedule); err != nil {
			return err
		}
	}

	t, err := ctx.Trackers.Create(in, cat.ID)
	if err != nil {
		return fmt.Errorf("failed to add tracker: %w", err)
	}

	ctx.Printf("Added tracker: %s %s (ID: %s) in %s\n", t.Emoji, t.Title, t.ID, cat.Title)
	return nil
}

type TrackerEditCmd struct {
	Tracker  string `arg:"" help:"Tracker title or ID."`
	Title    string `help:"New title."`
	Emoji    string `short:"e" help:"New emoji."`
	Color    string `short:"c" help:"New colour as #RRGGBB."`
	Schedule string `short:"s" help:"New schedule for a habit."`
	Category string `short:"g" help:"Move to this category (title or ID)."`
}

func (c *TrackerEditCmd) Run(ctx *cli.Context) error {
	t, err := ctx.ResolveTracker(c.Tracker)
	if err != nil {
		return err
	}

	if c.Title != "" {
		t.Title = strings.TrimSpace(c.Title)
	}
	if c.Emoji != "" {
		t.Emoji = c.Emoji
	}
	if c.Color != "" {
		color, err := models.ParseColor(c.Color)
		if err != nil {
			return err
		}
		t.Color = color
	}
	if c.Schedule != "" {
		if t.Kind() == models.KindIrregular {
			return fmt.Errorf("%q is a one-off event and has no schedule", t.Title)
		}
		if t.Schedule, err = models.ParseSchedule(c.Schedule); err != nil {
			return err
		}
	}

	var newCategory *int64
	if c.Category != "" {
		cat, err := ctx.ResolveCategory(c.Category)
		if err != nil {
			return err
		}
		newCategory = &cat.ID
	}

	if err := ctx.Trackers.Update(t, newCategory); err != nil {
		return fmt.Errorf("failed to update tracker: %w", err)
	}

	ctx.Printf("Updated tracker: %s %s\n", t.Emoji, t.Title)
	return nil
}

type TrackerPinCmd struct {
	Tracker string `arg:"" help:"Tracker title or ID."`
}

func (c *TrackerPinCmd) Run(ctx *cli.Context) error {
	return setPinned(ctx, c.Tracker, true)
}

type TrackerUnpinCmd struct {
	Tracker string `arg:"" help:"Tracker title or ID."`
}

func (c *TrackerUnpinCmd) Run(ctx *cli.Context) error {
	return setPinned(ctx, c.Tracker, false)
}

func setPinned(ctx *cli.Context, ref string, pinned bool) error {
	t, err := ctx.ResolveTracker(ref)
	if err != nil {
		return err
	}
	if err := ctx.Trackers.SetPinned(t.ID, pinned); err != nil {
		return fmt.Errorf("failed to update tracker: %w", err)
	}

	verb := "Pinned"
	if !pinned {
		verb = "Unpinned"
	}
	ctx.Printf("%s tracker: %s\n", verb, t.Title)
	return nil
}

type TrackerDeleteCmd struct {
	Tracker string `arg:"" help:"Tracker title or ID."`
}

func (c *TrackerDeleteCmd) Run(ctx *cli.Context) error {
	t, err := ctx.ResolveTracker(c.Tracker)
	if err != nil {
		return err
	}

	days, err := ctx.Records.CountForTracker(t.ID)
	if err != nil {
		return err
	}
	ok, err := ctx.Ask(
		fmt.Sprintf("Delete tracker %q?", t.Title),
		fmt.Sprintf("Its history (%s) will be deleted too.", cli.FormatDays(days)),
	)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Delete cancelled.")
		return nil
	}

	if err := ctx.Trackers.Delete(t.ID); err != nil {
		return fmt.Errorf("failed to delete tracker: %w", err)
	}

	ctx.Printf("Deleted tracker: %s (ID: %s)\n", t.Title, t.ID)
	return nil
}

func normalizeColor(s string) string {
	s = strings.TrimSpace(s)
	if color, err := models.ParseColor(s); err == nil {
		return color.Hex()
	}
	return s
}
