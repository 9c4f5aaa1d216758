package trackers

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/models"
)

type MarkCmd struct {
	Tracker string `arg:"" help:"Tracker title or ID."`
	Date    string `short:"d" help:"Day to mark (YYYY-MM-DD, today or yesterday)." default:"today"`
}

func (c *MarkCmd) Run(ctx *cli.Context) error {
	t, err := ctx.ResolveTracker(c.Tracker)
	if err != nil {
		return err
	}
	date, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}

	if _, err := ctx.Records.Create(t.ID, date); err != nil {
		return fmt.Errorf("failed to mark %s: %w", t.Title, err)
	}
	days, _ := ctx.Records.CountForTracker(t.ID)
	ctx.Printf("%s %s done on %s (%s)\n", cli.Check(true), t.Title, ctx.Calendar.DayKey(date), cli.FormatDays(days))
	return nil
}

type UnmarkCmd struct {
	Tracker string `arg:"" help:"Tracker title or ID."`
	Date    string `short:"d" help:"Day to unmark (YYYY-MM-DD, today or yesterday)." default:"today"`
}

func (c *UnmarkCmd) Run(ctx *cli.Context) error {
	t, err := ctx.ResolveTracker(c.Tracker)
	if err != nil {
		return err
	}
	date, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}

	if err := ctx.Records.Delete(t.ID, date); err != nil {
		return fmt.Errorf("failed to unmark %s: %w", t.Title, err)
	}
	ctx.Printf("%s %s not done on %s\n", cli.Check(false), t.Title, ctx.Calendar.DayKey(date))
	return nil
}

type ToggleCmd struct {
	Tracker string `arg:"" help:"Tracker title or ID."`
	Date    string `short:"d" help:"Day to toggle (YYYY-MM-DD, today or yesterday)." default:"today"`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	t, err := ctx.ResolveTracker(c.Tracker)
	if err != nil {
		return err
	}
	date, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}

	done, err := ctx.Records.Toggle(t.ID, date)
	if err != nil {
		return fmt.Errorf("failed to toggle %s: %w", t.Title, err)
	}
	state := "not done"
	if done {
		state = "done"
	}
	ctx.Printf("%s %s %s on %s\n", cli.Check(done), t.Title, state, ctx.Calendar.DayKey(date))
	return nil
}

type FilterCmd struct {
	Mode string `arg:"" optional:"" help:"Filter mode to save (all, today, completed, uncompleted)."`
}

func (c *FilterCmd) Run(ctx *cli.Context) error {
	if c.Mode == "" {
		current := ctx.Prefs.FilterMode()
		for _, m := range models.FilterModes() {
			marker := " "
			if m == current {
				marker = "*"
			}
			ctx.Printf("%s %s\n", marker, m.Short())
		}
		return nil
	}

	mode, err := models.ParseFilterMode(c.Mode)
	if err != nil {
		return err
	}
	if err := ctx.Prefs.SetFilterMode(mode); err != nil {
		return err
	}
	ctx.Printf("Default filter set to %s\n", mode.Short())
	return nil
}
