package trackers

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

type TrackerListCmd struct {
	Filter   string `short:"f" help:"Filter mode (all, today, completed, uncompleted). Defaults to the saved filter."`
	Date     string `short:"d" help:"Day to show (YYYY-MM-DD, today or yesterday)." default:"today"`
	Search   string `short:"q" help:"Only show trackers whose title contains this text."`
	Category string `short:"g" help:"Only show trackers of this category (title or ID)."`
	ShowIDs  bool   `help:"Show tracker IDs." name:"show-ids"`
}

func (c *TrackerListCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}

	mode := ctx.Prefs.FilterMode()
	if c.Filter != "" {
		if mode, err = models.ParseFilterMode(c.Filter); err != nil {
			return err
		}
	}

	filter := storage.FilterForMode(mode, date)
	if c.Category != "" {
		cat, err := ctx.ResolveCategory(c.Category)
		if err != nil {
			return err
		}
		filter = storage.InCategory(cat.ID)
	}

	if err := ctx.Trackers.SetFilter(filter); err != nil {
		return fmt.Errorf("failed to load trackers: %w", err)
	}
	if err := ctx.Trackers.Search(c.Search); err != nil {
		return fmt.Errorf("failed to search trackers: %w", err)
	}

	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("%s · %s", ctx.Calendar.DayKey(date), ctx.Trackers.Filter())))

	if ctx.Trackers.SectionCount() == 0 {
		if ctx.Trackers.SearchText() != "" {
			ctx.Println(cli.MutedStyle.Render("Nothing found"))
		} else {
			ctx.Println(cli.MutedStyle.Render("What shall we track?"))
		}
		return nil
	}

	for s := 0; s < ctx.Trackers.SectionCount(); s++ {
		ctx.Println()
		ctx.Println(cli.HeaderStyle.Render(ctx.Trackers.SectionTitle(s)))
		for r := 0; r < ctx.Trackers.RowCount(s); r++ {
			t, _ := ctx.Trackers.TrackerAt(s, r)
			line, err := c.row(ctx, t, date)
			if err != nil {
				return err
			}
			ctx.Println(line)
		}
	}
	return nil
}

func (c *TrackerListCmd) row(ctx *cli.Context, t models.Tracker, date time.Time) (string, error) {
	done, err := ctx.Records.IsCompleted(t.ID, date)
	if err != nil {
		return "", err
	}
	days, err := ctx.Records.CountForTracker(t.ID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s %s %s", cli.Check(done), cli.Swatch(t.Color), t.Emoji, t.Title)
	if c.ShowIDs {
		fmt.Fprintf(&b, " (ID: %s)", t.ID)
	}
	fmt.Fprintf(&b, " %s", cli.MutedStyle.Render(fmt.Sprintf("- %s, %s", cli.FormatSchedule(t.Schedule, ctx.Calendar), cli.FormatDays(days))))
	return b.String(), nil
}
