package report

import (
	"fmt"
	"strings"

	"github.com/julianstephens/tracker/internal/cli"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Stats.Compute()
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}
	if s.IsEmpty() {
		ctx.Println(cli.MutedStyle.Render("Nothing to analyze yet"))
		return nil
	}

	ctx.Println(cli.HeaderStyle.Render("Statistics"))
	ctx.Printf("  %-16s %d\n", "Best streak", s.BestStreak)
	ctx.Printf("  %-16s %d\n", "Perfect days", s.PerfectDays)
	ctx.Printf("  %-16s %d\n", "Trackers done", s.TotalCompleted)
	ctx.Printf("  %-16s %.1f\n", "Average per day", s.AveragePerDay)
	return nil
}

type HistoryCmd struct {
	Tracker string `arg:"" help:"Tracker title or ID."`
	Weeks   int    `short:"w" help:"Number of weeks to show." default:"4"`
}

func (c *HistoryCmd) Validate() error {
	if c.Weeks < 1 || c.Weeks > 52 {
		return fmt.Errorf("weeks must be between 1 and 52")
	}
	return nil
}

// Run prints one row per week, starting on the locale's first weekday.
func (c *HistoryCmd) Run(ctx *cli.Context) error {
	t, err := ctx.ResolveTracker(c.Tracker)
	if err != nil {
		return err
	}
	recs, err := ctx.Records.ListForTracker(t.ID)
	if err != nil {
		return err
	}
	done := make(map[string]bool, len(recs))
	for _, r := range recs {
		done[ctx.Calendar.DayKey(r.Day)] = true
	}

	cal := ctx.Calendar
	today := ctx.Today()
	// back up to the first day of the current week
	start := cal.AddDays(today, -cal.Position(cal.Weekday(today)))
	start = cal.AddDays(start, -7*(c.Weeks-1))

	ctx.Printf("%s %s %s\n", cli.Swatch(t.Color), t.Emoji, cli.HeaderStyle.Render(t.Title))

	header := make([]string, 0, 7)
	for _, d := range cal.Week() {
		header = append(header, d.Short()[:2])
	}
	ctx.Printf("%-12s %s\n", "", strings.Join(header, " "))

	for w := 0; w < c.Weeks; w++ {
		weekStart := cal.AddDays(start, 7*w)
		cells := make([]string, 0, 7)
		for i := 0; i < 7; i++ {
			day := cal.AddDays(weekStart, i)
			switch {
			case day.After(today):
				cells = append(cells, "  ")
			case done[cal.DayKey(day)]:
				cells = append(cells, cli.Check(true)+" ")
			case t.ScheduledOn(cal.Weekday(day)):
				cells = append(cells, cli.Check(false)+" ")
			default:
				cells = append(cells, "  ")
			}
		}
		ctx.Printf("%-12s %s\n", cal.DayKey(weekStart), strings.Join(cells, " "))
	}
	return nil
}
