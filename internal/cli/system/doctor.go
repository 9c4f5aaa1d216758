package system

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/tracker/internal/backup"
	"github.com/julianstephens/tracker/internal/cli"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// warnOnly checks report problems without failing the command
	warnOnly bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion},
	{name: "Migrations complete", run: checkMigrationsComplete},
	{name: "Default category", run: checkDefaultCategory},
	{name: "Tracker data", run: checkTrackers},
	{name: "Duplicate records", run: checkDuplicateRecords, warnOnly: true},
	{name: "Future records", run: checkFutureRecords, warnOnly: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	for _, c := range checks {
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("%s %s: OK\n", cli.SuccessStyle.Render("✓"), c.name)
		case c.warnOnly:
			ctx.Printf("%s %s: WARNING\n", cli.WarningStyle.Render("⚠"), c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("%s %s: FAIL\n", cli.DangerStyle.Render("❌"), c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Engine.SchemaVersion()
	if err != nil {
		return err
	}
	if current != latest {
		return fmt.Errorf("schema version %d, expected %d", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	missing, err := ctx.Engine.MissingTables()
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func checkDefaultCategory(ctx *cli.Context) error {
	_, err := ctx.Categories.Default()
	return err
}

// checkTrackers loads every tracker, which fails on rows that cannot be
// decoded.
func checkTrackers(ctx *cli.Context) error {
	_, err := ctx.Trackers.List()
	return err
}

func checkDuplicateRecords(ctx *cli.Context) error {
	recs, err := ctx.Records.ListAll()
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(recs))
	dups := 0
	for _, r := range recs {
		key := r.TrackerID + "|" + ctx.Calendar.DayKey(r.Day)
		if seen[key] {
			dups++
		}
		seen[key] = true
	}
	if dups > 0 {
		return fmt.Errorf("%d duplicate record(s); they count once", dups)
	}
	return nil
}

func checkFutureRecords(ctx *cli.Context) error {
	recs, err := ctx.Records.ListAll()
	if err != nil {
		return err
	}
	today := ctx.Today()
	future := 0
	for _, r := range recs {
		if r.Day.After(today) {
			future++
		}
	}
	if future > 0 {
		return fmt.Errorf("%d record(s) dated after today", future)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Engine.Path())
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups in %s; run 'tracker backup create'", mgr.Dir())
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Engine.Now()
	if now.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if ctx.Calendar.Location == nil {
		return fmt.Errorf("no timezone configured")
	}
	return nil
}
