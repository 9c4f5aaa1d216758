package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/cli/backups"
	"github.com/julianstephens/tracker/internal/cli/categories"
	"github.com/julianstephens/tracker/internal/cli/report"
	"github.com/julianstephens/tracker/internal/cli/system"
	"github.com/julianstephens/tracker/internal/cli/trackers"
	"github.com/julianstephens/tracker/internal/constants"
	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/prefs"
	"github.com/julianstephens/tracker/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"Database file path." type:"path" default:"${db}" env:"TRACKER_DB"`
	Prefs   string `help:"Preferences file path." type:"path" default:"${prefs}" env:"TRACKER_PREFS"`
	Locale  string `help:"BCP 47 locale used for the first day of the week." default:"${locale}" env:"TRACKER_LOCALE"`
	TZ      string `help:"IANA timezone that defines calendar days." default:"${tz}" env:"TRACKER_TZ"`
	Debug   bool   `help:"Log debug output to stderr." env:"TRACKER_DEBUG"`
	Yes     bool   `short:"y" help:"Answer yes to confirmation prompts."`

	Init    system.InitCmd    `cmd:"" help:"Initialize tracker storage."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Reset   system.ResetCmd   `cmd:"" help:"Delete all completion history."`
	Inspect system.InspectCmd `cmd:"" help:"Inspect raw data for troubleshooting."`
	Tui     system.TuiCmd     `cmd:"" help:"Open the interactive tracker board."`

	List   trackers.TrackerListCmd `cmd:"" help:"List trackers for a day." default:"1"`
	Mark   trackers.MarkCmd        `cmd:"" help:"Mark a tracker done."`
	Unmark trackers.UnmarkCmd      `cmd:"" help:"Mark a tracker not done."`
	Toggle trackers.ToggleCmd      `cmd:"" help:"Toggle a tracker for a day."`
	Filter trackers.FilterCmd      `cmd:"" help:"Show or save the default list filter."`

	Tracker struct {
		Add    trackers.TrackerAddCmd    `cmd:"" help:"Add a habit or one-off event."`
		Edit   trackers.TrackerEditCmd   `cmd:"" help:"Edit a tracker."`
		Pin    trackers.TrackerPinCmd    `cmd:"" help:"Pin a tracker."`
		Unpin  trackers.TrackerUnpinCmd  `cmd:"" help:"Unpin a tracker."`
		Delete trackers.TrackerDeleteCmd `cmd:"" help:"Delete a tracker and its history."`
		List   trackers.TrackerListCmd   `cmd:"" help:"List trackers."`
	} `cmd:"" help:"Manage trackers."`

	Category struct {
		Add    categories.CategoryAddCmd    `cmd:"" help:"Add a category."`
		Rename categories.CategoryRenameCmd `cmd:"" help:"Rename a category."`
		Delete categories.CategoryDeleteCmd `cmd:"" help:"Delete a category, moving its trackers to the default one."`
		List   categories.CategoryListCmd   `cmd:"" help:"List categories."`
	} `cmd:"" help:"Manage categories."`

	Stats   report.StatsCmd   `cmd:"" help:"Show statistics."`
	History report.HistoryCmd `cmd:"" help:"Show the recent weeks of a tracker."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
}

func main() {
	// a local .env may provide TRACKER_* settings
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit and event tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": constants.Version,
			"db":      constants.DefaultDBPath,
			"prefs":   constants.DefaultPrefsPath,
			"locale":  constants.DefaultLocale,
			"tz":      constants.DefaultTimezone,
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: filepath.Dir(CLI.DB)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	cal, err := models.CalendarForLocale(CLI.Locale, CLI.TZ)
	if err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		os.Exit(1)
	}

	engine, err := storage.Open(CLI.DB, storage.Options{Calendar: cal})
	if err != nil {
		apperrors.Fatal(err)
	}
	defer engine.Close()

	p, err := prefs.Open(CLI.Prefs)
	if err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		engine.Close()
		os.Exit(1)
	}

	appCtx, err := cli.NewContext(engine, p)
	if err != nil {
		apperrors.Fatal(err)
	}
	appCtx.AssumeYes = CLI.Yes

	err = ctx.Run(appCtx)
	appCtx.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		engine.Close()
		os.Exit(1)
	}
}
