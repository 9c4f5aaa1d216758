package constants

const (
	AppName           = "tracker"
	Version           = "v0.3.0"
	DefaultConfigDir  = "~/.config/tracker"
	DefaultDBPath     = DefaultConfigDir + "/tracker.db"
	DefaultPrefsPath  = DefaultConfigDir + "/prefs.env"
	DefaultLocale     = "en-GB"
	DefaultTimezone   = "Local"
	LogFileName       = "tracker.log"
	LogDirName        = "logs"
	PinnedSection     = "Pinned"
	DefaultCategory   = "Important"
	MaxTitleLength    = 38
	ScheduleSeparator = ", "

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Preference keys
	PrefSelectedFilter = "selected_filter"
)
