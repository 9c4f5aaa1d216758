package storage

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/events"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/migration"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/migrations"
)

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Calendar        models.Calendar
	DefaultCategory string
	// Now is the clock used for "today" and created_at stamps.
	Now func() time.Time
}

// Engine owns the SQLite database: it opens and migrates the file, runs units
// of work in transactions and publishes change events after each commit.
type Engine struct {
	path            string
	db              *sql.DB
	bus             *events.Bus
	cal             models.Calendar
	now             func() time.Time
	defaultCategory string
	version         atomic.Uint64
}

// Open creates the database file if needed and applies pending migrations.
// An error here means the store is unusable; callers are expected to stop.
func Open(path string, opts Options) (*Engine, error) {
	if path == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one logical owner; this also serialises units of work
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	e := &Engine{
		path:            path,
		db:              db,
		bus:             events.NewBus(),
		cal:             opts.Calendar,
		now:             opts.Now,
		defaultCategory: opts.DefaultCategory,
	}
	if e.cal.Location == nil {
		e.cal = models.DefaultCalendar()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.defaultCategory == "" {
		e.defaultCategory = constants.DefaultCategory
	}

	if err := e.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Debug("Store opened", "path", path)
	return e, nil
}

func (e *Engine) migrate() error {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	_, err = migration.NewRunner(e.db, subFS).Apply()
	return err
}

func (e *Engine) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

func (e *Engine) Path() string {
	return e.path
}

// Bus is the event bus change notifications are published on.
func (e *Engine) Bus() *events.Bus {
	return e.bus
}

func (e *Engine) Calendar() models.Calendar {
	return e.cal
}

// DefaultCategory returns the title of the category that must always exist.
func (e *Engine) DefaultCategory() string {
	return e.defaultCategory
}

// Now returns the current time from the configured clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Today returns midnight of the current calendar day.
func (e *Engine) Today() time.Time {
	return e.cal.StartOfDay(e.now())
}

// Version increases after every committed unit of work that changed rows.
func (e *Engine) Version() uint64 {
	return e.version.Load()
}

// UnitOfWork stages the writes of one Save call.
type UnitOfWork struct {
	tx      *sql.Tx
	changed int64
	touched map[events.Topic]bool
}

// Exec runs a write statement inside the unit of work.
func (u *UnitOfWork) Exec(query string, args ...any) (sql.Result, error) {
	res, err := u.tx.Exec(query, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil {
		u.changed += n
	}
	return res, nil
}

func (u *UnitOfWork) QueryRow(query string, args ...any) *sql.Row {
	return u.tx.QueryRow(query, args...)
}

func (u *UnitOfWork) Query(query string, args ...any) (*sql.Rows, error) {
	return u.tx.Query(query, args...)
}

// Touch marks topics to publish once the unit of work commits.
func (u *UnitOfWork) Touch(topics ...events.Topic) {
	for _, t := range topics {
		u.touched[t] = true
	}
}

// Changed reports whether any statement affected rows so far.
func (u *UnitOfWork) Changed() bool {
	return u.changed > 0
}

// Save runs fn in a transaction. If fn fails the transaction is rolled back
// and the error returned unchanged. A unit of work that changed no rows is
// rolled back and publishes nothing.
func (e *Engine) Save(fn func(*UnitOfWork) error) error {
	tx, err := e.db.Begin()
	if err != nil {
		logger.Error("Failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u := &UnitOfWork{tx: tx, touched: make(map[events.Topic]bool)}
	if err := fn(u); err != nil {
		_ = tx.Rollback()
		return err
	}

	if !u.Changed() {
		_ = tx.Rollback()
		return nil
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to save changes", "error", err)
		return fmt.Errorf("failed to save changes: %w", err)
	}

	version := e.version.Add(1)
	e.publish(version, u.touched)
	return nil
}

func (e *Engine) publish(version uint64, touched map[events.Topic]bool) {
	topics := make([]string, 0, len(touched))
	for t := range touched {
		topics = append(topics, string(t))
	}
	sort.Strings(topics)

	at := e.now()
	for _, t := range topics {
		e.bus.Publish(events.Event{Topic: events.Topic(t), Version: version, At: at})
	}
}

// tableExists checks if a table exists in the SQLite database.
func (e *Engine) tableExists(tableName string) (bool, error) {
	var count int
	row := e.db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?", tableName)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// requiredTables are the tables every migrated database has.
var requiredTables = []string{"schema_version", "categories", "trackers", "records"}

// MissingTables lists the required tables absent from the database.
func (e *Engine) MissingTables() ([]string, error) {
	var missing []string
	for _, table := range requiredTables {
		ok, err := e.tableExists(table)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, table)
		}
	}
	return missing, nil
}

// Snapshot writes a consistent copy of the database to dest.
func (e *Engine) Snapshot(dest string) error {
	if _, err := e.db.Exec("VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied and the latest known schema versions.
func (e *Engine) SchemaVersion() (current, latest int, err error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return 0, 0, err
	}
	runner := migration.NewRunner(e.db, subFS)
	if current, err = runner.CurrentVersion(); err != nil {
		return 0, 0, err
	}
	if latest, err = runner.LatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}
