package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/julianstephens/tracker/internal/constants"
	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/events"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/validation"
)

// TrackerRepository manages trackers and keeps the live, filtered and
// sectioned list that backs the main screen.
type TrackerRepository struct {
	engine *Engine

	filter Filter
	search string

	sections     []models.Section
	built        bool
	builtVersion uint64
	builtKey     string
}

func NewTrackerRepository(engine *Engine) *TrackerRepository {
	return &TrackerRepository{engine: engine, filter: All()}
}

// Create validates input and inserts a tracker into the category.
func (r *TrackerRepository) Create(in models.TrackerInput, categoryID int64) (models.Tracker, error) {
	if err := validation.Tracker(in); err != nil {
		return models.Tracker{}, err
	}
	color, err := models.ParseColor(in.Color)
	if err != nil {
		return models.Tracker{}, &apperrors.ValidationError{Fields: map[string]string{"Color": err.Error()}}
	}

	t := models.Tracker{
		ID:         uuid.New().String(),
		Title:      in.Title,
		Color:      color,
		Emoji:      in.Emoji,
		Pinned:     in.Pinned,
		CategoryID: categoryID,
		CreatedAt:  r.engine.Now().UTC().Truncate(time.Second),
	}
	if in.Kind == models.KindHabit {
		t.Schedule = in.Schedule
	}

	err = r.engine.Save(func(u *UnitOfWork) error {
		if err := categoryExists(u, categoryID); err != nil {
			return err
		}
		_, err := u.Exec(`
			INSERT INTO trackers (id, title, color, emoji, schedule, schedule_mask, is_pinned, category_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.Color.Hex(), t.Emoji, t.Schedule.String(), t.Schedule.Mask(), t.Pinned,
			t.CategoryID, t.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return err
		}
		u.Touch(events.TrackersChanged)
		return nil
	})
	if err != nil {
		logger.Error("Failed to create tracker", "title", t.Title, "error", err)
		return models.Tracker{}, err
	}

	logger.Debug("Created tracker", "id", t.ID, "title", t.Title)
	return t, nil
}

// Update writes every mutable field of t. When newCategoryID is set and
// differs from the current category the tracker moves to it.
func (r *TrackerRepository) Update(t models.Tracker, newCategoryID *int64) error {
	in := models.TrackerInput{
		Title:    t.Title,
		Color:    t.Color.Hex(),
		Emoji:    t.Emoji,
		Kind:     t.Kind(),
		Schedule: t.Schedule,
		Pinned:   t.Pinned,
	}
	if err := validation.Tracker(in); err != nil {
		return err
	}

	err := r.engine.Save(func(u *UnitOfWork) error {
		var current sql.NullInt64
		err := u.QueryRow("SELECT category_id FROM trackers WHERE id = ?", t.ID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("tracker", t.ID)
		}
		if err != nil {
			return err
		}

		categoryID := current.Int64
		if newCategoryID != nil && *newCategoryID != categoryID {
			if err := categoryExists(u, *newCategoryID); err != nil {
				return err
			}
			categoryID = *newCategoryID
		}

		_, err = u.Exec(`
			UPDATE trackers SET title = ?, color = ?, emoji = ?, schedule = ?, schedule_mask = ?,
				is_pinned = ?, category_id = ?
			WHERE id = ?`,
			t.Title, t.Color.Hex(), t.Emoji, t.Schedule.String(), t.Schedule.Mask(), t.Pinned, categoryID, t.ID)
		if err != nil {
			return err
		}
		u.Touch(events.TrackersChanged)
		return nil
	})
	if err != nil {
		logger.Error("Failed to update tracker", "id", t.ID, "error", err)
	}
	return err
}

// SetPinned pins or unpins a tracker.
func (r *TrackerRepository) SetPinned(id string, pinned bool) error {
	return r.engine.Save(func(u *UnitOfWork) error {
		res, err := u.Exec("UPDATE trackers SET is_pinned = ? WHERE id = ? AND is_pinned != ?", pinned, id, pinned)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// either unknown or already in the requested state
			var exists int
			if err := u.QueryRow("SELECT count(*) FROM trackers WHERE id = ?", id).Scan(&exists); err != nil {
				return err
			}
			if exists == 0 {
				return apperrors.NotFound("tracker", id)
			}
			return nil
		}
		u.Touch(events.TrackersChanged)
		return nil
	})
}

// Delete removes a tracker and all of its records in one transaction.
func (r *TrackerRepository) Delete(id string) error {
	err := r.engine.Save(func(u *UnitOfWork) error {
		removed, err := u.Exec("DELETE FROM records WHERE tracker_id = ?", id)
		if err != nil {
			return err
		}
		res, err := u.Exec("DELETE FROM trackers WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperrors.NotFound("tracker", id)
		}

		u.Touch(events.TrackersChanged)
		if n, _ := removed.RowsAffected(); n > 0 {
			u.Touch(events.RecordsChanged)
		}
		return nil
	})
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to delete tracker", "id", id, "error", err)
	}
	return err
}

// Get returns a tracker by id regardless of the active filter.
func (r *TrackerRepository) Get(id string) (models.Tracker, error) {
	row := r.engine.db.QueryRow("SELECT "+trackerColumns+" FROM trackers t WHERE t.id = ?", id)
	t, err := scanTracker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tracker{}, apperrors.NotFound("tracker", id)
	}
	return t, err
}

// List returns every tracker ordered by title, ignoring the active filter.
func (r *TrackerRepository) List() ([]models.Tracker, error) {
	rows, err := r.engine.db.Query("SELECT " + trackerColumns + " FROM trackers t ORDER BY t.title, t.id")
	if err != nil {
		return nil, err
	}
	return collectTrackers(rows)
}

// FindByTitle returns trackers whose title equals title exactly.
func (r *TrackerRepository) FindByTitle(title string) ([]models.Tracker, error) {
	rows, err := r.engine.db.Query("SELECT "+trackerColumns+" FROM trackers t WHERE t.title = ? ORDER BY t.id", title)
	if err != nil {
		return nil, err
	}
	return collectTrackers(rows)
}

// SetFilter replaces the structural filter and rebuilds the list. The active
// search text is kept.
func (r *TrackerRepository) SetFilter(f Filter) error {
	r.filter = f
	return r.Refresh()
}

// ApplyMode sets the filter for a persisted filter mode.
func (r *TrackerRepository) ApplyMode(mode models.FilterMode, date time.Time) error {
	return r.SetFilter(FilterForMode(mode, date))
}

// Search narrows the current filter to titles containing text, ignoring
// case. An empty text clears the search.
func (r *TrackerRepository) Search(text string) error {
	r.search = strings.TrimSpace(text)
	return r.Refresh()
}

// Filter returns the active filter.
func (r *TrackerRepository) Filter() Filter {
	return r.filter
}

func (r *TrackerRepository) SearchText() string {
	return r.search
}

// Refresh rebuilds the live list from the store.
func (r *TrackerRepository) Refresh() error {
	version := r.engine.Version()

	sections, err := r.query()
	if err != nil {
		logger.Error("Failed to load trackers", "filter", r.filter.String(), "error", err)
		return err
	}

	r.sections = sections
	r.built = true
	r.builtVersion = version
	r.builtKey = r.stateKey()
	return nil
}

func (r *TrackerRepository) stateKey() string {
	return r.filter.key(r.engine.Calendar()) + "|" + r.search
}

// ensureFresh rebuilds when the store changed since the last build. On
// failure the previous list is kept.
func (r *TrackerRepository) ensureFresh() {
	if r.built && r.builtVersion == r.engine.Version() && r.builtKey == r.stateKey() {
		return
	}
	_ = r.Refresh()
}

func (r *TrackerRepository) query() ([]models.Section, error) {
	where, args := r.filter.where(r.engine.Calendar())
	rows, err := r.engine.db.Query(`
		SELECT `+trackerColumns+`, COALESCE(c.title, '')
		FROM trackers t LEFT JOIN categories c ON c.id = t.category_id
		WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type entry struct {
		tracker  models.Tracker
		category string
	}

	fold := cases.Fold()
	needle := fold.String(r.search)

	var entries []entry
	for rows.Next() {
		var e entry
		t, err := scanTracker(rows, &e.category)
		if err != nil {
			return nil, err
		}
		if needle != "" && !strings.Contains(fold.String(t.Title), needle) {
			continue
		}
		e.tracker = t
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.tracker.Pinned != b.tracker.Pinned {
			return a.tracker.Pinned
		}
		if !a.tracker.Pinned && a.category != b.category {
			return a.category < b.category
		}
		if a.tracker.Title != b.tracker.Title {
			return a.tracker.Title < b.tracker.Title
		}
		return a.tracker.ID < b.tracker.ID
	})

	var sections []models.Section
	for _, e := range entries {
		if e.tracker.Pinned {
			if len(sections) == 0 || !sections[0].Pinned {
				sections = append(sections, models.Section{Title: constants.PinnedSection, Pinned: true})
			}
			sections[0].Trackers = append(sections[0].Trackers, e.tracker)
			continue
		}

		last := len(sections) - 1
		if last < 0 || sections[last].Pinned || sections[last].CategoryID != e.tracker.CategoryID {
			sections = append(sections, models.Section{Title: e.category, CategoryID: e.tracker.CategoryID})
			last++
		}
		sections[last].Trackers = append(sections[last].Trackers, e.tracker)
	}

	return sections, nil
}

// Sections returns a copy of the live list.
func (r *TrackerRepository) Sections() []models.Section {
	r.ensureFresh()
	out := make([]models.Section, len(r.sections))
	for i, s := range r.sections {
		s.Trackers = append([]models.Tracker(nil), s.Trackers...)
		out[i] = s
	}
	return out
}

func (r *TrackerRepository) SectionCount() int {
	r.ensureFresh()
	return len(r.sections)
}

func (r *TrackerRepository) RowCount(section int) int {
	r.ensureFresh()
	if section < 0 || section >= len(r.sections) {
		return 0
	}
	return len(r.sections[section].Trackers)
}

func (r *TrackerRepository) SectionTitle(section int) string {
	r.ensureFresh()
	if section < 0 || section >= len(r.sections) {
		return ""
	}
	return r.sections[section].Title
}

// TrackerAt returns the tracker at (section, row) of the live list.
func (r *TrackerRepository) TrackerAt(section, row int) (models.Tracker, bool) {
	r.ensureFresh()
	if section < 0 || section >= len(r.sections) {
		return models.Tracker{}, false
	}
	trackers := r.sections[section].Trackers
	if row < 0 || row >= len(trackers) {
		return models.Tracker{}, false
	}
	return trackers[row], true
}

// IsEmpty reports whether the live list has no trackers.
func (r *TrackerRepository) IsEmpty() bool {
	return r.SectionCount() == 0
}

// Subscribe delivers change events that can affect the list through d.
func (r *TrackerRepository) Subscribe(d events.Dispatcher, fn func(events.Event)) *events.Subscription {
	return r.engine.Bus().Subscribe(d, fn, events.TrackersChanged, events.CategoriesChanged, events.RecordsChanged)
}

func categoryExists(u *UnitOfWork, id int64) error {
	var count int
	if err := u.QueryRow("SELECT count(*) FROM categories WHERE id = ?", id).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return apperrors.NotFound("category", fmt.Sprint(id))
	}
	return nil
}
