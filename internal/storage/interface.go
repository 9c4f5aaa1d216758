package storage

import (
	"time"

	"github.com/julianstephens/tracker/internal/events"
	"github.com/julianstephens/tracker/internal/models"
)

type Categories interface {
	Create(title string) (models.Category, error)
	Rename(id int64, newTitle string) error
	Delete(id int64) error
	Get(id int64) (models.Category, error)
	FindByTitle(title string) (models.Category, bool, error)
	Default() (models.Category, error)
	List() ([]models.Category, error)
	Subscribe(d events.Dispatcher, fn func(events.Event)) *events.Subscription
}

type Trackers interface {
	Create(in models.TrackerInput, categoryID int64) (models.Tracker, error)
	Update(t models.Tracker, newCategoryID *int64) error
	SetPinned(id string, pinned bool) error
	Delete(id string) error
	Get(id string) (models.Tracker, error)
	List() ([]models.Tracker, error)
	FindByTitle(title string) ([]models.Tracker, error)

	// Live list
	SetFilter(f Filter) error
	ApplyMode(mode models.FilterMode, date time.Time) error
	Search(text string) error
	Filter() Filter
	SearchText() string
	Sections() []models.Section
	SectionCount() int
	RowCount(section int) int
	SectionTitle(section int) string
	TrackerAt(section, row int) (models.Tracker, bool)

	Subscribe(d events.Dispatcher, fn func(events.Event)) *events.Subscription
}

type Records interface {
	Create(trackerID string, date time.Time) (models.Record, error)
	Delete(trackerID string, date time.Time) error
	Toggle(trackerID string, date time.Time) (bool, error)
	ListForTracker(trackerID string) ([]models.Record, error)
	ListForTrackerOn(trackerID string, date time.Time) ([]models.Record, error)
	IsCompleted(trackerID string, date time.Time) (bool, error)
	CountForTracker(trackerID string) (int, error)
	Earliest() (models.Record, bool, error)
	Count() (int, error)
	ListAll() ([]models.Record, error)
	DeleteAll() error
	Subscribe(d events.Dispatcher, fn func(events.Event)) *events.Subscription
}

var (
	_ Categories = (*CategoryRepository)(nil)
	_ Trackers   = (*TrackerRepository)(nil)
	_ Records    = (*RecordRepository)(nil)
)
