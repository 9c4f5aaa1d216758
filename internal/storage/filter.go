package storage

import (
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
)

type FilterKind int

const (
	FilterKindAll FilterKind = iota
	// FilterKindScheduled keeps trackers scheduled on the date's weekday.
	FilterKindScheduled
	// FilterKindCompleted keeps scheduled trackers with a record that day.
	FilterKindCompleted
	// FilterKindIncomplete keeps scheduled trackers without a record that day.
	FilterKindIncomplete
	// FilterKindCategory keeps trackers of one category.
	FilterKindCategory
)

// Filter is the structural predicate of the tracker list. Text search is
// kept separately and ANDed with it.
type Filter struct {
	Kind       FilterKind
	Date       time.Time
	CategoryID int64
}

func All() Filter {
	return Filter{Kind: FilterKindAll}
}

func ScheduledOn(date time.Time) Filter {
	return Filter{Kind: FilterKindScheduled, Date: date}
}

func CompletedOn(date time.Time) Filter {
	return Filter{Kind: FilterKindCompleted, Date: date}
}

func IncompleteOn(date time.Time) Filter {
	return Filter{Kind: FilterKindIncomplete, Date: date}
}

func InCategory(id int64) Filter {
	return Filter{Kind: FilterKindCategory, CategoryID: id}
}

// FilterForMode maps a persisted filter mode to a filter for date.
func FilterForMode(mode models.FilterMode, date time.Time) Filter {
	switch mode {
	case models.FilterAll:
		return All()
	case models.FilterCompleted:
		return CompletedOn(date)
	case models.FilterUncompleted:
		return IncompleteOn(date)
	default:
		return ScheduledOn(date)
	}
}

// key identifies the filter at day granularity.
func (f Filter) key(cal models.Calendar) string {
	switch f.Kind {
	case FilterKindAll:
		return "all"
	case FilterKindCategory:
		return fmt.Sprintf("category:%d", f.CategoryID)
	default:
		return fmt.Sprintf("%d:%s", f.Kind, cal.DayKey(f.Date))
	}
}

// where compiles the filter to a WHERE clause over trackers aliased as t.
// Weekday membership is tested on schedule_mask, never on weekday names.
func (f Filter) where(cal models.Calendar) (string, []any) {
	switch f.Kind {
	case FilterKindScheduled:
		return "(t.schedule_mask & ?) != 0", []any{f.weekdayMask(cal)}
	case FilterKindCompleted:
		return "(t.schedule_mask & ?) != 0 AND EXISTS (SELECT 1 FROM records r WHERE r.tracker_id = t.id AND r.day = ?)",
			[]any{f.weekdayMask(cal), cal.DayKey(f.Date)}
	case FilterKindIncomplete:
		return "(t.schedule_mask & ?) != 0 AND NOT EXISTS (SELECT 1 FROM records r WHERE r.tracker_id = t.id AND r.day = ?)",
			[]any{f.weekdayMask(cal), cal.DayKey(f.Date)}
	case FilterKindCategory:
		return "t.category_id = ?", []any{f.CategoryID}
	default:
		return "1 = 1", nil
	}
}

func (f Filter) weekdayMask(cal models.Calendar) int64 {
	return models.NewSchedule(cal.Weekday(f.Date)).Mask()
}

func (f Filter) String() string {
	switch f.Kind {
	case FilterKindAll:
		return "all trackers"
	case FilterKindScheduled:
		return "scheduled on " + f.Date.Format(constants.DateFormat)
	case FilterKindCompleted:
		return "completed on " + f.Date.Format(constants.DateFormat)
	case FilterKindIncomplete:
		return "not completed on " + f.Date.Format(constants.DateFormat)
	case FilterKindCategory:
		return fmt.Sprintf("category %d", f.CategoryID)
	default:
		return "unknown filter"
	}
}
