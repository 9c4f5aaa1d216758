// Package stats derives the numbers of the statistics screen from trackers
// and their completion records.
package stats

import (
	"time"

	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
)

type TrackerSource interface {
	List() ([]models.Tracker, error)
}

type RecordSource interface {
	Earliest() (models.Record, bool, error)
	ListAll() ([]models.Record, error)
}

// Aggregator computes Statistics on demand. It holds no state between calls.
type Aggregator struct {
	trackers TrackerSource
	records  RecordSource
	cal      models.Calendar
	now      func() time.Time
}

func NewAggregator(trackers TrackerSource, records RecordSource, cal models.Calendar, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{trackers: trackers, records: records, cal: cal, now: now}
}

// Compute walks every day from the earliest record through today.
func (a *Aggregator) Compute() (models.Statistics, error) {
	earliest, ok, err := a.records.Earliest()
	if err != nil {
		return models.Statistics{}, err
	}
	if !ok {
		return models.Statistics{}, nil
	}

	trackers, err := a.trackers.List()
	if err != nil {
		return models.Statistics{}, err
	}
	records, err := a.records.ListAll()
	if err != nil {
		return models.Statistics{}, err
	}

	// day key -> tracker ids completed that day
	done := make(map[string]map[string]bool)
	total := 0
	for _, r := range records {
		key := a.cal.DayKey(r.Day)
		if done[key] == nil {
			done[key] = make(map[string]bool)
		}
		if !done[key][r.TrackerID] {
			done[key][r.TrackerID] = true
			total++
		}
	}

	start := a.cal.StartOfDay(earliest.Day)
	today := a.cal.StartOfDay(a.now())
	days := a.cal.DaysBetween(start, today) + 1
	if days < 1 {
		// records dated after today
		days = 1
	}

	var stats models.Statistics
	stats.TotalCompleted = total
	stats.AveragePerDay = float64(total) / float64(days)

	streak := 0
	for day := start; !day.After(today); day = a.cal.AddDays(day, 1) {
		if a.perfect(day, trackers, done[a.cal.DayKey(day)]) {
			stats.PerfectDays++
			streak++
			if streak > stats.BestStreak {
				stats.BestStreak = streak
			}
		} else {
			streak = 0
		}
	}

	logger.Debug("Computed statistics", "days", days, "records", len(records),
		"perfect", stats.PerfectDays, "best_streak", stats.BestStreak)
	return stats, nil
}

// perfect reports whether every tracker scheduled on day was completed.
// A day with nothing scheduled is not perfect.
func (a *Aggregator) perfect(day time.Time, trackers []models.Tracker, completed map[string]bool) bool {
	wd := a.cal.Weekday(day)
	scheduled := 0
	for _, t := range trackers {
		if !t.ScheduledOn(wd) {
			continue
		}
		scheduled++
		if !completed[t.ID] {
			return false
		}
	}
	return scheduled > 0
}
