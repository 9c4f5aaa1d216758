package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
)

const trackerColumns = `t.id, t.title, t.color, t.emoji, t.schedule, t.schedule_mask, t.is_pinned, t.category_id, t.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTracker reads trackerColumns followed by any extra destinations.
func scanTracker(row rowScanner, extra ...any) (models.Tracker, error) {
	var t models.Tracker
	var color, schedule, createdAt string
	var mask int64
	var categoryID sql.NullInt64

	dest := append([]any{&t.ID, &t.Title, &color, &t.Emoji, &schedule, &mask, &t.Pinned, &categoryID, &createdAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.Tracker{}, err
	}

	c, err := models.ParseColor(color)
	if err != nil {
		return models.Tracker{}, fmt.Errorf("tracker %s: %w", t.ID, err)
	}
	t.Color = c

	var unknown []string
	t.Schedule, unknown = models.DecodeSchedule(schedule)
	if len(unknown) > 0 {
		logger.Warn("Ignoring unknown weekdays in schedule", "tracker", t.ID, "names", unknown)
	}
	// weekday filters read schedule_mask, not the text
	if fromMask := models.ScheduleFromMask(mask); fromMask != t.Schedule {
		logger.Warn("Schedule mask does not match schedule", "tracker", t.ID, "schedule", t.Schedule, "mask", fromMask)
	}

	if categoryID.Valid {
		t.CategoryID = categoryID.Int64
	}

	t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Tracker{}, fmt.Errorf("failed to parse created_at for tracker %s: %w", t.ID, err)
	}

	return t, nil
}

func collectTrackers(rows *sql.Rows) ([]models.Tracker, error) {
	defer rows.Close()

	var trackers []models.Tracker
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			return nil, err
		}
		trackers = append(trackers, t)
	}
	return trackers, rows.Err()
}
