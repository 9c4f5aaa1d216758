package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/events"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
)

// RecordRepository stores completions. A record ties a tracker to one
// calendar day.
type RecordRepository struct {
	engine *Engine
}

func NewRecordRepository(engine *Engine) *RecordRepository {
	return &RecordRepository{engine: engine}
}

// Create marks the tracker completed on the day containing date. Marking an
// already completed day is a no-op.
func (r *RecordRepository) Create(trackerID string, date time.Time) (models.Record, error) {
	day, err := r.checkDay(date)
	if err != nil {
		return models.Record{}, err
	}
	key := r.engine.Calendar().DayKey(day)

	var rec models.Record
	err = r.engine.Save(func(u *UnitOfWork) error {
		if err := trackerExists(u, trackerID); err != nil {
			return err
		}

		err := u.QueryRow("SELECT id FROM records WHERE tracker_id = ? AND day = ? ORDER BY id LIMIT 1",
			trackerID, key).Scan(&rec.ID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		res, err := u.Exec("INSERT INTO records (tracker_id, day, created_at) VALUES (?, ?, ?)",
			trackerID, key, r.engine.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return err
		}
		rec.ID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		u.Touch(events.RecordsChanged)
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to create record", "tracker", trackerID, "day", key, "error", err)
		}
		return models.Record{}, err
	}

	rec.TrackerID = trackerID
	rec.Day = day
	return rec, nil
}

// Delete removes every record of the tracker on the day containing date.
func (r *RecordRepository) Delete(trackerID string, date time.Time) error {
	key := r.engine.Calendar().DayKey(date)
	err := r.engine.Save(func(u *UnitOfWork) error {
		res, err := u.Exec("DELETE FROM records WHERE tracker_id = ? AND day = ?", trackerID, key)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			u.Touch(events.RecordsChanged)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete record", "tracker", trackerID, "day", key, "error", err)
	}
	return err
}

// Toggle flips completion for the day and reports the new state.
func (r *RecordRepository) Toggle(trackerID string, date time.Time) (bool, error) {
	done, err := r.IsCompleted(trackerID, date)
	if err != nil {
		return false, err
	}
	if done {
		return false, r.Delete(trackerID, date)
	}
	if _, err := r.Create(trackerID, date); err != nil {
		return false, err
	}
	return true, nil
}

// ListForTracker returns the tracker's records, oldest first.
func (r *RecordRepository) ListForTracker(trackerID string) ([]models.Record, error) {
	return r.query("SELECT id, tracker_id, day FROM records WHERE tracker_id = ? ORDER BY day, id", trackerID)
}

// ListForTrackerOn returns the tracker's records on the day containing date.
func (r *RecordRepository) ListForTrackerOn(trackerID string, date time.Time) ([]models.Record, error) {
	return r.query("SELECT id, tracker_id, day FROM records WHERE tracker_id = ? AND day = ? ORDER BY id",
		trackerID, r.engine.Calendar().DayKey(date))
}

func (r *RecordRepository) IsCompleted(trackerID string, date time.Time) (bool, error) {
	var n int
	err := r.engine.db.QueryRow("SELECT count(*) FROM records WHERE tracker_id = ? AND day = ?",
		trackerID, r.engine.Calendar().DayKey(date)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountForTracker returns the number of distinct days the tracker was completed.
func (r *RecordRepository) CountForTracker(trackerID string) (int, error) {
	var n int
	err := r.engine.db.QueryRow("SELECT count(DISTINCT day) FROM records WHERE tracker_id = ?", trackerID).Scan(&n)
	return n, err
}

// Earliest returns the oldest record. ok is false when there are none.
func (r *RecordRepository) Earliest() (models.Record, bool, error) {
	recs, err := r.query("SELECT id, tracker_id, day FROM records ORDER BY day, id LIMIT 1")
	if err != nil || len(recs) == 0 {
		return models.Record{}, false, err
	}
	return recs[0], true, nil
}

func (r *RecordRepository) Count() (int, error) {
	var n int
	err := r.engine.db.QueryRow("SELECT count(*) FROM records").Scan(&n)
	return n, err
}

func (r *RecordRepository) ListAll() ([]models.Record, error) {
	return r.query("SELECT id, tracker_id, day FROM records ORDER BY day, id")
}

// DeleteAll removes every record.
func (r *RecordRepository) DeleteAll() error {
	err := r.engine.Save(func(u *UnitOfWork) error {
		if _, err := u.Exec("DELETE FROM records"); err != nil {
			return err
		}
		u.Touch(events.RecordsChanged)
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete records", "error", err)
	}
	return err
}

// Subscribe delivers record changes through d.
func (r *RecordRepository) Subscribe(d events.Dispatcher, fn func(events.Event)) *events.Subscription {
	return r.engine.Bus().Subscribe(d, fn, events.RecordsChanged)
}

func (r *RecordRepository) checkDay(date time.Time) (time.Time, error) {
	cal := r.engine.Calendar()
	day := cal.StartOfDay(date)
	if day.After(r.engine.Today()) {
		return time.Time{}, fmt.Errorf("%s: %w", cal.DayKey(day), apperrors.ErrFutureDate)
	}
	return day, nil
}

func (r *RecordRepository) query(query string, args ...any) ([]models.Record, error) {
	rows, err := r.engine.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cal := r.engine.Calendar()
	var recs []models.Record
	for rows.Next() {
		var rec models.Record
		var key string
		if err := rows.Scan(&rec.ID, &rec.TrackerID, &key); err != nil {
			return nil, err
		}
		rec.Day, err = cal.ParseDay(key)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.ID, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func trackerExists(u *UnitOfWork, id string) error {
	var n int
	if err := u.QueryRow("SELECT count(*) FROM trackers WHERE id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("tracker", id)
	}
	return nil
}
