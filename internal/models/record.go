package models

import "time"

// Record marks a tracker as completed on a calendar day.
type Record struct {
	ID        int64     `json:"id"`
	TrackerID string    `json:"tracker_id"`
	Day       time.Time `json:"day"`
}

// Statistics are the aggregate counters of the statistics screen.
type Statistics struct {
	BestStreak     int     `json:"best_streak"`
	PerfectDays    int     `json:"perfect_days"`
	TotalCompleted int     `json:"total_completed"`
	AveragePerDay  float64 `json:"average_per_day"`
}

// IsEmpty reports whether there is nothing to show.
func (s Statistics) IsEmpty() bool {
	return s.BestStreak == 0 && s.PerfectDays == 0 && s.TotalCompleted == 0 && s.AveragePerDay == 0
}
