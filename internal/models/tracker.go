package models

import "time"

type TrackerKind string

const (
	// KindHabit recurs on the days of a non-empty schedule.
	KindHabit TrackerKind = "habit"
	// KindIrregular is a one-off event with an empty schedule.
	KindIrregular TrackerKind = "irregular"
)

// Tracker is a habit or a one-off event.
type Tracker struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Color      Color     `json:"color"`
	Emoji      string    `json:"emoji"`
	Schedule   Schedule  `json:"schedule"`
	Pinned     bool      `json:"is_pinned"`
	CategoryID int64     `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (t Tracker) Kind() TrackerKind {
	if t.Schedule.IsEmpty() {
		return KindIrregular
	}
	return KindHabit
}

// ScheduledOn reports whether the tracker recurs on d.
func (t Tracker) ScheduledOn(d WeekDay) bool {
	return t.Schedule.Has(d)
}

// TrackerInput is the user-supplied part of a tracker, checked by the
// validation package before anything reaches the store.
type TrackerInput struct {
	Title    string      `validate:"required,notblank,max=38"`
	Color    string      `validate:"required,hexcolor"`
	Emoji    string      `validate:"required,emoji"`
	Kind     TrackerKind `validate:"required,oneof=habit irregular"`
	Schedule Schedule
	Pinned   bool
}

// Section is one group of the sectioned tracker list.
type Section struct {
	Title string
	// CategoryID is zero for the pinned section.
	CategoryID int64
	Pinned     bool
	Trackers   []Tracker
}
