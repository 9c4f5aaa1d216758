package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
)

// WeekDay is a day of the week, Monday first. Its identity does not depend on
// the locale; only display order does (see Calendar).
type WeekDay int

const (
	Monday WeekDay = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekDayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// AllWeekDays returns every weekday, Monday first.
func AllWeekDays() []WeekDay {
	return []WeekDay{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

func (d WeekDay) Valid() bool {
	return d >= Monday && d <= Sunday
}

// String returns the persisted name, e.g. "monday".
func (d WeekDay) String() string {
	if !d.Valid() {
		return fmt.Sprintf("WeekDay(%d)", int(d))
	}
	return weekDayNames[d]
}

// Short returns a three letter label, e.g. "Mon".
func (d WeekDay) Short() string {
	name := d.String()
	if !d.Valid() {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:3]
}

// Weekday converts to the standard library representation.
func (d WeekDay) Weekday() time.Weekday {
	return time.Weekday((int(d) + 1) % 7)
}

// WeekDayFromTime converts a standard library weekday.
func WeekDayFromTime(wd time.Weekday) WeekDay {
	return WeekDay((int(wd) + 6) % 7)
}

// ParseWeekDay accepts full names and three letter abbreviations in any case.
func ParseWeekDay(s string) (WeekDay, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for i, name := range weekDayNames {
		if s == name || (len(s) == 3 && strings.HasPrefix(name, s)) {
			return WeekDay(i), nil
		}
	}
	return 0, fmt.Errorf("invalid weekday: %q", s)
}

// Schedule is the set of weekdays a tracker recurs on.
type Schedule uint8

const fullWeek Schedule = 1<<7 - 1

// NewSchedule builds a schedule from the given days; invalid days are ignored.
func NewSchedule(days ...WeekDay) Schedule {
	var s Schedule
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// EveryDay is a schedule containing all seven days.
func EveryDay() Schedule {
	return fullWeek
}

func (s Schedule) Has(d WeekDay) bool {
	return d.Valid() && s&(1<<uint(d)) != 0
}

func (s Schedule) With(d WeekDay) Schedule {
	if !d.Valid() {
		return s
	}
	return s | 1<<uint(d)
}

func (s Schedule) Without(d WeekDay) Schedule {
	if !d.Valid() {
		return s
	}
	return s &^ (1 << uint(d))
}

func (s Schedule) IsEmpty() bool {
	return s&fullWeek == 0
}

func (s Schedule) Len() int {
	n := 0
	for _, d := range AllWeekDays() {
		if s.Has(d) {
			n++
		}
	}
	return n
}

// Days returns the members, Monday first.
func (s Schedule) Days() []WeekDay {
	var days []WeekDay
	for _, d := range AllWeekDays() {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// Mask is the integer stored in trackers.schedule_mask.
func (s Schedule) Mask() int64 {
	return int64(s & fullWeek)
}

// ScheduleFromMask is the inverse of Mask.
func ScheduleFromMask(mask int64) Schedule {
	return Schedule(mask) & fullWeek
}

// String returns the persisted encoding: weekday names joined by ", ".
func (s Schedule) String() string {
	days := s.Days()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return strings.Join(names, constants.ScheduleSeparator)
}

// DecodeSchedule parses the persisted encoding. Unknown names are skipped and
// returned so the caller can report them.
func DecodeSchedule(encoded string) (Schedule, []string) {
	var s Schedule
	var unknown []string
	for _, part := range strings.Split(encoded, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := ParseWeekDay(part)
		if err != nil {
			unknown = append(unknown, part)
			continue
		}
		s = s.With(d)
	}
	return s, unknown
}

// ParseSchedule parses user input such as "mon,wed", "daily" or "" and fails
// on the first unknown day.
func ParseSchedule(input string) (Schedule, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	switch input {
	case "":
		return 0, nil
	case "daily", "everyday", "every day":
		return EveryDay(), nil
	case "weekdays":
		return NewSchedule(Monday, Tuesday, Wednesday, Thursday, Friday), nil
	case "weekends":
		return NewSchedule(Saturday, Sunday), nil
	}

	var s Schedule
	for _, part := range strings.Split(input, ",") {
		d, err := ParseWeekDay(part)
		if err != nil {
			return 0, err
		}
		s = s.With(d)
	}
	return s, nil
}

func (s Schedule) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Schedule) UnmarshalText(b []byte) error {
	parsed, err := ParseSchedule(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
