package models

import (
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/julianstephens/tracker/internal/constants"
)

// Regions whose week starts on a day other than Monday (CLDR firstDay data).
var (
	sundayFirstRegions = map[string]bool{
		"AG": true, "AS": true, "BD": true, "BR": true, "BS": true, "BT": true, "BW": true,
		"BZ": true, "CA": true, "CN": true, "CO": true, "DM": true, "DO": true, "ET": true,
		"GT": true, "GU": true, "HK": true, "HN": true, "ID": true, "IL": true, "IN": true,
		"JM": true, "JP": true, "KE": true, "KH": true, "KR": true, "LA": true, "MH": true,
		"MM": true, "MO": true, "MT": true, "MX": true, "MZ": true, "NI": true, "NP": true,
		"PA": true, "PE": true, "PH": true, "PK": true, "PR": true, "PT": true, "PY": true,
		"SA": true, "SG": true, "SV": true, "TH": true, "TT": true, "TW": true, "UM": true,
		"US": true, "VE": true, "VI": true, "WS": true, "YE": true, "ZA": true, "ZW": true,
	}
	saturdayFirstRegions = map[string]bool{
		"AE": true, "AF": true, "BH": true, "DJ": true, "DZ": true, "EG": true, "IQ": true,
		"IR": true, "JO": true, "KW": true, "LY": true, "OM": true, "QA": true, "SD": true,
		"SY": true,
	}
)

// Calendar resolves instants to calendar days and weekdays in a location and
// orders weekdays according to the locale's first day of the week.
type Calendar struct {
	Location     *time.Location
	FirstWeekday WeekDay
}

// DefaultCalendar uses the local timezone and a Monday-first week.
func DefaultCalendar() Calendar {
	return Calendar{Location: time.Local, FirstWeekday: Monday}
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// FirstWeekdayForLocale returns the first day of the week for a BCP 47 tag.
// Tags without a region use the most likely region ("en" resolves to US).
func FirstWeekdayForLocale(tag string) (WeekDay, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return Monday, fmt.Errorf("invalid locale %q: %w", tag, err)
	}
	region, _ := t.Region()
	switch code := region.String(); {
	case sundayFirstRegions[code]:
		return Sunday, nil
	case saturdayFirstRegions[code]:
		return Saturday, nil
	default:
		return Monday, nil
	}
}

// CalendarForLocale builds a calendar for a locale tag and an IANA timezone name.
func CalendarForLocale(tag, timezone string) (Calendar, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return Calendar{}, err
	}
	first, err := FirstWeekdayForLocale(tag)
	if err != nil {
		return Calendar{}, err
	}
	return Calendar{Location: loc, FirstWeekday: first}, nil
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// StartOfDay truncates t to midnight of its calendar day.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.location())
}

// AddDays moves by whole calendar days, staying at midnight across DST changes.
func (c Calendar) AddDays(t time.Time, n int) time.Time {
	y, m, d := t.In(c.location()).Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, c.location())
}

// DaysBetween counts calendar days from a to b (negative when b is earlier).
func (c Calendar) DaysBetween(a, b time.Time) int {
	ay, am, ad := a.In(c.location()).Date()
	by, bm, bd := b.In(c.location()).Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar day.
func (c Calendar) SameDay(a, b time.Time) bool {
	return c.DayKey(a) == c.DayKey(b)
}

// DayKey formats the calendar day of t as YYYY-MM-DD.
func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.location()).Format(constants.DateFormat)
}

// ParseDay parses YYYY-MM-DD as midnight in the calendar's location.
func (c Calendar) ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateFormat, s, c.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// Weekday resolves the weekday of t's calendar day.
func (c Calendar) Weekday(t time.Time) WeekDay {
	return WeekDayFromTime(t.In(c.location()).Weekday())
}

// Position returns the 0-based index of d in the locale's week.
func (c Calendar) Position(d WeekDay) int {
	first := c.FirstWeekday
	if !first.Valid() {
		first = Monday
	}
	return (int(d) - int(first) + 7) % 7
}

// Week returns the seven weekdays in locale order.
func (c Calendar) Week() []WeekDay {
	week := make([]WeekDay, 7)
	for _, d := range AllWeekDays() {
		week[c.Position(d)] = d
	}
	return week
}
