package models

import (
	"fmt"
	"strings"
)

// FilterMode is the persisted list filter selection.
type FilterMode string

const (
	FilterAll         FilterMode = "allTrackers"
	FilterToday       FilterMode = "todayTrackers"
	FilterCompleted   FilterMode = "completedTrackers"
	FilterUncompleted FilterMode = "uncompletedTrackers"

	DefaultFilterMode = FilterToday
)

// FilterModes lists every mode in menu order.
func FilterModes() []FilterMode {
	return []FilterMode{FilterAll, FilterToday, FilterCompleted, FilterUncompleted}
}

// ParseFilterMode accepts the persisted values and the short names
// all, today, completed and uncompleted.
func ParseFilterMode(s string) (FilterMode, error) {
	s = strings.TrimSpace(s)
	for _, m := range FilterModes() {
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, m.Short()) {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid filter %q (expected all, today, completed or uncompleted)", s)
}

// Short returns the CLI name of the mode.
func (m FilterMode) Short() string {
	return strings.TrimSuffix(string(m), "Trackers")
}
