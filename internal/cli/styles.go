package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tracker/internal/models"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	DangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// Swatch renders a small block in the tracker colour.
func Swatch(c models.Color) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render("  ")
}

// Check renders the completion mark of a tracker row.
func Check(done bool) string {
	if done {
		return SuccessStyle.Render("✓")
	}
	return MutedStyle.Render("·")
}

// FormatSchedule lists the scheduled days in the calendar's week order.
func FormatSchedule(s models.Schedule, cal models.Calendar) string {
	if s.IsEmpty() {
		return "one-off"
	}
	if s == models.EveryDay() {
		return "every day"
	}
	var days []string
	for _, d := range cal.Week() {
		if s.Has(d) {
			days = append(days, d.Short())
		}
	}
	return strings.Join(days, " ")
}

// FormatDays renders the "N days" completion counter.
func FormatDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
