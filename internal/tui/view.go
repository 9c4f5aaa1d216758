package tui

import (
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/julianstephens/tracker/internal/models"
)

var titleCase = cases.Title(language.English)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	parts := []string{m.viewTabs()}
	if m.searching || m.search.Value() != "" {
		parts = append(parts, m.search.View())
	}
	parts = append(parts, docStyle.Render(m.viewBoard()))

	switch {
	case m.err != nil:
		parts = append(parts, dangerStyle.Render("Error: "+m.err.Error()))
	case m.status != "":
		parts = append(parts, mutedStyle.Render(m.status))
	}
	parts = append(parts, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	tabs := []string{dateStyle.Render(m.dateLabel())}
	for _, mode := range models.FilterModes() {
		title := titleCase.String(mode.Short())
		if mode == m.mode {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) dateLabel() string {
	today := m.today()
	switch {
	case m.cal.SameDay(m.date, today):
		return "Today"
	case m.cal.SameDay(m.date, m.cal.AddDays(today, -1)):
		return "Yesterday"
	}
	return m.cal.Weekday(m.date).Short() + " " + m.cal.DayKey(m.date)
}

func (m Model) viewBoard() string {
	if !m.board.IsEmpty() {
		return m.board.View()
	}
	if m.trackers.SearchText() != "" {
		return "\n  Nothing found"
	}
	return "\n  What shall we track?\n  Add one with 'tracker tracker add'."
}
