// Package board renders the sectioned tracker list with a row cursor.
package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tracker/internal/models"
)

var (
	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true).
			MarginTop(1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// Row is either a section header (Header set) or a tracker.
type Row struct {
	Header  string
	Tracker models.Tracker
	Done    bool
	Days    int
}

func (r Row) isHeader() bool {
	return r.Header != ""
}

type Model struct {
	viewport viewport.Model
	rows     []Row
	cursor   int
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height), cursor: -1}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetRows replaces the content. The cursor stays on the same tracker when it
// is still listed.
func (m *Model) SetRows(rows []Row) {
	selected, hadSelection := m.Selected()
	m.rows = rows
	m.cursor = -1

	if hadSelection {
		for i, r := range rows {
			if !r.isHeader() && r.Tracker.ID == selected.ID {
				m.cursor = i
				break
			}
		}
	}
	if m.cursor < 0 {
		m.cursor = m.next(-1, 1)
	}
	m.Render()
}

func (m Model) Rows() []Row {
	return m.rows
}

func (m Model) IsEmpty() bool {
	return len(m.rows) == 0
}

// Selected returns the tracker under the cursor.
func (m Model) Selected() (models.Tracker, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return models.Tracker{}, false
	}
	return m.rows[m.cursor].Tracker, true
}

func (m *Model) MoveUp() {
	if i := m.next(m.cursor, -1); i >= 0 {
		m.cursor = i
		m.Render()
	}
}

func (m *Model) MoveDown() {
	if i := m.next(m.cursor, 1); i >= 0 {
		m.cursor = i
		m.Render()
	}
}

// next returns the index of the closest tracker row from start in direction
// dir, or -1.
func (m Model) next(start, dir int) int {
	for i := start + dir; i >= 0 && i < len(m.rows); i += dir {
		if !m.rows[i].isHeader() {
			return i
		}
	}
	return -1
}

// Render rebuilds the viewport content and scrolls the cursor into view.
func (m *Model) Render() {
	var b strings.Builder
	cursorLine := 0
	line := 0
	for i, r := range m.rows {
		if r.isHeader() {
			s := sectionStyle.Render(r.Header)
			b.WriteString(s + "\n")
			line += strings.Count(s, "\n") + 1
			continue
		}
		if i == m.cursor {
			cursorLine = line
		}
		b.WriteString(m.renderTracker(r, i == m.cursor) + "\n")
		line++
	}
	m.viewport.SetContent(strings.TrimSuffix(b.String(), "\n"))

	if m.viewport.Height <= 0 {
		return
	}
	if cursorLine < m.viewport.YOffset {
		m.viewport.SetYOffset(cursorLine)
	} else if cursorLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(cursorLine - m.viewport.Height + 1)
	}
}

func (m Model) renderTracker(r Row, selected bool) string {
	pointer := "  "
	title := titleStyle.Render(r.Tracker.Title)
	if selected {
		pointer = selectedStyle.Render("> ")
		title = selectedStyle.Render(r.Tracker.Title)
	}

	check := "○"
	if r.Done {
		check = doneStyle.Render("✓")
	}
	swatch := lipgloss.NewStyle().Background(lipgloss.Color(r.Tracker.Color.Hex())).Render("  ")

	pin := ""
	if r.Tracker.Pinned {
		pin = " 📌"
	}
	return fmt.Sprintf("%s%s %s %s %s%s %s", pointer, check, swatch, r.Tracker.Emoji, title, pin,
		mutedStyle.Render(formatDays(r.Days)))
}

func formatDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
