package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case changedMsg:
		if m.dispatcher.run() {
			m.reload()
		}
		return m, m.dispatcher.wait()

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.board, cmd = m.board.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.board.MoveUp()

	case key.Matches(msg, m.keys.Down):
		m.board.MoveDown()

	case key.Matches(msg, m.keys.PrevDay):
		m.date = m.cal.AddDays(m.date, -1)
		m.applyFilter()

	case key.Matches(msg, m.keys.NextDay):
		next := m.cal.AddDays(m.date, 1)
		if next.After(m.today()) {
			m.status = "Can't mark days in the future"
			break
		}
		m.date = next
		m.applyFilter()

	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.board.Selected()
		if !ok {
			break
		}
		done, err := m.records.Toggle(t.ID, m.date)
		if err != nil {
			m.err = err
			break
		}
		if done {
			m.status = t.Title + " done"
		} else {
			m.status = t.Title + " not done"
		}

	case key.Matches(msg, m.keys.Pin):
		t, ok := m.board.Selected()
		if !ok {
			break
		}
		if err := m.trackers.SetPinned(t.ID, !t.Pinned); err != nil {
			m.err = err
		}

	case key.Matches(msg, m.keys.Filter):
		m.mode = nextMode(m.mode)
		if err := m.prefs.SetFilterMode(m.mode); err != nil {
			logger.Warn("Failed to save filter", "mode", m.mode, "error", err)
		}
		m.applyFilter()

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.runSearch()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.runSearch()
	return m, cmd
}

func (m *Model) runSearch() {
	if err := m.trackers.Search(m.search.Value()); err != nil {
		m.err = err
		return
	}
	m.reload()
}

func nextMode(current models.FilterMode) models.FilterMode {
	modes := models.FilterModes()
	for i, mode := range modes {
		if mode == current {
			return modes[(i+1)%len(modes)]
		}
	}
	return models.DefaultFilterMode
}
