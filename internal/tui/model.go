// Package tui is the interactive tracker board. It shows the live, sectioned
// tracker list for one day and redraws whenever the store publishes a change.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tracker/internal/events"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/prefs"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/internal/tui/components/board"
)

type Config struct {
	Trackers storage.Trackers
	Records  storage.Records
	Prefs    *prefs.Store
	Calendar models.Calendar
	// Today returns midnight of the current day.
	Today func() time.Time
}

type Model struct {
	trackers storage.Trackers
	records  storage.Records
	prefs    *prefs.Store
	cal      models.Calendar
	today    func() time.Time

	date      time.Time
	mode      models.FilterMode
	board     board.Model
	search    textinput.Model
	searching bool
	keys      KeyMap
	help      help.Model

	dispatcher *dispatcher
	sub        *events.Subscription

	status   string
	err      error
	quitting bool
	width    int
	height   int
}

func NewModel(cfg Config) (Model, error) {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search trackers"

	m := Model{
		trackers:   cfg.Trackers,
		records:    cfg.Records,
		prefs:      cfg.Prefs,
		cal:        cfg.Calendar,
		today:      cfg.Today,
		date:       cfg.Today(),
		mode:       cfg.Prefs.FilterMode(),
		board:      board.New(0, 0),
		search:     search,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		dispatcher: newDispatcher(),
	}

	d := m.dispatcher
	m.sub = m.trackers.Subscribe(d, func(e events.Event) {
		logger.Debug("Board notified", "topic", e.Topic, "version", e.Version)
		d.dirty = true
	})

	if err := m.trackers.ApplyMode(m.mode, m.date); err != nil {
		m.sub.Unsubscribe()
		return Model{}, fmt.Errorf("failed to load trackers: %w", err)
	}
	if err := m.trackers.Search(""); err != nil {
		m.sub.Unsubscribe()
		return Model{}, fmt.Errorf("failed to load trackers: %w", err)
	}
	m.reload()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return m.dispatcher.wait()
}

// Close stops store notifications. Call it once the program has exited.
func (m Model) Close() {
	if m.sub != nil {
		m.sub.Unsubscribe()
	}
}

// Date is the day the board shows completions for.
func (m Model) Date() time.Time {
	return m.date
}

func (m Model) Mode() models.FilterMode {
	return m.mode
}

// Rows returns the rows currently on the board.
func (m Model) Rows() []board.Row {
	return m.board.Rows()
}

func (m Model) Selected() (models.Tracker, bool) {
	return m.board.Selected()
}

func (m Model) Err() error {
	return m.err
}

// reload rebuilds the board from the live list.
func (m *Model) reload() {
	var rows []board.Row
	for s := 0; s < m.trackers.SectionCount(); s++ {
		rows = append(rows, board.Row{Header: m.trackers.SectionTitle(s)})
		for r := 0; r < m.trackers.RowCount(s); r++ {
			t, ok := m.trackers.TrackerAt(s, r)
			if !ok {
				continue
			}
			done, err := m.records.IsCompleted(t.ID, m.date)
			if err != nil {
				m.err = err
				return
			}
			days, err := m.records.CountForTracker(t.ID)
			if err != nil {
				m.err = err
				return
			}
			rows = append(rows, board.Row{Tracker: t, Done: done, Days: days})
		}
	}
	m.err = nil
	m.board.SetRows(rows)
}

// applyFilter reapplies the filter mode for the shown date.
func (m *Model) applyFilter() {
	if err := m.trackers.ApplyMode(m.mode, m.date); err != nil {
		m.err = err
		return
	}
	m.reload()
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.search.Width = width - 4
	// tabs, search, status and help
	m.board.SetSize(width-2, max(height-6, 1))
}
