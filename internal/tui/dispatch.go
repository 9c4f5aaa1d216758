package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tracker/internal/events"
)

// changedMsg tells Update that store callbacks are waiting to run.
type changedMsg struct{}

// dispatcher queues subscription callbacks until the program's Update runs
// them, so observers only ever see the store from the UI goroutine.
type dispatcher struct {
	loop   *events.Loop
	notify chan struct{}
	dirty  bool
}

func newDispatcher() *dispatcher {
	return &dispatcher{loop: events.NewLoop(), notify: make(chan struct{}, 1)}
}

func (d *dispatcher) Dispatch(fn func()) {
	d.loop.Dispatch(fn)
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

func (d *dispatcher) wait() tea.Cmd {
	return func() tea.Msg {
		<-d.notify
		return changedMsg{}
	}
}

// run executes queued callbacks and reports whether any of them marked the
// view stale.
func (d *dispatcher) run() bool {
	d.loop.Drain()
	dirty := d.dirty
	d.dirty = false
	return dirty
}
