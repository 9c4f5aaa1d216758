package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	m, err := tui.NewModel(tui.Config{
		Trackers: ctx.Trackers,
		Records:  ctx.Records,
		Prefs:    ctx.Prefs,
		Calendar: ctx.Calendar,
		Today:    ctx.Today,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
