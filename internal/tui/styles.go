package tui

import "github.com/charmbracelet/lipgloss"

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 1)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Padding(0, 1)

	docStyle = lipgloss.NewStyle().Margin(0, 1)

	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dangerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)
