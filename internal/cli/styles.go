package cli

import (
	"github.com/charmbracelet/lipgloss"

	"loipen-tracker/internal/timer"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#1F6FB2")).
			Padding(0, 1)

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7DC6F")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8A8A8A"))

	totalStyle = lipgloss.NewStyle().Bold(true)
)

// stateStyle returns the style for a timer state string.
func stateStyle(state string) lipgloss.Style {
	switch state {
	case timer.StateRunning.String():
		return runningStyle
	case timer.StatePaused.String():
		return pausedStyle
	default:
		return idleStyle
	}
}
