package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	header      lipgloss.Style
	label       lipgloss.Style
	value       lipgloss.Style
	activeParam lipgloss.Style
	graph       lipgloss.Style
	help        lipgloss.Style
	stats       lipgloss.Style
	running     lipgloss.Style
	paused      lipgloss.Style
	failed      lipgloss.Style
}

func newStyles(th Theme) styles {
	return styles{
		header:      lipgloss.NewStyle().Foreground(th.Primary).Bold(true).MarginBottom(1),
		label:       lipgloss.NewStyle().Foreground(th.Muted).Width(12),
		value:       lipgloss.NewStyle().Foreground(th.Text),
		activeParam: lipgloss.NewStyle().Foreground(th.Accent).Bold(true),
		graph:       lipgloss.NewStyle().Foreground(th.Secondary).Padding(1, 0),
		help:        lipgloss.NewStyle().Foreground(th.Muted).MarginTop(1),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(th.Muted).
			Padding(0, 2),
		running: lipgloss.NewStyle().Bold(true).Foreground(th.Success),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(th.Warning),
		failed:  lipgloss.NewStyle().Bold(true).Foreground(th.Error),
	}
}

// ProgressBar renders a bar filled to percent of width
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
