package monitor

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/martinwickman/tavs/internal/activity"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	countStyle = lipgloss.NewStyle().Faint(true)
	faintStyle = lipgloss.NewStyle().Faint(true)

	projectStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	projectPathStyle = lipgloss.NewStyle().Faint(true)

	processingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	permissionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	completeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	compactingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan
	idleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Faint(true)
	resetStyle      = lipgloss.NewStyle().Faint(true)

	titleTextStyle = lipgloss.NewStyle().Faint(true).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	helpStyle = lipgloss.NewStyle().Faint(true).MarginTop(1)

	projectBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1).
			MarginTop(1)

	summaryBarStyle = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

func kindStyle(k activity.Kind) lipgloss.Style {
	switch k {
	case activity.Processing:
		return processingStyle
	case activity.Permission:
		return permissionStyle
	case activity.Complete:
		return completeStyle
	case activity.Compacting:
		return compactingStyle
	case activity.Idle:
		return idleStyle
	default:
		return resetStyle
	}
}
