package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	colorPrimary   = lipgloss.Color("39")  // Blue
	colorSecondary = lipgloss.Color("245") // Gray
	colorSuccess   = lipgloss.Color("76")  // Green
	colorWarning   = lipgloss.Color("214") // Orange
	colorMuted     = lipgloss.Color("240") // Dark gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	statsStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorMuted).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorMuted)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(colorPrimary)

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	sizeStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Width(12).
			Align(lipgloss.Right)

	pctStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Width(8).
			Align(lipgloss.Right)

	fileStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)
)

// FormatCount formats a count for display.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
