// Package tui provides a bubbletea + lipgloss terminal dashboard for the
// conversation loop.
package tui

import "github.com/charmbracelet/lipgloss"

// defaultAccentColor is the default accent color (terminal green).
const defaultAccentColor = "#00FF00"

// Color palette shared across the dashboard.
var (
	colorWhite = lipgloss.Color("#FAFAFA")
	colorGray  = lipgloss.Color("#888888")
	colorGreen = lipgloss.Color("#6BCB77")
	colorRed   = lipgloss.Color("#FF6B6B")
)

// Styles that do not depend on the accent color or the personality pack.
// Accent and per-persona styles live on Theme and are computed at creation.
var (
	footerStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	timestampStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	thinkingStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)
)
