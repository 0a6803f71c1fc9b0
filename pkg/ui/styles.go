// Package ui provides the Bubble Tea dashboard for the arbitrage watcher.
package ui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple
	ColorProfit  = lipgloss.Color("#10B981") // Green
	ColorLoss    = lipgloss.Color("#EF4444") // Red
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorBorder  = lipgloss.Color("#374151") // Dark gray
)

// Styles
var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorPrimary).
			Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	PositiveRate = lipgloss.NewStyle().
			Foreground(ColorProfit).
			Bold(true)

	NegativeRate = lipgloss.NewStyle().
			Foreground(ColorLoss)

	MutedValue = lipgloss.NewStyle().
			Foreground(ColorMuted)

	PausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorLoss)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)
)
