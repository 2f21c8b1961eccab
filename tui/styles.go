package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette for dark terminals; 256-color codes so it degrades cleanly.
var (
	ColorPrimary   = lipgloss.Color("255")
	ColorSecondary = lipgloss.Color("240")
	ColorAccent    = lipgloss.Color("39")
	ColorSuccess   = lipgloss.Color("42")
	ColorError     = lipgloss.Color("196")
	ColorWarning   = lipgloss.Color("214")
	ColorDim       = lipgloss.Color("244")
	ColorSQL       = lipgloss.Color("117")
)

var (
	StyleDimmed  = lipgloss.NewStyle().Foreground(ColorDim)
	StyleBold    = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)

	StyleTitle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).MarginBottom(1)
	StylePrompt = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	StyleSQL    = lipgloss.NewStyle().Foreground(ColorSQL)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary)

	// Header tabs
	StyleTabActive   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).Padding(0, 1)
	StyleTabInactive = lipgloss.NewStyle().Foreground(ColorDim).Padding(0, 1)

	// Result grid
	StyleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).Padding(0, 1)
	StyleTableCell   = lipgloss.NewStyle().Foreground(ColorPrimary).Padding(0, 1)

	// Status bar
	StyleStatusBar = lipgloss.NewStyle().Foreground(ColorSecondary)
	StyleHelpKey   = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	StyleHelpDesc  = lipgloss.NewStyle().Foreground(ColorDim)
)
