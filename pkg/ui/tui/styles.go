package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Palette
	pinRed      = lipgloss.Color("#E60023")
	okGreen     = lipgloss.Color("#2ECC71")
	warnOrange  = lipgloss.Color("#FF8C00")
	errorRed    = lipgloss.Color("#FF4040")
	dimWhite    = lipgloss.Color("#B0B0B0")
	brightWhite = lipgloss.Color("#FFFFFF")
	darkBg      = lipgloss.Color("#1A1A1A")

	logoStyle = lipgloss.NewStyle().
			Foreground(pinRed).
			Bold(true).
			Padding(1, 0, 0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pinRed).
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Background(pinRed).
			Foreground(brightWhite).
			Bold(true).
			Padding(0, 1)

	menuItemStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			PaddingLeft(2)

	menuSelectedStyle = lipgloss.NewStyle().
				Foreground(pinRed).
				Bold(true).
				PaddingLeft(2)

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(pinRed).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	successStyle = lipgloss.NewStyle().
			Foreground(okGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorRed).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warnOrange).
			Bold(true)

	logTimestampStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(1, 0, 0, 2)

	statusBarStyle = lipgloss.NewStyle().
			Background(darkBg).
			Foreground(dimWhite).
			Padding(0, 1)
)
