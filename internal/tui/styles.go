package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorNavy  = lipgloss.Color("#1E2A44")
	ColorWhite = lipgloss.Color("#FFFFFF")
	ColorGray  = lipgloss.Color("240")
	ColorBlue  = lipgloss.Color("39")
	ColorRed   = lipgloss.Color("196")
)

var (
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	chartTitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			MarginBottom(1)

	tabStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorBlue).
			Bold(true).
			Padding(0, 2)

	errorBannerStyle = lipgloss.NewStyle().
				Foreground(ColorWhite).
				Background(ColorRed).
				Bold(true).
				Padding(0, 1)

	statusLineStyle = lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(ColorWhite)
)
