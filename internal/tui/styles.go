package tui

import "github.com/charmbracelet/lipgloss"

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim   = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorCyan  = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
	colorRed   = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	idStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	selectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite).
				Background(lipgloss.AdaptiveColor{Light: "252", Dark: "237"})

	centeredStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Align(lipgloss.Center)
)
