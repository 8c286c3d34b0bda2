package dashboard

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#00e676")
	colorDanger  = lipgloss.Color("#cf6679")
	colorWarning = lipgloss.Color("214")
	colorDim     = lipgloss.Color("241")
	colorText    = lipgloss.Color("252")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorText)

	statStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	offlineStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorDanger)

	connectingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWarning)

	startButtonStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("0")).
				Background(colorAccent).
				Padding(0, 2)

	stopButtonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(colorDanger).
			Padding(0, 2)

	disabledButtonStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Background(lipgloss.Color("237")).
				Padding(0, 2)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)
