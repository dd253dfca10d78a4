package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 2)

	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	previewStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	toastStyles = map[string]lipgloss.Style{
		"success": lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		"info":    lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)
