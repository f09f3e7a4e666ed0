package components

import "github.com/charmbracelet/lipgloss"

var (
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	satisfiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	missingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	borderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)
