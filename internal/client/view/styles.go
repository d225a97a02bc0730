// Package view renders editor rows, stats and slides for the terminal.
// Nothing here changes state.
package view

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
	Accent  lipgloss.Style
	Card    lipgloss.Style
	Bar     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Bold:    lipgloss.NewStyle().Bold(true),
		Body:    lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(0, 1),
		Bar: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
	}
}
