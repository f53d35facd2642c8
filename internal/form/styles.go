package form

import "github.com/charmbracelet/lipgloss"

// Styles contains the style definitions for forms
type Styles struct {
	Title        lipgloss.Style
	Label        lipgloss.Style
	FocusedLabel lipgloss.Style
	Required     lipgloss.Style
	ReadOnly     lipgloss.Style
	Error        lipgloss.Style
	Help         lipgloss.Style
	Control      lipgloss.Style
}

// NewStyles creates a Styles instance with default values
func NewStyles() Styles {
	return Styles{
		Title:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Label:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		FocusedLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Required:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		ReadOnly:     lipgloss.NewStyle().Faint(true),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Help:         lipgloss.NewStyle().Faint(true),
		Control:      lipgloss.NewStyle(),
	}
}
