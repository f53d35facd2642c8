package multiselect

import "github.com/charmbracelet/lipgloss"

// Styles contains the style definitions for the widget.
// None of them may add padding, margins or borders except Popover, since
// pointer hit-testing relies on the plain text layout of the trigger line.
type Styles struct {
	Trigger        lipgloss.Style
	TriggerFocused lipgloss.Style
	Disabled       lipgloss.Style
	Placeholder    lipgloss.Style
	Badge          lipgloss.Style
	InvalidBadge   lipgloss.Style
	Chevron        lipgloss.Style
	Popover        lipgloss.Style
	Row            lipgloss.Style
	RowCursor      lipgloss.Style
	RowSelected    lipgloss.Style
	Value          lipgloss.Style
	Empty          lipgloss.Style
}

// NewStyles creates a Styles instance with default values
func NewStyles() Styles {
	return Styles{
		Trigger:        lipgloss.NewStyle(),
		TriggerFocused: lipgloss.NewStyle().Underline(true),
		Disabled:       lipgloss.NewStyle().Faint(true),
		Placeholder:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Badge:          lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")),
		InvalidBadge:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Background(lipgloss.Color("238")),
		Chevron:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Popover: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")),
		Row:         lipgloss.NewStyle(),
		RowCursor:   lipgloss.NewStyle().Background(lipgloss.Color("238")).Bold(true),
		RowSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		Value:       lipgloss.NewStyle().Faint(true),
		Empty:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	}
}
