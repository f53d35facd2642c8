package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

// HelpRenderer handles help content rendering
type HelpRenderer struct {
	keys keyMap
}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer(keys keyMap) *HelpRenderer {
	return &HelpRenderer{keys: keys}
}

type helpSection struct {
	title string
	rows  [][2]string
}

func (r *HelpRenderer) sections() []helpSection {
	rows := func(bindings ...key.Binding) [][2]string {
		out := make([][2]string, 0, len(bindings))
		for _, b := range bindings {
			h := b.Help()
			out = append(out, [2]string{h.Key, h.Desc})
		}
		return out
	}
	k := r.keys
	return []helpSection{
		{"Navigation", rows(k.Up, k.Down, k.NextTab, k.PrevTab)},
		{"Records", rows(k.New, k.Edit, k.Delete, k.Refresh)},
		{"Listing", append(rows(k.Filter, k.Sort), [2]string{"status:active", "Filter by status (books, folklore)"})},
		{"Forms", [][2]string{
			{"tab/shift+tab", "Next/previous field"},
			{"ctrl+s", "Save"},
			{"esc", "Cancel (closes an open dropdown first)"},
			{"←/→", "Cycle a single choice"},
			{"space", "Toggle a checkbox"},
		}},
		{"Multi-select", [][2]string{
			{"enter/space", "Open the dropdown"},
			{"type", "Filter options by label"},
			{"↓/tab", "Move from search to the option list"},
			{"enter", "Toggle the option under the cursor"},
			{"backspace", "Remove the last badge (closed dropdown)"},
			{"click ×", "Remove a badge"},
		}},
		{"Other", rows(k.Language, k.Logout, k.Help, k.Quit)},
	}
}

// RenderHelpContentPlain generates help content with colors for pager
func (r *HelpRenderer) RenderHelpContentPlain() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(16)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder
	help.WriteString(titleStyle.Render("catalogadmin Help"))
	help.WriteString("\n")

	for i, s := range r.sections() {
		if i > 0 {
			help.WriteString("\n")
		}
		help.WriteString(sectionStyle.Render(s.title))
		help.WriteString("\n")
		for _, row := range s.rows {
			help.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(row[0]), descStyle.Render(row[1])))
		}
	}
	return strings.TrimRight(help.String(), "\n")
}

// renderHelpContent renders the help as a scrollable window of height lines
func (r *HelpRenderer) renderHelpContent(height int, scrollOffset int) string {
	lines := strings.Split(r.RenderHelpContentPlain(), "\n")
	totalLines := len(lines)

	// Account for popup border and padding
	visibleHeight := max(height-4, 5)
	if totalLines <= visibleHeight {
		return strings.Join(lines, "\n")
	}

	maxOffset := totalLines - visibleHeight
	scrollOffset = min(max(scrollOffset, 0), maxOffset)
	endLine := scrollOffset + visibleHeight
	visibleLines := append([]string(nil), lines[scrollOffset:endLine]...)

	more := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	if scrollOffset > 0 {
		visibleLines[0] = more.Render("↑ (more above)")
	}
	if endLine < totalLines {
		visibleLines[len(visibleLines)-1] = more.Render("↓ (more below)")
	}
	return strings.Join(visibleLines, "\n")
}

// HelpOps shows help outside of the Bubble Tea screen
type HelpOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewHelpOps creates a new help operations instance
func NewHelpOps() *HelpOps {
	return &HelpOps{}
}

// SetProgram sets the program whose terminal is released while the pager runs
func (h *HelpOps) SetProgram(p *tea.Program) {
	h.program = p
}

// ShowHelpInPager shows help content using ov pager
func (h *HelpOps) ShowHelpInPager(helpContent string) error {
	if h.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}

	// Ensure terminal is restored even if ov fails
	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(helpContent))
	if err != nil {
		return err
	}

	// Don't write the document back to the terminal on exit
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
