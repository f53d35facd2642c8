package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// StatusKind selects the color of the status line
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarning
	StatusError
)

// ViewState contains all the state needed for rendering a screen
type ViewState struct {
	Width         int
	Height        int
	Tabs          []string
	ActiveTab     int
	Loading       bool
	Language      string
	User          string
	Body          string
	Popup         string
	StatusMessage string
	StatusKind    StatusKind
	HelpView      string
}

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	popupRender *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer(styles *Styles) *Renderer {
	return &Renderer{
		styles:      styles,
		popupRender: NewPopupRenderer(styles),
	}
}

// Styles returns the renderer's styles
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Header renders the title line and the resource tabs
func (r *Renderer) Header(state ViewState) string {
	logo := r.styles.Title.Render("catalogadmin")

	indicators := []string{}
	if state.Loading {
		spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		frame := int(time.Now().UnixMilli()/80) % len(spinner)
		indicators = append(indicators, fmt.Sprintf("%s Loading", spinner[frame]))
	}
	if state.Language != "" {
		indicators = append(indicators, state.Language)
	}
	if state.User != "" {
		indicators = append(indicators, state.User)
	}

	titleLine := logo
	if len(indicators) > 0 {
		right := r.styles.Dim.Render(strings.Join(indicators, " | "))
		termWidth := state.Width
		if termWidth <= 0 {
			termWidth = 80
		}
		if pad := termWidth - lipgloss.Width(logo) - lipgloss.Width(right); pad > 0 {
			titleLine = logo + strings.Repeat(" ", pad) + right
		} else {
			titleLine = logo + "  " + right
		}
	}

	if len(state.Tabs) == 0 {
		return titleLine + "\n"
	}

	tabs := make([]string, 0, len(state.Tabs))
	for i, t := range state.Tabs {
		if i == state.ActiveTab {
			tabs = append(tabs, r.styles.ActiveTab.Render(t))
		} else {
			tabs = append(tabs, r.styles.Tab.Render(t))
		}
	}
	return titleLine + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n"
}

// HeaderHeight is the screen row at which Render starts the body
func (r *Renderer) HeaderHeight(state ViewState) int {
	// Header ends with a newline, so its height already counts the gap line
	return lipgloss.Height(r.Header(state))
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	var content strings.Builder
	content.WriteString(r.Header(state))
	content.WriteString("\n")
	content.WriteString(r.styles.Body.Render(state.Body))

	footer := r.renderStatus(state)
	if state.HelpView != "" {
		footer += "\n" + r.styles.Help.Render(state.HelpView)
	}

	// Push the footer to the bottom of the terminal
	current := lipgloss.Height(content.String())
	if pad := state.Height - current - lipgloss.Height(footer); pad > 0 {
		content.WriteString(strings.Repeat("\n", pad))
	}
	content.WriteString("\n")
	content.WriteString(footer)

	screen := content.String()
	if state.Popup != "" {
		return r.popupRender.RenderPopupOverlay(screen, state.Popup, state.Height, state.Width)
	}
	return screen
}

func (r *Renderer) renderStatus(state ViewState) string {
	if state.StatusMessage == "" {
		return ""
	}
	style := r.styles.StatusLoading
	switch state.StatusKind {
	case StatusSuccess:
		style = r.styles.StatusSuccess
	case StatusWarning:
		style = r.styles.StatusWarning
	case StatusError:
		style = r.styles.StatusError
	}
	return style.Render(state.StatusMessage)
}

// RenderLogin draws the login box centered on screen
func (r *Renderer) RenderLogin(width, height int, body string) string {
	box := r.styles.Login.Render(body)
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
