package handlers

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"catalogadmin/internal/catalog"
	"catalogadmin/internal/domain"
	"catalogadmin/internal/eventbus"
	"catalogadmin/internal/ui/state"
)

// EventHandler handles domain events and updates state
type EventHandler struct {
	state       *state.AppState
	reload      func(catalog.Kind) tea.Cmd
	onLoggedOut func(reason string) tea.Cmd
}

// NewEventHandler creates a new event handler. reload fetches a listing
// again; onLoggedOut resets whatever the session owned.
func NewEventHandler(appState *state.AppState, reload func(catalog.Kind) tea.Cmd, onLoggedOut func(string) tea.Cmd) *EventHandler {
	return &EventHandler{
		state:       appState,
		reload:      reload,
		onLoggedOut: onLoggedOut,
	}
}

// HandleEvent processes domain events and returns any necessary commands
func (h *EventHandler) HandleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case eventbus.ResourceChangedEvent:
		h.state.SetStatus(state.StatusSuccess, describeChange(e))
		// Only the visible listing is refetched now; others reload when shown
		if h.state.Screen == state.ScreenList && h.state.ActiveKind() == e.Resource {
			if !h.state.Loading[e.Resource] {
				return h.reload(e.Resource)
			}
			return nil
		}
		h.state.Invalidate(e.Resource)

	case eventbus.LoginSucceededEvent:
		h.state.Session.Username = e.Username
		h.state.Session.Token = e.Token

	case eventbus.LoggedOutEvent:
		if !h.state.Session.LoggedIn() && h.state.Screen == state.ScreenLogin {
			return nil
		}
		return h.onLoggedOut(e.Reason)

	case eventbus.ErrorEvent:
		h.state.SetStatus(state.StatusError, fmt.Sprintf("Error: %s", e.Message))

	case eventbus.ConfigSavedEvent:
		if h.state.StatusMessage == "" {
			h.state.SetStatus(state.StatusInfo, fmt.Sprintf("Settings saved to %s", e.Path))
		}
	}

	return nil
}

func describeChange(e eventbus.ResourceChangedEvent) string {
	switch e.Op {
	case domain.OpCreated:
		return fmt.Sprintf("%s #%d created", e.Resource, e.ID)
	case domain.OpDeleted:
		return fmt.Sprintf("%s #%d deleted", e.Resource, e.ID)
	default:
		return fmt.Sprintf("%s #%d saved", e.Resource, e.ID)
	}
}
