package multiselect

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles keyboard, mouse and deferred focus messages
func (m *Model[V]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case focusSearchMsg:
		// A close (or a manual focus move) since Open makes this request stale
		if msg.id != m.id || msg.gen != m.gen || !m.open || m.area != areaTrigger {
			return nil
		}
		return m.focusSearch()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	if m.open && m.area == areaSearch {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model[V]) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.disabled || !m.focused {
		return nil
	}

	// Escape closes from anywhere inside the widget
	if key.Matches(msg, m.keys.Close) {
		m.Close()
		return nil
	}

	if !m.open {
		switch {
		case key.Matches(msg, m.keys.Activate):
			return m.Open()
		case key.Matches(msg, m.keys.RemoveLast):
			if n := len(m.selected); n > 0 {
				m.Remove(m.selected[n-1])
			}
		}
		return nil
	}

	switch m.area {
	case areaSearch:
		return m.handleSearchKey(msg)
	case areaList:
		return m.handleListKey(msg)
	default:
		switch {
		case key.Matches(msg, m.keys.Activate):
			m.Close()
		case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.Next):
			return m.focusSearch()
		}
		return nil
	}
}

func (m *Model[V]) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	// Letters must reach the input, so only non-printable keys navigate here
	switch msg.Type {
	case tea.KeyDown, tea.KeyTab, tea.KeyEnter:
		m.enterList()
		return nil
	case tea.KeyShiftTab:
		m.area = areaTrigger
		m.search.Blur()
		return nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.cursor, m.offset = 0, 0
		m.emit(Event[V]{Kind: EventSearchChanged, Selection: m.Selected()})
	}
	return cmd
}

func (m *Model[V]) handleListKey(msg tea.KeyMsg) tea.Cmd {
	items := m.Filtered()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor == 0 {
			return m.focusSearch()
		}
		m.cursor--
		m.scrollToCursor()
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(items)-1 {
			m.cursor++
			m.scrollToCursor()
		}
	case key.Matches(msg, m.keys.Activate):
		if m.cursor >= 0 && m.cursor < len(items) {
			m.Toggle(items[m.cursor].Value)
		}
	case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
		return m.focusSearch()
	case msg.Type == tea.KeyRunes, msg.Type == tea.KeyBackspace:
		// Typing from the list resumes the search
		cmd := m.focusSearch()
		return tea.Batch(cmd, m.handleSearchKey(msg))
	}
	return nil
}

func (m *Model[V]) focusSearch() tea.Cmd {
	m.area = areaSearch
	return m.search.Focus()
}

func (m *Model[V]) enterList() {
	if len(m.Filtered()) == 0 {
		return
	}
	m.area = areaList
	m.cursor, m.offset = 0, 0
	m.search.Blur()
}

func (m *Model[V]) handleMouse(msg tea.MouseMsg) tea.Cmd {
	ev := tea.MouseEvent(msg)
	if ev.Action != tea.MouseActionPress || ev.Button != tea.MouseButtonLeft {
		return nil
	}
	if !m.Contains(ev.X, ev.Y) {
		// Without a scope nobody else will close us
		if m.scope == nil {
			m.Close()
		}
		return nil
	}
	if m.disabled {
		return nil
	}

	x, y := ev.X-m.originX, ev.Y-m.originY
	if y == 0 {
		// Only the × stops the press; the rest of a badge is trigger
		for _, hit := range m.triggerHits() {
			if hit.removable && x == hit.remove {
				m.Remove(hit.value)
				return nil
			}
		}
		m.focused = true
		if m.open {
			m.Close()
			return nil
		}
		return m.Open()
	}

	if !m.open {
		return nil
	}
	switch {
	case y == searchRow:
		return m.focusSearch()
	case y >= listRow && y < listRow+m.maxVisible:
		items := m.Filtered()
		idx := m.offset + (y - listRow)
		if idx < len(items) {
			m.area = areaList
			m.search.Blur()
			m.cursor = idx
			m.Toggle(items[idx].Value)
		}
	}
	return nil
}
