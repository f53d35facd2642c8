package multiselect

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Row offsets inside the rendered widget: trigger, popover top border,
// search input, then the option rows.
const (
	searchRow = 2
	listRow   = 3
)

const maxBadgeLabel = 24

type badgeHit[V comparable] struct {
	start     int
	end       int
	remove    int
	removable bool
	value     V
	text      string
	invalid   bool
}

// triggerHits lays out the badges on the trigger line in plain-text columns
func (m *Model[V]) triggerHits() []badgeHit[V] {
	badges := m.Badges()
	hits := make([]badgeHit[V], 0, len(badges))
	col := 0
	for i, b := range badges {
		if i > 0 {
			col++ // separator
		}
		text := "[" + truncateLabel(b.Label, maxBadgeLabel)
		removable := !m.disabled
		if removable {
			text += " ×]"
		} else {
			text += "]"
		}
		w := lipgloss.Width(text)
		hits = append(hits, badgeHit[V]{
			start:     col,
			end:       col + w,
			remove:    col + w - 2,
			removable: removable,
			value:     b.Value,
			text:      text,
			invalid:   b.Invalid,
		})
		col += w
	}
	return hits
}

// Contains reports whether the screen cell (x, y) lies inside the widget as
// currently drawn. The trigger row is only as wide as the trigger itself.
func (m *Model[V]) Contains(x, y int) bool {
	x, y = x-m.originX, y-m.originY
	if x < 0 || y < 0 {
		return false
	}
	if y == 0 {
		return x < lipgloss.Width(m.renderTrigger())
	}
	if !m.open {
		return false
	}
	popover := m.renderPopover()
	return y-1 < lipgloss.Height(popover) && x < lipgloss.Width(popover)
}

// View renders the trigger and, when open, the popover below it
func (m *Model[V]) View() string {
	trigger := m.renderTrigger()
	if !m.open {
		return trigger
	}
	return trigger + "\n" + m.renderPopover()
}

func (m *Model[V]) renderTrigger() string {
	var b strings.Builder
	hits := m.triggerHits()
	if len(hits) == 0 {
		b.WriteString(m.styles.Placeholder.Render(m.placeholder))
	}
	for i, hit := range hits {
		if i > 0 {
			b.WriteString(" ")
		}
		style := m.styles.Badge
		if hit.invalid {
			style = m.styles.InvalidBadge
		}
		b.WriteString(style.Render(hit.text))
	}

	chevron := " ▾"
	if m.open {
		chevron = " ▴"
	}
	b.WriteString(m.styles.Chevron.Render(chevron))

	line := b.String()
	switch {
	case m.disabled:
		return m.styles.Disabled.Render(line)
	case m.focused:
		return m.styles.TriggerFocused.Render(line)
	default:
		return m.styles.Trigger.Render(line)
	}
}

func (m *Model[V]) renderPopover() string {
	lines := []string{m.search.View()}

	items := m.Filtered()
	if len(items) == 0 {
		msg := "No options available"
		if m.search.Value() != "" {
			msg = "No options found"
		}
		lines = append(lines, m.styles.Empty.Render(msg))
		return m.styles.Popover.Render(strings.Join(lines, "\n"))
	}

	end := m.offset + m.maxVisible
	if end > len(items) {
		end = len(items)
	}
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(items[i], i))
	}
	if rest := len(items) - end; rest > 0 {
		lines = append(lines, m.styles.Empty.Render(fmt.Sprintf("↓ %d more", rest)))
	}
	return m.styles.Popover.Render(strings.Join(lines, "\n"))
}

func (m *Model[V]) renderRow(opt Option[V], idx int) string {
	selected := containsValue(m.selected, opt.Value)
	isCursor := m.area == areaList && idx == m.cursor

	prefix := "  "
	if isCursor {
		prefix = "› "
	}
	mark := "[ ]"
	if selected {
		mark = "[x]"
	}
	row := prefix + mark + " " + opt.Label
	if m.policy == PolicyVerbose {
		row += " " + m.styles.Value.Render(formatValue(opt.Value))
	}

	switch {
	case isCursor:
		return m.styles.RowCursor.Render(row)
	case selected:
		return m.styles.RowSelected.Render(row)
	default:
		return m.styles.Row.Render(row)
	}
}

// truncateLabel cuts s to at most max cells, marking the cut with an ellipsis
func truncateLabel(s string, max int) string {
	if lipgloss.Width(s) <= max {
		return s
	}
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > max-1 {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	b.WriteString("…")
	return b.String()
}
