package multiselect

import (
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultMaxVisible is the number of option rows shown at once
const DefaultMaxVisible = 8

// focusDelay lets the popover render once before the search input takes focus
var focusDelay = 100 * time.Millisecond

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

type focusArea int

const (
	areaTrigger focusArea = iota
	areaSearch
	areaList
)

// focusSearchMsg is the deferred focus request issued by Open
type focusSearchMsg struct {
	id  int
	gen int
}

// Config configures a new widget
type Config[V comparable] struct {
	Options     []Option[V]
	Selected    []V
	OnChange    func([]V)
	Placeholder string
	Disabled    bool
	Policy      Policy
	Observer    Observer[V]
	Scope       *PointerScope
	MaxVisible  int
	Styles      *Styles
	KeyMap      *KeyMap
}

// Model is a searchable multi-select combobox. The selection is owned by the
// caller: the widget mirrors whatever SetSelected last received and reports
// every requested change through OnChange.
type Model[V comparable] struct {
	id          int
	options     []Option[V]
	selected    []V
	onChange    func([]V)
	observer    Observer[V]
	placeholder string
	policy      Policy
	disabled    bool
	focused     bool
	maxVisible  int

	open    bool
	gen     int
	area    focusArea
	cursor  int
	offset  int
	search  textinput.Model
	scope   *PointerScope
	release func()

	originX int
	originY int

	styles Styles
	keys   KeyMap
}

// New creates a closed, unfocused widget
func New[V comparable](cfg Config[V]) *Model[V] {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search options..."
	ti.CharLimit = 64

	m := &Model[V]{
		id:          nextID(),
		onChange:    cfg.OnChange,
		observer:    cfg.Observer,
		placeholder: cfg.Placeholder,
		policy:      cfg.Policy,
		disabled:    cfg.Disabled,
		maxVisible:  cfg.MaxVisible,
		search:      ti,
		scope:       cfg.Scope,
		styles:      NewStyles(),
		keys:        DefaultKeyMap(),
	}
	if m.placeholder == "" {
		m.placeholder = "Select items..."
	}
	if m.maxVisible <= 0 {
		m.maxVisible = DefaultMaxVisible
	}
	if cfg.Styles != nil {
		m.styles = *cfg.Styles
	}
	if cfg.KeyMap != nil {
		m.keys = *cfg.KeyMap
	}
	m.SetOptions(cfg.Options)
	m.SetSelected(cfg.Selected)
	return m
}

// ID identifies the widget instance
func (m *Model[V]) ID() int {
	return m.id
}

// SetOptions replaces the option list. Values that cannot be compared are dropped.
func (m *Model[V]) SetOptions(options []Option[V]) {
	m.options = sanitizeOptions(options)
	m.clampCursor()
}

// Options returns a copy of the option list
func (m *Model[V]) Options() []Option[V] {
	return slices.Clone(m.options)
}

// SetSelected mirrors the caller's selection. The slice is copied.
func (m *Model[V]) SetSelected(selected []V) {
	m.selected = sanitizeValues(selected)
}

// Selected returns a copy of the mirrored selection
func (m *Model[V]) Selected() []V {
	return slices.Clone(m.selected)
}

// SetOnChange replaces the change callback
func (m *Model[V]) SetOnChange(fn func([]V)) {
	m.onChange = fn
}

// SetObserver replaces the observer
func (m *Model[V]) SetObserver(obs Observer[V]) {
	m.observer = obs
}

// SetPolicy changes how unknown selected values are rendered
func (m *Model[V]) SetPolicy(p Policy) {
	m.policy = p
}

// SetPlaceholder sets the text shown when nothing is selected
func (m *Model[V]) SetPlaceholder(s string) {
	m.placeholder = s
}

// SetDisabled toggles the disabled state. Disabling closes the popover.
func (m *Model[V]) SetDisabled(disabled bool) {
	m.disabled = disabled
	if disabled {
		m.Close()
	}
}

// Disabled reports whether the widget ignores interaction
func (m *Model[V]) Disabled() bool {
	return m.disabled
}

// Focus gives the trigger keyboard focus
func (m *Model[V]) Focus() {
	m.focused = true
}

// Blur removes keyboard focus and closes the popover
func (m *Model[V]) Blur() {
	m.focused = false
	m.Close()
}

// Focused reports whether the widget has keyboard focus
func (m *Model[V]) Focused() bool {
	return m.focused
}

// IsOpen reports whether the option list is visible
func (m *Model[V]) IsOpen() bool {
	return m.open
}

// Query returns the current search text
func (m *Model[V]) Query() string {
	return m.search.Value()
}

// SearchFocused reports whether the search input holds keyboard focus
func (m *Model[V]) SearchFocused() bool {
	return m.open && m.area == areaSearch
}

// SetOrigin records where the widget's top-left cell is drawn on screen
func (m *Model[V]) SetOrigin(x, y int) {
	m.originX, m.originY = x, y
}

// Open shows the option list. The returned command focuses the search input
// once the popover has been drawn; it is ignored if the widget closes first.
func (m *Model[V]) Open() tea.Cmd {
	if m.disabled || m.open {
		return nil
	}
	m.open = true
	m.gen++
	m.area = areaTrigger
	m.cursor, m.offset = 0, 0
	m.emit(Event[V]{Kind: EventOpened, Selection: m.Selected()})

	// Registered last so nothing above can leave a stale registration behind
	if m.scope != nil {
		m.release = m.scope.Acquire(m.Contains, m.Close)
	}

	id, gen := m.id, m.gen
	return tea.Tick(focusDelay, func(time.Time) tea.Msg {
		return focusSearchMsg{id: id, gen: gen}
	})
}

// Close hides the option list and clears the search text
func (m *Model[V]) Close() {
	if !m.open {
		return
	}
	m.open = false
	m.gen++
	m.releaseScope()
	m.area = areaTrigger
	m.cursor, m.offset = 0, 0
	m.search.Reset()
	m.search.Blur()
	m.emit(Event[V]{Kind: EventClosed, Selection: m.Selected()})
}

// Teardown releases everything the widget holds; call it when the widget is
// removed from the screen.
func (m *Model[V]) Teardown() {
	m.Close()
	m.releaseScope()
	m.focused = false
}

func (m *Model[V]) releaseScope() {
	if m.release != nil {
		m.release()
		m.release = nil
	}
}

// Toggle removes v if it is selected, otherwise appends it to the end of the
// selection, and reports the new sequence through OnChange.
func (m *Model[V]) Toggle(v V) {
	if m.disabled || !comparableValue(v) {
		return
	}
	var next []V
	if containsValue(m.selected, v) {
		next = without(m.selected, v)
	} else {
		next = appendValue(m.selected, v)
	}
	m.change(EventToggled, v, next)
}

// Remove drops v from the selection. It never opens or closes the widget.
func (m *Model[V]) Remove(v V) {
	if m.disabled || !comparableValue(v) || !containsValue(m.selected, v) {
		return
	}
	m.change(EventRemoved, v, without(m.selected, v))
}

func (m *Model[V]) change(kind EventKind, v V, next []V) {
	if m.onChange != nil {
		m.onChange(next)
	}
	m.emit(Event[V]{Kind: kind, Value: v, Selection: slices.Clone(next)})
}

// Filtered returns the options whose label contains the search text,
// case-insensitively, in their original order.
func (m *Model[V]) Filtered() []Option[V] {
	q := strings.ToLower(m.search.Value())
	if q == "" {
		return slices.Clone(m.options)
	}
	out := make([]Option[V], 0, len(m.options))
	for _, opt := range m.options {
		if strings.Contains(strings.ToLower(opt.Label), q) {
			out = append(out, opt)
		}
	}
	return out
}

// Badges returns the selection entries as they are rendered
func (m *Model[V]) Badges() []Badge[V] {
	return resolveBadges(m.options, m.selected, m.policy)
}

// IsSelected reports whether v is in the mirrored selection
func (m *Model[V]) IsSelected(v V) bool {
	return comparableValue(v) && containsValue(m.selected, v)
}

func (m *Model[V]) emit(e Event[V]) {
	if m.observer == nil {
		return
	}
	e.Query = m.search.Value()
	m.observer(e)
}

func (m *Model[V]) clampCursor() {
	n := len(m.Filtered())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scrollToCursor()
}

func (m *Model[V]) scrollToCursor() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.maxVisible {
		m.offset = m.cursor - m.maxVisible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}
