package multiselect

// EventKind identifies a widget state change
type EventKind int

const (
	EventOpened EventKind = iota
	EventClosed
	EventToggled
	EventRemoved
	EventSearchChanged
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventClosed:
		return "closed"
	case EventToggled:
		return "toggled"
	case EventRemoved:
		return "removed"
	case EventSearchChanged:
		return "search_changed"
	default:
		return "unknown"
	}
}

// Event describes one state change. Selection is the sequence handed to
// OnChange for toggles and removals, and the mirrored selection otherwise.
type Event[V comparable] struct {
	Kind      EventKind
	Value     V
	Selection []V
	Query     string
}

// Observer receives widget events. A nil Observer means no side effects.
type Observer[V comparable] func(Event[V])
