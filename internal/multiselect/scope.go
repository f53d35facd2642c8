package multiselect

import (
	"sort"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// PointerScope delivers presses that land outside an open widget.
// Widgets acquire a registration when they open and release it when they
// close or are torn down; the owner of the scope feeds it every mouse
// message it receives.
type PointerScope struct {
	next int
	regs map[int]scopeEntry
}

type scopeEntry struct {
	contains func(x, y int) bool
	outside  func()
}

// NewPointerScope creates an empty scope
func NewPointerScope() *PointerScope {
	return &PointerScope{regs: make(map[int]scopeEntry)}
}

// Acquire registers a region. The returned release func is idempotent.
func (s *PointerScope) Acquire(contains func(x, y int) bool, outside func()) func() {
	if s == nil || contains == nil || outside == nil {
		return func() {}
	}
	if s.regs == nil {
		s.regs = make(map[int]scopeEntry)
	}
	id := s.next
	s.next++
	s.regs[id] = scopeEntry{contains: contains, outside: outside}

	var once sync.Once
	return func() {
		once.Do(func() {
			delete(s.regs, id)
		})
	}
}

// Dispatch calls the outside handler of every registration whose region does
// not contain the press. It reports whether any handler ran.
func (s *PointerScope) Dispatch(msg tea.MouseMsg) bool {
	if s == nil || len(s.regs) == 0 {
		return false
	}
	ev := tea.MouseEvent(msg)
	if ev.Action != tea.MouseActionPress || ev.IsWheel() {
		return false
	}

	// Handlers release their own registration, so work on a snapshot
	ids := make([]int, 0, len(s.regs))
	for id := range s.regs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	entries := make([]scopeEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, s.regs[id])
	}

	fired := false
	for _, e := range entries {
		if !e.contains(ev.X, ev.Y) {
			e.outside()
			fired = true
		}
	}
	return fired
}

// Active returns the number of live registrations
func (s *PointerScope) Active() int {
	if s == nil {
		return 0
	}
	return len(s.regs)
}
