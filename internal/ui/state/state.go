package state

import (
	"strings"

	"catalogadmin/internal/catalog"
	"catalogadmin/internal/domain"
	"catalogadmin/internal/ui/logic"
)

// Screen is the top-level screen being shown
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenList
	ScreenForm
)

// StatusLevel selects how the status line is colored
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusWarning
	StatusError
)

// AppState contains all the application state
type AppState struct {
	Screen   Screen
	Session  domain.Session
	Language catalog.Language

	// Resource data
	Tabs      []catalog.Kind
	ActiveTab int
	Records   map[catalog.Kind][]catalog.Record // nil entry means not loaded yet
	Loading   map[catalog.Kind]bool

	// Pending operations
	FormLoading  bool
	DeleteTarget *catalog.Record // record awaiting delete confirmation

	// Listing view
	FilterQuery string // current filter query
	Filtering   bool   // filter input has the keyboard
	SortMode    logic.SortMode

	// UI state
	ShowHelp         bool
	HelpScrollOffset int // scroll offset for help popup
	StatusMessage    string
	StatusLevel      StatusLevel
}

// NewAppState creates a new application state
func NewAppState(lang catalog.Language) *AppState {
	return &AppState{
		Language: lang,
		Tabs:     append([]catalog.Kind(nil), catalog.Kinds...),
		Records:  make(map[catalog.Kind][]catalog.Record),
		Loading:  make(map[catalog.Kind]bool),
	}
}

// ActiveKind returns the resource of the selected tab
func (s *AppState) ActiveKind() catalog.Kind {
	return s.Tabs[s.ActiveTab]
}

// MoveTab moves the active tab by delta, wrapping around
func (s *AppState) MoveTab(delta int) {
	n := len(s.Tabs)
	s.ActiveTab = ((s.ActiveTab+delta)%n + n) % n
	s.DeleteTarget = nil
	s.ClearFilter()
}

// ClearFilter drops the filter query and leaves filter input
func (s *AppState) ClearFilter() {
	s.FilterQuery = ""
	s.Filtering = false
}

// IsFiltered reports whether a filter query narrows the listing
func (s *AppState) IsFiltered() bool {
	return strings.TrimSpace(s.FilterQuery) != ""
}

// Visible returns the active listing as shown: filtered, then sorted
func (s *AppState) Visible() []catalog.Record {
	records := logic.FilterRecords(s.Records[s.ActiveKind()], s.FilterQuery)
	return logic.SortRecords(records, s.SortMode)
}

// SetRecords stores a listing and clears its loading flag
func (s *AppState) SetRecords(kind catalog.Kind, records []catalog.Record) {
	if records == nil {
		records = []catalog.Record{}
	}
	s.Records[kind] = records
	delete(s.Loading, kind)
}

// Loaded reports whether a listing has been fetched
func (s *AppState) Loaded(kind catalog.Kind) bool {
	_, ok := s.Records[kind]
	return ok
}

// Invalidate forgets a listing so it is fetched again when next shown
func (s *AppState) Invalidate(kind catalog.Kind) {
	delete(s.Records, kind)
}

// InvalidateAll forgets every listing
func (s *AppState) InvalidateAll() {
	s.Records = make(map[catalog.Kind][]catalog.Record)
}

// SetLoading marks a listing as being fetched
func (s *AppState) SetLoading(kind catalog.Kind, loading bool) {
	if loading {
		s.Loading[kind] = true
	} else {
		delete(s.Loading, kind)
	}
}

// Busy reports whether anything is in flight
func (s *AppState) Busy() bool {
	return len(s.Loading) > 0 || s.FormLoading
}

// RecordAt returns the record at row i of the visible listing
func (s *AppState) RecordAt(i int) (catalog.Record, bool) {
	records := s.Visible()
	if i < 0 || i >= len(records) {
		return catalog.Record{}, false
	}
	return records[i], true
}

// SetStatus sets the status line
func (s *AppState) SetStatus(level StatusLevel, msg string) {
	s.StatusLevel = level
	s.StatusMessage = msg
}

// ClearStatus empties the status line
func (s *AppState) ClearStatus() {
	s.StatusMessage = ""
	s.StatusLevel = StatusInfo
}

// Logout drops the session token and returns to the login screen
func (s *AppState) Logout() {
	s.Session.Token = ""
	s.Screen = ScreenLogin
	s.DeleteTarget = nil
	s.ShowHelp = false
	s.ClearFilter()
	s.FormLoading = false
	s.Loading = make(map[catalog.Kind]bool)
	s.InvalidateAll()
}
