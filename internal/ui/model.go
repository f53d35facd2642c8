package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"catalogadmin/internal/api"
	"catalogadmin/internal/catalog"
	"catalogadmin/internal/config"
	"catalogadmin/internal/eventbus"
	"catalogadmin/internal/form"
	"catalogadmin/internal/multiselect"
	"catalogadmin/internal/ui/commands"
	"catalogadmin/internal/ui/handlers"
	"catalogadmin/internal/ui/logic"
	"catalogadmin/internal/ui/state"
	"catalogadmin/internal/ui/views"
)

// Model represents the UI state
type Model struct {
	bus       eventbus.EventBus
	config    *config.Config
	configSvc config.ConfigService
	client    *api.Client
	catalog   *catalog.Service
	lggr      *zap.SugaredLogger
	state     *state.AppState // centralized state

	// UI-specific state not in AppState
	width       int
	height      int
	help        help.Model
	keys        keyMap
	table       table.Model
	filterInput textinput.Model
	login       *loginScreen
	form        *form.Form
	formKind    catalog.Kind
	formID      int
	inPagerMode bool // tracks if we're currently in pager mode

	// Handlers
	renderer     *views.Renderer        // view renderer
	helpRenderer *HelpRenderer          // help content
	helpOps      *HelpOps               // pager for help
	eventHandler *handlers.EventHandler // event processing handler
	cmdExecutor  *commands.Executor     // command executor

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model. cfgSvc may be nil, in which case
// settings changes are kept in memory only.
func NewModel(bus eventbus.EventBus, cfg *config.Config, cfgSvc config.ConfigService, client *api.Client, lggr *zap.SugaredLogger) *Model {
	if lggr == nil {
		lggr = zap.NewNop().Sugar()
	}
	appState := state.NewAppState(cfg.Lang())
	appState.Session.APIURL = cfg.APIURL
	appState.Session.Username = cfg.Username
	appState.Session.Token = client.Token()

	styles := views.NewStyles()
	keys := newKeyMap()

	m := &Model{
		bus:          bus,
		config:       cfg,
		configSvc:    cfgSvc,
		client:       client,
		catalog:      catalog.NewService(client),
		lggr:         lggr.Named("ui"),
		state:        appState,
		help:         help.New(),
		keys:         keys,
		renderer:     views.NewRenderer(styles),
		helpRenderer: NewHelpRenderer(keys),
		helpOps:      NewHelpOps(),
		table: table.New(
			table.WithFocused(true),
			table.WithHeight(10),
			table.WithStyles(styles.Table),
		),
	}
	m.filterInput = textinput.New()
	m.filterInput.Prompt = "/"
	m.filterInput.Placeholder = "filter, or status:active"
	m.filterInput.CharLimit = 64
	m.cmdExecutor = commands.NewExecutor(m.catalog, client, bus, lggr)
	m.eventHandler = handlers.NewEventHandler(appState, m.loadList, m.logout)

	if appState.Session.LoggedIn() {
		appState.Screen = state.ScreenList
	} else {
		m.login = newLoginScreen(cfg.Username)
	}
	m.syncTable()
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.helpOps.SetProgram(p)
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	switch m.state.Screen {
	case state.ScreenLogin:
		cmds = append(cmds, m.login.Init())
	case state.ScreenList:
		cmds = append(cmds, m.loadList(m.state.ActiveKind()))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeTable()
		m.resizeForm()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state.Screen {
		case state.ScreenLogin:
			return m.updateLogin(msg)
		case state.ScreenForm:
			return m, m.form.Update(msg)
		default:
			return m.updateList(msg)
		}

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	default:
		return m.handleNonKeyboardMsg(msg)
	}
}

func (m *Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, submit := m.login.Update(msg)
	if !submit {
		return m, cmd
	}
	user, pass := m.login.credentials()
	return m, m.cmdExecutor.ExecuteLogin(user, pass)
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Popups take the keyboard first
	if m.state.ShowHelp {
		switch msg.String() {
		case "esc", "?", "q":
			m.state.ShowHelp = false
			m.state.HelpScrollOffset = 0
		case "up", "k":
			m.state.HelpScrollOffset = max(m.state.HelpScrollOffset-1, 0)
		case "down", "j":
			m.state.HelpScrollOffset++
		}
		return m, nil
	}

	if target := m.state.DeleteTarget; target != nil {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.state.DeleteTarget = nil
			m.state.SetStatus(state.StatusInfo, fmt.Sprintf("Deleting %s #%d...", m.state.ActiveKind(), target.ID))
			return m, m.cmdExecutor.ExecuteDelete(m.state.ActiveKind(), target.ID)
		case key.Matches(msg, m.keys.Cancel):
			m.state.DeleteTarget = nil
		}
		return m, nil
	}

	if m.state.FormLoading {
		if msg.String() == "esc" {
			m.state.FormLoading = false
			m.state.ClearStatus()
		}
		return m, nil
	}

	if m.state.Filtering {
		return m, m.updateFilter(msg)
	}

	kind := m.state.ActiveKind()
	switch {
	case msg.String() == "esc" && m.state.IsFiltered():
		m.clearFilter()
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextTab):
		return m, m.switchTab(1)

	case key.Matches(msg, m.keys.PrevTab):
		return m, m.switchTab(-1)

	case key.Matches(msg, m.keys.New):
		return m, m.openForm(kind, 0, nil)

	case key.Matches(msg, m.keys.Edit):
		if rec, ok := m.selected(); ok {
			return m, m.openForm(kind, rec.ID, rec.Values)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if rec, ok := m.selected(); ok {
			m.state.DeleteTarget = &rec
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.state.ClearStatus()
		return m, m.loadList(kind)

	case key.Matches(msg, m.keys.Filter):
		m.state.Filtering = true
		m.filterInput.SetValue(m.state.FilterQuery)
		m.filterInput.CursorEnd()
		return m, m.filterInput.Focus()

	case key.Matches(msg, m.keys.Sort):
		m.state.SortMode = m.state.SortMode.Next()
		m.state.SetStatus(state.StatusInfo, "Sorted by "+m.state.SortMode.String())
		m.syncTable()
		return m, nil

	case key.Matches(msg, m.keys.Language):
		return m, m.toggleLanguage()

	case key.Matches(msg, m.keys.Logout):
		return m, m.logout("logged out")

	case key.Matches(msg, m.keys.Help):
		if m.program == nil {
			m.state.ShowHelp = true
			return m, nil
		}
		return m, m.fetchHelpPager(m.helpRenderer.RenderHelpContentPlain())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// updateFilter edits the filter query; rows narrow while typing
func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.clearFilter()
		return nil
	case "enter":
		m.state.Filtering = false
		m.filterInput.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if q := m.filterInput.Value(); q != m.state.FilterQuery {
		m.state.FilterQuery = q
		m.table.SetCursor(0)
		m.syncTable()
	}
	return cmd
}

func (m *Model) clearFilter() {
	m.state.ClearFilter()
	m.filterInput.Blur()
	m.filterInput.Reset()
	m.syncTable()
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !m.config.UI.Mouse {
		return nil
	}
	switch m.state.Screen {
	case state.ScreenForm:
		m.form.SetOrigin(m.bodyOrigin())
		return m.form.Update(msg)
	case state.ScreenList:
		if m.state.ShowHelp || m.state.DeleteTarget != nil {
			return nil
		}
		switch tea.MouseEvent(msg).Button {
		case tea.MouseButtonWheelUp:
			m.table.MoveUp(1)
		case tea.MouseButtonWheelDown:
			m.table.MoveDown(1)
		}
	}
	return nil
}

// bodyOrigin is the screen cell where the body's first character lands.
// The form subtracts its own scroll offset.
func (m *Model) bodyOrigin() (int, int) {
	return m.renderer.Styles().Body.GetPaddingLeft(), m.renderer.HeaderHeight(m.viewState())
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		return m, m.eventHandler.HandleEvent(msg.Event)

	case tickMsg:
		// Don't continue tick loop if we're in pager mode
		if m.inPagerMode {
			return m, nil
		}
		return m, tick()

	case commands.LoginMsg:
		if m.state.Screen != state.ScreenLogin || m.login == nil {
			return m, nil
		}
		if msg.Err != nil {
			reason := "Login failed: " + msg.Err.Error()
			if errors.Is(msg.Err, api.ErrUnauthorized) {
				reason = "Invalid username or password"
			}
			return m, m.login.fail(reason)
		}
		m.login = nil
		m.state.Session.Username = msg.Username
		m.state.Session.Token = msg.Token
		m.state.Screen = state.ScreenList
		m.state.InvalidateAll()
		m.state.SetStatus(state.StatusSuccess, "Signed in as "+msg.Username)
		m.config.Username = msg.Username
		m.config.Token = msg.Token
		m.saveConfig()
		m.syncTable()
		return m, m.loadList(m.state.ActiveKind())

	case commands.ListLoadedMsg:
		m.state.SetLoading(msg.Kind, false)
		if m.state.Screen == state.ScreenLogin {
			return m, nil
		}
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrUnauthorized) {
				return m, m.logout("session expired")
			}
			m.state.SetStatus(state.StatusError, fmt.Sprintf("Failed to load %s: %v", msg.Kind, msg.Err))
			return m, nil
		}
		m.state.SetRecords(msg.Kind, msg.Records)
		if msg.Kind == m.state.ActiveKind() {
			m.syncTable()
		}
		return m, nil

	case commands.FormLoadedMsg:
		if !m.state.FormLoading || m.state.Screen != state.ScreenList {
			return m, nil
		}
		m.state.FormLoading = false
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrUnauthorized) {
				return m, m.logout("session expired")
			}
			m.state.SetStatus(state.StatusError, fmt.Sprintf("Failed to open form: %v", msg.Err))
			return m, nil
		}
		m.state.ClearStatus()
		return m, m.showForm(msg)

	case form.SubmittedMsg:
		if m.state.Screen != state.ScreenForm {
			return m, nil
		}
		m.form.SetSubmitting(true)
		return m, m.cmdExecutor.ExecuteSave(m.formKind, m.formID, msg.Values)

	case form.CancelledMsg:
		m.closeForm()
		return m, nil

	case commands.SavedMsg:
		if m.state.Screen != state.ScreenForm || msg.Kind != m.formKind {
			return m, nil
		}
		if msg.Err != nil {
			return m, m.saveFailed(msg.Err)
		}
		m.closeForm()
		m.state.SetStatus(state.StatusSuccess, fmt.Sprintf("%s #%d %s", msg.Kind, msg.ID, msg.Op))
		return m, m.loadList(msg.Kind)

	case commands.DeletedMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrUnauthorized) {
				return m, m.logout("session expired")
			}
			m.state.SetStatus(state.StatusError, fmt.Sprintf("Failed to delete %s #%d: %v", msg.Kind, msg.ID, msg.Err))
			return m, nil
		}
		m.state.SetStatus(state.StatusSuccess, fmt.Sprintf("%s #%d deleted", msg.Kind, msg.ID))
		return m, m.loadList(msg.Kind)

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, tick()

	case helpPagerMsg:
		if msg.err != nil {
			m.lggr.Warnw("help pager failed", "error", msg.err)
			m.state.ShowHelp = true
		}
		return m, nil
	}

	// Cursor blinks and widget-internal messages
	switch m.state.Screen {
	case state.ScreenLogin:
		if m.login != nil {
			return m.updateLogin(msg)
		}
	case state.ScreenForm:
		return m, m.form.Update(msg)
	}
	return m, nil
}

// saveFailed maps a rejected save onto the form
func (m *Model) saveFailed(err error) tea.Cmd {
	m.form.SetSubmitting(false)
	if errors.Is(err, api.ErrUnauthorized) {
		return m.logout("session expired")
	}
	fields, general, ok := api.FieldErrors(err)
	if !ok {
		m.state.SetStatus(state.StatusError, fmt.Sprintf("Save failed: %v", err))
		return nil
	}
	m.form.SetErrors(form.ValidationErrors(fields))
	switch {
	case general != "":
		m.state.SetStatus(state.StatusError, general)
	case len(fields) > 0:
		m.state.SetStatus(state.StatusError, "The server rejected some fields")
	default:
		m.state.SetStatus(state.StatusError, "Save failed")
	}
	return nil
}

func (m *Model) loadList(kind catalog.Kind) tea.Cmd {
	if m.state.Loading[kind] {
		return nil
	}
	m.state.SetLoading(kind, true)
	return m.cmdExecutor.ExecuteLoadList(kind, m.state.Language)
}

func (m *Model) switchTab(delta int) tea.Cmd {
	m.state.MoveTab(delta)
	m.table.SetCursor(0)
	m.syncTable()
	if !m.state.Loaded(m.state.ActiveKind()) {
		return m.loadList(m.state.ActiveKind())
	}
	return nil
}

func (m *Model) selected() (catalog.Record, bool) {
	return m.state.RecordAt(m.table.Cursor())
}

func (m *Model) openForm(kind catalog.Kind, id int, defaults map[string]any) tea.Cmd {
	m.state.FormLoading = true
	m.state.SetStatus(state.StatusInfo, "Opening form... (esc to cancel)")
	return m.cmdExecutor.ExecuteLoadForm(kind, id, m.state.Language, defaults)
}

func (m *Model) showForm(msg commands.FormLoadedMsg) tea.Cmd {
	title := "New " + m.bindingTitle(msg.Kind)
	if msg.ID != 0 {
		title = fmt.Sprintf("%s #%d", m.bindingTitle(msg.Kind), msg.ID)
	}
	m.form = form.New(title, msg.Fields, msg.Defaults,
		form.WithPolicy(m.config.Policy()),
		form.WithObserver(m.observe),
	)
	m.formKind = msg.Kind
	m.formID = msg.ID
	m.state.Screen = state.ScreenForm
	m.resizeForm()
	return m.form.Init()
}

func (m *Model) closeForm() {
	if m.form != nil {
		m.form.Teardown()
	}
	m.form = nil
	m.formID = 0
	if m.state.Screen == state.ScreenForm {
		m.state.Screen = state.ScreenList
	}
}

// observe logs multiselect activity
func (m *Model) observe(e multiselect.Event[any]) {
	m.lggr.Debugw("multiselect",
		"event", e.Kind.String(),
		"value", e.Value,
		"selected", len(e.Selection),
		"query", e.Query,
	)
}

func (m *Model) toggleLanguage() tea.Cmd {
	m.state.Language = m.state.Language.Toggle()
	m.config.Language = string(m.state.Language)
	m.saveConfig()
	// Listing cells are rendered in the chosen script
	m.state.InvalidateAll()
	m.syncTable()
	return m.loadList(m.state.ActiveKind())
}

// logout drops the session and shows the login screen
func (m *Model) logout(reason string) tea.Cmd {
	m.closeForm()
	m.client.Logout()
	m.state.Logout()
	m.state.SetStatus(state.StatusWarning, reason)
	if m.config.Token != "" {
		m.config.Token = ""
		m.saveConfig()
	}
	m.syncTable()
	m.login = newLoginScreen(m.state.Session.Username)
	m.login.err = reason
	return m.login.Init()
}

func (m *Model) saveConfig() {
	if m.configSvc == nil {
		return
	}
	if err := m.configSvc.Save(m.config); err != nil {
		m.lggr.Warnw("failed to save config", "error", err)
		m.state.SetStatus(state.StatusWarning, fmt.Sprintf("Could not save settings: %v", err))
	}
}

func (m *Model) bindingTitle(kind catalog.Kind) string {
	if b, ok := m.catalog.Binding(kind); ok {
		return b.Title()
	}
	return string(kind)
}

// syncTable points the table at the active listing
func (m *Model) syncTable() {
	b, ok := m.catalog.Binding(m.state.ActiveKind())
	if !ok {
		return
	}
	cols := make([]table.Column, 0, len(b.Columns()))
	for _, c := range b.Columns() {
		cols = append(cols, table.Column{Title: c.Title, Width: c.Width})
	}
	records := m.state.Visible()
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row(r.Cells))
	}

	// Rows must never be wider than the columns, so clear them first
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	// SetRows(nil) leaves the cursor at -1
	m.table.SetCursor(min(max(m.table.Cursor(), 0), max(len(rows)-1, 0)))
}

func (m *Model) resizeTable() {
	// Header, gap, table header border, status and help lines
	chrome := m.renderer.HeaderHeight(m.viewState()) + 4
	m.table.SetHeight(max(m.height-chrome, 3))
	m.table.SetWidth(max(m.width-m.renderer.Styles().Body.GetPaddingLeft(), 20))
}

// resizeForm gives the form every row between the header and the status line
func (m *Model) resizeForm() {
	if m.form == nil || m.height == 0 {
		return
	}
	chrome := m.renderer.HeaderHeight(m.viewState()) + 1
	m.form.SetSize(max(m.width-m.renderer.Styles().Body.GetPaddingLeft(), 20), max(m.height-chrome, 3))
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.state.Screen == state.ScreenLogin && m.login != nil {
		return m.renderer.RenderLogin(m.width, m.height, m.login.View(m.renderer.Styles()))
	}
	return m.renderer.Render(m.viewState())
}

func (m *Model) viewState() views.ViewState {
	vs := views.ViewState{
		Width:         m.width,
		Height:        m.height,
		ActiveTab:     m.state.ActiveTab,
		Loading:       m.state.Busy(),
		Language:      string(m.state.Language),
		User:          m.state.Session.Username,
		StatusMessage: m.state.StatusMessage,
		StatusKind:    statusKind(m.state.StatusLevel),
	}
	for _, k := range m.state.Tabs {
		vs.Tabs = append(vs.Tabs, m.bindingTitle(k))
	}

	if m.state.Screen == state.ScreenForm && m.form != nil {
		vs.Body = m.form.View()
		return vs
	}

	vs.Body = m.listBody()
	vs.HelpView = m.listFooter()
	switch {
	case m.state.ShowHelp:
		vs.Popup = m.helpRenderer.renderHelpContent(m.height, m.state.HelpScrollOffset)
	case m.state.DeleteTarget != nil:
		vs.Popup = m.deletePrompt(*m.state.DeleteTarget)
	}
	return vs
}

func (m *Model) listBody() string {
	kind := m.state.ActiveKind()
	styles := m.renderer.Styles()
	if !m.state.Loaded(kind) {
		if m.state.Loading[kind] {
			return styles.Dim.Render(fmt.Sprintf("Loading %s...", kind))
		}
		return styles.Dim.Render("Press r to load")
	}
	if len(m.state.Records[kind]) == 0 {
		return styles.Dim.Render(fmt.Sprintf("No %s yet. Press n to create one.", kind))
	}
	if len(m.table.Rows()) == 0 {
		return styles.Dim.Render(fmt.Sprintf("No %s match %q. Press esc to clear the filter.", kind, m.state.FilterQuery))
	}
	return m.table.View()
}

// listFooter shows the filter input while editing, otherwise the key help
// prefixed by any active filter and sort
func (m *Model) listFooter() string {
	if m.state.Filtering {
		return m.filterInput.View()
	}
	prefix := ""
	if m.state.IsFiltered() {
		prefix += fmt.Sprintf("[/%s] ", m.state.FilterQuery)
	}
	if m.state.SortMode != logic.SortByServer {
		prefix += fmt.Sprintf("[sort: %s] ", m.state.SortMode)
	}
	return m.renderer.Styles().Dim.Render(prefix) + m.help.View(m.keys)
}

func (m *Model) deletePrompt(rec catalog.Record) string {
	styles := m.renderer.Styles()
	label := ""
	if len(rec.Cells) > 1 {
		label = rec.Cells[1]
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s",
		styles.Confirm.Render(fmt.Sprintf("Delete %s #%d?", m.state.ActiveKind(), rec.ID)),
		label,
		styles.Dim.Render("y confirm • n cancel"),
	)
}

func statusKind(l state.StatusLevel) views.StatusKind {
	switch l {
	case state.StatusSuccess:
		return views.StatusSuccess
	case state.StatusWarning:
		return views.StatusWarning
	case state.StatusError:
		return views.StatusError
	default:
		return views.StatusInfo
	}
}

// fetchHelpPager returns a command that shows help using ov pager
func (m *Model) fetchHelpPager(helpContent string) tea.Cmd {
	return func() tea.Msg {
		// Send pause message to stop rendering
		m.program.Send(pauseRenderingMsg{})

		err := m.helpOps.ShowHelpInPager(helpContent)

		// Send resume message to restart rendering
		m.program.Send(resumeRenderingMsg{})

		return helpPagerMsg{
			err: err,
		}
	}
}

// tick returns a command that sends a tick message after a delay
func tick() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
