package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"catalogadmin/internal/multiselect"
)

// SubmittedMsg carries validated, nested form values
type SubmittedMsg struct {
	Values map[string]any
}

// CancelledMsg is sent when the user leaves the form without saving
type CancelledMsg struct{}

// Option configures a Form
type Option func(*Form)

// WithPolicy sets the invalid-value policy of every multiselect in the form
func WithPolicy(p multiselect.Policy) Option {
	return func(f *Form) {
		f.policy = p
	}
}

// WithObserver attaches an observer to every multiselect in the form
func WithObserver(obs multiselect.Observer[any]) Option {
	return func(f *Form) {
		f.observer = obs
	}
}

// WithStyles overrides the default styles
func WithStyles(s Styles) Option {
	return func(f *Form) {
		f.styles = s
	}
}

// Form renders a declarative field list as a column of controls
type Form struct {
	title      string
	fields     []Field
	controls   []control
	focus      int
	errs       ValidationErrors
	scope      *multiselect.PointerScope
	policy     multiselect.Policy
	observer   multiselect.Observer[any]
	styles     Styles
	submitting bool

	// view scrolls the form when it is taller than the space it is given.
	// A zero height means the form is drawn in full.
	view    viewport.Model
	originX int
	originY int
}

// New builds a form. defaults may use dotted names or nested maps.
func New(title string, fields []Field, defaults map[string]any, opts ...Option) *Form {
	f := &Form{
		title:  title,
		fields: fields,
		scope:  multiselect.NewPointerScope(),
		styles: NewStyles(),
		focus:  -1,
		view:   viewport.New(0, 0),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.controls = make([]control, len(fields))
	for i, field := range fields {
		f.controls[i] = f.newControl(field, lookup(defaults, field.Name))
	}
	return f
}

func (f *Form) newControl(field Field, value any) control {
	if field.ReadOnly && field.Type != TypeMultiSelect {
		return &readOnlyControl{value: value, style: f.styles.ReadOnly}
	}
	switch field.Type {
	case TypeTextarea:
		return newAreaControl(field, value)
	case TypeCheckbox:
		return newCheckControl(value)
	case TypeSelect:
		return newSelectControl(field, value)
	case TypeMultiSelect:
		return newMultiControl(field, value, multiselect.Config[any]{
			Policy:   f.policy,
			Observer: f.observer,
			Scope:    f.scope,
		})
	default:
		return newTextControl(field, value)
	}
}

// Init focuses the first editable field
func (f *Form) Init() tea.Cmd {
	cmd := f.move(1)
	f.follow()
	return cmd
}

// SetSize limits the form to width x height cells. Taller forms scroll to
// keep the focused control in view.
func (f *Form) SetSize(width, height int) {
	f.view.Width = max(width, 0)
	f.view.Height = max(height, 0)
	f.follow()
}

// YOffset is the number of form lines scrolled off the top
func (f *Form) YOffset() int {
	if f.view.Height == 0 {
		return 0
	}
	return f.view.YOffset
}

// Scope returns the pointer scope shared by the form's popovers
func (f *Form) Scope() *multiselect.PointerScope {
	return f.scope
}

// SetOrigin records where the form's first line is drawn on screen
func (f *Form) SetOrigin(x, y int) {
	f.originX, f.originY = x, y
}

// SetSubmitting marks the form as waiting for the backend
func (f *Form) SetSubmitting(v bool) {
	f.submitting = v
}

// Errors returns the errors of the last submit attempt
func (f *Form) Errors() ValidationErrors {
	return f.errs
}

// SetErrors shows externally produced errors, e.g. from the backend
func (f *Form) SetErrors(errs ValidationErrors) {
	f.errs = errs
	f.follow()
}

// FocusedField returns the name of the focused field, or "" if none
func (f *Form) FocusedField() string {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return ""
	}
	return f.fields[f.focus].Name
}

// Capturing reports whether a control is holding navigation keys, such as
// an open multiselect popover
func (f *Form) Capturing() bool {
	c := f.current()
	return c != nil && c.Captures()
}

// Teardown releases every widget registration held by the form
func (f *Form) Teardown() {
	for _, c := range f.controls {
		if mc, ok := c.(*multiControl); ok {
			mc.widget.Teardown()
		}
	}
}

func (f *Form) current() control {
	if f.focus < 0 || f.focus >= len(f.controls) {
		return nil
	}
	return f.controls[f.focus]
}

func (f *Form) editable(i int) bool {
	return !f.fields[i].ReadOnly
}

// move shifts focus to the next editable field in direction dir
func (f *Form) move(dir int) tea.Cmd {
	n := len(f.controls)
	if n == 0 {
		return nil
	}
	next := f.focus
	for step := 0; step < n; step++ {
		next = (next + dir + n) % n
		if f.editable(next) {
			return f.setFocus(next)
		}
	}
	return nil
}

func (f *Form) setFocus(i int) tea.Cmd {
	if i == f.focus {
		return nil
	}
	if c := f.current(); c != nil {
		c.Blur()
	}
	f.focus = i
	return f.controls[i].Focus()
}

// Update routes messages to the focused control and handles form navigation
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := f.handleKey(msg)
		f.follow()
		return cmd
	case tea.MouseMsg:
		cmd := f.handleMouse(msg)
		if !tea.MouseEvent(msg).IsWheel() {
			f.follow()
		}
		return cmd
	}

	// Blink ticks and deferred focus requests carry their own target ids
	var cmds []tea.Cmd
	for _, c := range f.controls {
		cmds = append(cmds, c.Update(msg))
	}
	return tea.Batch(cmds...)
}

func (f *Form) handleKey(msg tea.KeyMsg) tea.Cmd {
	c := f.current()
	if c != nil && c.Captures() {
		return c.Update(msg)
	}
	switch msg.String() {
	case "tab":
		return f.move(1)
	case "shift+tab":
		return f.move(-1)
	case "ctrl+s":
		return f.submitCmd()
	case "esc":
		return func() tea.Msg { return CancelledMsg{} }
	}
	if c != nil {
		return c.Update(msg)
	}
	return nil
}

func (f *Form) submitCmd() tea.Cmd {
	if f.submitting {
		return nil
	}
	values, err := f.Submit()
	if err != nil {
		return nil
	}
	return func() tea.Msg { return SubmittedMsg{Values: values} }
}

// Submit validates every field and returns the nested values
func (f *Form) Submit() (map[string]any, error) {
	errs := ValidationErrors{}
	values := make(map[string]any, len(f.fields))
	for i, field := range f.fields {
		v, err := coerce(field, f.controls[i].Value())
		if err != nil {
			errs[field.Name] = err.Error()
			continue
		}
		if field.Required && !field.ReadOnly && isEmpty(v) {
			errs[field.Name] = "required"
			continue
		}
		values[field.Name] = v
	}
	if len(errs) > 0 {
		f.errs = errs
		return nil, errs
	}
	f.errs = nil
	return Nest(values), nil
}

func coerce(field Field, v any) (any, error) {
	s, isString := v.(string)
	switch {
	case field.Type == TypeNumber && isString:
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("must be a number")
		}
		return x, nil
	case field.Type == TypeDate && isString:
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		if _, err := time.Parse(DateLayout, s); err != nil {
			return nil, fmt.Errorf("must be a date (YYYY-MM-DD)")
		}
		return s, nil
	}
	return v, nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	}
	return false
}

// render draws the form and reports the row at which each control starts,
// relative to the form's first line
func (f *Form) render() (string, []int) {
	var lines []string
	rows := make([]int, len(f.fields))

	lines = append(lines, f.styles.Title.Render(f.title), "")
	for i, field := range f.fields {
		label := field.Label
		if field.Required && !field.ReadOnly {
			label += f.styles.Required.Render(" *")
		}
		if i == f.focus {
			lines = append(lines, f.styles.FocusedLabel.Render("› ")+label)
		} else {
			lines = append(lines, f.styles.Label.Render("  ")+label)
		}

		rows[i] = len(lines)
		lines = append(lines, strings.Split(f.styles.Control.Render(f.controls[i].View()), "\n")...)
		if msg, ok := f.errs[field.Name]; ok {
			lines = append(lines, f.styles.Error.Render(msg))
		}
		lines = append(lines, "")
	}

	footer := "tab next • shift+tab prev • ctrl+s save • esc cancel"
	if f.submitting {
		footer = "saving..."
	}
	lines = append(lines, f.styles.Help.Render(footer))
	return strings.Join(lines, "\n"), rows
}

// View renders the form, clipped to its size when one is set
func (f *Form) View() string {
	content, _ := f.render()
	if f.view.Height == 0 {
		return content
	}
	f.view.SetContent(content)
	return f.view.View()
}

// follow scrolls the focused control, including an open popover and its
// error line, into view
func (f *Form) follow() {
	if f.view.Height == 0 {
		return
	}
	content, rows := f.render()
	f.view.SetContent(content)
	if f.focus < 0 || f.focus >= len(rows) {
		return
	}
	top := rows[f.focus] - 1 // label
	bottom := rows[f.focus] + lipgloss.Height(f.controls[f.focus].View())
	if _, ok := f.errs[f.fields[f.focus].Name]; ok {
		bottom++
	}
	switch {
	case top < f.view.YOffset:
		f.view.SetYOffset(top)
	case bottom > f.view.YOffset+f.view.Height:
		f.view.SetYOffset(min(top, bottom-f.view.Height))
	}
}

func (f *Form) handleMouse(msg tea.MouseMsg) tea.Cmd {
	ev := tea.MouseEvent(msg)
	if ev.IsWheel() {
		if f.view.Height == 0 || ev.Action != tea.MouseActionPress {
			return nil
		}
		content, _ := f.render()
		f.view.SetContent(content)
		switch ev.Button {
		case tea.MouseButtonWheelUp:
			f.view.ScrollUp(1)
		case tea.MouseButtonWheelDown:
			f.view.ScrollDown(1)
		}
		return nil
	}

	// Controls are laid out in content rows; the screen shows them shifted
	// up by the scroll offset
	_, rows := f.render()
	top := f.originY - f.YOffset()
	for i, c := range f.controls {
		if mc, ok := c.(*multiControl); ok {
			mc.widget.SetOrigin(f.originX, top+rows[i])
		}
	}

	// Presses outside an open popover close it before anything else sees them
	f.scope.Dispatch(msg)

	if ev.Action != tea.MouseActionPress {
		return nil
	}
	if f.view.Height > 0 && (ev.Y < f.originY || ev.Y >= f.originY+f.view.Height) {
		return nil
	}
	y := ev.Y - top
	for i, c := range f.controls {
		h := lipgloss.Height(c.View())
		if y < rows[i] || y >= rows[i]+h {
			continue
		}
		var cmds []tea.Cmd
		if f.editable(i) {
			cmds = append(cmds, f.setFocus(i))
		}
		cmds = append(cmds, c.Update(msg))
		return tea.Batch(cmds...)
	}
	return nil
}
