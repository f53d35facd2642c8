package form

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"catalogadmin/internal/multiselect"
)

// control is the form's view of one rendered input
type control interface {
	Focus() tea.Cmd
	Blur()
	Update(msg tea.Msg) tea.Cmd
	View() string
	Value() any
	// Captures reports whether the control currently wants navigation keys
	// (tab, esc) for itself
	Captures() bool
}

type textControl struct {
	input textinput.Model
}

func newTextControl(field Field, value any) *textControl {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = field.Placeholder
	ti.Width = 48
	switch field.Type {
	case TypeDate:
		if ti.Placeholder == "" {
			ti.Placeholder = "YYYY-MM-DD"
		}
		ti.CharLimit = len(DateLayout)
	case TypeFile:
		if ti.Placeholder == "" {
			ti.Placeholder = "path/to/file"
		}
	}
	ti.SetValue(stringify(value))
	return &textControl{input: ti}
}

func (c *textControl) Focus() tea.Cmd { return c.input.Focus() }
func (c *textControl) Blur()          { c.input.Blur() }
func (c *textControl) Captures() bool { return false }
func (c *textControl) Value() any     { return c.input.Value() }
func (c *textControl) View() string   { return c.input.View() }

func (c *textControl) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

type areaControl struct {
	area textarea.Model
}

func newAreaControl(field Field, value any) *areaControl {
	ta := textarea.New()
	ta.Placeholder = field.Placeholder
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(4)
	ta.SetValue(stringify(value))
	ta.Blur()
	return &areaControl{area: ta}
}

func (c *areaControl) Focus() tea.Cmd { return c.area.Focus() }
func (c *areaControl) Blur()          { c.area.Blur() }
func (c *areaControl) Captures() bool { return false }
func (c *areaControl) Value() any     { return c.area.Value() }
func (c *areaControl) View() string   { return c.area.View() }

func (c *areaControl) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.area, cmd = c.area.Update(msg)
	return cmd
}

type checkControl struct {
	checked bool
	focused bool
}

func newCheckControl(value any) *checkControl {
	b, _ := value.(bool)
	return &checkControl{checked: b}
}

func (c *checkControl) Focus() tea.Cmd {
	c.focused = true
	return nil
}

func (c *checkControl) Blur()          { c.focused = false }
func (c *checkControl) Captures() bool { return false }
func (c *checkControl) Value() any     { return c.checked }

func (c *checkControl) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && c.focused {
		switch k.String() {
		case " ", "enter", "x":
			c.checked = !c.checked
		}
	}
	return nil
}

func (c *checkControl) View() string {
	if c.checked {
		return "[x] yes"
	}
	return "[ ] no"
}

// selectControl picks a single option by cycling with left/right
type selectControl struct {
	options  []multiselect.Option[any]
	index    int // -1 means nothing chosen
	required bool
	focused  bool
}

func newSelectControl(field Field, value any) *selectControl {
	c := &selectControl{options: field.Options, index: -1, required: field.Required}
	for i, opt := range field.Options {
		if sameValue(opt.Value, value) {
			c.index = i
			break
		}
	}
	if c.index < 0 && field.Required && len(field.Options) > 0 {
		c.index = 0
	}
	return c
}

func (c *selectControl) Focus() tea.Cmd {
	c.focused = true
	return nil
}

func (c *selectControl) Blur()          { c.focused = false }
func (c *selectControl) Captures() bool { return false }

func (c *selectControl) Value() any {
	if c.index < 0 || c.index >= len(c.options) {
		return nil
	}
	return c.options[c.index].Value
}

func (c *selectControl) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok || !c.focused || len(c.options) == 0 {
		return nil
	}
	low := 0
	if !c.required {
		low = -1
	}
	switch k.String() {
	case "left", "h":
		c.index--
		if c.index < low {
			c.index = len(c.options) - 1
		}
	case "right", "l", " ":
		c.index++
		if c.index >= len(c.options) {
			c.index = low
		}
	}
	return nil
}

func (c *selectControl) View() string {
	label := "none"
	if c.index >= 0 && c.index < len(c.options) {
		label = c.options[c.index].Label
	}
	if len(c.options) == 0 {
		label = "no options"
	}
	return "‹ " + label + " ›"
}

// multiControl binds a multiselect widget to a field value. The field value
// is the source of truth; the widget only mirrors it.
type multiControl struct {
	widget *multiselect.Model[any]
	value  []any
}

func newMultiControl(field Field, value any, cfg multiselect.Config[any]) *multiControl {
	c := &multiControl{value: toAnySlice(value)}
	cfg.Options = field.Options
	cfg.Selected = c.value
	cfg.Placeholder = field.Placeholder
	cfg.Disabled = field.ReadOnly
	cfg.OnChange = func(next []any) {
		c.value = next
		c.widget.SetSelected(next)
	}
	c.widget = multiselect.New(cfg)
	return c
}

func (c *multiControl) Focus() tea.Cmd {
	c.widget.Focus()
	return nil
}

func (c *multiControl) Blur()          { c.widget.Blur() }
func (c *multiControl) Captures() bool { return c.widget.IsOpen() }
func (c *multiControl) Value() any     { return slices.Clone(c.value) }
func (c *multiControl) View() string   { return c.widget.View() }

func (c *multiControl) Update(msg tea.Msg) tea.Cmd {
	return c.widget.Update(msg)
}

// readOnlyControl renders a value that cannot be edited
type readOnlyControl struct {
	value any
	style lipgloss.Style
}

func (c *readOnlyControl) Focus() tea.Cmd         { return nil }
func (c *readOnlyControl) Blur()                  {}
func (c *readOnlyControl) Captures() bool         { return false }
func (c *readOnlyControl) Update(tea.Msg) tea.Cmd { return nil }
func (c *readOnlyControl) Value() any             { return c.value }

func (c *readOnlyControl) View() string {
	s := stringify(c.value)
	if s == "" {
		s = "-"
	}
	return c.style.Render(s)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case *string:
		if t == nil {
			return ""
		}
		return *t
	default:
		return fmt.Sprint(t)
	}
}

func toAnySlice(v any) []any {
	switch t := v.(type) {
	case []any:
		return slices.Clone(t)
	case []int:
		out := make([]any, 0, len(t))
		for _, i := range t {
			out = append(out, i)
		}
		return out
	case []string:
		out := make([]any, 0, len(t))
		for _, s := range t {
			out = append(out, s)
		}
		return out
	default:
		// Anything else is malformed and treated as an empty selection
		return nil
	}
}

// sameValue compares two option values; uncomparable values never match
func sameValue(a, b any) bool {
	for _, v := range []any{a, b} {
		if rv := reflect.ValueOf(v); rv.IsValid() && !rv.Comparable() {
			return false
		}
	}
	return a == b
}
