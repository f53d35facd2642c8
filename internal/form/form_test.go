package form

import (
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogadmin/internal/multiselect"
)

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func tagOptions() []multiselect.Option[any] {
	return []multiselect.Option[any]{
		{Label: "Fiction", Value: 1},
		{Label: "Poetry", Value: 2},
		{Label: "History", Value: 3},
	}
}

func multi(t *testing.T, f *Form, name string) *multiselect.Model[any] {
	t.Helper()
	for i, field := range f.fields {
		if field.Name == name {
			mc, ok := f.controls[i].(*multiControl)
			require.True(t, ok, "field %s is not a multiselect", name)
			return mc.widget
		}
	}
	t.Fatalf("no field %s", name)
	return nil
}

func TestSubmitNestsDottedNames(t *testing.T) {
	f := New("Book", []Field{
		{Name: "title", Label: "Title", Type: TypeText},
		{Name: "meta.slug", Label: "Slug", Type: TypeText},
	}, map[string]any{
		"title": "Dubrovsky",
		"meta":  map[string]any{"slug": "dubrovsky"},
	})

	values, err := f.Submit()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"title": "Dubrovsky",
		"meta":  map[string]any{"slug": "dubrovsky"},
	}, values)
}

func TestRequiredFields(t *testing.T) {
	f := New("Author", []Field{
		{Name: "name", Label: "Name", Type: TypeText, Required: true},
		{Name: "books", Label: "Books", Type: TypeMultiSelect, Options: tagOptions(), Required: true},
		{Name: "id", Label: "ID", Type: TypeNumber, Required: true, ReadOnly: true},
	}, nil)

	_, err := f.Submit()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, ValidationErrors{"name": "required", "books": "required"}, verrs,
		"read-only fields are never required")
	assert.Equal(t, verrs, f.Errors())
	assert.Contains(t, f.View(), "required")
}

func TestNumberAndDateCoercion(t *testing.T) {
	tests := []struct {
		name    string
		typ     FieldType
		input   string
		want    any
		wantErr string
	}{
		{"integer", TypeNumber, "42", 42, ""},
		{"float", TypeNumber, "1.5", 1.5, ""},
		{"blank number", TypeNumber, "  ", nil, ""},
		{"not a number", TypeNumber, "abc", nil, "must be a number"},
		{"date", TypeDate, "1833-10-01", "1833-10-01", ""},
		{"bad date", TypeDate, "01.10.1833", nil, "must be a date (YYYY-MM-DD)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New("x", []Field{{Name: "v", Label: "V", Type: tt.typ}}, map[string]any{"v": tt.input})
			values, err := f.Submit()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, f.Errors()["v"])
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, values["v"])
		})
	}
}

func TestTabSkipsReadOnlyFields(t *testing.T) {
	f := New("x", []Field{
		{Name: "a", Label: "A", Type: TypeText},
		{Name: "b", Label: "B", Type: TypeText, ReadOnly: true},
		{Name: "c", Label: "C", Type: TypeText},
	}, map[string]any{"b": "fixed"})
	f.Init()
	assert.Equal(t, "a", f.FocusedField())

	f.Update(keyMsg("tab"))
	assert.Equal(t, "c", f.FocusedField())
	f.Update(keyMsg("tab"))
	assert.Equal(t, "a", f.FocusedField(), "focus wraps around")
	f.Update(keyMsg("shift+tab"))
	assert.Equal(t, "c", f.FocusedField())

	values, err := f.Submit()
	require.NoError(t, err)
	assert.Equal(t, "fixed", values["b"], "read-only values are still submitted")
}

func TestCtrlSSubmits(t *testing.T) {
	f := New("x", []Field{{Name: "name", Label: "Name", Type: TypeText}}, map[string]any{"name": "Gogol"})
	f.Init()

	cmd := f.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(SubmittedMsg)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "Gogol"}, msg.Values)

	f.SetSubmitting(true)
	assert.Nil(t, f.Update(keyMsg("ctrl+s")), "no double submit while saving")
	assert.Contains(t, f.View(), "saving...")
}

func TestInvalidSubmitProducesNoMessage(t *testing.T) {
	f := New("x", []Field{{Name: "name", Label: "Name", Type: TypeText, Required: true}}, nil)
	f.Init()

	assert.Nil(t, f.Update(keyMsg("ctrl+s")))
	assert.Equal(t, "required", f.Errors()["name"])
}

func TestEscapeClosesPopoverBeforeCancelling(t *testing.T) {
	f := New("x", []Field{
		{Name: "tags", Label: "Tags", Type: TypeMultiSelect, Options: tagOptions()},
	}, nil)
	f.Init()

	require.NotNil(t, f.Update(keyMsg("enter")))
	w := multi(t, f, "tags")
	require.True(t, w.IsOpen())
	assert.True(t, f.Capturing())
	assert.Equal(t, 1, f.Scope().Active())

	assert.Nil(t, f.Update(keyMsg("esc")))
	assert.False(t, w.IsOpen())
	assert.Equal(t, 0, f.Scope().Active())

	cmd := f.Update(keyMsg("esc"))
	require.NotNil(t, cmd)
	assert.IsType(t, CancelledMsg{}, cmd())
}

func TestMultiSelectValueReachesSubmit(t *testing.T) {
	f := New("x", []Field{
		{Name: "tags", Label: "Tags", Type: TypeMultiSelect, Options: tagOptions()},
	}, map[string]any{"tags": []int{1}})

	w := multi(t, f, "tags")
	w.Toggle(3)
	w.Toggle(1)
	assert.Equal(t, []any{3}, w.Selected(), "the widget mirrors the field value")

	values, err := f.Submit()
	require.NoError(t, err)
	assert.Equal(t, []any{3}, values["tags"])
}

func TestMalformedMultiSelectDefault(t *testing.T) {
	f := New("x", []Field{
		{Name: "tags", Label: "Tags", Type: TypeMultiSelect, Options: tagOptions()},
	}, map[string]any{"tags": "not a list"})

	values, err := f.Submit()
	require.NoError(t, err)
	assert.Empty(t, values["tags"])
}

func TestPolicyReachesWidgets(t *testing.T) {
	fields := []Field{{Name: "tags", Label: "Tags", Type: TypeMultiSelect, Options: tagOptions()}}
	defaults := map[string]any{"tags": []any{1, 99}}

	verbose := New("x", fields, defaults)
	assert.Contains(t, verbose.View(), "Invalid: 99")

	compact := New("x", fields, defaults, WithPolicy(multiselect.PolicyCompact))
	assert.NotContains(t, compact.View(), "Invalid")
}

func TestOutsidePressClosesOpenPopover(t *testing.T) {
	var events []multiselect.EventKind
	f := New("x", []Field{
		{Name: "tags", Label: "Tags", Type: TypeMultiSelect, Options: tagOptions()},
		{Name: "name", Label: "Name", Type: TypeText},
	}, nil, WithObserver(func(e multiselect.Event[any]) {
		events = append(events, e.Kind)
	}))
	f.Init()
	f.Update(keyMsg("enter"))
	w := multi(t, f, "tags")
	require.True(t, w.IsOpen())

	f.Update(press(70, 40))
	assert.False(t, w.IsOpen())
	assert.Equal(t, 0, f.Scope().Active())
	assert.Equal(t, []multiselect.EventKind{multiselect.EventOpened, multiselect.EventClosed}, events)
}

func TestPressFocusesField(t *testing.T) {
	f := New("x", []Field{
		{Name: "a", Label: "A", Type: TypeText},
		{Name: "b", Label: "B", Type: TypeText},
	}, nil)
	f.SetOrigin(2, 1)
	f.Init()

	// title, blank, label a, control a, blank, label b, control b
	f.Update(press(4, 1+6))
	assert.Equal(t, "b", f.FocusedField())

	f.Update(press(4, 1+3))
	assert.Equal(t, "a", f.FocusedField())
}

func letterFields(n int) []Field {
	fields := make([]Field, n)
	for i := range fields {
		name := string(rune('a' + i))
		fields[i] = Field{Name: name, Label: fmt.Sprintf("Field %s", name), Type: TypeText}
	}
	return fields
}

func TestTallFormScrollsToFocus(t *testing.T) {
	// title, blank, then label/control/blank per field: field i's control
	// is content row 3+3i
	f := New("x", letterFields(8), nil)
	f.SetOrigin(2, 1)
	f.SetSize(60, 8)
	f.Init()
	assert.Equal(t, 0, f.YOffset())
	assert.Equal(t, 8, lipgloss.Height(f.View()))

	for i := 0; i < 5; i++ {
		f.Update(keyMsg("tab"))
	}
	require.Equal(t, "f", f.FocusedField())
	assert.Equal(t, 11, f.YOffset(), "label of f at 17, bottom of its control at 19")
	assert.Contains(t, f.View(), "› Field f")
	assert.NotContains(t, f.View(), "Field a")

	// Field e's control is content row 15, drawn at 1+15-11
	f.Update(press(4, 5))
	assert.Equal(t, "e", f.FocusedField())

	// Field g's control exists in content but lies below the visible rows
	f.Update(press(4, 1+21-11))
	assert.Equal(t, "e", f.FocusedField())

	f.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.Equal(t, 12, f.YOffset())
	f.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	f.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, 10, f.YOffset())

	f.Update(keyMsg("shift+tab"))
	f.Update(keyMsg("shift+tab"))
	require.Equal(t, "c", f.FocusedField())
	assert.Equal(t, 8, f.YOffset(), "scrolls up to the label of c")
}

func TestScrolledPopoverHitTesting(t *testing.T) {
	fields := append(letterFields(4), Field{Name: "tags", Label: "Tags", Type: TypeMultiSelect, Options: tagOptions()})
	f := New("x", fields, nil)
	f.SetOrigin(2, 3)
	f.SetSize(60, 10)
	f.Init()
	for i := 0; i < 4; i++ {
		f.Update(keyMsg("tab"))
	}
	require.Equal(t, "tags", f.FocusedField())

	f.Update(keyMsg("enter"))
	w := multi(t, f, "tags")
	require.True(t, w.IsOpen())

	// trigger at content row 15 plus a popover of border, search, three
	// rows and border: the view ends on the last popover line
	off := f.YOffset()
	assert.Equal(t, 15+7-10, off)

	// First option row, two rows below the trigger's popover border
	trigger := 3 + 15 - off
	f.Update(press(4, trigger+3))
	assert.True(t, w.IsOpen(), "press inside the popover keeps it open")
	assert.Equal(t, []any{1}, w.Selected())

	f.Update(press(4, trigger))
	assert.False(t, w.IsOpen(), "press on the trigger closes it")
	assert.Equal(t, 0, f.Scope().Active())
}

func TestCheckboxAndSelect(t *testing.T) {
	f := New("x", []Field{
		{Name: "public", Label: "Public", Type: TypeCheckbox},
		{Name: "lang", Label: "Language", Type: TypeSelect, Options: []multiselect.Option[any]{
			{Label: "Cyrillic", Value: "cyr"},
			{Label: "Latin", Value: "lat"},
		}},
	}, map[string]any{"lang": "lat"})
	f.Init()

	f.Update(keyMsg("space"))
	f.Update(keyMsg("tab"))
	f.Update(keyMsg("right"))

	values, err := f.Submit()
	require.NoError(t, err)
	assert.Equal(t, true, values["public"])
	assert.Nil(t, values["lang"], "optional selects cycle through none")

	f.Update(keyMsg("right"))
	values, err = f.Submit()
	require.NoError(t, err)
	assert.Equal(t, "cyr", values["lang"])

	f.Update(keyMsg("left"))
	f.Update(keyMsg("left"))
	values, err = f.Submit()
	require.NoError(t, err)
	assert.Equal(t, "lat", values["lang"])
}

func TestTeardownReleasesScope(t *testing.T) {
	f := New("x", []Field{
		{Name: "tags", Label: "Tags", Type: TypeMultiSelect, Options: tagOptions()},
	}, nil)
	f.Init()
	f.Update(keyMsg("enter"))
	require.Equal(t, 1, f.Scope().Active())

	f.Teardown()
	assert.Equal(t, 0, f.Scope().Active())
}

func TestValidationErrorsMessage(t *testing.T) {
	err := ValidationErrors{"b": "required", "a": "must be a number"}
	assert.Equal(t, "invalid form: a: must be a number, b: required", err.Error())
}

func TestNest(t *testing.T) {
	got := Nest(map[string]any{"a": 1, "p.x": 2, "p.y": 3})
	assert.Equal(t, map[string]any{"a": 1, "p": map[string]any{"x": 2, "y": 3}}, got)
}
