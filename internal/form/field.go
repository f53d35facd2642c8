package form

import (
	"fmt"
	"sort"
	"strings"

	"catalogadmin/internal/multiselect"
)

// FieldType selects the control rendered for a field
type FieldType string

const (
	TypeText        FieldType = "text"
	TypeNumber      FieldType = "number"
	TypeTextarea    FieldType = "textarea"
	TypeDate        FieldType = "date"
	TypeSelect      FieldType = "select"
	TypeMultiSelect FieldType = "multiselect"
	TypeCheckbox    FieldType = "checkbox"
	TypeFile        FieldType = "file"
)

// DateLayout is the accepted format for date fields
const DateLayout = "2006-01-02"

// Field describes one form control. Dotted names ("parent.child") are
// nested into maps when the form is submitted.
type Field struct {
	Name        string
	Label       string
	Type        FieldType
	Placeholder string
	Options     []multiselect.Option[any]
	Required    bool
	ReadOnly    bool
}

// ValidationErrors maps field names to messages
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e[name]))
	}
	return "invalid form: " + strings.Join(parts, ", ")
}

// Nest turns dotted keys into nested maps. Plain keys are copied as is.
func Nest(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		parent, child, ok := strings.Cut(k, ".")
		if !ok {
			out[k] = v
			continue
		}
		inner, _ := out[parent].(map[string]any)
		if inner == nil {
			inner = make(map[string]any)
			out[parent] = inner
		}
		inner[child] = v
	}
	return out
}

// lookup reads a default value, following one level of nesting for dotted names
func lookup(defaults map[string]any, name string) any {
	if defaults == nil {
		return nil
	}
	if v, ok := defaults[name]; ok {
		return v
	}
	parent, child, ok := strings.Cut(name, ".")
	if !ok {
		return nil
	}
	if inner, ok := defaults[parent].(map[string]any); ok {
		return inner[child]
	}
	return nil
}
