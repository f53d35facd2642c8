package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// nonFieldKeys carry errors that belong to the whole request
var nonFieldKeys = map[string]bool{"detail": true, "non_field_errors": true}

// FieldErrors extracts per-field messages from a 400 response. Nested
// objects are flattened into dotted names. The second result collects
// messages that are not tied to a field. ok is false when err is not a
// 400 with a JSON object body.
func FieldErrors(err error) (fields map[string]string, general string, ok bool) {
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		return nil, "", false
	}
	var body map[string]any
	if json.Unmarshal([]byte(se.Body), &body) != nil {
		return nil, "", false
	}

	fields = make(map[string]string)
	var rest []string
	flattenErrors("", body, fields, &rest)
	sort.Strings(rest)
	return fields, strings.Join(rest, "; "), true
}

func flattenErrors(prefix string, body map[string]any, fields map[string]string, rest *[]string) {
	for k, v := range body {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		if prefix == "" && nonFieldKeys[k] {
			*rest = append(*rest, messageOf(v))
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			flattenErrors(name, nested, fields, rest)
			continue
		}
		fields[name] = messageOf(v)
	}
}

func messageOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, messageOf(item))
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(t)
	}
}
