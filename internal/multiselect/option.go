package multiselect

import (
	"fmt"
	"reflect"
	"strings"
)

// Option is a label/value pair offered for selection
type Option[V comparable] struct {
	Label string
	Value V
}

// Policy decides how selected values with no matching option are rendered
type Policy int

const (
	// PolicyVerbose renders unknown values as "Invalid: <value>" badges and
	// shows option values next to their labels
	PolicyVerbose Policy = iota
	// PolicyCompact silently omits unknown values
	PolicyCompact
)

// ParsePolicy converts a config string into a Policy
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "verbose":
		return PolicyVerbose, nil
	case "compact":
		return PolicyCompact, nil
	default:
		return PolicyVerbose, fmt.Errorf("unknown invalid-value policy %q", s)
	}
}

func (p Policy) String() string {
	if p == PolicyCompact {
		return "compact"
	}
	return "verbose"
}

// Badge is one selection entry rendered next to the trigger
type Badge[V comparable] struct {
	Label   string
	Value   V
	Invalid bool
}

func resolveBadges[V comparable](options []Option[V], selected []V, policy Policy) []Badge[V] {
	out := make([]Badge[V], 0, len(selected))
	for _, v := range selected {
		if opt, ok := findOption(options, v); ok {
			out = append(out, Badge[V]{Label: opt.Label, Value: v})
			continue
		}
		if policy == PolicyCompact {
			continue
		}
		out = append(out, Badge[V]{Label: "Invalid: " + formatValue(v), Value: v, Invalid: true})
	}
	return out
}

func findOption[V comparable](options []Option[V], v V) (Option[V], bool) {
	for _, opt := range options {
		if opt.Value == v {
			return opt, true
		}
	}
	return Option[V]{}, false
}

func formatValue[V comparable](v V) string {
	return fmt.Sprint(v)
}

// comparableValue reports whether v survives == without a runtime panic.
// Only interface-typed V can hold such values.
func comparableValue[V comparable](v V) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	return rv.Comparable()
}

func sanitizeOptions[V comparable](options []Option[V]) []Option[V] {
	out := make([]Option[V], 0, len(options))
	for _, opt := range options {
		if comparableValue(opt.Value) {
			out = append(out, opt)
		}
	}
	return out
}

func sanitizeValues[V comparable](values []V) []V {
	out := make([]V, 0, len(values))
	for _, v := range values {
		if comparableValue(v) {
			out = append(out, v)
		}
	}
	return out
}

func containsValue[V comparable](values []V, v V) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}

// without returns a new slice holding values minus every occurrence of v
func without[V comparable](values []V, v V) []V {
	out := make([]V, 0, len(values))
	for _, item := range values {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}

// appendValue never writes into the backing array of values
func appendValue[V comparable](values []V, v V) []V {
	out := make([]V, 0, len(values)+1)
	out = append(out, values...)
	return append(out, v)
}
