package logic

import (
	"cmp"
	"slices"
	"strings"

	"catalogadmin/internal/catalog"
)

// SortMode represents different sort modes
type SortMode int

const (
	SortByServer SortMode = iota
	SortByName
	SortByStatus
	SortByNewest
)

var sortModeNames = map[SortMode]string{
	SortByServer: "server",
	SortByName:   "name",
	SortByStatus: "status",
	SortByNewest: "newest",
}

func (m SortMode) String() string {
	if s, ok := sortModeNames[m]; ok {
		return s
	}
	return "unknown"
}

// Next cycles to the following sort mode
func (m SortMode) Next() SortMode {
	return (m + 1) % SortMode(len(sortModeNames))
}

// SortRecords returns a sorted copy of records. SortByServer keeps the
// order the backend answered with.
func SortRecords(records []catalog.Record, mode SortMode) []catalog.Record {
	if mode == SortByServer {
		return records
	}
	out := slices.Clone(records)
	switch mode {
	case SortByName:
		slices.SortStableFunc(out, compareByName)
	case SortByStatus:
		slices.SortStableFunc(out, func(a, b catalog.Record) int {
			if c := cmp.Compare(GetStatusPriority(b), GetStatusPriority(a)); c != 0 {
				return c
			}
			return compareByName(a, b)
		})
	case SortByNewest:
		slices.SortStableFunc(out, func(a, b catalog.Record) int {
			return cmp.Compare(b.ID, a.ID)
		})
	}
	return out
}

// compareByName orders by the label column, then by id
func compareByName(a, b catalog.Record) int {
	if c := strings.Compare(strings.ToLower(label(a)), strings.ToLower(label(b))); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func label(rec catalog.Record) string {
	if len(rec.Cells) > 1 {
		return rec.Cells[1]
	}
	return ""
}

// GetStatusPriority returns a priority value for sorting by status
func GetStatusPriority(rec catalog.Record) int {
	active, ok := rec.Values["is_active"].(bool)
	switch {
	case !ok:
		return 0
	case active:
		return 2
	default:
		return 1
	}
}
