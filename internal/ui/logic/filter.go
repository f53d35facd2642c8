package logic

import (
	"strconv"
	"strings"

	"catalogadmin/internal/catalog"
)

const statusPrefix = "status:"

// MatchesFilter checks if a record matches the given filter query
func MatchesFilter(rec catalog.Record, filterQuery string) bool {
	query := strings.ToLower(strings.TrimSpace(filterQuery))
	if query == "" {
		return true
	}

	// Check if it's a status filter
	if strings.HasPrefix(query, statusPrefix) {
		return MatchesStatusFilter(rec, strings.TrimSpace(strings.TrimPrefix(query, statusPrefix)))
	}

	if strconv.Itoa(rec.ID) == strings.TrimPrefix(query, "#") {
		return true
	}
	for _, cell := range rec.Cells {
		if strings.Contains(strings.ToLower(cell), query) {
			return true
		}
	}
	return false
}

// MatchesStatusFilter checks if a record matches a status filter. Records
// without a status never match.
func MatchesStatusFilter(rec catalog.Record, filter string) bool {
	active, ok := rec.Values["is_active"].(bool)
	if !ok {
		return false
	}
	switch filter {
	case "active":
		return active
	case "inactive":
		return !active
	default:
		return false
	}
}

// FilterRecords returns the records matching filterQuery in their original
// order. The input is never modified.
func FilterRecords(records []catalog.Record, filterQuery string) []catalog.Record {
	if strings.TrimSpace(filterQuery) == "" {
		return records
	}
	out := make([]catalog.Record, 0, len(records))
	for _, rec := range records {
		if MatchesFilter(rec, filterQuery) {
			out = append(out, rec)
		}
	}
	return out
}
