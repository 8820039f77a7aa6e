package core

// convert.go provides the cell helpers used by format builders.
//
// Header names from CRM and spreadsheet exports carry the usual artifacts:
// Excel formula prefixes (="value"), stray quotes, padding. Headers are
// cleaned but keep their case, since the known layouts differ only by
// capitalisation. Data cells are returned exactly as read: company names
// are grouping keys and must not be rewritten.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingRequiredColumn is returned when a row has no cell for a required column.
var ErrMissingRequiredColumn = errors.New("missing required column")

// ErrEmptyCompanyName is returned when a row's company cell is blank.
var ErrEmptyCompanyName = errors.New("empty company name")

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are cleaned but case is preserved. When a name repeats, the last
// occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[CleanCell(h)] = i
	}
	return idx
}

// CleanCell removes common CSV artifacts from a header name:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// Cell returns the raw value of an optional column.
// Absent columns and short rows yield "".
func Cell(row []string, idx HeaderIndex, column string) string {
	pos, ok := idx[column]
	if !ok || pos >= len(row) {
		return ""
	}
	return row[pos]
}

// RequiredCell returns the raw value of a required column.
// It fails when the header lacks the column or the row is too short to hold it.
func RequiredCell(row []string, idx HeaderIndex, column string) (string, error) {
	pos, ok := idx[column]
	if !ok || pos >= len(row) {
		return "", fmt.Errorf("%w %q", ErrMissingRequiredColumn, column)
	}
	return row[pos], nil
}

// JoinNonEmpty joins the non-empty values with sep.
func JoinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
