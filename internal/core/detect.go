package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrUnsupportedFormat is returned when a header matches no registered format.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// maxSuggestions limits "did you mean" hints per missing column.
const maxSuggestions = 3

// Detect classifies a header row. Formats are checked in registry order and
// the first whose required columns are all present wins.
func Detect(columns []string) Format {
	idx := MakeHeaderIndex(columns)
	for _, def := range All() {
		if len(missingColumns(idx, def.Required)) == 0 {
			return def.Format
		}
	}
	return FormatUnknown
}

// MissingColumn is a required column absent from a header, with the present
// headers that look closest to it.
type MissingColumn struct {
	Column      string   `json:"column"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Candidate reports how close a header came to one format.
type Candidate struct {
	Format  Format          `json:"format"`
	Missing []MissingColumn `json:"missing"`
}

// Detection is the outcome of classifying a header, with diagnostics.
type Detection struct {
	Format     Format      `json:"format"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Err returns ErrUnsupportedFormat, annotated with what each format is missing,
// when no format matched.
func (d Detection) Err() error {
	if d.Format != FormatUnknown {
		return nil
	}
	var parts []string
	for _, c := range d.Candidates {
		cols := make([]string, len(c.Missing))
		for i, m := range c.Missing {
			cols[i] = m.Column
			if len(m.Suggestions) > 0 {
				cols[i] += fmt.Sprintf(" (did you mean %s?)", strings.Join(quoteAll(m.Suggestions), " or "))
			}
		}
		parts = append(parts, fmt.Sprintf("%s missing %s", c.Format, strings.Join(cols, ", ")))
	}
	if len(parts) == 0 {
		return ErrUnsupportedFormat
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, strings.Join(parts, "; "))
}

// DetectReport classifies a header like Detect. When nothing matches it also
// lists, per format, the missing required columns and similar headers.
func DetectReport(columns []string) Detection {
	f := Detect(columns)
	if f != FormatUnknown {
		return Detection{Format: f}
	}

	idx := MakeHeaderIndex(columns)
	present := make([]string, 0, len(idx))
	for name := range idx {
		present = append(present, name)
	}
	sort.Strings(present)

	det := Detection{Format: FormatUnknown}
	for _, def := range All() {
		c := Candidate{Format: def.Format}
		for _, col := range missingColumns(idx, def.Required) {
			c.Missing = append(c.Missing, MissingColumn{
				Column:      col,
				Suggestions: suggest(col, present),
			})
		}
		det.Candidates = append(det.Candidates, c)
	}
	return det
}

func missingColumns(idx HeaderIndex, required []string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// suggest returns up to maxSuggestions headers that fuzzily match column in
// either direction, closest first.
func suggest(column string, headers []string) []string {
	seen := make(map[string]bool)
	var matches []string
	for _, r := range fuzzy.RankFindNormalizedFold(column, headers) {
		if !seen[r.Target] {
			seen[r.Target] = true
			matches = append(matches, r.Target)
		}
	}
	for _, h := range headers {
		if !seen[h] && h != "" && fuzzy.MatchNormalizedFold(h, column) {
			seen[h] = true
			matches = append(matches, h)
		}
	}

	target := strings.ToLower(column)
	sort.SliceStable(matches, func(i, j int) bool {
		return fuzzy.LevenshteinDistance(target, strings.ToLower(matches[i])) <
			fuzzy.LevenshteinDistance(target, strings.ToLower(matches[j]))
	})

	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return matches
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
