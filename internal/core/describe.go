package core

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DescriptionLimit is the longest project description the tracker accepts.
const DescriptionLimit = 255

const notAvailable = "N/A"

// ShortCompanyDescription renders the fixed three-line company summary.
// Callers must pass the result through TruncateDescription before sending it
// as a length-limited field.
func ShortCompanyDescription(r Record) string {
	s := r.Summary()
	return fmt.Sprintf("Company: %s\nDomain: %s\nIndustry: %s",
		s.Name, orNA(s.Domain), orNA(s.Industry))
}

// TruncateDescription shortens s to at most limit characters.
// A limit <= 0 disables truncation.
func TruncateDescription(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// FullDescription renders every non-empty field as "Title Case Key: value",
// one per line, in field order. Values are passed through verbatim.
func FullDescription(fields Fields) string {
	caser := cases.Title(language.English)

	var b strings.Builder
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(caser.String(strings.ReplaceAll(f.Key, "_", " ")))
		b.WriteString(": ")
		b.WriteString(f.Value)
	}
	return b.String()
}

// CompanyDescription is the full description of a record's company.
func CompanyDescription(r Record) string {
	return FullDescription(r.CompanyFields())
}

// IndividualDescription is the full description of a record's contact.
func IndividualDescription(r Record) string {
	return FullDescription(r.IndividualFields())
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
