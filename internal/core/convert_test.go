package core

import (
	"errors"
	"testing"
)

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// Basic cleaning
		{
			name:  "simple string unchanged",
			input: "hello",
			want:  "hello",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},

		// Whitespace trimming
		{
			name:  "leading whitespace",
			input: "  hello",
			want:  "hello",
		},
		{
			name:  "trailing whitespace",
			input: "hello  ",
			want:  "hello",
		},
		{
			name:  "surrounded by whitespace",
			input: "  hello  ",
			want:  "hello",
		},

		// Excel formula prefix handling
		{
			name:  "Excel formula with quotes",
			input: `="hello"`,
			want:  "hello",
		},
		{
			name:  "Excel formula number as text",
			input: `="12345"`,
			want:  "12345",
		},
		{
			name:  "bare equals sign",
			input: "=SUM(A1)",
			want:  "SUM(A1)",
		},
		{
			name:  "equals at start only",
			input: "=hello",
			want:  "hello",
		},

		// Quote handling
		{
			name:  "double quotes removed",
			input: `"hello"`,
			want:  "hello",
		},
		{
			name:  "single quotes removed",
			input: "'hello'",
			want:  "hello",
		},
		{
			name:  "mixed quotes removed outer only",
			input: `"hello'`,
			want:  "hello",
		},
		{
			name:  "leading single quote (Excel text prefix)",
			input: "'12345",
			want:  "12345",
		},

		// Header artifacts from spreadsheet exports
		{
			name:  "quoted header keeps case",
			input: `"Company Name"`,
			want:  "Company Name",
		},
		{
			name:  "hash prefixed header",
			input: " # Employees ",
			want:  "# Employees",
		},

		// Combined cleaning
		{
			name:  "whitespace and quotes",
			input: `  "hello"  `,
			want:  "hello",
		},
		{
			name:  "excel formula with whitespace",
			input: `  ="test"  `,
			want:  "test",
		},

		// Edge cases
		{
			name:  "only quotes",
			input: `""`,
			want:  "",
		},
		{
			name:  "only single quotes",
			input: "''",
			want:  "",
		},
		{
			name:  "equals with quoted number",
			input: `="0"`,
			want:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanCell(tt.input)
			if got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// MakeHeaderIndex Tests
// ----------------------------------------------------------------------------

func TestMakeHeaderIndex(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		checks  map[string]int // key -> expected index
		missing []string
	}{
		{
			name:   "simple headers",
			header: []string{"Company Name", "First Name", "Email"},
			checks: map[string]int{
				"Company Name": 0,
				"First Name":   1,
				"Email":        2,
			},
		},
		{
			name:    "case is preserved",
			header:  []string{"Company name", "First name"},
			checks:  map[string]int{"Company name": 0, "First name": 1},
			missing: []string{"Company Name", "company name"},
		},
		{
			name:   "headers with quotes and whitespace cleaned",
			header: []string{`"Company Name"`, "  First Name  ", `="Email"`},
			checks: map[string]int{
				"Company Name": 0,
				"First Name":   1,
				"Email":        2,
			},
		},
		{
			name:   "empty header",
			header: []string{},
			checks: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := MakeHeaderIndex(tt.header)

			for key, wantPos := range tt.checks {
				gotPos, ok := idx[key]
				if !ok {
					t.Errorf("MakeHeaderIndex(%v)[%q] not found, want index %d",
						tt.header, key, wantPos)
					continue
				}
				if gotPos != wantPos {
					t.Errorf("MakeHeaderIndex(%v)[%q] = %d, want %d",
						tt.header, key, gotPos, wantPos)
				}
			}
			for _, key := range tt.missing {
				if _, ok := idx[key]; ok {
					t.Errorf("MakeHeaderIndex(%v)[%q] found, want missing", tt.header, key)
				}
			}
		})
	}
}

// TestMakeHeaderIndex_DuplicateHeaders verifies behavior with duplicate column names
func TestMakeHeaderIndex_DuplicateHeaders(t *testing.T) {
	// When duplicates exist, the last occurrence wins
	header := []string{"Email", "First Name", "Email"}
	idx := MakeHeaderIndex(header)

	if gotPos, ok := idx["Email"]; !ok || gotPos != 2 {
		t.Errorf("MakeHeaderIndex with duplicates: Email index = %d, want 2", gotPos)
	}
}

// ----------------------------------------------------------------------------
// Cell Tests
// ----------------------------------------------------------------------------

func TestCell(t *testing.T) {
	idx := MakeHeaderIndex([]string{"Company Name", "Email", "Phone"})
	row := []string{` "Acme" `, "jane@acme.io"}

	if got := Cell(row, idx, "Company Name"); got != ` "Acme" ` {
		t.Errorf("Cell(Company Name) = %q, want the raw value", got)
	}
	if got := Cell(row, idx, "Phone"); got != "" {
		t.Errorf("Cell on short row = %q, want empty", got)
	}
	if got := Cell(row, idx, "Website"); got != "" {
		t.Errorf("Cell on absent column = %q, want empty", got)
	}
}

func TestRequiredCell(t *testing.T) {
	idx := MakeHeaderIndex([]string{"Company Name", "First Name"})

	got, err := RequiredCell([]string{"Acme", ""}, idx, "First Name")
	if err != nil {
		t.Fatalf("RequiredCell with empty value: %v", err)
	}
	if got != "" {
		t.Errorf("RequiredCell = %q, want empty", got)
	}

	got, err = RequiredCell([]string{"=Acme ", "O'Brien'"}, idx, "First Name")
	if err != nil {
		t.Fatalf("RequiredCell: %v", err)
	}
	if got != "O'Brien'" {
		t.Errorf("RequiredCell = %q, want %q", got, "O'Brien'")
	}

	_, err = RequiredCell([]string{"Acme"}, idx, "First Name")
	if !errors.Is(err, ErrMissingRequiredColumn) {
		t.Errorf("RequiredCell on short row: err = %v, want ErrMissingRequiredColumn", err)
	}

	_, err = RequiredCell([]string{"Acme", "Jane"}, idx, "Last Name")
	if !errors.Is(err, ErrMissingRequiredColumn) {
		t.Errorf("RequiredCell on absent column: err = %v, want ErrMissingRequiredColumn", err)
	}
}

func TestJoinNonEmpty(t *testing.T) {
	tests := []struct {
		values []string
		want   string
	}{
		{[]string{"Austin", "TX", "USA"}, "Austin, TX, USA"},
		{[]string{"Austin", "", "USA"}, "Austin, USA"},
		{[]string{"", "", ""}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := JoinNonEmpty(", ", tt.values...); got != tt.want {
			t.Errorf("JoinNonEmpty(%q) = %q, want %q", tt.values, got, tt.want)
		}
	}
}
