package core

// types.go holds the domain types shared by detection, normalization and
// sync runs.

import (
	"context"
	"time"

	"github.com/JonMunkholm/leadsync/internal/tracker"
)

// Format identifies a recognized input layout.
type Format string

const (
	FormatOriginal       Format = "original"
	FormatExportContacts Format = "export_contacts"
	FormatUnknown        Format = "unknown"
)

// Mode selects how companies are represented in the tracker.
type Mode string

const (
	// ModeProjects stores companies as projects and contacts as labelled issues.
	ModeProjects Mode = "projects"
	// ModeIssues stores companies as top-level issues and contacts as sub-issues.
	ModeIssues Mode = "issues"
)

// ParseMode converts a configuration value into a Mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeProjects, ModeIssues:
		return Mode(s), true
	default:
		return "", false
	}
}

// Field is a single canonical key/value pair of a record.
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered list of canonical fields.
type Fields []Field

// Get returns the value stored under key, or "" if absent.
func (f Fields) Get(key string) string {
	for _, field := range f {
		if field.Key == key {
			return field.Value
		}
	}
	return ""
}

// CompanySummary holds the company attributes used for short descriptions.
type CompanySummary struct {
	Name     string
	Domain   string
	Industry string
}

// Record is one normalized row: a company and one of its contacts.
// Implemented by OriginalRecord and ExportContactsRecord.
type Record interface {
	Format() Format
	CompanyName() string
	IndividualTitle() string
	Summary() CompanySummary
	CompanyFields() Fields
	IndividualFields() Fields
}

// HeaderIndex maps cleaned column names to their position in a row.
type HeaderIndex map[string]int

// BuildFunc converts one raw row into a canonical record.
type BuildFunc func(row []string, idx HeaderIndex) (Record, error)

// FormatDefinition contains everything needed to recognize and normalize a layout.
type FormatDefinition struct {
	Format   Format
	Label    string
	Order    int // detection precedence, lowest first
	Required []string
	Optional []string
	Build    BuildFunc
}

// Columns returns the required columns followed by the optional ones.
func (d FormatDefinition) Columns() []string {
	cols := make([]string, 0, len(d.Required)+len(d.Optional))
	cols = append(cols, d.Required...)
	return append(cols, d.Optional...)
}

// Dataset is a loaded input file: a cleaned header and its data rows.
type Dataset struct {
	FileName string
	Columns  []string
	Index    HeaderIndex
	Rows     [][]string
	// Lines holds the 1-indexed source line of each row, when known.
	Lines []int
}

// LineOf returns the source line of row i for error messages.
func (d *Dataset) LineOf(i int) int {
	if i < len(d.Lines) {
		return d.Lines[i]
	}
	return i + 2 // line 1 is the header
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Tracker is the subset of the remote tracker used by a sync run.
// Find* methods return (nil, nil) when nothing matches.
type Tracker interface {
	Teams(ctx context.Context) ([]tracker.Team, error)
	FindLabel(ctx context.Context, teamID, name string) (*tracker.Label, error)
	CreateLabel(ctx context.Context, teamID, name string) (*tracker.Label, error)
	FindProject(ctx context.Context, teamID, name string) (*tracker.Project, error)
	CreateProject(ctx context.Context, in tracker.ProjectInput) (*tracker.Project, error)
	CreateDocument(ctx context.Context, in tracker.DocumentInput) (*tracker.Document, error)
	FindIssue(ctx context.Context, q tracker.IssueQuery) (*tracker.Issue, error)
	CreateIssue(ctx context.Context, in tracker.IssueInput) (*tracker.Issue, error)
}

// RunState is the position of a run in its state machine.
type RunState string

const (
	StateInit          RunState = "init"
	StateTeamResolved  RunState = "team_resolved"
	StateLabelResolved RunState = "label_resolved"
	StateProcessing    RunState = "processing"
	StateDone          RunState = "done"
	StateFailed        RunState = "failed"
)

// LevelStats counts outcomes for one level of the hierarchy.
type LevelStats struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Existing  int `json:"existing"`
}

// RunStats holds the counters accumulated during one run.
type RunStats struct {
	Companies   LevelStats `json:"companies"`
	Individuals LevelStats `json:"individuals"`
}

// RunError describes a record that was skipped during a run.
type RunError struct {
	Company string `json:"company"`
	Title   string `json:"title,omitempty"`
	Op      string `json:"op"`
	Message string `json:"message"`
}

// RunResult contains the final result of a sync run.
type RunResult struct {
	RunID     string        `json:"runId"`
	Mode      Mode          `json:"mode"`
	DryRun    bool          `json:"dryRun"`
	State     RunState      `json:"state"`
	TeamID    string        `json:"teamId,omitempty"`
	TeamName  string        `json:"teamName,omitempty"`
	LabelID   string        `json:"labelId,omitempty"`
	Stats     RunStats      `json:"stats"`
	Errors    []RunError    `json:"errors"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// Progress represents the current state of a sync run.
type Progress struct {
	RunID           string
	State           RunState
	Company         string
	CompanyIndex    int
	CompanyTotal    int
	Individual      string
	IndividualIndex int
	IndividualTotal int
}

// ProgressCallback is called as a run advances through companies and contacts.
type ProgressCallback func(Progress)
