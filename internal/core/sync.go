package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/leadsync/internal/logging"
	"github.com/JonMunkholm/leadsync/internal/tracker"
)

// DefaultLabelName is the label applied to contact issues in projects mode.
const DefaultLabelName = "New Contact"

var (
	// ErrTeamResolution aborts a run when no team can be determined.
	ErrTeamResolution = errors.New("team resolution failed")
	// ErrLabelResolution aborts a run when the contact label cannot be found or created.
	ErrLabelResolution = errors.New("label resolution failed")
)

// Operation names recorded in RunError.Op.
const (
	OpFindParent     = "find_parent"
	OpCreateParent   = "create_parent"
	OpCreateDocument = "create_document"
	OpFindChild      = "find_child"
	OpCreateChild    = "create_child"
)

// SyncOptions controls a sync run.
type SyncOptions struct {
	Mode      Mode
	LabelName string
	// DescriptionLimit caps project descriptions; <= 0 uses DescriptionLimit.
	DescriptionLimit int
	// DryRun performs lookups only and counts what would be created.
	DryRun   bool
	Progress ProgressCallback
	Metrics  *RunMetrics
}

// Syncer pushes normalized records into the tracker. A Syncer holds no
// per-run state and may be reused.
type Syncer struct {
	tracker Tracker
	opts    SyncOptions
}

// NewSyncer creates a Syncer, filling unset options with defaults.
func NewSyncer(t Tracker, opts SyncOptions) *Syncer {
	if opts.Mode == "" {
		opts.Mode = ModeProjects
	}
	if opts.LabelName == "" {
		opts.LabelName = DefaultLabelName
	}
	if opts.DescriptionLimit <= 0 {
		opts.DescriptionLimit = DescriptionLimit
	}
	return &Syncer{tracker: t, opts: opts}
}

// CompanyGroup is one distinct company and its records in source order.
type CompanyGroup struct {
	Name    string
	Records []Record
}

// GroupByCompany groups records by exact company name, keeping companies in
// the order they first appear.
func GroupByCompany(records []Record) []CompanyGroup {
	var groups []CompanyGroup
	seen := make(map[string]int)
	for _, rec := range records {
		name := rec.CompanyName()
		i, ok := seen[name]
		if !ok {
			i = len(groups)
			seen[name] = i
			groups = append(groups, CompanyGroup{Name: name})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}

// RunDataset detects and normalizes ds, then runs the sync. An unrecognized
// layout fails with ErrUnsupportedFormat before the tracker is contacted.
func (s *Syncer) RunDataset(ctx context.Context, ds *Dataset) (Format, *RunResult, error) {
	f, records, err := DetectAndNormalize(ds)
	if err != nil {
		return f, nil, err
	}
	result, err := s.Run(ctx, records)
	return f, result, err
}

// run carries the state of one Run call.
type run struct {
	result  *RunResult
	log     *slog.Logger
	teamID  string
	labelID string
	total   int
}

// Run synchronizes records and returns the run result. Team or label
// failures abort the run and are returned as errors alongside a result in
// StateFailed. Per-record failures are collected in RunResult.Errors and
// the run continues.
func (s *Syncer) Run(ctx context.Context, records []Record) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{
		RunID:     uuid.NewString(),
		Mode:      s.opts.Mode,
		DryRun:    s.opts.DryRun,
		State:     StateInit,
		Errors:    []RunError{},
		StartedAt: start,
	}
	defer func() {
		result.Duration = time.Since(start)
		s.opts.Metrics.observe(result)
	}()

	ctx = logging.ContextWithRunID(ctx, result.RunID)
	r := &run{
		result: result,
		log:    logging.WithFields(ctx, "mode", s.opts.Mode, "dry_run", s.opts.DryRun),
	}
	r.log.Info("sync started", "records", len(records))
	s.progress(r, Progress{})

	team, err := s.resolveTeam(ctx)
	if err != nil {
		return s.fail(r, err)
	}
	r.teamID = team.ID
	result.TeamID, result.TeamName = team.ID, team.Name
	s.advance(r, StateTeamResolved)

	labelID, err := s.resolveLabel(ctx, r)
	if err != nil {
		return s.fail(r, err)
	}
	r.labelID = labelID
	result.LabelID = labelID
	s.advance(r, StateLabelResolved)

	groups := GroupByCompany(records)
	r.total = len(groups)
	s.advance(r, StateProcessing)

	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return s.fail(r, err)
		}
		s.syncCompany(ctx, r, i, g)
	}

	s.advance(r, StateDone)
	r.log.Info("sync finished",
		"companies_created", result.Stats.Companies.Created,
		"companies_existing", result.Stats.Companies.Existing,
		"individuals_created", result.Stats.Individuals.Created,
		"individuals_existing", result.Stats.Individuals.Existing,
		"errors", len(result.Errors),
	)
	return result, nil
}

func (s *Syncer) fail(r *run, err error) (*RunResult, error) {
	r.result.State = StateFailed
	r.log.Error("sync aborted", "error", err)
	s.progress(r, Progress{})
	return r.result, err
}

func (s *Syncer) advance(r *run, state RunState) {
	r.result.State = state
	r.log.Debug("sync state", "state", state)
	s.progress(r, Progress{CompanyTotal: r.total})
}

func (s *Syncer) progress(r *run, p Progress) {
	if s.opts.Progress == nil {
		return
	}
	p.RunID = r.result.RunID
	p.State = r.result.State
	s.opts.Progress(p)
}

// resolveTeam takes the first team visible to the API key.
func (s *Syncer) resolveTeam(ctx context.Context) (tracker.Team, error) {
	teams, err := s.tracker.Teams(ctx)
	if err != nil {
		return tracker.Team{}, fmt.Errorf("%w: %w", ErrTeamResolution, err)
	}
	if len(teams) == 0 {
		return tracker.Team{}, fmt.Errorf("%w: no teams returned", ErrTeamResolution)
	}
	return teams[0], nil
}

// resolveLabel finds the contact label or creates it. In dry-run mode a
// missing label is reported with an empty id.
func (s *Syncer) resolveLabel(ctx context.Context, r *run) (string, error) {
	name := s.opts.LabelName
	label, err := s.tracker.FindLabel(ctx, r.teamID, name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLabelResolution, err)
	}
	if label != nil {
		return label.ID, nil
	}
	if s.opts.DryRun {
		r.log.Info("label would be created", "label", name)
		return "", nil
	}

	label, err = s.tracker.CreateLabel(ctx, r.teamID, name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLabelResolution, err)
	}
	r.log.Info("label created", "label", name, "label_id", label.ID)
	return label.ID, nil
}

// syncCompany resolves the company's parent entity and then each of its
// contacts.
func (s *Syncer) syncCompany(ctx context.Context, r *run, index int, g CompanyGroup) {
	stats := &r.result.Stats
	stats.Companies.Processed++
	log := r.log.With("company", g.Name)

	s.progress(r, Progress{
		Company:         g.Name,
		CompanyIndex:    index + 1,
		CompanyTotal:    r.total,
		IndividualTotal: len(g.Records),
	})

	parentID, created, err := s.resolveParent(ctx, r, g)
	if err != nil {
		log.Warn("company skipped", "error", err, "individuals", len(g.Records))
		return
	}
	if created {
		stats.Companies.Created++
	} else {
		stats.Companies.Existing++
	}

	for j, rec := range g.Records {
		title := rec.IndividualTitle()
		s.progress(r, Progress{
			Company:         g.Name,
			CompanyIndex:    index + 1,
			CompanyTotal:    r.total,
			Individual:      title,
			IndividualIndex: j + 1,
			IndividualTotal: len(g.Records),
		})
		s.syncIndividual(ctx, r, g.Name, parentID, rec)
	}
}

// resolveParent returns the id of the company's project or issue, creating
// it when absent. In dry-run mode a missing parent yields an empty id.
func (s *Syncer) resolveParent(ctx context.Context, r *run, g CompanyGroup) (string, bool, error) {
	first := g.Records[0]

	if s.opts.Mode == ModeIssues {
		existing, err := s.tracker.FindIssue(ctx, tracker.IssueQuery{TeamID: r.teamID, Title: g.Name})
		if err != nil {
			return "", false, s.recordError(r, g.Name, "", OpFindParent, err)
		}
		if existing != nil {
			return existing.ID, false, nil
		}
		if s.opts.DryRun {
			return "", true, nil
		}
		issue, err := s.tracker.CreateIssue(ctx, tracker.IssueInput{
			TeamID:      r.teamID,
			Title:       g.Name,
			Description: CompanyDescription(first),
		})
		if err != nil {
			return "", false, s.recordError(r, g.Name, "", OpCreateParent, err)
		}
		r.log.Info("company issue created", "company", g.Name, "issue_id", issue.ID)
		return issue.ID, true, nil
	}

	existing, err := s.tracker.FindProject(ctx, r.teamID, g.Name)
	if err != nil {
		return "", false, s.recordError(r, g.Name, "", OpFindParent, err)
	}
	if existing != nil {
		return existing.ID, false, nil
	}
	if s.opts.DryRun {
		return "", true, nil
	}
	project, err := s.tracker.CreateProject(ctx, tracker.ProjectInput{
		Name:        g.Name,
		Description: TruncateDescription(ShortCompanyDescription(first), s.opts.DescriptionLimit),
		TeamIDs:     []string{r.teamID},
	})
	if err != nil {
		return "", false, s.recordError(r, g.Name, "", OpCreateParent, err)
	}
	r.log.Info("project created", "company", g.Name, "project_id", project.ID)

	// The full description does not fit the project field, so it goes in a
	// document. A failure here leaves the project usable.
	if _, err := s.tracker.CreateDocument(ctx, tracker.DocumentInput{
		Title:     g.Name,
		Content:   CompanyDescription(first),
		ProjectID: project.ID,
	}); err != nil {
		s.recordError(r, g.Name, "", OpCreateDocument, err)
	}
	return project.ID, true, nil
}

// syncIndividual looks up one contact under parentID and creates it when
// absent. Existing contacts are never updated.
func (s *Syncer) syncIndividual(ctx context.Context, r *run, company, parentID string, rec Record) {
	stats := &r.result.Stats
	stats.Individuals.Processed++
	title := rec.IndividualTitle()

	// Dry run with a parent that does not exist yet: nothing can exist under it.
	if parentID == "" && s.opts.DryRun {
		stats.Individuals.Created++
		return
	}

	query := tracker.IssueQuery{TeamID: r.teamID, Title: title}
	input := tracker.IssueInput{
		TeamID:      r.teamID,
		Title:       title,
		Description: IndividualDescription(rec),
	}
	if s.opts.Mode == ModeIssues {
		query.ParentID = parentID
		input.ParentID = parentID
	} else {
		query.ProjectID = parentID
		input.ProjectID = parentID
		if r.labelID != "" {
			input.LabelIDs = []string{r.labelID}
		}
	}

	existing, err := s.tracker.FindIssue(ctx, query)
	if err != nil {
		s.recordError(r, company, title, OpFindChild, err)
		return
	}
	if existing != nil {
		stats.Individuals.Existing++
		return
	}
	if s.opts.DryRun {
		stats.Individuals.Created++
		return
	}

	issue, err := s.tracker.CreateIssue(ctx, input)
	if err != nil {
		s.recordError(r, company, title, OpCreateChild, err)
		return
	}
	stats.Individuals.Created++
	r.log.Debug("issue created", "company", company, "title", title, "issue_id", issue.ID)
}

// recordError appends a per-record failure to the result and returns err.
func (s *Syncer) recordError(r *run, company, title, op string, err error) error {
	r.result.Errors = append(r.result.Errors, RunError{
		Company: company,
		Title:   title,
		Op:      op,
		Message: err.Error(),
	})
	r.log.Warn("record failed", "company", company, "title", title, "op", op, "error", err)
	return err
}
