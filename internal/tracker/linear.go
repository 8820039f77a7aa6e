package tracker

import (
	"context"
	"errors"
	"strings"
)

// errNoPayload is wrapped when a mutation reports success but returns no entity.
var errNoPayload = errors.New("mutation returned no entity")

// errNotSuccessful is wrapped when a mutation reports success: false.
var errNotSuccessful = errors.New("mutation was not successful")

type nodes[T any] struct {
	Nodes []T `json:"nodes"`
}

// Teams lists the teams visible to the API key.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	var out struct {
		Teams nodes[Team] `json:"teams"`
	}
	if err := c.do(ctx, opTeams, nil, &out); err != nil {
		return nil, err
	}
	return out.Teams.Nodes, nil
}

// FindLabel returns the team label named exactly name, or nil.
func (c *Client) FindLabel(ctx context.Context, teamID, name string) (*Label, error) {
	var out struct {
		IssueLabels nodes[Label] `json:"issueLabels"`
	}
	vars := map[string]any{"teamId": teamID, "name": name}
	if err := c.do(ctx, opFindLabel, vars, &out); err != nil {
		return nil, err
	}
	for i := range out.IssueLabels.Nodes {
		if out.IssueLabels.Nodes[i].Name == name {
			return &out.IssueLabels.Nodes[i], nil
		}
	}
	return nil, nil
}

// CreateLabel creates a label on the team.
func (c *Client) CreateLabel(ctx context.Context, teamID, name string) (*Label, error) {
	var out struct {
		IssueLabelCreate struct {
			Success    bool   `json:"success"`
			IssueLabel *Label `json:"issueLabel"`
		} `json:"issueLabelCreate"`
	}
	vars := map[string]any{"teamId": teamID, "name": name}
	if err := c.do(ctx, opCreateLabel, vars, &out); err != nil {
		return nil, err
	}
	res := out.IssueLabelCreate
	if err := checkPayload(opCreateLabel, res.Success, res.IssueLabel != nil); err != nil {
		return nil, err
	}
	return res.IssueLabel, nil
}

// FindProject returns a project of the team whose name matches name
// ignoring case, or nil.
func (c *Client) FindProject(ctx context.Context, teamID, name string) (*Project, error) {
	var out struct {
		Projects nodes[Project] `json:"projects"`
	}
	vars := map[string]any{"teamId": teamID, "name": name}
	if err := c.do(ctx, opFindProject, vars, &out); err != nil {
		return nil, err
	}
	for i := range out.Projects.Nodes {
		if strings.EqualFold(out.Projects.Nodes[i].Name, name) {
			return &out.Projects.Nodes[i], nil
		}
	}
	return nil, nil
}

// CreateProject creates a project shared with in.TeamIDs.
func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	var out struct {
		ProjectCreate struct {
			Success bool     `json:"success"`
			Project *Project `json:"project"`
		} `json:"projectCreate"`
	}
	vars := map[string]any{"name": in.Name, "teamIds": in.TeamIDs}
	if in.Description != "" {
		vars["description"] = in.Description
	}
	if err := c.do(ctx, opCreateProject, vars, &out); err != nil {
		return nil, err
	}
	res := out.ProjectCreate
	if err := checkPayload(opCreateProject, res.Success, res.Project != nil); err != nil {
		return nil, err
	}
	return res.Project, nil
}

// CreateDocument attaches a document to a project.
func (c *Client) CreateDocument(ctx context.Context, in DocumentInput) (*Document, error) {
	var out struct {
		DocumentCreate struct {
			Success  bool      `json:"success"`
			Document *Document `json:"document"`
		} `json:"documentCreate"`
	}
	vars := map[string]any{"title": in.Title, "projectId": in.ProjectID}
	if in.Content != "" {
		vars["content"] = in.Content
	}
	if err := c.do(ctx, opCreateDocument, vars, &out); err != nil {
		return nil, err
	}
	res := out.DocumentCreate
	if err := checkPayload(opCreateDocument, res.Success, res.Document != nil); err != nil {
		return nil, err
	}
	return res.Document, nil
}

// FindIssue returns the issue titled exactly q.Title, or nil. The match is
// case-sensitive and scoped to q.ParentID or q.ProjectID when either is set.
func (c *Client) FindIssue(ctx context.Context, q IssueQuery) (*Issue, error) {
	op := opFindIssue
	vars := map[string]any{"teamId": q.TeamID, "title": q.Title}
	switch {
	case q.ParentID != "":
		op = opFindChildIssue
		vars["parentId"] = q.ParentID
	case q.ProjectID != "":
		op = opFindProjectIssue
		vars["projectId"] = q.ProjectID
	}

	var out struct {
		Issues nodes[Issue] `json:"issues"`
	}
	if err := c.do(ctx, op, vars, &out); err != nil {
		return nil, err
	}
	for i := range out.Issues.Nodes {
		if out.Issues.Nodes[i].Title == q.Title {
			return &out.Issues.Nodes[i], nil
		}
	}
	return nil, nil
}

// CreateIssue creates an issue. Empty optional fields are left out of the
// request.
func (c *Client) CreateIssue(ctx context.Context, in IssueInput) (*Issue, error) {
	var out struct {
		IssueCreate struct {
			Success bool   `json:"success"`
			Issue   *Issue `json:"issue"`
		} `json:"issueCreate"`
	}
	vars := map[string]any{"teamId": in.TeamID, "title": in.Title}
	if in.Description != "" {
		vars["description"] = in.Description
	}
	if in.ParentID != "" {
		vars["parentId"] = in.ParentID
	}
	if in.ProjectID != "" {
		vars["projectId"] = in.ProjectID
	}
	if len(in.LabelIDs) > 0 {
		vars["labelIds"] = in.LabelIDs
	}
	if err := c.do(ctx, opCreateIssue, vars, &out); err != nil {
		return nil, err
	}
	res := out.IssueCreate
	if err := checkPayload(opCreateIssue, res.Success, res.Issue != nil); err != nil {
		return nil, err
	}
	return res.Issue, nil
}

func checkPayload(op operation, success, hasEntity bool) error {
	if !success {
		return &RemoteError{Op: op.Name, Kind: op.Kind, Err: errNotSuccessful}
	}
	if !hasEntity {
		return &RemoteError{Op: op.Name, Kind: op.Kind, Err: errNoPayload}
	}
	return nil
}
