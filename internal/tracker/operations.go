package tracker

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// operation is a parsed GraphQL document sent to the tracker.
type operation struct {
	Name     string
	Kind     Kind
	Document string
}

// Kind distinguishes read requests from writes.
type Kind string

const (
	KindQuery    Kind = "query"
	KindMutation Kind = "mutation"
)

// mustOperation parses doc and takes its name and kind from the single
// operation it contains. Panics on malformed documents so typos surface at
// package initialization rather than as remote errors.
func mustOperation(doc string) operation {
	parsed, err := parser.ParseQuery(&ast.Source{Name: "operation", Input: doc})
	if err != nil {
		panic(fmt.Sprintf("tracker: invalid GraphQL document: %v", err))
	}
	if len(parsed.Operations) != 1 {
		panic(fmt.Sprintf("tracker: expected one operation, got %d", len(parsed.Operations)))
	}
	op := parsed.Operations[0]
	if op.Name == "" {
		panic("tracker: operations must be named")
	}

	kind := KindQuery
	if op.Operation == ast.Mutation {
		kind = KindMutation
	}
	return operation{Name: op.Name, Kind: kind, Document: doc}
}

var (
	opTeams = mustOperation(`
query Teams {
  teams {
    nodes { id name }
  }
}`)

	opFindLabel = mustOperation(`
query FindLabel($teamId: ID!, $name: String!) {
  issueLabels(filter: { team: { id: { eq: $teamId } }, name: { eq: $name } }) {
    nodes { id name }
  }
}`)

	opCreateLabel = mustOperation(`
mutation CreateLabel($teamId: String!, $name: String!) {
  issueLabelCreate(input: { teamId: $teamId, name: $name }) {
    success
    issueLabel { id name }
  }
}`)

	opFindProject = mustOperation(`
query FindProject($teamId: ID!, $name: String!) {
  projects(filter: { accessibleTeams: { some: { id: { eq: $teamId } } }, name: { eqIgnoreCase: $name } }) {
    nodes { id name }
  }
}`)

	opCreateProject = mustOperation(`
mutation CreateProject($name: String!, $description: String, $teamIds: [String!]!) {
  projectCreate(input: { name: $name, description: $description, teamIds: $teamIds }) {
    success
    project { id name }
  }
}`)

	opCreateDocument = mustOperation(`
mutation CreateDocument($title: String!, $content: String, $projectId: String!) {
  documentCreate(input: { title: $title, content: $content, projectId: $projectId }) {
    success
    document { id title }
  }
}`)

	opFindIssue = mustOperation(`
query FindIssue($teamId: ID!, $title: String!) {
  issues(filter: { team: { id: { eq: $teamId } }, title: { eq: $title } }) {
    nodes { id title }
  }
}`)

	opFindChildIssue = mustOperation(`
query FindChildIssue($teamId: ID!, $title: String!, $parentId: ID!) {
  issues(filter: { team: { id: { eq: $teamId } }, title: { eq: $title }, parent: { id: { eq: $parentId } } }) {
    nodes { id title }
  }
}`)

	opFindProjectIssue = mustOperation(`
query FindProjectIssue($teamId: ID!, $title: String!, $projectId: ID!) {
  issues(filter: { team: { id: { eq: $teamId } }, title: { eq: $title }, project: { id: { eq: $projectId } } }) {
    nodes { id title }
  }
}`)

	opCreateIssue = mustOperation(`
mutation CreateIssue($teamId: String!, $title: String!, $description: String, $parentId: String, $projectId: String, $labelIds: [String!]) {
  issueCreate(input: { teamId: $teamId, title: $title, description: $description, parentId: $parentId, projectId: $projectId, labelIds: $labelIds }) {
    success
    issue { id title }
  }
}`)
)
