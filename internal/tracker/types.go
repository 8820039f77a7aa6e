package tracker

// Team is a Linear team.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label is an issue label scoped to a team.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Project is a Linear project.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Document is a document attached to a project.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Issue is a Linear issue.
type Issue struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// IssueQuery selects issues by exact title within a team.
// ParentID and ProjectID narrow the search when set.
type IssueQuery struct {
	TeamID    string
	Title     string
	ParentID  string
	ProjectID string
}

// IssueInput describes an issue to create.
type IssueInput struct {
	TeamID      string
	Title       string
	Description string
	ParentID    string
	ProjectID   string
	LabelIDs    []string
}

// ProjectInput describes a project to create.
type ProjectInput struct {
	Name        string
	Description string
	TeamIDs     []string
}

// DocumentInput describes a project document to create.
type DocumentInput struct {
	Title     string
	Content   string
	ProjectID string
}
