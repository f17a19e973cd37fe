package jira

import "github.com/sprintqa/qaboard/internal/adf"

// SprintDetail is the relevant subset of a Jira agile sprint.
type SprintDetail struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// sprintPage is the board sprint listing response.
type sprintPage struct {
	Values []SprintDetail `json:"values"`
}

// Issue is the relevant subset of a Jira issue as returned by the agile and
// search endpoints. Subtasks reuse the same shape with a reduced field set.
type Issue struct {
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

type IssueFields struct {
	Summary  *string    `json:"summary"`
	Assignee *UserRef   `json:"assignee"`
	Reporter *UserRef   `json:"reporter"`
	DueDate  *string    `json:"duedate"`
	Labels   []string   `json:"labels"`
	Status   *NameRef   `json:"status"`
	Subtasks []Issue    `json:"subtasks"`
	Parent   *ParentRef `json:"parent"`
}

type UserRef struct {
	DisplayName string `json:"displayName"`
}

type NameRef struct {
	Name string `json:"name"`
}

type ParentRef struct {
	Key string `json:"key"`
}

// issuePage is shared by the sprint issue listing and search responses.
type issuePage struct {
	Issues []Issue `json:"issues"`
}

// searchRequest is the POST body for the search endpoint.
type searchRequest struct {
	JQL        string   `json:"jql"`
	Fields     []string `json:"fields"`
	MaxResults int      `json:"maxResults"`
}

// commentRequest wraps an ADF document for the comment creation endpoint.
type commentRequest struct {
	Body adf.Doc `json:"body"`
}

// CommentResult is the outcome of a comment post. Comment posting never
// fails past its own boundary; callers always get a value.
type CommentResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
