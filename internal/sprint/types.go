package sprint

// Sprint identifies the sprint a result was built from.
type Sprint struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Issue is the normalized issue record served to the board UI. Optional
// fields are nil (rendered as JSON null), never absent; Labels and Subtasks
// are always non-nil so clients can iterate without guards.
type Issue struct {
	Key    string `json:"key"`
	Fields Fields `json:"fields"`
	Status string `json:"status"`
}

type Fields struct {
	Summary  *string      `json:"summary"`
	Assignee *User        `json:"assignee"`
	Reporter *User        `json:"reporter"`
	DueDate  *string      `json:"duedate"`
	Labels   []string     `json:"labels"`
	Subtasks []SubtaskRef `json:"subtasks"`
}

type User struct {
	DisplayName string `json:"displayName"`
}

// SubtaskRef is a child issue reference attached to its parent.
type SubtaskRef struct {
	Key     string  `json:"key"`
	Summary *string `json:"summary"`
	Status  *string `json:"status"`
}

// Result is the response of a sprint issue listing. Sprint is nil when no
// sprint could be resolved (no active sprint on the board).
type Result struct {
	Sprint *Sprint `json:"sprint,omitempty"`
	Issues []Issue `json:"issues"`
}
