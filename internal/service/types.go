// Package service defines the backend-agnostic interface for task operations.
package service

// Task status values as reported by Google Tasks.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// DefaultPageSize is the largest page Google Tasks serves per call.
const DefaultPageSize = 100

// Task represents a single task item. Fields are passed through unchanged.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Notes       string `json:"notes,omitempty"`
	Due         string `json:"due,omitempty"`
	Status      string `json:"status,omitempty"` // "needsAction" or "completed"
	Completed   string `json:"completed,omitempty"`
	Parent      string `json:"parent,omitempty"`
	Position    string `json:"position,omitempty"`
	Updated     string `json:"updated,omitempty"`
	Hidden      bool   `json:"hidden,omitempty"`
	Deleted     bool   `json:"deleted,omitempty"`
	WebViewLink string `json:"webViewLink,omitempty"`
}

// TaskList represents a task list.
type TaskList struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Updated string `json:"updated,omitempty"`
}

// PageQuery selects one page of tasks in a list.
// Deleted tasks are never requested.
type PageQuery struct {
	IncludeCompleted bool
	IncludeHidden    bool
	PageToken        string
	MaxResults       int64
}

// Page is one batch of tasks. An empty NextPageToken means there are no
// further pages.
type Page struct {
	Tasks         []Task
	NextPageToken string
}

// NewTask holds the fields accepted when creating a task.
type NewTask struct {
	Title string
	Notes string
	Due   string // RFC 3339, empty for none
}

// TaskPatch is a partial update. Nil fields are left untouched.
// A non-nil Due pointing at "" clears the due date.
type TaskPatch struct {
	Title  *string
	Notes  *string
	Due    *string
	Status *string
}

// MoveTarget positions a task. Empty Previous moves it to the top of its
// parent; empty Parent moves it to the top level.
type MoveTarget struct {
	Parent   string
	Previous string
}
