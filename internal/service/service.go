// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// All Google Tasks API calls go through this interface.
// Handlers and commands never import the Google SDK directly.
type Service interface {
	// ListLists returns all task lists in API order, following every page.
	ListLists(ctx context.Context) ([]TaskList, error)

	// CreateList creates a new task list.
	CreateList(ctx context.Context, title string) (TaskList, error)

	// RenameList changes the title of a task list.
	RenameList(ctx context.Context, listID, title string) (TaskList, error)

	// DeleteList deletes a task list by ID.
	DeleteList(ctx context.Context, listID string) error

	// ListTasksPage returns a single page of tasks for a list.
	// Results are in API order (no client-side sorting).
	ListTasksPage(ctx context.Context, listID string, q PageQuery) (Page, error)

	// CreateTask creates a new task in the specified list.
	CreateTask(ctx context.Context, listID string, t NewTask) (Task, error)

	// UpdateTask applies a partial update to a task.
	UpdateTask(ctx context.Context, listID, taskID string, p TaskPatch) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, listID, taskID string) error

	// MoveTask repositions a task within its list.
	MoveTask(ctx context.Context, listID, taskID string, to MoveTarget) (Task, error)

	// ClearCompleted hides all completed tasks of a list.
	ClearCompleted(ctx context.Context, listID string) error
}
