// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"tasklr/internal/service"
)

// DefaultListID is the ID used for the list every account starts with.
const DefaultListID = "default"

// FakeService is an in-memory implementation of service.Service for testing.
// Pages are served with tokens of the form "<offset>".
type FakeService struct {
	mu     sync.RWMutex
	lists  []service.TaskList
	tasks  map[string][]service.Task // listID -> tasks in position order
	nextID int

	// Calls records every method invocation as "Method:listID[:taskID]".
	Calls []string

	// Error injection for testing
	ListListsErr      error
	CreateListErr     error
	RenameListErr     error
	DeleteListErr     error
	ListTasksPageErr  map[string]error // listID -> error
	CreateTaskErr     error
	UpdateTaskErr     error
	DeleteTaskErr     error
	MoveTaskErr       error
	ClearCompletedErr error
}

// NewFakeService creates a new FakeService with a default list.
func NewFakeService() *FakeService {
	fs := &FakeService{
		tasks:            make(map[string][]service.Task),
		ListTasksPageErr: make(map[string]error),
	}
	fs.lists = []service.TaskList{{ID: DefaultListID, Title: "My Tasks"}}
	fs.tasks[DefaultListID] = nil
	return fs
}

// AddList adds a list to the fake service.
func (f *FakeService) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.TaskList{ID: id, Title: title})
	if f.tasks[id] == nil {
		f.tasks[id] = nil
	}
}

// AddTask adds an open task to a list.
func (f *FakeService) AddTask(listID, taskID, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[listID] = append(f.tasks[listID], service.Task{
		ID:     taskID,
		Title:  title,
		Status: service.StatusNeedsAction,
	})
}

// CompleteTaskNow marks a task completed without recording a call.
func (f *FakeService) CompleteTaskNow(listID, taskID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks[listID] {
		if t.ID == taskID {
			f.tasks[listID][i].Status = service.StatusCompleted
			f.tasks[listID][i].Completed = "2026-01-01T00:00:00.000Z"
		}
	}
}

// HideTask marks a task hidden, as clearing does.
func (f *FakeService) HideTask(listID, taskID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks[listID] {
		if t.ID == taskID {
			f.tasks[listID][i].Hidden = true
		}
	}
}

// Tasks returns a copy of the tasks stored for a list.
func (f *FakeService) Tasks(listID string) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks[listID]))
	copy(out, f.tasks[listID])
	return out
}

// Lists returns a copy of the stored lists.
func (f *FakeService) Lists() []service.TaskList {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.TaskList, len(f.lists))
	copy(out, f.lists)
	return out
}

func (f *FakeService) record(call string) {
	f.Calls = append(f.Calls, call)
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context) ([]service.TaskList, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListLists")
	result := make([]service.TaskList, len(f.lists))
	copy(result, f.lists)
	return result, nil
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, title string) (service.TaskList, error) {
	if f.CreateListErr != nil {
		return service.TaskList{}, f.CreateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateList")

	// Generate a simple ID
	id := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	list := service.TaskList{ID: id, Title: title}
	f.lists = append(f.lists, list)
	f.tasks[id] = nil
	return list, nil
}

// RenameList implements service.Service.
func (f *FakeService) RenameList(ctx context.Context, listID, title string) (service.TaskList, error) {
	if f.RenameListErr != nil {
		return service.TaskList{}, f.RenameListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RenameList:" + listID)

	for i, l := range f.lists {
		if l.ID == listID {
			f.lists[i].Title = title
			return f.lists[i], nil
		}
	}
	return service.TaskList{}, service.ErrNotFound
}

// DeleteList implements service.Service.
func (f *FakeService) DeleteList(ctx context.Context, listID string) error {
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteList:" + listID)

	for i, l := range f.lists {
		if l.ID == listID {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			delete(f.tasks, listID)
			return nil
		}
	}
	return service.ErrNotFound
}

// ListTasksPage implements service.Service.
func (f *FakeService) ListTasksPage(ctx context.Context, listID string, q service.PageQuery) (service.Page, error) {
	if err, ok := f.ListTasksPageErr[listID]; ok && err != nil {
		return service.Page{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTasksPage:" + listID)

	tasks, ok := f.tasks[listID]
	if !ok {
		return service.Page{}, service.ErrNotFound
	}

	var visible []service.Task
	for _, t := range tasks {
		if t.Deleted {
			continue
		}
		if t.Hidden && !q.IncludeHidden {
			continue
		}
		if t.Status == service.StatusCompleted && !q.IncludeCompleted {
			continue
		}
		visible = append(visible, t)
	}

	size := int(q.MaxResults)
	if size <= 0 {
		size = service.DefaultPageSize
	}
	start := 0
	if q.PageToken != "" {
		n, err := strconv.Atoi(q.PageToken)
		if err != nil || n < 0 {
			return service.Page{}, fmt.Errorf("invalid page token %q", q.PageToken)
		}
		start = n
	}
	if start > len(visible) {
		start = len(visible)
	}
	end := start + size
	if end > len(visible) {
		end = len(visible)
	}

	page := service.Page{Tasks: append([]service.Task{}, visible[start:end]...)}
	if end < len(visible) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, listID string, nt service.NewTask) (service.Task, error) {
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTask:" + listID)

	if _, ok := f.tasks[listID]; !ok {
		return service.Task{}, service.ErrNotFound
	}

	f.nextID++
	task := service.Task{
		ID:     fmt.Sprintf("task-%d", f.nextID),
		Title:  nt.Title,
		Notes:  nt.Notes,
		Due:    nt.Due,
		Status: service.StatusNeedsAction,
	}
	// New tasks go to the top, as in Google Tasks.
	f.tasks[listID] = append([]service.Task{task}, f.tasks[listID]...)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, listID, taskID string, p service.TaskPatch) (service.Task, error) {
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTask:" + listID + ":" + taskID)

	i, ok := f.indexOf(listID, taskID)
	if !ok {
		return service.Task{}, service.ErrNotFound
	}
	t := &f.tasks[listID][i]
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Due != nil {
		t.Due = *p.Due
	}
	if p.Status != nil {
		t.Status = *p.Status
		if t.Status != service.StatusCompleted {
			t.Completed = ""
		}
	}
	return *t, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, listID, taskID string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTask:" + listID + ":" + taskID)

	i, ok := f.indexOf(listID, taskID)
	if !ok {
		return service.ErrNotFound
	}
	f.tasks[listID] = append(f.tasks[listID][:i], f.tasks[listID][i+1:]...)
	return nil
}

// MoveTask implements service.Service. Previous == "" moves to the top.
func (f *FakeService) MoveTask(ctx context.Context, listID, taskID string, to service.MoveTarget) (service.Task, error) {
	if f.MoveTaskErr != nil {
		return service.Task{}, f.MoveTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("MoveTask:" + listID + ":" + taskID)

	i, ok := f.indexOf(listID, taskID)
	if !ok {
		return service.Task{}, service.ErrNotFound
	}
	task := f.tasks[listID][i]
	task.Parent = to.Parent
	rest := append(append([]service.Task{}, f.tasks[listID][:i]...), f.tasks[listID][i+1:]...)

	pos := 0
	if to.Previous != "" {
		found := false
		for j, t := range rest {
			if t.ID == to.Previous {
				pos = j + 1
				found = true
				break
			}
		}
		if !found {
			return service.Task{}, service.ErrNotFound
		}
	}
	moved := append(append(append([]service.Task{}, rest[:pos]...), task), rest[pos:]...)
	f.tasks[listID] = moved
	return task, nil
}

// ClearCompleted implements service.Service.
func (f *FakeService) ClearCompleted(ctx context.Context, listID string) error {
	if f.ClearCompletedErr != nil {
		return f.ClearCompletedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ClearCompleted:" + listID)

	if _, ok := f.tasks[listID]; !ok {
		return service.ErrNotFound
	}
	for i, t := range f.tasks[listID] {
		if t.Status == service.StatusCompleted {
			f.tasks[listID][i].Hidden = true
		}
	}
	return nil
}

func (f *FakeService) indexOf(listID, taskID string) (int, bool) {
	for i, t := range f.tasks[listID] {
		if t.ID == taskID {
			return i, true
		}
	}
	return 0, false
}
