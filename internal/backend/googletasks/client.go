// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasklr/internal/config"
	"tasklr/internal/service"
)

const (
	// APITimeout is the timeout for a single API call.
	APITimeout = 10 * time.Second

	// listsPageSize is the page size used when listing task lists.
	listsPageSize = 100
)

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc     *tasks.Service
	timeout time.Duration
}

// New creates a client whose requests are authorized by ts.
// The token source is expected to refresh itself.
func New(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	svc, err := tasks.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, timeout: APITimeout}, nil
}

// NewFromFiles creates a client from the CLI credential files.
// Requires oauth_client.json and token.json to exist.
func NewFromFiles(ctx context.Context, cfg *config.Config) (*Client, error) {
	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasks.TasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	return New(ctx, oauthConfig.TokenSource(ctx, &token))
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc, timeout: APITimeout}, nil
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]service.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result []service.TaskList
	err := c.svc.Tasklists.List().MaxResults(listsPageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			result = append(result, toTaskList(list))
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	return result, nil
}

// CreateList creates a new task list.
func (c *Client) CreateList(ctx context.Context, title string) (service.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return service.TaskList{}, wrapError(err)
	}
	return toTaskList(list), nil
}

// RenameList changes the title of a task list.
func (c *Client) RenameList(ctx context.Context, listID, title string) (service.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := c.svc.Tasklists.Patch(listID, &tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return service.TaskList{}, wrapError(err)
	}
	return toTaskList(list), nil
}

// DeleteList deletes a task list by ID.
func (c *Client) DeleteList(ctx context.Context, listID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.svc.Tasklists.Delete(listID).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// ListTasksPage returns one page of tasks for a list.
func (c *Client) ListTasksPage(ctx context.Context, listID string, q service.PageQuery) (service.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = service.DefaultPageSize
	}

	call := c.svc.Tasks.List(listID).
		MaxResults(maxResults).
		ShowCompleted(q.IncludeCompleted).
		ShowDeleted(false).
		ShowHidden(q.IncludeHidden).
		Context(ctx)
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return service.Page{}, wrapError(err)
	}

	page := service.Page{
		Tasks:         make([]service.Task, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, task := range resp.Items {
		page.Tasks = append(page.Tasks, toTask(task))
	}
	return page, nil
}

// CreateTask creates a new task in the specified list.
func (c *Client) CreateTask(ctx context.Context, listID string, nt service.NewTask) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	task, err := c.svc.Tasks.Insert(listID, &tasks.Task{
		Title: nt.Title,
		Notes: nt.Notes,
		Due:   nt.Due,
	}).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(task), nil
}

// UpdateTask patches the fields set in p.
func (c *Client) UpdateTask(ctx context.Context, listID, taskID string, p service.TaskPatch) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := &tasks.Task{}
	if p.Title != nil {
		body.Title = *p.Title
		body.ForceSendFields = append(body.ForceSendFields, "Title")
	}
	if p.Notes != nil {
		body.Notes = *p.Notes
		body.ForceSendFields = append(body.ForceSendFields, "Notes")
	}
	if p.Due != nil {
		if *p.Due == "" {
			body.NullFields = append(body.NullFields, "Due")
		} else {
			body.Due = *p.Due
		}
	}
	if p.Status != nil {
		body.Status = *p.Status
		if *p.Status == service.StatusNeedsAction {
			// Reopening a task requires dropping its completion time.
			body.NullFields = append(body.NullFields, "Completed")
		}
	}

	task, err := c.svc.Tasks.Patch(listID, taskID, body).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(task), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, listID, taskID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.svc.Tasks.Delete(listID, taskID).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// MoveTask repositions a task.
func (c *Client) MoveTask(ctx context.Context, listID, taskID string, to service.MoveTarget) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	call := c.svc.Tasks.Move(listID, taskID).Context(ctx)
	if to.Parent != "" {
		call = call.Parent(to.Parent)
	}
	if to.Previous != "" {
		call = call.Previous(to.Previous)
	}

	task, err := call.Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(task), nil
}

// ClearCompleted hides all completed tasks of a list.
func (c *Client) ClearCompleted(ctx context.Context, listID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasks.Clear(listID).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

func toTaskList(l *tasks.TaskList) service.TaskList {
	return service.TaskList{ID: l.Id, Title: l.Title, Updated: l.Updated}
}

func toTask(t *tasks.Task) service.Task {
	out := service.Task{
		ID:          t.Id,
		Title:       t.Title,
		Notes:       t.Notes,
		Due:         t.Due,
		Status:      t.Status,
		Parent:      t.Parent,
		Position:    t.Position,
		Updated:     t.Updated,
		Hidden:      t.Hidden,
		Deleted:     t.Deleted,
		WebViewLink: t.WebViewLink,
	}
	if t.Completed != nil {
		out.Completed = *t.Completed
	}
	return out
}

// wrapError translates API errors into the service error kinds.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	// Check for timeout
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", service.ErrTimeout, err)
	}

	// Refresh token rejected by the token endpoint
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %v", service.ErrUnauthorized, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", service.ErrUnauthorized, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %v", service.ErrForbidden, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", service.ErrNotFound, err)
		}
	}

	return err
}
