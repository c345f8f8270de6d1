// Package aggregate walks paged task collections to count or export tasks
// across every list of an account.
package aggregate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tasklr/internal/service"
	"tasklr/pkg/log"
)

const (
	// DefaultMaxPages bounds a single list walk (100k tasks at the default page size).
	DefaultMaxPages = 1000

	// DefaultConcurrency is the number of lists walked at the same time.
	DefaultConcurrency = 8
)

// Lister returns every task list of the account, already paginated.
type Lister interface {
	ListLists(ctx context.Context) ([]service.TaskList, error)
}

// Pager fetches one page of tasks of a list.
type Pager interface {
	ListTasksPage(ctx context.Context, listID string, q service.PageQuery) (service.Page, error)
}

// Source is what the aggregation operations read from. service.Service satisfies it.
type Source interface {
	Lister
	Pager
}

// Counts maps a list ID to its number of incomplete tasks.
type Counts map[string]int

// Export is the full backup of an account.
type Export struct {
	Lists []ListExport `json:"lists"`
}

// ListExport holds one list and its tasks in API order.
type ListExport struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Tasks []service.Task `json:"tasks"`
}

// Aggregator counts and exports tasks. It holds no per-request state and is
// safe for concurrent use.
type Aggregator struct {
	l             log.Logger
	pageSize      int64
	maxPages      int
	concurrency   int
	lenientExport bool
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPageSize sets the page size requested from the backend.
func WithPageSize(n int64) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.pageSize = n
		}
	}
}

// WithMaxPages bounds each list walk. Zero or less keeps the default.
func WithMaxPages(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxPages = n
		}
	}
}

// WithConcurrency sets how many lists are walked at once.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithLenientExport makes ExportAll keep going when a list fails, emitting
// that list with no tasks.
func WithLenientExport(lenient bool) Option {
	return func(a *Aggregator) {
		a.lenientExport = lenient
	}
}

// New creates an Aggregator.
func New(l log.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		l:           l,
		pageSize:    service.DefaultPageSize,
		maxPages:    DefaultMaxPages,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CountIncompleteByList returns the number of incomplete tasks of every list.
// A list whose pages cannot be read counts as 0 and is logged; only a failure
// to list the task lists themselves fails the call.
func (a *Aggregator) CountIncompleteByList(ctx context.Context, src Source) (Counts, error) {
	lists, err := src.ListLists(ctx)
	if err != nil {
		return nil, &ListError{Err: err}
	}

	q := service.PageQuery{IncludeCompleted: false, IncludeHidden: false}
	results := make([]int, len(lists))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, list := range lists {
		g.Go(func() error {
			n := 0
			err := a.walk(ctx, src, list.ID, q, func(p service.Page) {
				n += len(p.Tasks)
			})
			if err != nil {
				a.l.Warnf(ctx, "aggregate.CountIncompleteByList: list %s counted as 0: %v", list.ID, err)
				n = 0
			}
			results[i] = n
			return nil
		})
	}
	_ = g.Wait()

	counts := make(Counts, len(lists))
	for i, list := range lists {
		counts[list.ID] = results[i]
	}
	return counts, nil
}

// ExportAll returns every task of every list, lists in API order and tasks
// in page order. The first failing list aborts the export unless the
// Aggregator was built WithLenientExport.
func (a *Aggregator) ExportAll(ctx context.Context, src Source) (Export, error) {
	lists, err := src.ListLists(ctx)
	if err != nil {
		return Export{}, &ListError{Err: err}
	}

	q := service.PageQuery{IncludeCompleted: true, IncludeHidden: false}
	out := make([]ListExport, len(lists))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, list := range lists {
		g.Go(func() error {
			tasks, err := a.CollectTasks(gctx, src, list.ID, q)
			if err != nil {
				if !a.lenientExport {
					return err
				}
				a.l.Warnf(ctx, "aggregate.ExportAll: list %s exported empty: %v", list.ID, err)
				tasks = []service.Task{}
			}
			out[i] = ListExport{ID: list.ID, Title: list.Title, Tasks: tasks}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Export{}, err
	}
	return Export{Lists: out}, nil
}

// CollectTasks returns every task of one list matching q, in page order.
// q.PageToken and q.MaxResults are managed by the walk.
func (a *Aggregator) CollectTasks(ctx context.Context, src Pager, listID string, q service.PageQuery) ([]service.Task, error) {
	tasks := []service.Task{}
	err := a.walk(ctx, src, listID, q, func(p service.Page) {
		tasks = append(tasks, p.Tasks...)
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// walk fetches the pages of one list in order, calling fn for each page.
// Pages are sequential: each request needs the token of the previous one.
func (a *Aggregator) walk(ctx context.Context, src Pager, listID string, q service.PageQuery, fn func(service.Page)) error {
	q.MaxResults = a.pageSize
	q.PageToken = ""
	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		if page > a.maxPages {
			return &PageError{ListID: listID, Page: page, Err: ErrPageLimit}
		}
		if err := ctx.Err(); err != nil {
			return &PageError{ListID: listID, Page: page, Err: err}
		}

		p, err := src.ListTasksPage(ctx, listID, q)
		if err != nil {
			return &PageError{ListID: listID, Page: page, Err: err}
		}
		fn(p)

		if p.NextPageToken == "" {
			return nil
		}
		if _, dup := seen[p.NextPageToken]; dup {
			return &PageError{ListID: listID, Page: page, Err: ErrTokenCycle}
		}
		seen[p.NextPageToken] = struct{}{}
		q.PageToken = p.NextPageToken
	}
}
