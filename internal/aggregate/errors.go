package aggregate

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenCycle is returned when the backend hands out a continuation
	// token that was already used in the same walk.
	ErrTokenCycle = errors.New("continuation token repeated")

	// ErrPageLimit is returned when a walk exceeds the configured page bound.
	ErrPageLimit = errors.New("page limit exceeded")
)

// ListError reports that the set of task lists could not be fetched.
type ListError struct {
	Err error
}

func (e *ListError) Error() string { return fmt.Sprintf("list task lists: %v", e.Err) }
func (e *ListError) Unwrap() error { return e.Err }

// PageError reports that paging through one list failed.
// Page is the 1-based page that failed.
type PageError struct {
	ListID string
	Page   int
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("list %s page %d: %v", e.ListID, e.Page, e.Err)
}
func (e *PageError) Unwrap() error { return e.Err }
