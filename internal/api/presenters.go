package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"tasklr/internal/service"
	"tasklr/pkg/response"
)

// optional records whether a JSON field was present and whether it was null.
type optional struct {
	Set   bool
	Null  bool
	Value string
}

func (o *optional) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// --- Request DTOs ---

type titleReq struct {
	Title string `json:"title"`
}

func (r titleReq) validate() (string, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return "", errTitleRequired
	}
	return title, nil
}

// ---

type createTaskReq struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
	Due   string `json:"due"`
}

func (r createTaskReq) toInput() (service.NewTask, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return service.NewTask{}, errTitleRequired
	}
	nt := service.NewTask{Title: title, Notes: r.Notes}
	if r.Due != "" {
		due, err := normalizeDue(r.Due)
		if err != nil {
			return service.NewTask{}, err
		}
		nt.Due = due
	}
	return nt, nil
}

// ---

type updateTaskReq struct {
	Title  optional `json:"title"`
	Notes  optional `json:"notes"`
	Due    optional `json:"due"`
	Status optional `json:"status"`
}

func (r updateTaskReq) toInput() (service.TaskPatch, error) {
	var p service.TaskPatch

	if r.Title.Set {
		title := strings.TrimSpace(r.Title.Value)
		if r.Title.Null || title == "" {
			return p, errTitleRequired
		}
		p.Title = &title
	}
	if r.Notes.Set {
		notes := r.Notes.Value
		p.Notes = &notes
	}
	if r.Due.Set {
		due := ""
		if !r.Due.Null && r.Due.Value != "" {
			var err error
			if due, err = normalizeDue(r.Due.Value); err != nil {
				return p, err
			}
		}
		p.Due = &due
	}
	if r.Status.Set {
		status := r.Status.Value
		if status != service.StatusNeedsAction && status != service.StatusCompleted {
			return p, errInvalidStatus
		}
		p.Status = &status
	}
	return p, nil
}

// ---

type moveReq struct {
	Previous optional `json:"previous"`
	Parent   optional `json:"parent"`
}

func (r moveReq) toInput() service.MoveTarget {
	return service.MoveTarget{Previous: r.Previous.Value, Parent: r.Parent.Value}
}

// dueLayouts are the accepted due date inputs, most specific first.
var dueLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// normalizeDue converts a client date into the RFC 3339 UTC timestamp the
// Tasks API stores. Inputs without a zone are read as UTC.
func normalizeDue(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(response.TimestampFormat), nil
		}
	}
	return "", errInvalidDue
}

// --- Response DTOs ---

type statusResp struct {
	Name      string             `json:"name"`
	Version   string             `json:"version"`
	Go        string             `json:"go"`
	BaseURL   string             `json:"baseUrl"`
	Env       map[string]bool    `json:"env"`
	Uptime    float64            `json:"uptime"`
	Timestamp response.Timestamp `json:"timestamp"`
}
