// Package api implements the HTTP handlers of the web app: the OAuth pages
// and the JSON API over the user's task lists.
package api

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"tasklr/internal/aggregate"
	"tasklr/internal/middleware"
	"tasklr/internal/session"
	"tasklr/pkg/log"
)

// AuthProvider runs the OAuth2 web flow.
type AuthProvider interface {
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, token *oauth2.Token) (session.User, error)
}

// Info describes the running server for the status endpoint.
type Info struct {
	Name      string
	Version   string
	BaseURL   string
	EnvChecks map[string]bool
	StartedAt time.Time
}

// Config is the dependency bag passed to New.
type Config struct {
	Logger     log.Logger
	Middleware middleware.Middleware
	Provider   AuthProvider
	Aggregator *aggregate.Aggregator
	ViewsDir   string
	Info       Info

	// Now defaults to time.Now.
	Now func() time.Time
}

type handler struct {
	l        log.Logger
	mw       middleware.Middleware
	provider AuthProvider
	agg      *aggregate.Aggregator
	viewsDir string
	info     Info
	now      func() time.Time
}

// New creates the HTTP handler.
func New(cfg Config) *handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &handler{
		l:        cfg.Logger,
		mw:       cfg.Middleware,
		provider: cfg.Provider,
		agg:      cfg.Aggregator,
		viewsDir: cfg.ViewsDir,
		info:     cfg.Info,
		now:      now,
	}
}
