// Package middleware holds the gin middleware of the web server.
package middleware

import (
	"context"

	"golang.org/x/oauth2"

	"tasklr/internal/auth"
	"tasklr/internal/session"
	"tasklr/pkg/log"
)

// TokenRefresher renews session tokens that are about to expire.
type TokenRefresher interface {
	Fresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, bool, error)
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type Middleware struct {
	l         log.Logger
	store     *session.Store
	codec     *session.Codec
	cookie    CookieConfig
	refresher TokenRefresher
	factory   auth.ServiceFactory
}

func New(l log.Logger, store *session.Store, codec *session.Codec, cookie CookieConfig, refresher TokenRefresher, factory auth.ServiceFactory) Middleware {
	if cookie.Name == "" {
		cookie.Name = "tasklr_session"
	}
	return Middleware{
		l:         l,
		store:     store,
		codec:     codec,
		cookie:    cookie,
		refresher: refresher,
		factory:   factory,
	}
}
