// Package httpserver wires the gin engine, its middleware and routes, and
// runs it with graceful shutdown.
package httpserver

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"tasklr/internal/aggregate"
	"tasklr/internal/api"
	"tasklr/internal/auth"
	"tasklr/internal/config"
	"tasklr/internal/middleware"
	"tasklr/internal/session"
	"tasklr/pkg/log"
)

// ServiceName identifies the server in status responses.
const ServiceName = "tasklr"

// HTTPServer holds all dependencies for the HTTP server.
type HTTPServer struct {
	gin         *gin.Engine
	l           log.Logger
	port        int
	mode        string
	environment string
	startedAt   time.Time

	cfg      *config.Config
	version  string
	provider api.AuthProvider
	factory  auth.ServiceFactory
	mw       middleware.Middleware
}

// Config is the dependency bag passed to New().
type Config struct {
	Config  *config.Config
	Version string

	// Provider runs the OAuth flow. Defaults to Google's.
	Provider interface {
		api.AuthProvider
		middleware.TokenRefresher
	}

	// Factory builds the task service of a signed-in user. Defaults to the
	// Google Tasks backend.
	Factory auth.ServiceFactory
}

// New creates a new HTTPServer instance with every route mapped.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	if cfg.Config == nil {
		return nil, errors.New("config is required")
	}
	c := cfg.Config

	mode := c.HTTPServer.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	srv := &HTTPServer{
		l:           logger,
		gin:         gin.New(),
		port:        c.HTTPServer.Port,
		mode:        mode,
		environment: c.Environment.Name,
		startedAt:   time.Now(),
		cfg:         c,
		version:     cfg.Version,
		factory:     cfg.Factory,
	}
	if err := srv.validate(); err != nil {
		return nil, err
	}

	var refresher middleware.TokenRefresher
	if cfg.Provider != nil {
		srv.provider, refresher = cfg.Provider, cfg.Provider
	} else {
		p := auth.NewProvider(c.Google.ClientID, c.Google.ClientSecret, c.CallbackURL())
		srv.provider, refresher = p, p
	}
	if srv.factory == nil {
		srv.factory = auth.GoogleTasksFactory
	}

	codec, err := session.NewCodec(c.SessionSecret(), c.Session.TTL)
	if err != nil {
		return nil, err
	}
	store := session.NewStore(c.Session.MaxEntries, c.Session.TTL)
	srv.mw = middleware.New(logger, store, codec, middleware.CookieConfig{
		Name:   c.Session.CookieName,
		Secure: c.IsProduction(),
	}, refresher, srv.factory)

	if err := srv.mapHandlers(); err != nil {
		return nil, err
	}
	return srv, nil
}

func (srv *HTTPServer) validate() error {
	if srv.l == nil {
		return errors.New("logger is required")
	}
	if srv.port == 0 {
		return errors.New("port is required")
	}
	return nil
}

func (srv *HTTPServer) newAggregator() *aggregate.Aggregator {
	a := srv.cfg.Aggregate
	return aggregate.New(srv.l,
		aggregate.WithPageSize(a.PageSize),
		aggregate.WithMaxPages(a.MaxPages),
		aggregate.WithConcurrency(a.Concurrency),
		aggregate.WithLenientExport(a.LenientExport),
	)
}
