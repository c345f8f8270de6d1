package httpserver

import (
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "tasklr/docs"
	"tasklr/internal/api"
	"tasklr/internal/middleware"
	"tasklr/pkg/response"
)

func (srv *HTTPServer) mapHandlers() error {
	srv.registerMiddlewares()
	srv.registerSystemRoutes()
	srv.registerDomainRoutes()
	return nil
}

func (srv *HTTPServer) registerMiddlewares() {
	ctx := context.Background()

	srv.gin.Use(gin.Recovery())
	srv.gin.Use(middleware.RequestLogger(srv.l))
	srv.gin.Use(middleware.SecurityHeaders())

	if origins := srv.cfg.HTTPServer.AllowedOrigins; len(origins) > 0 {
		srv.gin.Use(middleware.CORS(origins))
		srv.l.Infof(ctx, "CORS enabled for %v", origins)
	}

	srv.gin.Use(srv.mw.Session())
	srv.l.Infof(ctx, "Environment: %s", srv.environment)
}

func (srv *HTTPServer) registerSystemRoutes() {
	srv.gin.GET("/health", srv.healthCheck)
	srv.gin.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))
	srv.gin.NoRoute(srv.serveStatic(srv.cfg.HTTPServer.PublicDir))
}

func (srv *HTTPServer) registerDomainRoutes() {
	ctx := context.Background()

	h := api.New(api.Config{
		Logger:     srv.l,
		Middleware: srv.mw,
		Provider:   srv.provider,
		Aggregator: srv.newAggregator(),
		ViewsDir:   srv.cfg.HTTPServer.ViewsDir,
		Info: api.Info{
			Name:      ServiceName,
			Version:   srv.version,
			BaseURL:   srv.cfg.HTTPServer.BaseURL,
			EnvChecks: srv.envChecks(),
			StartedAt: srv.startedAt,
		},
	})

	api.RegisterPageRoutes(srv.gin, h, srv.mw)
	api.RegisterAPIRoutes(srv.gin.Group("/api", srv.mw.RateLimit(srv.cfg.HTTPServer.RateLimitPerMin)), h, srv.mw)

	if srv.cfg.HTTPServer.AllowTestRoutes {
		api.RegisterTestRoutes(srv.gin, h)
		srv.l.Warnf(ctx, "Test routes enabled at /__test")
	}
}

func (srv *HTTPServer) envChecks() map[string]bool {
	return map[string]bool{
		"google_client_id":     srv.cfg.Google.ClientID != "",
		"google_client_secret": srv.cfg.Google.ClientSecret != "",
		"session_secret":       srv.cfg.Session.Secret != "",
	}
}

// serveStatic serves files of dir for paths no route claims.
func (srv *HTTPServer) serveStatic(dir string) gin.HandlerFunc {
	files := http.FileServer(gin.Dir(dir, false))
	return func(c *gin.Context) {
		if dir != "" && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
			name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
			if info, err := os.Stat(name); err == nil && !info.IsDir() {
				files.ServeHTTP(c.Writer, c.Request)
				return
			}
		}
		response.NotFound(c)
	}
}

// Handler returns the engine, for tests and custom listeners.
func (srv *HTTPServer) Handler() http.Handler {
	return srv.gin
}
