package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"tasklr/internal/config"
	"tasklr/internal/exitcode"
	"tasklr/internal/httpserver"
	"tasklr/internal/service"
	"tasklr/pkg/log"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd runs the web server until the context is cancelled.
type ServeCmd struct {
	port int
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return []string{"server"} }
func (c *ServeCmd) Synopsis() string  { return "Run the web server" }
func (c *ServeCmd) Usage() string     { return "tasklr serve [--port N]" }
func (c *ServeCmd) NeedsAuth() bool   { return false }

func (c *ServeCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&c.port, "port", "p", 0, "listen port (overrides PORT)")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.port > 0 {
		if cfg.HTTPServer.BaseURL == localURL(cfg.HTTPServer.Port) {
			cfg.HTTPServer.BaseURL = localURL(c.port)
		}
		cfg.HTTPServer.Port = c.port
	}
	if err := cfg.ValidateServer(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	lc := log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	}
	if cfg.Debug {
		lc.Level = "debug"
	}
	logger := log.Init(lc)

	srv, err := httpserver.New(logger, httpserver.Config{Config: cfg, Version: Version})
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if err := srv.Run(ctx); err != nil {
		logger.Errorf(ctx, "server stopped: %v", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

func localURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}
