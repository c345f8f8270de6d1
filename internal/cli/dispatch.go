// Package cli mounts the command registry on a cobra root command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"tasklr/internal/backend/googletasks"
	"tasklr/internal/commands"
	"tasklr/internal/config"
	"tasklr/internal/exitcode"
	"tasklr/internal/service"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a dispatcher for the commands in registry. A nil
// factory uses the Google Tasks backend with the stored CLI credentials.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// globalFlags are accepted by every command.
type globalFlags struct {
	configDir string
	quiet     bool
	debug     bool
}

// exitError carries a non-zero exit code through cobra.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// Run parses arguments and dispatches to the matching command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	root := d.Root(out, errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitcode.Success
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Unknown commands, unknown flags and bad flag values.
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.UserError
}

// Root builds the cobra command tree. Every call returns a fresh tree, so
// flag values never leak between runs.
func (d *Dispatcher) Root(out, errOut io.Writer) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "tasklr",
		Short:         "Google Tasks web proxy and command line client",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config", "", "configuration directory (default $XDG_CONFIG_HOME/tasklr)")
	pf.BoolVarP(&flags.quiet, "quiet", "q", false, "suppress informational output")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")

	for _, cmd := range d.registry.All() {
		root.AddCommand(d.subcommand(cmd, &flags, out, errOut))
	}
	return root
}

func (d *Dispatcher) subcommand(cmd commands.Command, flags *globalFlags, out, errOut io.Writer) *cobra.Command {
	cc := &cobra.Command{
		Use:     cmd.Name(),
		Aliases: cmd.Aliases(),
		Short:   cmd.Synopsis(),
		Example: "  " + cmd.Usage(),
		RunE: func(cc *cobra.Command, args []string) error {
			if code := d.dispatch(cc.Context(), cmd, flags, args, out, errOut); code != exitcode.Success {
				return &exitError{code: code}
			}
			return nil
		},
	}
	cmd.RegisterFlags(cc.Flags())
	return cc
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd commands.Command, flags *globalFlags, args []string, out, errOut io.Writer) int {
	cfg, err := config.Load(flags.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	cfg.Quiet = flags.quiet
	cfg.Debug = flags.debug

	var svc service.Service
	if cmd.NeedsAuth() {
		var code int
		if svc, code = d.service(ctx, cfg, errOut); code != exitcode.Success {
			return code
		}
	}

	return cmd.Run(ctx, cfg, svc, args, out, errOut)
}

func (d *Dispatcher) service(ctx context.Context, cfg *config.Config, errOut io.Writer) (service.Service, int) {
	factory := d.factory
	if factory == nil {
		// Report missing credential files before the backend does.
		if !cfg.HasOAuthClient() {
			fmt.Fprintf(errOut, "error: %s not found in %s\n", config.OAuthClientFile, cfg.Dir)
			return nil, exitcode.AuthError
		}
		if !cfg.HasToken() {
			fmt.Fprintln(errOut, "error: not logged in (run: tasklr login)")
			return nil, exitcode.AuthError
		}
		factory = func(ctx context.Context, cfg *config.Config) (service.Service, error) {
			return googletasks.NewFromFiles(ctx, cfg)
		}
	}

	svc, err := factory(ctx, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || service.IsAuthFailure(err) {
			fmt.Fprintf(errOut, "error: auth error: %s\n", err)
			return nil, exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return nil, exitcode.BackendError
	}
	return svc, exitcode.Success
}
