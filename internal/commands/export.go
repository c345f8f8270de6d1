package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"tasklr/internal/config"
	"tasklr/internal/disposition"
	"tasklr/internal/exitcode"
	"tasklr/internal/service"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd writes every list with all of its tasks as JSON.
type ExportCmd struct {
	outPath string
	lenient bool
	now     func() time.Time
}

// SetClock overrides the clock used for the default file name (for testing).
func (c *ExportCmd) SetClock(now func() time.Time) {
	c.now = now
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return []string{"backup"} }
func (c *ExportCmd) Synopsis() string  { return "Export all lists and tasks as JSON" }
func (c *ExportCmd) Usage() string     { return "tasklr export [--out FILE|-] [--lenient]" }
func (c *ExportCmd) NeedsAuth() bool   { return true }

func (c *ExportCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.outPath, "out", "o", "", "output file, - for stdout (default tasklr-export-<timestamp>.json)")
	fs.BoolVar(&c.lenient, "lenient", false, "export unreadable lists with no tasks instead of failing")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	export, err := newAggregator(cfg, c.lenient).ExportAll(ctx, svc)
	if err != nil {
		return reportBackendError(errOut, err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	data = append(data, '\n')

	if c.outPath == "-" {
		if _, err := out.Write(data); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return exitcode.Success
	}

	path := c.outPath
	if path == "" {
		now := time.Now
		if c.now != nil {
			now = c.now
		}
		path = disposition.ExportFilename(now())
	}

	// Exports carry personal data; keep them private like token.json.
	if err := os.WriteFile(path, data, 0600); err != nil {
		fmt.Fprintf(errOut, "error: failed to write %s: %v\n", path, err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "wrote %d lists to %s\n", len(export.Lists), path)
	}
	return exitcode.Success
}
