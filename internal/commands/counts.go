package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"tasklr/internal/config"
	"tasklr/internal/exitcode"
	"tasklr/internal/output"
	"tasklr/internal/service"
)

func init() {
	Register(&CountsCmd{})
}

// CountsCmd prints the number of incomplete tasks of every list.
type CountsCmd struct {
	asJSON bool
}

func (c *CountsCmd) Name() string      { return "counts" }
func (c *CountsCmd) Aliases() []string { return nil }
func (c *CountsCmd) Synopsis() string  { return "Count incomplete tasks per list" }
func (c *CountsCmd) Usage() string     { return "tasklr counts [--json]" }
func (c *CountsCmd) NeedsAuth() bool   { return true }

func (c *CountsCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.asJSON, "json", false, "print the counts as a JSON object keyed by list ID")
}

func (c *CountsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	lists, err := svc.ListLists(ctx)
	if err != nil {
		return reportBackendError(errOut, err)
	}

	counts, err := newAggregator(cfg, false).CountIncompleteByList(ctx, knownLists{Pager: svc, lists: lists})
	if err != nil {
		return reportBackendError(errOut, err)
	}

	if c.asJSON {
		data, err := json.Marshal(counts)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		fmt.Fprintln(out, string(data))
		return exitcode.Success
	}

	for _, list := range lists {
		output.FormatCount(out, counts[list.ID], list.Title)
	}
	return exitcode.Success
}
