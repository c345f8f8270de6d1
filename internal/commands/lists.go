package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"tasklr/internal/config"
	"tasklr/internal/exitcode"
	"tasklr/internal/output"
	"tasklr/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd prints every task list of the account.
type ListsCmd struct {
	showIDs bool
}

// SetShowIDs sets whether list IDs are printed (for testing).
func (c *ListsCmd) SetShowIDs(v bool) {
	c.showIDs = v
}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return []string{"ls"} }
func (c *ListsCmd) Synopsis() string  { return "Print all task lists" }
func (c *ListsCmd) Usage() string     { return "tasklr lists [--ids]" }
func (c *ListsCmd) NeedsAuth() bool   { return true }

func (c *ListsCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.showIDs, "ids", false, "also print list IDs")
}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	lists, err := svc.ListLists(ctx)
	if err != nil {
		return reportBackendError(errOut, err)
	}

	for _, list := range lists {
		output.FormatListName(out, list, c.showIDs)
	}
	return exitcode.Success
}
