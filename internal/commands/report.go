package commands

import (
	"context"
	"fmt"
	"io"

	"tasklr/internal/aggregate"
	"tasklr/internal/config"
	"tasklr/internal/exitcode"
	"tasklr/internal/service"
	"tasklr/pkg/log"
)

// reportBackendError prints err and returns the matching exit code.
func reportBackendError(errOut io.Writer, err error) int {
	if service.IsAuthFailure(err) {
		fmt.Fprintf(errOut, "error: auth error: %v (run: tasklr login)\n", err)
		return exitcode.AuthError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// cliLogger logs to stderr at warn level, or debug with --debug.
func cliLogger(cfg *config.Config) log.Logger {
	level := "warn"
	switch {
	case cfg.Debug:
		level = "debug"
	case cfg.Quiet:
		level = "error"
	}
	return log.Init(log.ZapConfig{Level: level, Encoding: "console"})
}

func newAggregator(cfg *config.Config, lenient bool) *aggregate.Aggregator {
	a := cfg.Aggregate
	return aggregate.New(cliLogger(cfg),
		aggregate.WithPageSize(a.PageSize),
		aggregate.WithMaxPages(a.MaxPages),
		aggregate.WithConcurrency(a.Concurrency),
		aggregate.WithLenientExport(a.LenientExport || lenient),
	)
}

// knownLists serves an already fetched list of task lists so that a command
// printing titles does not fetch them twice.
type knownLists struct {
	aggregate.Pager
	lists []service.TaskList
}

func (k knownLists) ListLists(context.Context) ([]service.TaskList, error) {
	return k.lists, nil
}
