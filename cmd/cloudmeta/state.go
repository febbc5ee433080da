package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/logging"
	"github.com/kompox/cloudmeta/internal/metrics"
)

// cliState is the per-invocation state shared by the use case builders.
// The repositories and the meta registry are built at most once.
type cliState struct {
	logFile  *logging.LogFile
	metrics  *metrics.Recorder
	repos    *domain.Repositories
	admin    *model.AdminSettings
	registry *providerdrv.MetaRegistry
}

type cliStateKey struct{}

func newCLIState(lf *logging.LogFile) *cliState {
	return &cliState{logFile: lf, metrics: metrics.NewRecorder()}
}

func withCLIState(ctx context.Context, st *cliState) context.Context {
	return context.WithValue(ctx, cliStateKey{}, st)
}

func cliStateFrom(ctx context.Context) *cliState {
	if ctx == nil {
		return nil
	}
	st, _ := ctx.Value(cliStateKey{}).(*cliState)
	return st
}

func (s *cliState) close() {
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}

// findFlag looks a flag up on cmd and its parents.
func findFlag(cmd *cobra.Command, name string) *pflag.Flag {
	for c := cmd; c != nil; c = c.Parent() {
		if f := c.Flags().Lookup(name); f != nil {
			return f
		}
		if f := c.PersistentFlags().Lookup(name); f != nil {
			return f
		}
	}
	return nil
}
