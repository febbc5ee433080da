package main

import (
	"github.com/juju/clock"
	"github.com/spf13/cobra"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/internal/metrics"
	"github.com/kompox/cloudmeta/usecase/fleet"
	"github.com/kompox/cloudmeta/usecase/provider"
)

// buildProviderUseCase creates provider use case with required repositories.
func buildProviderUseCase(cmd *cobra.Command) (*provider.UseCase, error) {
	repos, _, err := buildRepos(cmd)
	if err != nil {
		return nil, err
	}
	return &provider.UseCase{Repos: &provider.Repos{Provider: repos.Provider}}, nil
}

// buildFleetUseCase creates the fleet use case with the connector, the meta
// registry and the operation journal.
func buildFleetUseCase(cmd *cobra.Command) (*fleet.UseCase, error) {
	repos, admin, err := buildRepos(cmd)
	if err != nil {
		return nil, err
	}
	var rec *metrics.Recorder
	st := cliStateFrom(cmd.Context())
	if st != nil {
		rec = st.metrics
	}
	var registry *providerdrv.MetaRegistry
	if st != nil && st.registry != nil {
		registry = st.registry
	} else {
		registry = providerdrv.NewMetaRegistry(admin)
		if st != nil {
			st.registry = registry
		}
	}
	return &fleet.UseCase{
		Connector: &providerdrv.Connector{Providers: repos.Provider},
		Registry:  registry,
		Repos:     &fleet.Repos{Operation: repos.Operation},
		Clock:     clock.WallClock,
		Metrics:   rec,
	}, nil
}
