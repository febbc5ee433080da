package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/usecase/fleet"
)

// addProviderFlag registers the required --provider flag.
func addProviderFlag(c *cobra.Command, p *string) {
	c.Flags().StringVarP(p, "provider", "p", "", "Provider name")
	_ = c.MarkFlagRequired("provider")
}

func newCmdInstances() *cobra.Command {
	var (
		providerName string
		filter       map[string]string
	)
	c := &cobra.Command{
		Use:   "instances",
		Short: "List instances across all tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, err := buildFleetUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			ctx, cleanup := withCmdRunLogger(ctx, "instances", providerName)
			defer func() { cleanup(err) }()
			out, err := u.AllInstances(ctx, &fleet.AllInstancesInput{Provider: providerName, Filter: filter})
			if err != nil {
				return err
			}
			return writeJSONLines(cmd.OutOrStdout(), out.Instances)
		},
	}
	addProviderFlag(c, &providerName)
	c.Flags().StringToStringVar(&filter, "filter", nil, fmt.Sprintf("Filter key=value (keys: %v)", model.InstanceFilterKeys))
	return c
}

func newCmdVolumes() *cobra.Command {
	var providerName string
	c := &cobra.Command{
		Use:   "volumes",
		Short: "List volumes across all tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, err := buildFleetUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			ctx, cleanup := withCmdRunLogger(ctx, "volumes", providerName)
			defer func() { cleanup(err) }()
			out, err := u.AllVolumes(ctx, &fleet.AllVolumesInput{Provider: providerName})
			if err != nil {
				return err
			}
			return writeJSONLines(cmd.OutOrStdout(), out.Volumes)
		},
	}
	addProviderFlag(c, &providerName)
	return c
}

func newCmdOccupancy() *cobra.Command {
	var providerName string
	c := &cobra.Command{
		Use:   "occupancy",
		Short: "Show how many more instances of each size fit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, err := buildFleetUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			ctx, cleanup := withCmdRunLogger(ctx, "occupancy", providerName)
			defer func() { cleanup(err) }()
			out, err := u.Occupancy(ctx, &fleet.OccupancyInput{Provider: providerName})
			if err != nil {
				return err
			}
			return writeJSONLines(cmd.OutOrStdout(), out.Sizes)
		},
	}
	addProviderFlag(c, &providerName)
	return c
}

// reportOperation prints the recorded operation, even when the run returned
// an error alongside it, and turns failed items into a command error.
func reportOperation(cmd *cobra.Command, out *fleet.StopAllOutput, runErr error) error {
	if out == nil || out.Operation == nil {
		return runErr
	}
	op := out.Operation
	if err := writeJSON(cmd.OutOrStdout(), op); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if n := len(op.Failed()); n > 0 {
		return fmt.Errorf("operation %s: %d of %d items failed (retry with: cloudmeta ops retry %s)", op.ID, n, len(op.Items), op.ID)
	}
	return nil
}

func newCmdStopAll() *cobra.Command {
	var (
		providerName string
		destroy      bool
	)
	c := &cobra.Command{
		Use:   "stop-all",
		Short: "Stop every active instance of the provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, err := buildFleetUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			ctx, cleanup := withCmdRunLogger(ctx, "stop-all", providerName)
			defer func() { cleanup(err) }()
			out, err := u.StopAll(ctx, &fleet.StopAllInput{Provider: providerName, Destroy: destroy})
			return reportOperation(cmd, out, err)
		},
	}
	addProviderFlag(c, &providerName)
	c.Flags().BoolVar(&destroy, "destroy", false, "Destroy instances and delete tenant networks instead of stopping")
	return c
}

func newCmdDestroyAll() *cobra.Command {
	var providerName string
	c := &cobra.Command{
		Use:   "destroy-all",
		Short: "Destroy every instance and tenant network of the provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, err := buildFleetUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			ctx, cleanup := withCmdRunLogger(ctx, "destroy-all", providerName)
			defer func() { cleanup(err) }()
			out, err := u.DestroyAll(ctx, &fleet.DestroyAllInput{Provider: providerName})
			return reportOperation(cmd, out, err)
		},
	}
	addProviderFlag(c, &providerName)
	return c
}

func newCmdMetas() *cobra.Command {
	var providers []string
	c := &cobra.Command{
		Use:   "metas",
		Short: "Show the caller metas of providers (all configured providers by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := buildFleetUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			if len(providers) == 0 {
				repos, _, err := buildRepos(cmd)
				if err != nil {
					return err
				}
				ps, err := repos.Provider.List(ctx)
				if err != nil {
					return err
				}
				for _, p := range ps {
					providers = append(providers, p.Name)
				}
			}
			out, err := u.Metas(ctx, &fleet.MetasInput{Providers: providers})
			if err != nil {
				return err
			}
			return writeJSONLines(cmd.OutOrStdout(), out.Metas)
		},
	}
	c.Flags().StringSliceVarP(&providers, "provider", "p", nil, "Provider names")
	return c
}
