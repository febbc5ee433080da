package main

import (
	"github.com/spf13/cobra"

	"github.com/kompox/cloudmeta/usecase/fleet"
)

func newCmdImage() *cobra.Command {
	c := &cobra.Command{
		Use:   "image",
		Short: "Manage machine image metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	deployed := &cobra.Command{
		Use:   "deployed",
		Short: "Manage the deployed marker of an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	deployed.AddCommand(newCmdImageDeployed("add", true), newCmdImageDeployed("remove", false))
	c.AddCommand(deployed)
	return c
}

func newCmdImageDeployed(use string, add bool) *cobra.Command {
	var providerName string
	short := "Mark an image as deployed"
	if !add {
		short = "Remove the deployed marker from an image"
	}
	c := &cobra.Command{
		Use:   use + " <machine-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, err := buildFleetUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			ctx, cleanup := withCmdRunLogger(ctx, "image.deployed."+use, providerName)
			defer func() { cleanup(err) }()
			in := &fleet.MetadataDeployedInput{Provider: providerName, MachineID: args[0]}
			var out *fleet.MetadataDeployedOutput
			if add {
				out, err = u.AddMetadataDeployed(ctx, in)
			} else {
				out, err = u.RemoveMetadataDeployed(ctx, in)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	addProviderFlag(c, &providerName)
	return c
}
