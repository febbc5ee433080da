package main

import (
	"github.com/spf13/cobra"

	"github.com/kompox/cloudmeta/usecase/fleet"
)

func newCmdOps() *cobra.Command {
	c := &cobra.Command{
		Use:   "ops",
		Short: "Inspect and retry recorded bulk operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(newCmdOpsList(), newCmdOpsGet(), newCmdOpsRetry())
	return c
}

func newCmdOpsList() *cobra.Command {
	var providerName string
	c := &cobra.Command{
		Use:   "list",
		Short: "List recorded operations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := buildFleetUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			out, err := u.Operations(ctx, &fleet.OperationsInput{Provider: providerName})
			if err != nil {
				return err
			}
			return writeJSONLines(cmd.OutOrStdout(), out.Operations)
		},
	}
	c.Flags().StringVarP(&providerName, "provider", "p", "", "Only operations of this provider")
	return c
}

func newCmdOpsGet() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a recorded operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := buildFleetUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			out, err := u.Operation(ctx, &fleet.OperationInput{ID: args[0]})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out.Operation)
		},
	}
}

func newCmdOpsRetry() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>",
		Short: "Re-run the failed items of a recorded operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			u, err := buildFleetUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			ctx, cleanup := withCmdRunLogger(ctx, "ops.retry", "")
			defer func() { cleanup(err) }()
			out, err := u.Retry(ctx, &fleet.RetryInput{OperationID: args[0]})
			return reportOperation(cmd, out, err)
		},
	}
}
