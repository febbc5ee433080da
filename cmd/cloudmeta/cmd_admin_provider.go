package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/usecase/provider"
)

type providerSpec struct {
	Name        string            `yaml:"name" json:"name"`
	Kind        string            `yaml:"kind" json:"kind"`
	Options     map[string]string `yaml:"options" json:"options"`
	Credentials map[string]string `yaml:"credentials" json:"credentials"`
}

func newCmdAdminProvider() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "provider",
		Short:              "Manage Provider resources",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("invalid command")
		},
	}
	cmd.AddCommand(
		newCmdAdminProviderList(),
		newCmdAdminProviderGet(),
		newCmdAdminProviderCreate(),
		newCmdAdminProviderUpdate(),
		newCmdAdminProviderDelete(),
		newCmdAdminProviderKinds(),
	)
	return cmd
}

// resolveProvider finds a provider by ID, then by name.
func resolveProvider(ctx context.Context, u *provider.UseCase, ref string) (*model.Provider, error) {
	out, err := u.Get(ctx, &provider.GetInput{ProviderID: ref})
	if err == nil {
		return out.Provider, nil
	}
	if !errors.Is(err, model.ErrProviderNotFound) {
		return nil, err
	}
	out, err = u.Get(ctx, &provider.GetInput{Name: ref})
	if err != nil {
		return nil, err
	}
	return out.Provider, nil
}

func newCmdAdminProviderList() *cobra.Command {
	return &cobra.Command{
		Use:                "list",
		Short:              "List providers",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := buildProviderUseCase(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			listOut, err := u.List(ctx, &provider.ListInput{})
			if err != nil {
				return err
			}
			return writeJSONLines(cmd.OutOrStdout(), listOut.Providers)
		}}
}

func newCmdAdminProviderGet() *cobra.Command {
	return &cobra.Command{Use: "get <id|name>", Short: "Get a provider", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildProviderUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		p, err := resolveProvider(ctx, u, args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), p)
	}}
}

func readProviderSpec(cmd *cobra.Command, path string) (*providerSpec, error) {
	if path == "" {
		return nil, errors.New("spec file required (-f)")
	}
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var spec providerSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

func newCmdAdminProviderCreate() *cobra.Command {
	var file string
	c := &cobra.Command{Use: "create", Short: "Create a provider (from spec file)", RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildProviderUseCase(cmd)
		if err != nil {
			return err
		}
		spec, err := readProviderSpec(cmd, file)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		out, err := u.Create(ctx, &provider.CreateInput{
			Name:        spec.Name,
			Kind:        spec.Kind,
			Options:     spec.Options,
			Credentials: spec.Credentials,
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), out.Provider)
	}}
	c.Flags().StringVarP(&file, "file", "f", "", "Path to provider spec (YAML), or '-' for stdin")
	_ = c.MarkFlagRequired("file")
	return c
}

func newCmdAdminProviderUpdate() *cobra.Command {
	var file string
	c := &cobra.Command{Use: "update <id|name>", Short: "Update a provider (merge from spec)", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildProviderUseCase(cmd)
		if err != nil {
			return err
		}
		spec, err := readProviderSpec(cmd, file)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		p, err := resolveProvider(ctx, u, args[0])
		if err != nil {
			return err
		}
		var namePtr, kindPtr *string
		if spec.Name != "" {
			namePtr = &spec.Name
		}
		if spec.Kind != "" {
			kindPtr = &spec.Kind
		}
		out, err := u.Update(ctx, &provider.UpdateInput{
			ProviderID:  p.ID,
			Name:        namePtr,
			Kind:        kindPtr,
			Options:     spec.Options,
			Credentials: spec.Credentials,
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), out.Provider)
	}}
	c.Flags().StringVarP(&file, "file", "f", "", "Path to provider spec (YAML), or '-' for stdin")
	_ = c.MarkFlagRequired("file")
	return c
}

func newCmdAdminProviderDelete() *cobra.Command {
	return &cobra.Command{Use: "delete <id|name>", Short: "Delete a provider", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		u, err := buildProviderUseCase(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		p, err := resolveProvider(ctx, u, args[0])
		if errors.Is(err, model.ErrProviderNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "not found %s\n", args[0])
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := u.Delete(ctx, &provider.DeleteInput{ProviderID: p.ID}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", p.ID)
		return nil
	}}
}

func newCmdAdminProviderKinds() *cobra.Command {
	return &cobra.Command{Use: "kinds", Short: "List the provider kinds with a registered driver", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		for _, k := range providerdrv.Kinds() {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	}}
}
