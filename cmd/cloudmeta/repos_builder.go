package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kompox/cloudmeta/adapters/store/inmem"
	"github.com/kompox/cloudmeta/adapters/store/rdb"
	"github.com/kompox/cloudmeta/config/cloudmetacfg"
	"github.com/kompox/cloudmeta/domain"
	"github.com/kompox/cloudmeta/domain/model"
)

// getDBURL extracts the db-url flag value from command hierarchy.
func getDBURL(cmd *cobra.Command) string {
	f := findFlag(cmd, "db-url")
	if f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return "file:cloudmeta.yml"
}

// buildRepos creates repositories and admin settings based on db-url.
//
// With file: the YAML file is loaded into an in-memory store; its admin section
// provides the admin settings and operations are kept only for this process.
// With sqlite: the database holds providers and operations; admin settings come
// from --config when set. Environment variables override both.
func buildRepos(cmd *cobra.Command) (*domain.Repositories, *model.AdminSettings, error) {
	st := cliStateFrom(cmd.Context())
	if st != nil && st.repos != nil {
		return st.repos, st.admin, nil
	}

	repos, admin, err := openRepos(cmd)
	if err != nil {
		return nil, nil, err
	}
	if st != nil {
		st.repos, st.admin = repos, admin
	}
	return repos, admin, nil
}

func openRepos(cmd *cobra.Command) (*domain.Repositories, *model.AdminSettings, error) {
	dbURL := getDBURL(cmd)
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	switch {
	case strings.HasPrefix(dbURL, "file:"):
		filePath := strings.TrimPrefix(dbURL, "file:")
		if filePath == "" {
			return nil, nil, fmt.Errorf("file path is required for file: URL")
		}
		store := inmem.NewStore()
		admin, err := store.LoadFromFile(ctx, filePath, os.LookupEnv)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config from %s: %w", filePath, err)
		}
		return store.Repositories(), admin, nil

	case strings.HasPrefix(dbURL, "sqlite:") || strings.HasPrefix(dbURL, "sqlite3:"):
		repos, err := rdb.NewRepositories(dbURL)
		if err != nil {
			return nil, nil, err
		}
		admin, err := loadAdminSettings(cmd)
		if err != nil {
			return nil, nil, err
		}
		return repos, admin, nil

	default:
		return nil, nil, fmt.Errorf("unsupported db scheme: %s", dbURL)
	}
}

// loadAdminSettings reads the admin section of --config, if any, and applies
// the environment overrides.
func loadAdminSettings(cmd *cobra.Command) (*model.AdminSettings, error) {
	cfg := &cloudmetacfg.Root{}
	if f := findFlag(cmd, "config"); f != nil && f.Value.String() != "" {
		loaded, err := cloudmetacfg.Load(f.Value.String())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg.AdminSettings(), nil
}
