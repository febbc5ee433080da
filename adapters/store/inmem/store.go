package inmem

import (
	"context"

	"github.com/kompox/cloudmeta/config/cloudmetacfg"
	"github.com/kompox/cloudmeta/domain"
	"github.com/kompox/cloudmeta/domain/model"
)

// Store provides a unified interface for all in-memory repositories.
type Store struct {
	ProviderRepo  *ProviderRepository
	OperationRepo *OperationRepository
}

// NewStore creates a new in-memory store with all repositories.
func NewStore() *Store {
	return &Store{
		ProviderRepo:  NewProviderRepository(),
		OperationRepo: NewOperationRepository(),
	}
}

// Repositories exposes the store through the domain ports.
func (s *Store) Repositories() *domain.Repositories {
	return &domain.Repositories{Provider: s.ProviderRepo, Operation: s.OperationRepo}
}

// LoadFromConfig loads the providers of a cloudmeta.yml configuration into the store
// and returns the admin settings it carries.
func (s *Store) LoadFromConfig(ctx context.Context, cfg *cloudmetacfg.Root) (*model.AdminSettings, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	providers, admin, err := cfg.ToModels()
	if err != nil {
		return nil, err
	}
	for _, p := range providers {
		if err := s.ProviderRepo.Create(ctx, p); err != nil {
			return nil, err
		}
	}
	return admin, nil
}

// LoadFromFile loads a cloudmeta.yml file into the store.
// lookup, when non-nil, overrides admin credentials from the environment.
func (s *Store) LoadFromFile(ctx context.Context, path string, lookup func(string) (string, bool)) (*model.AdminSettings, error) {
	cfg, err := cloudmetacfg.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(lookup)
	return s.LoadFromConfig(ctx, cfg)
}
