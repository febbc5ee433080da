package domain

import (
	"context"

	"github.com/kompox/cloudmeta/domain/model"
)

// ProviderRepository stores and retrieves configured providers.
type ProviderRepository interface {
	Create(ctx context.Context, p *model.Provider) error
	Get(ctx context.Context, id string) (*model.Provider, error)
	GetByName(ctx context.Context, name string) (*model.Provider, error)
	List(ctx context.Context) ([]*model.Provider, error)
	Update(ctx context.Context, p *model.Provider) error
	Delete(ctx context.Context, id string) error
}

// OperationRepository stores the journal of bulk fleet operations.
type OperationRepository interface {
	Create(ctx context.Context, op *model.Operation) error
	Get(ctx context.Context, id string) (*model.Operation, error)
	List(ctx context.Context) ([]*model.Operation, error)
	Update(ctx context.Context, op *model.Operation) error
}

// Repositories groups the repositories built from a db-url.
type Repositories struct {
	Provider  ProviderRepository
	Operation OperationRepository
}
