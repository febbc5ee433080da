package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kompox/cloudmeta/domain"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/naming"
)

// ProviderRepository is a thread-safe in-memory implementation.
type ProviderRepository struct {
	mu    sync.RWMutex
	items map[string]*model.Provider
}

func NewProviderRepository() *ProviderRepository {
	return &ProviderRepository{items: make(map[string]*model.Provider)}
}

func cloneProvider(p *model.Provider) *model.Provider {
	cp := *p
	cp.Options = cloneMap(p.Options)
	cp.Credentials = cloneMap(p.Credentials)
	return &cp
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (r *ProviderRepository) Create(_ context.Context, p *model.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		id, err := naming.NewCompactID(time.Now())
		if err != nil {
			return fmt.Errorf("generate provider id: %w", err)
		}
		p.ID = "prov-" + id
	}
	for _, v := range r.items {
		if v.Name == p.Name && v.ID != p.ID {
			return fmt.Errorf("%w: provider %q already exists", model.ErrProviderInvalid, p.Name)
		}
	}
	r.items[p.ID] = cloneProvider(p)
	return nil
}

func (r *ProviderRepository) Get(_ context.Context, id string) (*model.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[id]
	if !ok {
		return nil, model.ErrProviderNotFound
	}
	return cloneProvider(v), nil
}

func (r *ProviderRepository) GetByName(_ context.Context, name string) (*model.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.items {
		if v.Name == name {
			return cloneProvider(v), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", model.ErrProviderNotFound, name)
}

func (r *ProviderRepository) List(_ context.Context) ([]*model.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Provider, 0, len(r.items))
	for _, v := range r.items {
		out = append(out, cloneProvider(v))
	}
	return out, nil
}

func (r *ProviderRepository) Update(_ context.Context, p *model.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return model.ErrProviderNotFound
	}
	r.items[p.ID] = cloneProvider(p)
	return nil
}

func (r *ProviderRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return model.ErrProviderNotFound
	}
	delete(r.items, id)
	return nil
}

var _ domain.ProviderRepository = (*ProviderRepository)(nil)
