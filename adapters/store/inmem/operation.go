package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kompox/cloudmeta/domain"
	"github.com/kompox/cloudmeta/domain/model"
)

// OperationRepository keeps the operation journal in memory.
// Operations survive only for the lifetime of the process.
type OperationRepository struct {
	mu    sync.RWMutex
	items map[string]*model.Operation
}

func NewOperationRepository() *OperationRepository {
	return &OperationRepository{items: make(map[string]*model.Operation)}
}

func cloneOperation(op *model.Operation) *model.Operation {
	cp := *op
	if op.Items != nil {
		cp.Items = append([]model.OperationItem(nil), op.Items...)
	}
	return &cp
}

func (r *OperationRepository) Create(_ context.Context, op *model.Operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if op.ID == "" {
		op.ID = "op-" + uuid.NewString()
	}
	r.items[op.ID] = cloneOperation(op)
	return nil
}

func (r *OperationRepository) Get(_ context.Context, id string) (*model.Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[id]
	if !ok {
		return nil, model.ErrOperationNotFound
	}
	return cloneOperation(v), nil
}

// List returns operations ordered by creation time, oldest first.
func (r *OperationRepository) List(_ context.Context) ([]*model.Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Operation, 0, len(r.items))
	for _, v := range r.items {
		out = append(out, cloneOperation(v))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *OperationRepository) Update(_ context.Context, op *model.Operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[op.ID]; !ok {
		return model.ErrOperationNotFound
	}
	r.items[op.ID] = cloneOperation(op)
	return nil
}

var _ domain.OperationRepository = (*OperationRepository)(nil)
