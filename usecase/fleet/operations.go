package fleet

import (
	"context"
	"fmt"
	"sort"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/logging"
)

// OperationsInput optionally narrows the listing to one provider.
type OperationsInput struct {
	Provider string `json:"provider,omitempty"`
}

// OperationsOutput lists recorded operations, newest first.
type OperationsOutput struct {
	Operations []*model.Operation `json:"operations"`
}

// Operations lists recorded bulk operations.
func (u *UseCase) Operations(ctx context.Context, in *OperationsInput) (*OperationsOutput, error) {
	ops, err := u.Repos.Operation.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Operation, 0, len(ops))
	for _, op := range ops {
		if in != nil && in.Provider != "" && op.Provider != in.Provider {
			continue
		}
		out = append(out, op)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return &OperationsOutput{Operations: out}, nil
}

// OperationInput identifies a recorded operation.
type OperationInput struct {
	ID string `json:"id"`
}

// OperationOutput wraps the recorded operation.
type OperationOutput struct {
	Operation *model.Operation `json:"operation"`
}

// Operation fetches a recorded operation.
func (u *UseCase) Operation(ctx context.Context, in *OperationInput) (*OperationOutput, error) {
	if in == nil || in.ID == "" {
		return nil, model.ErrOperationInvalid
	}
	op, err := u.Repos.Operation.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return &OperationOutput{Operation: op}, nil
}

// RetryInput identifies the operation whose failed items are re-run.
type RetryInput struct {
	OperationID string `json:"operation_id"`
}

// Retry re-runs the failed items of a recorded operation with the same action.
// The result is recorded as a new operation referring to the original.
func (u *UseCase) Retry(ctx context.Context, in *RetryInput) (out *StopAllOutput, err error) {
	ctx, cleanup := logging.Span(ctx, "fleet", "Retry")
	defer func() { cleanup(err) }()

	if in == nil || in.OperationID == "" {
		return nil, model.ErrOperationInvalid
	}
	prev, err := u.Repos.Operation.Get(ctx, in.OperationID)
	if err != nil {
		return nil, err
	}
	failed := prev.Failed()
	if len(failed) == 0 {
		return nil, fmt.Errorf("%w: operation %s has no failed items", model.ErrOperationInvalid, prev.ID)
	}
	_, admin, err := u.adminDriver(ctx, prev.Provider)
	if err != nil {
		return nil, err
	}

	op := u.newOperation(prev.Provider, prev.Action, prev.ID)
	r := &runner{u: u, admin: admin, op: op}
	am, _ := admin.(providerdrv.AccountManager)

	var tasks []task
	relistGroups := false
	for _, it := range failed {
		switch {
		case it.Kind == model.ItemKindInstance:
			tasks = append(tasks, r.instanceTask(it.ID, it.Name))
		case it.Kind == model.ItemKindNetwork && am == nil:
			r.record(it, fmt.Errorf("%w: account management on %s", model.ErrCapabilityUnsupported, admin.Kind()))
		case it.Kind == model.ItemKindNetwork && it.ID == allGroupsID:
			relistGroups = true
		case it.Kind == model.ItemKindNetwork:
			tasks = append(tasks, r.networkTask(am, it.Name, it.ID))
		}
	}
	r.run(ctx, tasks)
	if relistGroups {
		r.deleteTenantNetworks(ctx)
	}

	out = &StopAllOutput{Operation: op}
	if err := u.finish(ctx, op); err != nil {
		return out, err
	}
	return out, nil
}

// MetasInput names providers whose caller meta is registered before the
// snapshot is taken. An empty list only reports what already exists.
type MetasInput struct {
	Providers []string `json:"providers,omitempty"`
}

// MetasOutput lists the metas created during this process.
type MetasOutput struct {
	Metas []providerdrv.MetaInfo `json:"metas"`
}

// Metas returns a snapshot of the meta registry.
func (u *UseCase) Metas(ctx context.Context, in *MetasInput) (*MetasOutput, error) {
	if in != nil {
		for _, name := range in.Providers {
			d, err := u.Connector.Open(ctx, name)
			if err != nil {
				return nil, err
			}
			if _, err := u.Registry.Get(ctx, d); err != nil {
				return nil, err
			}
		}
	}
	ms := u.Registry.Metas()
	out := &MetasOutput{Metas: make([]providerdrv.MetaInfo, 0, len(ms))}
	for _, m := range ms {
		out.Metas = append(out.Metas, m.Info())
	}
	return out, nil
}
