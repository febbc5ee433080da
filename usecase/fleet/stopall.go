package fleet

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/logging"
)

// allGroupsID is the network item recorded when the user groups could not be
// listed. Retrying it lists the groups again.
const allGroupsID = "*"

// StopAllInput selects the provider. Destroy terminates every instance instead
// of stopping the active ones and then deletes every user's tenant network.
type StopAllInput struct {
	Provider string `json:"provider"`
	Destroy  bool   `json:"destroy"`
}

// StopAllOutput carries the recorded operation.
type StopAllOutput struct {
	Operation *model.Operation `json:"operation"`
}

// StopAll stops (or destroys) every instance of the provider. Item failures
// are recorded and do not stop the run. The operation is persisted; when that
// fails the output still carries it along with the error.
func (u *UseCase) StopAll(ctx context.Context, in *StopAllInput) (out *StopAllOutput, err error) {
	ctx, cleanup := logging.Span(ctx, "fleet", "StopAll")
	defer func() { cleanup(err) }()

	if in == nil {
		return nil, fmt.Errorf("%w: nil input", model.ErrProviderInvalid)
	}
	_, admin, err := u.adminDriver(ctx, in.Provider)
	if err != nil {
		return nil, err
	}
	insts, err := listAllInstances(ctx, admin, model.InstanceListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing instances: %w", err)
	}

	action := model.OperationActionStop
	if in.Destroy {
		action = model.OperationActionDestroy
	}
	op := u.newOperation(in.Provider, action, "")
	r := &runner{u: u, admin: admin, op: op}

	var tasks []task
	for _, inst := range insts {
		if action == model.OperationActionStop && !inst.Active() {
			r.record(model.OperationItem{Kind: model.ItemKindInstance, ID: inst.ID, Name: inst.Name, Outcome: model.ItemSkipped}, nil)
			continue
		}
		tasks = append(tasks, r.instanceTask(inst.ID, inst.Name))
	}
	r.run(ctx, tasks)
	if in.Destroy {
		r.deleteTenantNetworks(ctx)
	}

	out = &StopAllOutput{Operation: op}
	if err := u.finish(ctx, op); err != nil {
		return out, err
	}
	return out, nil
}

// DestroyAllInput selects the provider.
type DestroyAllInput struct {
	Provider string `json:"provider"`
}

// DestroyAll is StopAll with Destroy set.
func (u *UseCase) DestroyAll(ctx context.Context, in *DestroyAllInput) (*StopAllOutput, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: nil input", model.ErrProviderInvalid)
	}
	return u.StopAll(ctx, &StopAllInput{Provider: in.Provider, Destroy: true})
}

func (u *UseCase) newOperation(provider string, action model.OperationAction, retryOf string) *model.Operation {
	now := u.now()
	return &model.Operation{
		ID:        "op-" + uuid.NewString(),
		Provider:  provider,
		Action:    action,
		RetryOf:   retryOf,
		Items:     []model.OperationItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// finish summarizes and persists op. The record is written even when ctx is
// done so that the items of a cancelled run can be retried.
func (u *UseCase) finish(ctx context.Context, op *model.Operation) error {
	op.Summarize()
	op.UpdatedAt = u.now()
	u.Metrics.ObserveOperation(op.Provider, op.Action, op.UpdatedAt.Sub(op.CreatedAt))

	logger := logging.FromContext(ctx)
	logger.Info(ctx, "operation finished", "id", op.ID, "provider", op.Provider, "action", op.Action,
		"status", op.Status, "items", len(op.Items), "failed", len(op.Failed()))
	if err := u.Repos.Operation.Create(context.WithoutCancel(ctx), op); err != nil {
		logger.Error(ctx, "failed to record operation", "id", op.ID, "err", err)
		return fmt.Errorf("recording operation %s: %w", op.ID, err)
	}
	return nil
}

type task struct {
	item model.OperationItem
	fn   func(ctx context.Context) error
}

// runner executes tasks against the admin driver and records their outcomes.
type runner struct {
	u     *UseCase
	admin providerdrv.Driver
	op    *model.Operation
}

func (r *runner) instanceTask(id, name string) task {
	inst := &model.Instance{ID: id, Name: name}
	fn := func(ctx context.Context) error { return r.admin.StopInstance(ctx, inst) }
	if r.op.Action == model.OperationActionDestroy {
		fn = func(ctx context.Context) error { return r.admin.DestroyInstance(ctx, inst) }
	}
	return task{item: model.OperationItem{Kind: model.ItemKindInstance, ID: id, Name: name}, fn: fn}
}

// networkTask deletes the tenant network of user in tenant. The item ID is the
// tenant and the item name the user.
func (r *runner) networkTask(am providerdrv.AccountManager, user, tenant string) task {
	return task{
		item: model.OperationItem{Kind: model.ItemKindNetwork, ID: tenant, Name: user},
		fn:   func(ctx context.Context) error { return am.DeleteTenantNetwork(ctx, user, tenant) },
	}
}

// run executes tasks in order. Once ctx is done the remaining tasks are
// recorded as failed with the context error.
func (r *runner) run(ctx context.Context, tasks []task) {
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			r.record(t.item, err)
			continue
		}
		r.record(t.item, t.fn(ctx))
	}
}

func (r *runner) record(it model.OperationItem, err error) {
	switch {
	case err != nil:
		it.Outcome = model.ItemFailed
		it.Error = err.Error()
		if ec, ok := r.admin.(providerdrv.ErrorCoder); ok {
			it.Code = ec.ErrorCode(err)
		}
	case it.Outcome == "":
		it.Outcome = model.ItemSucceeded
	}
	r.op.Items = append(r.op.Items, it)
	r.u.Metrics.IncFleetItem(r.op.Provider, r.op.Action, it.Outcome)
}

// deleteTenantNetworks deletes the tenant network of every user group when
// the admin driver manages accounts. The tenant name is the group name.
func (r *runner) deleteTenantNetworks(ctx context.Context) {
	am, ok := r.admin.(providerdrv.AccountManager)
	if !ok {
		return
	}
	if err := ctx.Err(); err != nil {
		r.record(model.OperationItem{Kind: model.ItemKindNetwork, ID: allGroupsID}, err)
		return
	}
	names, err := am.ListUserGroupNames(ctx)
	if err != nil {
		r.record(model.OperationItem{Kind: model.ItemKindNetwork, ID: allGroupsID}, fmt.Errorf("listing user groups: %w", err))
		return
	}
	tasks := make([]task, 0, len(names))
	for _, name := range names {
		tasks = append(tasks, r.networkTask(am, name, name))
	}
	r.run(ctx, tasks)
}
