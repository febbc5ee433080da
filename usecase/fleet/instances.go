package fleet

import (
	"context"
	"fmt"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/logging"
)

// AllInstancesInput selects the provider and optional filters (project_id,
// tenant_id, status, name, flavor, image).
type AllInstancesInput struct {
	Provider string            `json:"provider"`
	Filter   map[string]string `json:"filter,omitempty"`
}

// AllInstancesOutput lists every instance visible to the admin driver.
type AllInstancesOutput struct {
	Instances []*model.Instance `json:"instances"`
}

// AllInstances lists instances across all tenants. Drivers that cannot list
// across tenants fall back to their own listing, filtered locally.
func (u *UseCase) AllInstances(ctx context.Context, in *AllInstancesInput) (out *AllInstancesOutput, err error) {
	ctx, cleanup := logging.Span(ctx, "fleet", "AllInstances")
	defer func() { cleanup(err) }()

	if in == nil {
		return nil, fmt.Errorf("%w: nil input", model.ErrProviderInvalid)
	}
	opts := model.InstanceListOptions{Filter: in.Filter}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	_, admin, err := u.adminDriver(ctx, in.Provider)
	if err != nil {
		return nil, err
	}
	insts, err := listAllInstances(ctx, admin, opts)
	if err != nil {
		return nil, err
	}
	return &AllInstancesOutput{Instances: insts}, nil
}

func listAllInstances(ctx context.Context, admin providerdrv.Driver, opts model.InstanceListOptions) ([]*model.Instance, error) {
	if l, ok := admin.(providerdrv.AllTenantsLister); ok {
		var lo []model.InstanceListOption
		for k, v := range opts.Filter {
			lo = append(lo, model.WithInstanceListFilter(k, v))
		}
		return l.ListAllInstances(ctx, lo...)
	}
	insts, err := admin.ListInstances(ctx)
	if err != nil {
		return nil, err
	}
	if len(opts.Filter) == 0 {
		return insts, nil
	}
	out := insts[:0]
	for _, i := range insts {
		if opts.Match(i) {
			out = append(out, i)
		}
	}
	return out, nil
}

// AllVolumesInput selects the provider.
type AllVolumesInput struct {
	Provider string `json:"provider"`
}

// AllVolumesOutput lists every volume visible to the admin driver.
type AllVolumesOutput struct {
	Volumes []*model.Volume `json:"volumes"`
}

// AllVolumes lists volumes across all tenants where the driver supports it.
func (u *UseCase) AllVolumes(ctx context.Context, in *AllVolumesInput) (out *AllVolumesOutput, err error) {
	ctx, cleanup := logging.Span(ctx, "fleet", "AllVolumes")
	defer func() { cleanup(err) }()

	if in == nil {
		return nil, fmt.Errorf("%w: nil input", model.ErrProviderInvalid)
	}
	_, admin, err := u.adminDriver(ctx, in.Provider)
	if err != nil {
		return nil, err
	}
	var vols []*model.Volume
	if l, ok := admin.(providerdrv.AllTenantsLister); ok {
		vols, err = l.ListAllVolumes(ctx)
	} else {
		vols, err = admin.ListVolumes(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &AllVolumesOutput{Volumes: vols}, nil
}
