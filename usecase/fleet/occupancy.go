package fleet

import (
	"context"
	"fmt"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/capacity"
	"github.com/kompox/cloudmeta/internal/logging"
)

// OccupancyInput selects the provider.
type OccupancyInput struct {
	Provider string `json:"provider"`
}

// OccupancyOutput lists the provider's sizes. On providers with hypervisor
// statistics every size carries its Occupancy.
type OccupancyOutput struct {
	Sizes []*model.Size `json:"sizes"`
}

// Occupancy annotates the admin driver's sizes with hypervisor occupancy.
// Eucalyptus returns its sizes as reported. Other providers without
// hypervisor statistics return ErrCapabilityUnsupported.
func (u *UseCase) Occupancy(ctx context.Context, in *OccupancyInput) (out *OccupancyOutput, err error) {
	ctx, cleanup := logging.Span(ctx, "fleet", "Occupancy")
	defer func() { cleanup(err) }()

	if in == nil {
		return nil, fmt.Errorf("%w: nil input", model.ErrProviderInvalid)
	}
	_, admin, err := u.adminDriver(ctx, in.Provider)
	if err != nil {
		return nil, err
	}

	hs, ok := admin.(providerdrv.HypervisorStatser)
	if !ok {
		if admin.Kind() != model.ProviderKindEucalyptus {
			return nil, fmt.Errorf("%w: occupancy on %s", model.ErrCapabilityUnsupported, admin.Kind())
		}
		sizes, err := admin.ListSizes(ctx)
		if err != nil {
			return nil, err
		}
		return &OccupancyOutput{Sizes: sizes}, nil
	}

	stats, err := hs.HypervisorStatistics(ctx)
	if err != nil {
		return nil, err
	}
	sizes, err := admin.ListSizes(ctx)
	if err != nil {
		return nil, err
	}
	capacity.Annotate(ctx, sizes, stats, u.CPUResolver)
	u.Metrics.SetOccupancy(in.Provider, sizes)
	return &OccupancyOutput{Sizes: sizes}, nil
}
