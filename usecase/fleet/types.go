// Package fleet implements the administrative operations run across every
// tenant of a provider with its admin driver.
package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/capacity"
	"github.com/kompox/cloudmeta/internal/metrics"
)

// DriverOpener opens the caller's driver for a named provider.
type DriverOpener interface {
	Open(ctx context.Context, provider string) (providerdrv.Driver, error)
}

// Repos holds repositories needed for fleet use cases.
type Repos struct {
	Operation domain.OperationRepository
}

// UseCase wires the driver connector, the meta registry and the operation
// journal. Clock, Metrics and CPUResolver are optional.
type UseCase struct {
	Connector   DriverOpener
	Registry    *providerdrv.MetaRegistry
	Repos       *Repos
	Clock       clock.Clock
	Metrics     *metrics.Recorder
	CPUResolver capacity.CPUResolver
}

func (u *UseCase) now() time.Time {
	if u.Clock == nil {
		return clock.WallClock.Now().UTC()
	}
	return u.Clock.Now().UTC()
}

// adminDriver opens the caller's driver for provider and returns its meta and
// the meta's admin driver.
func (u *UseCase) adminDriver(ctx context.Context, provider string) (*providerdrv.Meta, providerdrv.Driver, error) {
	if provider == "" {
		return nil, nil, fmt.Errorf("%w: provider name required", model.ErrProviderInvalid)
	}
	d, err := u.Connector.Open(ctx, provider)
	if err != nil {
		return nil, nil, err
	}
	m, err := u.Registry.Get(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	admin, err := m.AdminDriver(ctx)
	if err != nil {
		return nil, nil, err
	}
	return m, admin, nil
}
