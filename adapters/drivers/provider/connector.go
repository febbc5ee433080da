package providerdrv

import (
	"context"
	"fmt"

	"github.com/kompox/cloudmeta/domain"
	"github.com/kompox/cloudmeta/domain/model"
)

// Connector opens caller drivers for providers stored in a repository.
type Connector struct {
	Providers domain.ProviderRepository
}

// Open looks up the provider by name and opens its driver with the provider's
// own credentials.
func (c *Connector) Open(ctx context.Context, name string) (Driver, error) {
	p, err := c.Providers.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("provider %q: %w", name, err)
	}
	v, err := Lookup(p.Kind)
	if err != nil {
		return nil, err
	}
	id := ResolveCredentials(p.Credentials, model.AdminCredentials{}).Identity(p.Name)
	d, err := v.Open(ctx, p, id)
	if err != nil {
		return nil, fmt.Errorf("open %s driver for %q: %w", p.Kind, name, err)
	}
	return d, nil
}
