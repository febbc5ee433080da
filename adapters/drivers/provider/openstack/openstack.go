// Package openstack implements the OpenStack and OpenStack-Valhalla provider
// drivers with gophercloud: Nova for servers, flavors and hypervisor
// statistics, Cinder for volumes, Glance for image properties, Keystone for
// projects and Neutron for tenant networks.
package openstack

import (
	"context"
	"fmt"

	"github.com/gophercloud/gophercloud/v2"
	gcopenstack "github.com/gophercloud/gophercloud/v2/openstack"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/logging"
)

// Provider option keys.
const (
	OptionAuthURL    = "auth_url"
	OptionRegion     = "region_name"
	OptionDomainName = "domain_name"
)

const defaultDomainName = "Default"

// serviceClients holds one client per OpenStack service. Only compute is
// required; the others are nil when the catalog does not offer them.
type serviceClients struct {
	compute      *gophercloud.ServiceClient
	blockStorage *gophercloud.ServiceClient
	image        *gophercloud.ServiceClient
	network      *gophercloud.ServiceClient
	identity     *gophercloud.ServiceClient
}

// newClientsFunc authenticates and builds the service clients; tests replace it.
var newClientsFunc = newClients

func newClients(ctx context.Context, p *model.Provider, id *model.Identity) (*serviceClients, error) {
	authURL := p.Option(OptionAuthURL, "")
	if authURL == "" {
		return nil, fmt.Errorf("%w: provider %q requires the %s option", model.ErrProviderInvalid, p.Name, OptionAuthURL)
	}
	opts := gophercloud.AuthOptions{
		IdentityEndpoint: authURL,
		Username:         id.Key,
		Password:         id.Secret,
		TenantName:       id.Tenant,
		DomainName:       p.Option(OptionDomainName, defaultDomainName),
		AllowReauth:      true,
	}
	pc, err := gcopenstack.AuthenticatedClient(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("authenticating to %s: %w", authURL, err)
	}

	eo := gophercloud.EndpointOpts{Region: p.Option(OptionRegion, "")}
	c := &serviceClients{}
	if c.compute, err = gcopenstack.NewComputeV2(pc, eo); err != nil {
		return nil, fmt.Errorf("compute endpoint: %w", err)
	}

	logger := logging.FromContext(ctx)
	optional := []struct {
		name string
		dst  **gophercloud.ServiceClient
		fn   func(*gophercloud.ProviderClient, gophercloud.EndpointOpts) (*gophercloud.ServiceClient, error)
	}{
		{"volumev3", &c.blockStorage, gcopenstack.NewBlockStorageV3},
		{"image", &c.image, gcopenstack.NewImageV2},
		{"network", &c.network, gcopenstack.NewNetworkV2},
		{"identity", &c.identity, gcopenstack.NewIdentityV3},
	}
	for _, o := range optional {
		sc, err := o.fn(pc, eo)
		if err != nil {
			logger.Debug(ctx, "service not in catalog", "provider", p.Name, "service", o.name, "err", err)
			continue
		}
		*o.dst = sc
	}
	return c, nil
}

func open(ctx context.Context, p *model.Provider, id *model.Identity) (providerdrv.Driver, error) {
	c, err := newClientsFunc(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return &driver{provider: p, identity: id, clients: c}, nil
}

// createAdminDriver opens a driver with creds merged over the OpenStack admin
// credentials. The admin provider carries the base provider's options but none
// of its credentials.
func createAdminDriver(ctx context.Context, base providerdrv.Driver, settings *model.AdminSettings, creds map[string]string) (providerdrv.Driver, error) {
	bp := base.Provider()
	ap := bp.WithOptions(bp.Options)
	r := providerdrv.ResolveCredentials(creds, settings.OpenStack)
	return open(ctx, ap, r.Identity(ap.Name))
}

func init() {
	v := providerdrv.Variant{
		Open:  open,
		Admin: providerdrv.AdminDriverFactoryFunc(createAdminDriver),
	}
	providerdrv.Register(model.ProviderKindOpenStack, v)
	providerdrv.Register(model.ProviderKindOpenStackValhalla, v)
}
