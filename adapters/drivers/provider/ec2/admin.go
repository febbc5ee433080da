package ec2

import (
	"context"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/logging"
)

// createAWSAdminDriver opens a driver with the AWS admin key. Without an admin
// key the caller's driver is used as is. Caller credentials are ignored.
func createAWSAdminDriver(ctx context.Context, base providerdrv.Driver, settings *model.AdminSettings, _ map[string]string) (providerdrv.Driver, error) {
	if !settings.AWS.Configured() {
		logging.FromContext(ctx).Debug(ctx, "no AWS admin key, using caller driver", "provider", base.Provider().Name)
		return base, nil
	}
	id := &model.Identity{Provider: base.Provider().Name, Key: settings.AWS.Key, Secret: settings.AWS.Secret}
	return open(ctx, base.Provider(), id)
}

// createEucalyptusAdminDriver opens a driver with creds merged over the
// Eucalyptus admin key. Eucalyptus has no tenants.
func createEucalyptusAdminDriver(ctx context.Context, base providerdrv.Driver, settings *model.AdminSettings, creds map[string]string) (providerdrv.Driver, error) {
	defaults := settings.Eucalyptus
	defaults.Tenant = ""
	r := providerdrv.ResolveCredentials(creds, defaults)
	r.Tenant = ""
	return open(ctx, base.Provider(), r.Identity(base.Provider().Name))
}
