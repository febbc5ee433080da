package providerdrv

import (
	"context"

	"github.com/kompox/cloudmeta/domain/model"
)

// Driver abstracts one authenticated connection to a cloud provider.
// Implementations live under adapters/drivers/provider/<name> and register
// themselves for one or more provider kinds via Register.
type Driver interface {
	// Kind returns the provider kind the driver was opened for.
	Kind() model.ProviderKind

	// Provider returns the provider the driver is connected to.
	Provider() *model.Provider

	// Identity returns the credentials the driver authenticates with.
	Identity() *model.Identity

	// ListInstances returns the instances visible to the identity.
	ListInstances(ctx context.Context) ([]*model.Instance, error)

	// ListVolumes returns the volumes visible to the identity.
	ListVolumes(ctx context.Context) ([]*model.Volume, error)

	// ListSizes returns the instance sizes offered by the provider.
	ListSizes(ctx context.Context) ([]*model.Size, error)

	// StopInstance stops a running instance.
	StopInstance(ctx context.Context, inst *model.Instance) error

	// DestroyInstance terminates an instance.
	DestroyInstance(ctx context.Context, inst *model.Instance) error
}

// AllTenantsLister is implemented by drivers that can list across every tenant
// when opened with admin credentials.
type AllTenantsLister interface {
	ListAllInstances(ctx context.Context, opts ...model.InstanceListOption) ([]*model.Instance, error)
	ListAllVolumes(ctx context.Context) ([]*model.Volume, error)
}

// HypervisorStatser reports pool-wide hypervisor counters.
type HypervisorStatser interface {
	HypervisorStatistics(ctx context.Context) (*model.HypervisorStats, error)
}

// ImageMetadataManager reads and writes image key/value metadata.
type ImageMetadataManager interface {
	ImageMetadata(ctx context.Context, m *model.Machine) (map[string]string, error)
	SetImageMetadata(ctx context.Context, m *model.Machine, md map[string]string) error
	DeleteImageMetadata(ctx context.Context, m *model.Machine, key string) error
}

// AccountManager manages per-user tenant resources.
type AccountManager interface {
	// ListUserGroupNames returns the user group names, one per user tenant.
	ListUserGroupNames(ctx context.Context) ([]string, error)

	// DeleteTenantNetwork removes the network, subnets, router interfaces and
	// ports created for the user in the named tenant.
	DeleteTenantNetwork(ctx context.Context, username, tenant string) error
}

// ErrorCoder classifies a provider error into a short code such as
// "InvalidInstanceID.NotFound" or "409". Empty means unclassified.
type ErrorCoder interface {
	ErrorCode(err error) string
}
