package openstack

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack/blockstorage/v3/volumes"
	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/flavors"
	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/hypervisors"
	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/servers"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/logging"
)

type driver struct {
	provider *model.Provider
	identity *model.Identity
	clients  *serviceClients
}

var (
	_ providerdrv.Driver               = (*driver)(nil)
	_ providerdrv.AllTenantsLister     = (*driver)(nil)
	_ providerdrv.HypervisorStatser    = (*driver)(nil)
	_ providerdrv.ImageMetadataManager = (*driver)(nil)
	_ providerdrv.AccountManager       = (*driver)(nil)
	_ providerdrv.ErrorCoder           = (*driver)(nil)
)

func (d *driver) Kind() model.ProviderKind  { return d.provider.Kind }
func (d *driver) Provider() *model.Provider { return d.provider }
func (d *driver) Identity() *model.Identity { return d.identity }

func (d *driver) withMethodLogger(ctx context.Context, method string) (context.Context, func(err error)) {
	ctx = logging.With(ctx, "provider", d.provider.Name)
	return logging.Span(ctx, "openstack", method)
}

// require returns the service client or ErrCapabilityUnsupported.
func require(sc *gophercloud.ServiceClient, service string) (*gophercloud.ServiceClient, error) {
	if sc == nil {
		return nil, fmt.Errorf("%w: no %s endpoint", model.ErrCapabilityUnsupported, service)
	}
	return sc, nil
}

func (d *driver) ListInstances(ctx context.Context) (out []*model.Instance, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "ListInstances")
	defer func() { cleanup(err) }()
	return d.listServers(ctx, servers.ListOpts{})
}

// ListAllInstances lists servers across every project. Supported filter keys
// are project_id (alias tenant_id), status, name, flavor and image.
func (d *driver) ListAllInstances(ctx context.Context, opts ...model.InstanceListOption) (out []*model.Instance, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "ListAllInstances")
	defer func() { cleanup(err) }()

	var o model.InstanceListOptions
	for _, opt := range opts {
		opt(&o)
	}
	lo := servers.ListOpts{AllTenants: true}
	for k, v := range o.Filter {
		switch k {
		case "project_id", "tenant_id":
			lo.TenantID = v
		case "status":
			if strings.EqualFold(v, model.StatusActive) {
				v = "ACTIVE"
			}
			lo.Status = strings.ToUpper(v)
		case "name":
			lo.Name = v
		case "flavor":
			lo.Flavor = v
		case "image":
			lo.Image = v
		default:
			return nil, fmt.Errorf("unsupported instance filter %q", k)
		}
	}
	return d.listServers(ctx, lo)
}

func (d *driver) listServers(ctx context.Context, lo servers.ListOpts) ([]*model.Instance, error) {
	page, err := servers.List(d.clients.compute, lo).AllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing servers: %w", err)
	}
	ss, err := servers.ExtractServers(page)
	if err != nil {
		return nil, fmt.Errorf("extracting servers: %w", err)
	}
	out := make([]*model.Instance, 0, len(ss))
	for _, s := range ss {
		out = append(out, &model.Instance{
			ID:       s.ID,
			Name:     s.Name,
			Status:   normalizeStatus(s.Status),
			TenantID: s.TenantID,
			SizeID:   refID(s.Flavor),
			ImageID:  refID(s.Image),
		})
	}
	return out, nil
}

func normalizeStatus(s string) string {
	if s == "ACTIVE" {
		return model.StatusActive
	}
	return strings.ToLower(s)
}

func refID(m map[string]any) string {
	if id, ok := m["id"].(string); ok {
		return id
	}
	return ""
}

func (d *driver) ListVolumes(ctx context.Context) (out []*model.Volume, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "ListVolumes")
	defer func() { cleanup(err) }()
	return d.listVolumes(ctx, volumes.ListOpts{})
}

func (d *driver) ListAllVolumes(ctx context.Context) (out []*model.Volume, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "ListAllVolumes")
	defer func() { cleanup(err) }()
	return d.listVolumes(ctx, volumes.ListOpts{AllTenants: true})
}

func (d *driver) listVolumes(ctx context.Context, lo volumes.ListOpts) ([]*model.Volume, error) {
	sc, err := require(d.clients.blockStorage, "block storage")
	if err != nil {
		return nil, err
	}
	page, err := volumes.List(sc, lo).AllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing volumes: %w", err)
	}
	vs, err := volumes.ExtractVolumes(page)
	if err != nil {
		return nil, fmt.Errorf("extracting volumes: %w", err)
	}
	out := make([]*model.Volume, 0, len(vs))
	for _, v := range vs {
		out = append(out, &model.Volume{
			ID:       v.ID,
			Name:     v.Name,
			Status:   v.Status,
			SizeGB:   int64(v.Size),
			TenantID: v.TenantID,
			Zone:     v.AvailabilityZone,
		})
	}
	return out, nil
}

func (d *driver) ListSizes(ctx context.Context) (out []*model.Size, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "ListSizes")
	defer func() { cleanup(err) }()

	page, err := flavors.ListDetail(d.clients.compute, flavors.ListOpts{AccessType: flavors.AllAccess}).AllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing flavors: %w", err)
	}
	fs, err := flavors.ExtractFlavors(page)
	if err != nil {
		return nil, fmt.Errorf("extracting flavors: %w", err)
	}
	out = make([]*model.Size, 0, len(fs))
	for _, f := range fs {
		vcpus := int64(f.VCPUs)
		out = append(out, &model.Size{
			ID:     f.ID,
			Name:   f.Name,
			VCPUs:  &vcpus,
			RAMMB:  int64(f.RAM),
			DiskGB: int64(f.Disk),
		})
	}
	return out, nil
}

func (d *driver) HypervisorStatistics(ctx context.Context) (_ *model.HypervisorStats, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "HypervisorStatistics")
	defer func() { cleanup(err) }()

	st, err := hypervisors.GetStatistics(ctx, d.clients.compute).Extract()
	if err != nil {
		return nil, fmt.Errorf("hypervisor statistics: %w", err)
	}
	return &model.HypervisorStats{
		VCPUs:        int64(st.VCPUs),
		VCPUsUsed:    int64(st.VCPUsUsed),
		MemoryMB:     int64(st.MemoryMB),
		MemoryMBUsed: int64(st.MemoryMBUsed),
		LocalGB:      int64(st.LocalGB),
		LocalGBUsed:  int64(st.LocalGBUsed),
	}, nil
}

func (d *driver) StopInstance(ctx context.Context, inst *model.Instance) (err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "StopInstance")
	defer func() { cleanup(err) }()

	if err := servers.Stop(ctx, d.clients.compute, inst.ID).ExtractErr(); err != nil {
		return fmt.Errorf("stopping server %s: %w", inst.ID, err)
	}
	return nil
}

func (d *driver) DestroyInstance(ctx context.Context, inst *model.Instance) (err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "DestroyInstance")
	defer func() { cleanup(err) }()

	if err := servers.Delete(ctx, d.clients.compute, inst.ID).ExtractErr(); err != nil {
		return fmt.Errorf("deleting server %s: %w", inst.ID, err)
	}
	return nil
}

// ErrorCode returns the unexpected HTTP status code as a string, e.g. "409".
func (d *driver) ErrorCode(err error) string {
	var ue gophercloud.ErrUnexpectedResponseCode
	if errors.As(err, &ue) {
		return strconv.Itoa(ue.Actual)
	}
	return ""
}
