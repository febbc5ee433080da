package openstack

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack/identity/v3/projects"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/extensions/layer3/routers"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/networks"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/ports"
	"github.com/gophercloud/gophercloud/v2/openstack/networking/v2/subnets"

	"github.com/kompox/cloudmeta/internal/logging"
)

// systemProjects are never treated as user groups.
var systemProjects = map[string]bool{"service": true, "services": true, "admin": true}

// ListUserGroupNames returns the Keystone project names that belong to users.
// The admin identity's own tenant and the system projects are excluded.
func (d *driver) ListUserGroupNames(ctx context.Context) (names []string, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "ListUserGroupNames")
	defer func() { cleanup(err) }()

	sc, err := require(d.clients.identity, "identity")
	if err != nil {
		return nil, err
	}
	page, err := projects.List(sc, projects.ListOpts{}).AllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	ps, err := projects.ExtractProjects(page)
	if err != nil {
		return nil, fmt.Errorf("extracting projects: %w", err)
	}
	for _, p := range ps {
		if p.Name == d.identity.Tenant || systemProjects[p.Name] || p.IsDomain {
			continue
		}
		names = append(names, p.Name)
	}
	return names, nil
}

// DeleteTenantNetwork removes every router, network and subnet owned by the
// tenant project. Router interfaces and leftover ports are detached first.
// Resources already gone are ignored.
func (d *driver) DeleteTenantNetwork(ctx context.Context, username, tenant string) (err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "DeleteTenantNetwork")
	defer func() { cleanup(err) }()

	idc, err := require(d.clients.identity, "identity")
	if err != nil {
		return err
	}
	nc, err := require(d.clients.network, "network")
	if err != nil {
		return err
	}

	projectID, err := findProjectID(ctx, idc, tenant)
	if err != nil {
		return err
	}
	logger := logging.FromContext(ctx).With("user", username, "tenant", tenant, "project", projectID)

	rpage, err := routers.List(nc, routers.ListOpts{TenantID: projectID}).AllPages(ctx)
	if err != nil {
		return fmt.Errorf("listing routers: %w", err)
	}
	rs, err := routers.ExtractRouters(rpage)
	if err != nil {
		return fmt.Errorf("extracting routers: %w", err)
	}

	npage, err := networks.List(nc, networks.ListOpts{TenantID: projectID}).AllPages(ctx)
	if err != nil {
		return fmt.Errorf("listing networks: %w", err)
	}
	ns, err := networks.ExtractNetworks(npage)
	if err != nil {
		return fmt.Errorf("extracting networks: %w", err)
	}

	for _, n := range ns {
		for _, subnetID := range n.Subnets {
			for _, r := range rs {
				_, err := routers.RemoveInterface(ctx, nc, r.ID, routers.RemoveInterfaceOpts{SubnetID: subnetID}).Extract()
				if err != nil && !gone(err) {
					return fmt.Errorf("removing subnet %s from router %s: %w", subnetID, r.ID, err)
				}
			}
		}

		ppage, err := ports.List(nc, ports.ListOpts{NetworkID: n.ID}).AllPages(ctx)
		if err != nil {
			return fmt.Errorf("listing ports of network %s: %w", n.ID, err)
		}
		ps, err := ports.ExtractPorts(ppage)
		if err != nil {
			return fmt.Errorf("extracting ports: %w", err)
		}
		for _, p := range ps {
			if err := ports.Delete(ctx, nc, p.ID).ExtractErr(); err != nil && !gone(err) {
				return fmt.Errorf("deleting port %s: %w", p.ID, err)
			}
		}

		for _, subnetID := range n.Subnets {
			if err := subnets.Delete(ctx, nc, subnetID).ExtractErr(); err != nil && !gone(err) {
				return fmt.Errorf("deleting subnet %s: %w", subnetID, err)
			}
		}
		if err := networks.Delete(ctx, nc, n.ID).ExtractErr(); err != nil && !gone(err) {
			return fmt.Errorf("deleting network %s: %w", n.ID, err)
		}
		logger.Debug(ctx, "deleted network", "network", n.ID, "name", n.Name)
	}

	for _, r := range rs {
		if err := routers.Delete(ctx, nc, r.ID).ExtractErr(); err != nil && !gone(err) {
			return fmt.Errorf("deleting router %s: %w", r.ID, err)
		}
	}
	return nil
}

func findProjectID(ctx context.Context, sc *gophercloud.ServiceClient, name string) (string, error) {
	page, err := projects.List(sc, projects.ListOpts{Name: name}).AllPages(ctx)
	if err != nil {
		return "", fmt.Errorf("looking up project %q: %w", name, err)
	}
	ps, err := projects.ExtractProjects(page)
	if err != nil {
		return "", fmt.Errorf("extracting projects: %w", err)
	}
	if len(ps) == 0 {
		return "", fmt.Errorf("project %q not found", name)
	}
	return ps[0].ID, nil
}

func gone(err error) bool {
	return gophercloud.ResponseCodeIs(err, http.StatusNotFound)
}
