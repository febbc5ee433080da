package model

import (
	"fmt"
	"sort"
	"strings"
)

// StatusActive is the normalized status of a running instance.
const StatusActive = "active"

// Instance is a compute instance as reported by a driver.
type Instance struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"` // normalized lowercase, "active" when running
	TenantID string `json:"tenantId,omitempty"`
	SizeID   string `json:"sizeId,omitempty"`
	ImageID  string `json:"imageId,omitempty"`
}

// Active reports whether the instance is running.
func (i *Instance) Active() bool { return i.Status == StatusActive }

// Volume is a block storage volume.
type Volume struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	SizeGB   int64  `json:"sizeGB"`
	TenantID string `json:"tenantId,omitempty"`
	Zone     string `json:"zone,omitempty"`
}

// Size is an instance size (EC2 instance type, OpenStack flavor).
// CPU and VCPUs are both optional because providers name the CPU count differently.
type Size struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CPU       *int64     `json:"cpu,omitempty"`
	VCPUs     *int64     `json:"vcpus,omitempty"`
	RAMMB     int64      `json:"ramMB"`
	DiskGB    int64      `json:"diskGB"`
	Occupancy *Occupancy `json:"occupancy,omitempty"`
}

// Machine references a bootable image.
type Machine struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// InstanceListOptions narrows an all-tenant instance listing.
type InstanceListOptions struct {
	Filter map[string]string
}

type InstanceListOption func(*InstanceListOptions)

// WithInstanceListFilter adds a provider-side filter (e.g., project_id, status).
func WithInstanceListFilter(key, value string) InstanceListOption {
	return func(o *InstanceListOptions) {
		if o.Filter == nil {
			o.Filter = map[string]string{}
		}
		o.Filter[key] = value
	}
}

// InstanceFilterKeys are the filter keys every driver understands.
var InstanceFilterKeys = []string{"flavor", "image", "name", "project_id", "status", "tenant_id"}

// Validate rejects unknown filter keys.
func (o InstanceListOptions) Validate() error {
	for k := range o.Filter {
		i := sort.SearchStrings(InstanceFilterKeys, k)
		if i == len(InstanceFilterKeys) || InstanceFilterKeys[i] != k {
			return fmt.Errorf("unsupported instance filter %q (supported: %s)", k, strings.Join(InstanceFilterKeys, ", "))
		}
	}
	return nil
}

// Match reports whether inst satisfies every filter. Values compare case-insensitively.
func (o InstanceListOptions) Match(inst *Instance) bool {
	for k, v := range o.Filter {
		var got string
		switch k {
		case "project_id", "tenant_id":
			got = inst.TenantID
		case "status":
			got = inst.Status
		case "name":
			got = inst.Name
		case "flavor":
			got = inst.SizeID
		case "image":
			got = inst.ImageID
		default:
			return false
		}
		if !strings.EqualFold(got, v) {
			return false
		}
	}
	return true
}
