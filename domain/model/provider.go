package model

import (
	"fmt"
	"time"
)

// ProviderKind identifies a cloud backend implementation.
type ProviderKind string

const (
	ProviderKindAWS               ProviderKind = "aws"
	ProviderKindEucalyptus        ProviderKind = "eucalyptus"
	ProviderKindOpenStack         ProviderKind = "openstack"
	ProviderKindOpenStackValhalla ProviderKind = "openstack-valhalla"
)

// ProviderKinds lists every supported kind in display order.
var ProviderKinds = []ProviderKind{
	ProviderKindAWS,
	ProviderKindEucalyptus,
	ProviderKindOpenStack,
	ProviderKindOpenStackValhalla,
}

// ParseProviderKind validates a kind string.
func ParseProviderKind(s string) (ProviderKind, error) {
	for _, k := range ProviderKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProviderKind, s)
}

// Provider represents a configured cloud backend (e.g., an OpenStack region).
type Provider struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Kind        ProviderKind      `json:"kind"`
	Options     map[string]string `json:"options,omitempty"`     // connection options, e.g. auth_url, region_name
	Credentials map[string]string `json:"credentials,omitempty"` // key, secret, ex_tenant_name, ex_project_name
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Option returns a connection option value or def when unset.
func (p *Provider) Option(key, def string) string {
	if p == nil || p.Options == nil {
		return def
	}
	if v, ok := p.Options[key]; ok && v != "" {
		return v
	}
	return def
}

// WithOptions returns a copy of p sharing nothing mutable with the original.
func (p *Provider) WithOptions(opts map[string]string) *Provider {
	cp := *p
	cp.Options = make(map[string]string, len(opts))
	for k, v := range opts {
		cp.Options[k] = v
	}
	cp.Credentials = nil
	return &cp
}
