package model

import "github.com/kompox/cloudmeta/internal/naming"

// Identity is a credential bundle scoped to a provider.
type Identity struct {
	Provider string `json:"provider"`
	Key      string `json:"key"`
	Secret   string `json:"-"`
	Tenant   string `json:"tenant,omitempty"`
}

// User returns the account name the identity authenticates as.
func (i *Identity) User() string { return i.Key }

// Fingerprint returns a short stable hash of the identity, suitable as a cache key.
func (i *Identity) Fingerprint() string {
	return naming.IdentityHash(i.Provider, i.Key, i.Secret, i.Tenant)
}

// AdminCredentials are the provider-wide elevated credentials for one kind.
type AdminCredentials struct {
	Key    string `json:"key"`
	Secret string `json:"-"`
	Tenant string `json:"tenant,omitempty"`
}

// Configured reports whether an admin key was supplied.
func (c AdminCredentials) Configured() bool { return c.Key != "" }

// AdminSettings holds admin credentials per provider kind.
type AdminSettings struct {
	AWS        AdminCredentials `json:"aws"`
	Eucalyptus AdminCredentials `json:"eucalyptus"`
	OpenStack  AdminCredentials `json:"openstack"`
}
