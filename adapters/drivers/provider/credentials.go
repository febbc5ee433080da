package providerdrv

import "github.com/kompox/cloudmeta/domain/model"

// Credential map keys understood by every driver.
const (
	CredKey         = "key"
	CredSecret      = "secret"
	CredTenantName  = "ex_tenant_name"
	CredProjectName = "ex_project_name"
)

// Resolved is the outcome of merging caller credentials with admin defaults.
type Resolved struct {
	Key    string
	Secret string
	Tenant string
}

// HasTenant reports whether a tenant could be resolved.
func (r Resolved) HasTenant() bool { return r.Tenant != "" }

// Identity returns the identity for provider built from r.
func (r Resolved) Identity(provider string) *model.Identity {
	return &model.Identity{Provider: provider, Key: r.Key, Secret: r.Secret, Tenant: r.Tenant}
}

// ResolveCredentials merges creds over defaults. A missing or empty key or
// secret falls back to the default. The tenant is taken from ex_project_name,
// then ex_tenant_name, then the default tenant.
func ResolveCredentials(creds map[string]string, defaults model.AdminCredentials) Resolved {
	r := Resolved{
		Key:    pick(creds, CredKey, defaults.Key),
		Secret: pick(creds, CredSecret, defaults.Secret),
	}
	r.Tenant = pick(creds, CredProjectName, pick(creds, CredTenantName, defaults.Tenant))
	return r
}

func pick(m map[string]string, key, def string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return def
}
