// Package cloudmetacfg defines the configuration schema (structs) for cloudmeta.yml.
package cloudmetacfg

// Root is the root structure of cloudmeta.yml.
type Root struct {
	Version   string     `yaml:"version"`
	Admin     Admin      `yaml:"admin"`
	Providers []Provider `yaml:"providers"`
}

// Admin holds the elevated credentials per provider kind.
type Admin struct {
	AWS        AdminCredentials `yaml:"aws"`
	Eucalyptus AdminCredentials `yaml:"eucalyptus"`
	OpenStack  AdminCredentials `yaml:"openstack"`
}

// AdminCredentials is one admin identity.
type AdminCredentials struct {
	Key    string `yaml:"key"`
	Secret string `yaml:"secret"`
	Tenant string `yaml:"tenant,omitempty"`
}

// Provider represents one configured cloud backend.
type Provider struct {
	Name        string            `yaml:"name"`        // DNS-1123 label
	Kind        string            `yaml:"kind"`        // aws, eucalyptus, openstack, openstack-valhalla
	Options     map[string]string `yaml:"options"`     // auth_url, region_name, endpoint, ...
	Credentials map[string]string `yaml:"credentials"` // key, secret, ex_tenant_name, ex_project_name
}
