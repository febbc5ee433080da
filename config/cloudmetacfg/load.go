package cloudmetacfg

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "CLOUDMETA_"

// Load reads a YAML file from the given path and returns a deserialized Root.
// It performs no validation beyond YAML decoding; see Validate.
func Load(path string) (*Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a Root.
func Parse(data []byte) (*Root, error) {
	var cfg Root
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overrides admin credentials from CLOUDMETA_<KIND>_ADMIN_{KEY,SECRET,TENANT}.
// lookup has the signature of os.LookupEnv. Unset variables keep the file values.
func (r *Root) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	apply := func(kind string, c *AdminCredentials) {
		prefix := EnvPrefix + strings.ToUpper(kind) + "_ADMIN_"
		if v, ok := lookup(prefix + "KEY"); ok {
			c.Key = v
		}
		if v, ok := lookup(prefix + "SECRET"); ok {
			c.Secret = v
		}
		if v, ok := lookup(prefix + "TENANT"); ok {
			c.Tenant = v
		}
	}
	apply("aws", &r.Admin.AWS)
	apply("eucalyptus", &r.Admin.Eucalyptus)
	apply("openstack", &r.Admin.OpenStack)
}
