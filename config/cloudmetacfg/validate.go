package cloudmetacfg

import (
	"fmt"

	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/naming"
)

// Validate performs semantic validation on the configuration tree.
func (r *Root) Validate() error {
	if r.Version != "" && r.Version != "v1" {
		return fmt.Errorf("version: unsupported version %q", r.Version)
	}
	seen := make(map[string]struct{}, len(r.Providers))
	for i, p := range r.Providers {
		if err := p.validate(); err != nil {
			return fmt.Errorf("providers[%d]: %w", i, err)
		}
		if _, exists := seen[p.Name]; exists {
			return fmt.Errorf("providers[%d].name: duplicate provider name %q", i, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

func (p *Provider) validate() error {
	if err := naming.ValidateProviderName(p.Name); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	kind, err := model.ParseProviderKind(p.Kind)
	if err != nil {
		return fmt.Errorf("kind: %w", err)
	}
	switch kind {
	case model.ProviderKindOpenStack, model.ProviderKindOpenStackValhalla:
		if p.Options["auth_url"] == "" {
			return fmt.Errorf("options.auth_url is required for %s", kind)
		}
	case model.ProviderKindEucalyptus:
		if p.Options["endpoint"] == "" {
			return fmt.Errorf("options.endpoint is required for %s", kind)
		}
	}
	for k := range p.Options {
		if err := naming.ValidateMetadataKey(k); err != nil {
			return fmt.Errorf("options: %w", err)
		}
	}
	for k := range p.Credentials {
		if err := naming.ValidateMetadataKey(k); err != nil {
			return fmt.Errorf("credentials: %w", err)
		}
	}
	return nil
}
