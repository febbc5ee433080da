package cloudmetacfg

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kompox/cloudmeta/domain/model"
)

// ToModels converts the configuration to domain models.
// Providers keep the file order; IDs are generated.
func (r *Root) ToModels() ([]*model.Provider, *model.AdminSettings, error) {
	now := time.Now().UTC()
	providers := make([]*model.Provider, 0, len(r.Providers))
	for i, p := range r.Providers {
		kind, err := model.ParseProviderKind(p.Kind)
		if err != nil {
			return nil, nil, fmt.Errorf("providers[%d]: %w", i, err)
		}
		providers = append(providers, &model.Provider{
			ID:          "prov-" + uuid.NewString(),
			Name:        p.Name,
			Kind:        kind,
			Options:     copyMap(p.Options),
			Credentials: copyMap(p.Credentials),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return providers, r.AdminSettings(), nil
}

// AdminSettings returns the admin credentials as a domain value.
func (r *Root) AdminSettings() *model.AdminSettings {
	conv := func(c AdminCredentials) model.AdminCredentials {
		return model.AdminCredentials{Key: c.Key, Secret: c.Secret, Tenant: c.Tenant}
	}
	return &model.AdminSettings{
		AWS:        conv(r.Admin.AWS),
		Eucalyptus: conv(r.Admin.Eucalyptus),
		OpenStack:  conv(r.Admin.OpenStack),
	}
}

func copyMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
