package provider

import (
	"fmt"

	"github.com/kompox/cloudmeta/domain"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/naming"
)

// Repos holds repositories needed for provider use cases.
type Repos struct {
	Provider domain.ProviderRepository
}

// UseCase wires repositories needed for provider use cases.
type UseCase struct {
	Repos *Repos
}

// validateMaps checks option and credential keys.
func validateMaps(maps ...map[string]string) error {
	for _, m := range maps {
		for k := range m {
			if err := naming.ValidateMetadataKey(k); err != nil {
				return fmt.Errorf("%w: %v", model.ErrProviderInvalid, err)
			}
		}
	}
	return nil
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
