package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/naming"
)

// UpdateInput specifies mutable fields of a provider.
type UpdateInput struct {
	// ProviderID identifies the provider to update.
	ProviderID string `json:"provider_id"`
	// Name optionally renames the provider.
	Name *string `json:"name,omitempty"`
	// Kind optionally changes the driver kind.
	Kind *string `json:"kind,omitempty"`
	// Options are merged into the existing options; an empty value removes the key.
	Options map[string]string `json:"options,omitempty"`
	// Credentials are merged like Options.
	Credentials map[string]string `json:"credentials,omitempty"`
}

// UpdateOutput wraps the updated provider.
type UpdateOutput struct {
	// Provider is the updated entity.
	Provider *model.Provider `json:"provider"`
}

// Update applies changes to a provider.
func (u *UseCase) Update(ctx context.Context, in *UpdateInput) (*UpdateOutput, error) {
	if in == nil || in.ProviderID == "" {
		return nil, model.ErrProviderInvalid
	}
	if err := validateMaps(in.Options, in.Credentials); err != nil {
		return nil, err
	}
	existing, err := u.Repos.Provider.Get(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	changed := false
	if in.Name != nil && *in.Name != "" && existing.Name != *in.Name {
		if err := naming.ValidateProviderName(*in.Name); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrProviderInvalid, err)
		}
		if _, err := u.Repos.Provider.GetByName(ctx, *in.Name); err == nil {
			return nil, fmt.Errorf("%w: provider %q already exists", model.ErrProviderInvalid, *in.Name)
		} else if !errors.Is(err, model.ErrProviderNotFound) {
			return nil, err
		}
		existing.Name = *in.Name
		changed = true
	}
	if in.Kind != nil && *in.Kind != "" && string(existing.Kind) != *in.Kind {
		kind, err := model.ParseProviderKind(*in.Kind)
		if err != nil {
			return nil, err
		}
		existing.Kind = kind
		changed = true
	}
	if merge(&existing.Options, in.Options) {
		changed = true
	}
	if merge(&existing.Credentials, in.Credentials) {
		changed = true
	}
	if changed {
		existing.UpdatedAt = time.Now().UTC()
		if err := u.Repos.Provider.Update(ctx, existing); err != nil {
			return nil, err
		}
	}
	return &UpdateOutput{Provider: existing}, nil
}

// merge applies patch to *dst and reports whether anything changed.
func merge(dst *map[string]string, patch map[string]string) bool {
	changed := false
	for k, v := range patch {
		old, ok := (*dst)[k]
		switch {
		case v == "" && ok:
			delete(*dst, k)
			changed = true
		case v != "" && (!ok || old != v):
			if *dst == nil {
				*dst = map[string]string{}
			}
			(*dst)[k] = v
			changed = true
		}
	}
	return changed
}
