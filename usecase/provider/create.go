package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/naming"
)

// CreateInput contains the data to create a provider.
type CreateInput struct {
	// Name is the provider name (DNS-1123 label).
	Name string `json:"name"`
	// Kind selects the driver: aws, eucalyptus, openstack or openstack-valhalla.
	Kind string `json:"kind"`
	// Options are connection options such as auth_url or region_name.
	Options map[string]string `json:"options,omitempty"`
	// Credentials are the caller credentials (key, secret, ex_tenant_name, ex_project_name).
	Credentials map[string]string `json:"credentials,omitempty"`
}

// CreateOutput wraps the created provider.
type CreateOutput struct {
	// Provider is the newly created provider entity.
	Provider *model.Provider `json:"provider"`
}

// Create persists a new provider. Names must be unique.
func (u *UseCase) Create(ctx context.Context, in *CreateInput) (*CreateOutput, error) {
	if in == nil {
		return nil, model.ErrProviderInvalid
	}
	if err := naming.ValidateProviderName(in.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProviderInvalid, err)
	}
	kind, err := model.ParseProviderKind(in.Kind)
	if err != nil {
		return nil, err
	}
	if err := validateMaps(in.Options, in.Credentials); err != nil {
		return nil, err
	}
	if _, err := u.Repos.Provider.GetByName(ctx, in.Name); err == nil {
		return nil, fmt.Errorf("%w: provider %q already exists", model.ErrProviderInvalid, in.Name)
	} else if !errors.Is(err, model.ErrProviderNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	p := &model.Provider{
		Name:        in.Name,
		Kind:        kind,
		Options:     copyMap(in.Options),
		Credentials: copyMap(in.Credentials),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.Repos.Provider.Create(ctx, p); err != nil {
		return nil, err
	}
	return &CreateOutput{Provider: p}, nil
}
