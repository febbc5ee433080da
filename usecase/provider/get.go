package provider

import (
	"context"

	"github.com/kompox/cloudmeta/domain/model"
)

// GetInput identifies a provider by ID or, when ID is empty, by name.
type GetInput struct {
	ProviderID string `json:"provider_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// GetOutput wraps the provider.
type GetOutput struct {
	Provider *model.Provider `json:"provider"`
}

// Get returns one provider.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil || (in.ProviderID == "" && in.Name == "") {
		return nil, model.ErrProviderInvalid
	}
	var (
		p   *model.Provider
		err error
	)
	if in.ProviderID != "" {
		p, err = u.Repos.Provider.Get(ctx, in.ProviderID)
	} else {
		p, err = u.Repos.Provider.GetByName(ctx, in.Name)
	}
	if err != nil {
		return nil, err
	}
	return &GetOutput{Provider: p}, nil
}
