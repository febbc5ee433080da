package provider

import (
	"context"
	"errors"

	"github.com/kompox/cloudmeta/domain/model"
)

// DeleteInput identifies the provider to remove by ID or, when ID is empty, by name.
type DeleteInput struct {
	ProviderID string `json:"provider_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// DeleteOutput is empty because delete has no return entity.
type DeleteOutput struct{}

// Delete removes a provider. Deleting an unknown name is a no-op.
func (u *UseCase) Delete(ctx context.Context, in *DeleteInput) (*DeleteOutput, error) {
	if in == nil || (in.ProviderID == "" && in.Name == "") {
		return &DeleteOutput{}, nil
	}
	id := in.ProviderID
	if id == "" {
		p, err := u.Repos.Provider.GetByName(ctx, in.Name)
		if errors.Is(err, model.ErrProviderNotFound) {
			return &DeleteOutput{}, nil
		}
		if err != nil {
			return nil, err
		}
		id = p.ID
	}
	if err := u.Repos.Provider.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &DeleteOutput{}, nil
}
