package provider

import (
	"context"
	"sort"

	"github.com/kompox/cloudmeta/domain/model"
)

// ListInput has no filters yet.
type ListInput struct{}

// ListOutput lists providers ordered by name.
type ListOutput struct {
	Providers []*model.Provider `json:"providers"`
}

func (u *UseCase) List(ctx context.Context, _ *ListInput) (*ListOutput, error) {
	ps, err := u.Repos.Provider.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
	return &ListOutput{Providers: ps}, nil
}
