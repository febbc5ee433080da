package rdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kompox/cloudmeta/domain"
	"github.com/kompox/cloudmeta/domain/model"
	"gorm.io/gorm"
)

// ProviderRepository is a GORM-backed implementation of domain.ProviderRepository.
type ProviderRepository struct{ db *gorm.DB }

func NewProviderRepository(db *gorm.DB) *ProviderRepository { return &ProviderRepository{db: db} }

func providerToRecord(p *model.Provider) (*ProviderRecord, error) {
	opts, err := encodeJSON(p.Options)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	creds, err := encodeJSON(p.Credentials)
	if err != nil {
		return nil, fmt.Errorf("encode credentials: %w", err)
	}
	return &ProviderRecord{
		ID:          p.ID,
		Name:        p.Name,
		Kind:        string(p.Kind),
		Options:     opts,
		Credentials: creds,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func providerToModel(r *ProviderRecord) (*model.Provider, error) {
	p := &model.Provider{ID: r.ID, Name: r.Name, Kind: model.ProviderKind(r.Kind), CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
	if err := decodeJSON(r.Options, &p.Options); err != nil {
		return nil, fmt.Errorf("decode options of %s: %w", r.ID, err)
	}
	if err := decodeJSON(r.Credentials, &p.Credentials); err != nil {
		return nil, fmt.Errorf("decode credentials of %s: %w", r.ID, err)
	}
	return p, nil
}

func (r *ProviderRepository) Create(ctx context.Context, p *model.Provider) error {
	rec, err := providerToRecord(p)
	if err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = "prov-" + uuid.NewString()
		p.ID = rec.ID
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *ProviderRepository) Get(ctx context.Context, id string) (*model.Provider, error) {
	var rec ProviderRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrProviderNotFound
		}
		return nil, err
	}
	return providerToModel(&rec)
}

func (r *ProviderRepository) GetByName(ctx context.Context, name string) (*model.Provider, error) {
	var rec ProviderRecord
	if err := r.db.WithContext(ctx).First(&rec, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", model.ErrProviderNotFound, name)
		}
		return nil, err
	}
	return providerToModel(&rec)
}

func (r *ProviderRepository) List(ctx context.Context) ([]*model.Provider, error) {
	var recs []ProviderRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*model.Provider, 0, len(recs))
	for i := range recs {
		p, err := providerToModel(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProviderRepository) Update(ctx context.Context, p *model.Provider) error {
	rec, err := providerToRecord(p)
	if err != nil {
		return err
	}
	// Select("*") writes empty maps too; plain Updates skips zero values.
	res := r.db.WithContext(ctx).Model(&ProviderRecord{}).Where("id = ?", rec.ID).Select("*").Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrProviderNotFound
	}
	return nil
}

func (r *ProviderRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&ProviderRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrProviderNotFound
	}
	return nil
}

var _ domain.ProviderRepository = (*ProviderRepository)(nil)
