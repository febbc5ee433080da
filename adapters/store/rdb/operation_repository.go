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

// OperationRepository is a GORM-backed operation journal.
type OperationRepository struct{ db *gorm.DB }

func NewOperationRepository(db *gorm.DB) *OperationRepository { return &OperationRepository{db: db} }

func operationToRecord(op *model.Operation) (*OperationRecord, error) {
	items, err := encodeJSON(op.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	return &OperationRecord{
		ID:        op.ID,
		Provider:  op.Provider,
		Action:    string(op.Action),
		Status:    string(op.Status),
		RetryOf:   op.RetryOf,
		Items:     items,
		CreatedAt: op.CreatedAt,
		UpdatedAt: op.UpdatedAt,
	}, nil
}

func operationToModel(r *OperationRecord) (*model.Operation, error) {
	op := &model.Operation{
		ID:        r.ID,
		Provider:  r.Provider,
		Action:    model.OperationAction(r.Action),
		Status:    model.OperationStatus(r.Status),
		RetryOf:   r.RetryOf,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if err := decodeJSON(r.Items, &op.Items); err != nil {
		return nil, fmt.Errorf("decode items of %s: %w", r.ID, err)
	}
	return op, nil
}

func (r *OperationRepository) Create(ctx context.Context, op *model.Operation) error {
	rec, err := operationToRecord(op)
	if err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = "op-" + uuid.NewString()
		op.ID = rec.ID
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *OperationRepository) Get(ctx context.Context, id string) (*model.Operation, error) {
	var rec OperationRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrOperationNotFound
		}
		return nil, err
	}
	return operationToModel(&rec)
}

// List returns operations ordered by creation time, oldest first.
func (r *OperationRepository) List(ctx context.Context) ([]*model.Operation, error) {
	var recs []OperationRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*model.Operation, 0, len(recs))
	for i := range recs {
		op, err := operationToModel(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, nil
}

func (r *OperationRepository) Update(ctx context.Context, op *model.Operation) error {
	rec, err := operationToRecord(op)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&OperationRecord{}).Where("id = ?", rec.ID).Select("*").Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrOperationNotFound
	}
	return nil
}

var _ domain.OperationRepository = (*OperationRepository)(nil)
