package repository

import (
	"context"

	"partediario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoteRepository interface {
	Create(ctx context.Context, l *model.Lote) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Lote, error)
	// FindByIDs resolves a batch of ids in one query; absent ids are simply
	// missing from the returned map.
	FindByIDs(ctx context.Context, est uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]model.Lote, error)
	List(ctx context.Context, est uuid.UUID) ([]model.Lote, error)
	Update(ctx context.Context, l *model.Lote) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type loteRepo struct{ db *gorm.DB }

func NewLoteRepository(db *gorm.DB) LoteRepository { return &loteRepo{db: db} }

func (r *loteRepo) Create(ctx context.Context, l *model.Lote) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *loteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Lote, error) {
	var l model.Lote
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *loteRepo) FindByIDs(ctx context.Context, est uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]model.Lote, error) {
	out := make(map[uuid.UUID]model.Lote, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var lotes []model.Lote
	err := r.db.WithContext(ctx).
		Where("establecimiento_id = ? AND id IN ? AND activo = true", est, ids).
		Find(&lotes).Error
	if err != nil {
		return nil, err
	}
	for _, l := range lotes {
		out[l.ID] = l
	}
	return out, nil
}

func (r *loteRepo) List(ctx context.Context, est uuid.UUID) ([]model.Lote, error) {
	var lotes []model.Lote
	err := r.db.WithContext(ctx).
		Where("establecimiento_id = ? AND activo = true", est).
		Order("nombre ASC").Find(&lotes).Error
	return lotes, err
}

func (r *loteRepo) Update(ctx context.Context, l *model.Lote) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *loteRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Lote{}).Where("id = ?", id).Update("activo", false).Error
}
