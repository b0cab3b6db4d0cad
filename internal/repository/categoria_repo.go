package repository

import (
	"context"

	"partediario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoriaRepository interface {
	Create(ctx context.Context, c *model.CategoriaAnimal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CategoriaAnimal, error)
	// FindByIDs resolves a batch of ids in one query, matching both global
	// categories and those scoped to the establecimiento.
	FindByIDs(ctx context.Context, est uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]model.CategoriaAnimal, error)
	List(ctx context.Context, est uuid.UUID) ([]model.CategoriaAnimal, error)
	Update(ctx context.Context, c *model.CategoriaAnimal) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type categoriaRepo struct{ db *gorm.DB }

func NewCategoriaRepository(db *gorm.DB) CategoriaRepository { return &categoriaRepo{db: db} }

func (r *categoriaRepo) Create(ctx context.Context, c *model.CategoriaAnimal) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoriaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CategoriaAnimal, error) {
	var c model.CategoriaAnimal
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoriaRepo) FindByIDs(ctx context.Context, est uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]model.CategoriaAnimal, error) {
	out := make(map[uuid.UUID]model.CategoriaAnimal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var cats []model.CategoriaAnimal
	err := r.db.WithContext(ctx).
		Where("id IN ? AND activo = true AND (establecimiento_id IS NULL OR establecimiento_id = ?)", ids, est).
		Find(&cats).Error
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		out[c.ID] = c
	}
	return out, nil
}

func (r *categoriaRepo) List(ctx context.Context, est uuid.UUID) ([]model.CategoriaAnimal, error) {
	var cats []model.CategoriaAnimal
	err := r.db.WithContext(ctx).
		Where("activo = true AND (establecimiento_id IS NULL OR establecimiento_id = ?)", est).
		Order("nombre ASC").Find(&cats).Error
	return cats, err
}

func (r *categoriaRepo) Update(ctx context.Context, c *model.CategoriaAnimal) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoriaRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.CategoriaAnimal{}).Where("id = ?", id).Update("activo", false).Error
}
