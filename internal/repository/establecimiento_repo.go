package repository

import (
	"context"

	"partediario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EstablecimientoRepository interface {
	Create(ctx context.Context, e *model.Establecimiento) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Establecimiento, error)
	List(ctx context.Context) ([]model.Establecimiento, error)
}

type establecimientoRepo struct{ db *gorm.DB }

func NewEstablecimientoRepository(db *gorm.DB) EstablecimientoRepository {
	return &establecimientoRepo{db: db}
}

func (r *establecimientoRepo) Create(ctx context.Context, e *model.Establecimiento) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *establecimientoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Establecimiento, error) {
	var e model.Establecimiento
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *establecimientoRepo) List(ctx context.Context) ([]model.Establecimiento, error) {
	var out []model.Establecimiento
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre ASC").Find(&out).Error
	return out, err
}
