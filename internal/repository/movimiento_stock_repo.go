package repository

import (
	"context"

	"partediario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoStockRepository persists the append-only stock audit trail.
type MovimientoStockRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoStock) error
	ListByActividad(ctx context.Context, actividadID uuid.UUID) ([]model.MovimientoStock, error)
	List(ctx context.Context, est uuid.UUID, loteID *uuid.UUID, limit int) ([]model.MovimientoStock, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) CreateTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *movimientoStockRepo) ListByActividad(ctx context.Context, actividadID uuid.UUID) ([]model.MovimientoStock, error) {
	var movs []model.MovimientoStock
	err := r.db.WithContext(ctx).
		Where("actividad_id = ?", actividadID).
		Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *movimientoStockRepo) List(ctx context.Context, est uuid.UUID, loteID *uuid.UUID, limit int) ([]model.MovimientoStock, error) {
	if limit <= 0 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Where("establecimiento_id = ?", est)
	if loteID != nil {
		q = q.Where("lote_id = ?", *loteID)
	}
	var movs []model.MovimientoStock
	err := q.Order("created_at DESC").Limit(limit).Find(&movs).Error
	return movs, err
}
