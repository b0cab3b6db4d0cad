package repository

import (
	"context"
	"errors"

	"partediario/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InsumoRepository interface {
	Create(ctx context.Context, i *model.Insumo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Insumo, error)
	FindByIDs(ctx context.Context, est uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]model.Insumo, error)
	List(ctx context.Context, est uuid.UUID) ([]model.Insumo, error)
	Update(ctx context.Context, i *model.Insumo) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// AjustarStockTx applies a signed delta to the insumo stock under a row
	// lock. Fails with ErrInsumoInsuficiente when the result would be
	// negative.
	AjustarStockTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error
}

type insumoRepo struct{ db *gorm.DB }

func NewInsumoRepository(db *gorm.DB) InsumoRepository { return &insumoRepo{db: db} }

func (r *insumoRepo) Create(ctx context.Context, i *model.Insumo) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *insumoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Insumo, error) {
	var i model.Insumo
	err := r.db.WithContext(ctx).First(&i, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *insumoRepo) FindByIDs(ctx context.Context, est uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]model.Insumo, error) {
	out := make(map[uuid.UUID]model.Insumo, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var insumos []model.Insumo
	err := r.db.WithContext(ctx).
		Where("establecimiento_id = ? AND id IN ? AND activo = true", est, ids).
		Find(&insumos).Error
	if err != nil {
		return nil, err
	}
	for _, i := range insumos {
		out[i.ID] = i
	}
	return out, nil
}

func (r *insumoRepo) List(ctx context.Context, est uuid.UUID) ([]model.Insumo, error) {
	var insumos []model.Insumo
	err := r.db.WithContext(ctx).
		Where("establecimiento_id = ? AND activo = true", est).
		Order("nombre ASC").Find(&insumos).Error
	return insumos, err
}

func (r *insumoRepo) Update(ctx context.Context, i *model.Insumo) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *insumoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Insumo{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *insumoRepo) AjustarStockTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	var i model.Insumo
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&i, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInsumoInsuficiente
		}
		return err
	}
	nuevo := i.StockActual.Add(delta)
	if nuevo.IsNegative() {
		return ErrInsumoInsuficiente
	}
	return tx.Model(&model.Insumo{}).Where("id = ?", id).Update("stock_actual", nuevo).Error
}
