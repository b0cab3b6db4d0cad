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

// StockClave identifies one ledger row within an establecimiento.
type StockClave struct {
	LoteID            uuid.UUID
	CategoriaAnimalID uuid.UUID
}

// StockRepository owns the authoritative herd inventory. All mutations go
// through AjustarTx/MoverTx inside a caller-held transaction; the read-check-
// write is serialized with a row-level lock so two concurrent movements can
// never both apply deltas against a stale cantidad.
type StockRepository interface {
	Find(ctx context.Context, est, lote, cat uuid.UUID) (*model.StockAnimal, error)
	// FindTx reads the row from the transaction's snapshot, without locking.
	// Used by the weight resolver before the same tx mutates the row.
	FindTx(tx *gorm.DB, est, lote, cat uuid.UUID) (*model.StockAnimal, error)
	List(ctx context.Context, est uuid.UUID, loteID, catID *uuid.UUID) ([]model.StockAnimal, error)

	// AjustarTx applies a signed delta and returns the resulting row.
	// Fails with ErrStockNegativo when the result would be negative.
	AjustarTx(tx *gorm.DB, est, lote, cat uuid.UUID, dCantidad int, dPeso decimal.Decimal) (*model.StockAnimal, error)

	// MoverTx decrements the origin row and increments/creates the
	// destination row. Fails with ErrStockInsuficiente when the origin
	// lacks enough head or weight. Returns both resulting rows.
	MoverTx(tx *gorm.DB, est uuid.UUID, origen, destino StockClave, cantidad int, peso decimal.Decimal) (*model.StockAnimal, *model.StockAnimal, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) Find(ctx context.Context, est, lote, cat uuid.UUID) (*model.StockAnimal, error) {
	var s model.StockAnimal
	err := r.db.WithContext(ctx).
		Where("establecimiento_id = ? AND lote_id = ? AND categoria_animal_id = ?", est, lote, cat).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stockRepo) FindTx(tx *gorm.DB, est, lote, cat uuid.UUID) (*model.StockAnimal, error) {
	var s model.StockAnimal
	err := tx.
		Where("establecimiento_id = ? AND lote_id = ? AND categoria_animal_id = ?", est, lote, cat).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stockRepo) List(ctx context.Context, est uuid.UUID, loteID, catID *uuid.UUID) ([]model.StockAnimal, error) {
	q := r.db.WithContext(ctx).
		Preload("Lote").Preload("Categoria").
		Where("establecimiento_id = ?", est)
	if loteID != nil {
		q = q.Where("lote_id = ?", *loteID)
	}
	if catID != nil {
		q = q.Where("categoria_animal_id = ?", *catID)
	}
	var rows []model.StockAnimal
	err := q.Order("updated_at DESC").Find(&rows).Error
	return rows, err
}

func (r *stockRepo) AjustarTx(tx *gorm.DB, est, lote, cat uuid.UUID, dCantidad int, dPeso decimal.Decimal) (*model.StockAnimal, error) {
	return ajustar(tx, est, lote, cat, dCantidad, dPeso, ErrStockNegativo)
}

func (r *stockRepo) MoverTx(tx *gorm.DB, est uuid.UUID, origen, destino StockClave, cantidad int, peso decimal.Decimal) (*model.StockAnimal, *model.StockAnimal, error) {
	src, err := ajustar(tx, est, origen.LoteID, origen.CategoriaAnimalID, -cantidad, peso.Neg(), ErrStockInsuficiente)
	if err != nil {
		return nil, nil, err
	}
	dst, err := ajustar(tx, est, destino.LoteID, destino.CategoriaAnimalID, cantidad, peso, ErrStockInsuficiente)
	if err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

func (r *stockRepo) DB() *gorm.DB { return r.db }

// ajustar is the single read-check-write primitive. The SELECT takes a row
// lock (FOR UPDATE) so concurrent adjustments on the same (lote, categoría)
// serialize; absent rows are created when the delta is non-negative.
// When the head count reaches zero the residual weight is dropped to zero,
// preserving the cantidad == 0 ⇒ peso_total == 0 invariant.
func ajustar(tx *gorm.DB, est, lote, cat uuid.UUID, dCantidad int, dPeso decimal.Decimal, guard error) (*model.StockAnimal, error) {
	var row model.StockAnimal
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("establecimiento_id = ? AND lote_id = ? AND categoria_animal_id = ?", est, lote, cat).
		First(&row).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if dCantidad < 0 || dPeso.IsNegative() {
			return nil, guard
		}
		row = model.StockAnimal{
			EstablecimientoID: est,
			LoteID:            lote,
			CategoriaAnimalID: cat,
			Cantidad:          dCantidad,
			PesoTotal:         dPeso,
		}
		if row.Cantidad == 0 {
			row.PesoTotal = decimal.Zero
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, err
		}
		return &row, nil
	case err != nil:
		return nil, err
	}

	nuevaCantidad := row.Cantidad + dCantidad
	nuevoPeso := row.PesoTotal.Add(dPeso)
	if nuevaCantidad < 0 || nuevoPeso.IsNegative() {
		return nil, guard
	}
	if nuevaCantidad == 0 {
		nuevoPeso = decimal.Zero
	}

	row.Cantidad = nuevaCantidad
	row.PesoTotal = nuevoPeso
	if err := tx.Model(&model.StockAnimal{}).Where("id = ?", row.ID).
		Updates(map[string]interface{}{"cantidad": nuevaCantidad, "peso_total": nuevoPeso}).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
