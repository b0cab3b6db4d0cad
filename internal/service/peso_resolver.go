package service

import (
	"errors"

	"partediario/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PesoResolver computes the per-head average weight of a (lote, categoría)
// pair for detail lines that omit an explicit weight (births, deaths).
// Read-only; it must run against the same transactional snapshot the engine
// later mutates, so every method takes the live tx.
type PesoResolver struct {
	stock repository.StockRepository
}

func NewPesoResolver(stock repository.StockRepository) *PesoResolver {
	return &PesoResolver{stock: stock}
}

// ResolverPromedioTx returns round(peso_total/cantidad) for the stock row, or
// nil when the row is absent or empty; the caller then records the line as
// zero-weight TOTAL.
func (r *PesoResolver) ResolverPromedioTx(tx *gorm.DB, est, lote, cat uuid.UUID) (*decimal.Decimal, error) {
	row, err := r.stock.FindTx(tx, est, lote, cat)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row.PesoPromedio(), nil
}
