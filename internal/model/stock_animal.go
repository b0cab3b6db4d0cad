package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockAnimal is the ledger row: one per (establecimiento, lote, categoría)
// holding head count and aggregate weight.
//
// Invariants, enforced by the repository on every mutation:
//
//	Cantidad >= 0, PesoTotal >= 0, Cantidad == 0 ⇒ PesoTotal == 0.
//
// Mutated exclusively inside activity / reversal transactions; never
// written directly by handlers.
type StockAnimal struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EstablecimientoID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_est_lote_cat"`
	LoteID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_est_lote_cat"`
	CategoriaAnimalID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_est_lote_cat"`
	Cantidad          int             `gorm:"not null"`
	PesoTotal         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	UpdatedAt         time.Time

	Lote      *Lote            `gorm:"foreignKey:LoteID"`
	Categoria *CategoriaAnimal `gorm:"foreignKey:CategoriaAnimalID"`
}

func (StockAnimal) TableName() string { return "stock_animales" }

// PesoPromedio returns PesoTotal/Cantidad rounded to the nearest kilo,
// or nil when the row holds no animals.
func (s *StockAnimal) PesoPromedio() *decimal.Decimal {
	if s == nil || s.Cantidad <= 0 {
		return nil
	}
	p := s.PesoTotal.Div(decimal.NewFromInt(int64(s.Cantidad))).Round(0)
	return &p
}
