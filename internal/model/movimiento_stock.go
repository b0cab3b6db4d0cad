package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovimientoStock is the append-only audit row written for every stock
// adjustment, inside the same transaction as the adjustment itself.
type MovimientoStock struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EstablecimientoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LoteID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoriaAnimalID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ActividadID       *uuid.UUID      `gorm:"type:uuid;index"`
	Motivo            string          `gorm:"not null"` // activity kind or "reversion"
	Cantidad          int             `gorm:"not null"` // signed delta
	Peso              decimal.Decimal `gorm:"type:decimal(14,2);not null"` // signed delta
	CantidadAnterior  int             `gorm:"not null"`
	CantidadNueva     int             `gorm:"not null"`
	CreatedAt         time.Time
}

func (MovimientoStock) TableName() string { return "movimientos_stock" }
