package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Insumo is a consumable supply (feed, medicine, fuel) with its own stock.
// StockActual is decremented by actividad insumo detail lines.
type Insumo struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EstablecimientoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Nombre            string          `gorm:"not null"`
	Unidad            string          `gorm:"not null;default:'kg'"`
	StockActual       decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	Activo            bool            `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Insumo) TableName() string { return "insumos" }
