package model

import (
	"time"

	"github.com/google/uuid"
)

// Lote is a named grouping of animals within an establecimiento.
// Never deleted while it holds stock; referenced by stock rows and actividades.
type Lote struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EstablecimientoID uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre            string    `gorm:"not null"`
	Activo            bool      `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Establecimiento *Establecimiento `gorm:"foreignKey:EstablecimientoID"`
}

func (Lote) TableName() string { return "lotes" }
