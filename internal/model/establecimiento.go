package model

import (
	"time"

	"github.com/google/uuid"
)

// Establecimiento is the tenant-scoping unit: every lote, categoría
// and actividad belongs to exactly one.
type Establecimiento struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Establecimiento) TableName() string { return "establecimientos" }
