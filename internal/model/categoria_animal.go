package model

import (
	"time"

	"github.com/google/uuid"
)

// Sexo values used by CategoriaAnimal and the reclassification rules.
const (
	SexoMacho  = "macho"
	SexoHembra = "hembra"
	SexoMixto  = "mixto"
)

// CategoriaAnimal classifies animals by species/sex/age stage.
// EstablecimientoID nil means the category is global (shared catalog);
// otherwise it is scoped to one establecimiento.
// A reclassification target must share Sexo with its source.
type CategoriaAnimal struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EstablecimientoID *uuid.UUID `gorm:"type:uuid;index"`
	Nombre            string     `gorm:"not null"`
	Sexo              string     `gorm:"not null"` // macho | hembra | mixto
	Edad              string     `gorm:"not null"` // e.g. "ternero", "novillo", "vaca"
	Activo            bool       `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (CategoriaAnimal) TableName() string { return "categorias_animales" }
