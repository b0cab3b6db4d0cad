package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Activity kinds.
const (
	TipoMovimientoAnimal = "movimiento"       // dated entry/exit/birth/death per movement-type code
	TipoActividadMixta   = "actividad_mixta"  // bookkeeping only (e.g. castration), no stock delta
	TipoReclasificacion  = "reclasificacion"  // full stock row moved to a same-sex category
	TipoDestete          = "destete"          // partial split from one category to another
	TipoTraslado         = "traslado"         // move between lotes, same category
)

// Activity reversal states. Transitions:
//
//	activa → revertida  (Revertir)
//	activa → bloqueada  (a later activity consumed this one's output stock)
const (
	EstadoActiva    = "activa"
	EstadoRevertida = "revertida"
	EstadoBloqueada = "bloqueada"
)

// Weight semantics of a detail line.
const (
	PesoTotal    = "TOTAL"    // peso is the aggregate for the whole line
	PesoPromedio = "PROMEDIO" // peso is a per-head average
)

// Baja is the soft-delete triple: both fields are set together or not at all.
type Baja struct {
	Fecha     *time.Time `gorm:"column:baja_fecha"`
	UsuarioID *uuid.UUID `gorm:"column:baja_usuario_id;type:uuid"`
}

// Actividad is the header record of one submitted parte diario form.
// Soft-deleted (never hard-deleted) via the embedded Baja triple; soft
// delete is an audit/visibility flag and does NOT reverse stock effects.
type Actividad struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EstablecimientoID uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo              string    `gorm:"not null;index"`
	Fecha             time.Time `gorm:"type:date;not null;index"`
	Hora              string    `gorm:"not null"` // HH:MM
	Nota              *string
	UsuarioID         uuid.UUID  `gorm:"type:uuid;not null"`
	LoteID            *uuid.UUID `gorm:"type:uuid;index"`

	Estado       string     `gorm:"not null;default:'activa';index"`
	RevertidaAt  *time.Time
	RevertidaPor *uuid.UUID `gorm:"type:uuid"`

	Baja Baja `gorm:"embedded"`

	CreatedAt time.Time
	UpdatedAt time.Time

	DetallesAnimales []ActividadDetalleAnimal `gorm:"foreignKey:ActividadID"`
	DetallesInsumos  []ActividadDetalleInsumo `gorm:"foreignKey:ActividadID"`
}

func (Actividad) TableName() string { return "actividades" }

// Eliminada reports whether the soft-delete triple is set.
func (a *Actividad) Eliminada() bool { return a.Baja.Fecha != nil }

// Deshacible is the derived "can this be undone" flag shown to callers.
// Only the kinds that record a reversible snapshot qualify, and only while
// no later activity has consumed the resulting stock state.
func (a *Actividad) Deshacible() bool {
	if a.Estado != EstadoActiva || a.Eliminada() {
		return false
	}
	switch a.Tipo {
	case TipoReclasificacion, TipoDestete, TipoTraslado:
		return true
	}
	return false
}

// ActividadDetalleAnimal is one animal line of an activity. It doubles as the
// reversal snapshot: CategoriaAnimalAnteriorID, LoteOrigenID/LoteDestinoID and
// the recorded cantidad/peso are enough to invert the line without consulting
// any other activity's history.
//
// Replaced wholesale on edit (delete-all-then-reinsert, never per-row update).
type ActividadDetalleAnimal struct {
	ID                        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ActividadID               uuid.UUID  `gorm:"type:uuid;not null;index"`
	CategoriaAnimalID         uuid.UUID  `gorm:"type:uuid;not null"`
	CategoriaAnimalAnteriorID *uuid.UUID `gorm:"type:uuid"` // reclasificación/destete source
	LoteID                    uuid.UUID  `gorm:"type:uuid;not null"`
	LoteOrigenID              *uuid.UUID `gorm:"type:uuid"` // traslado source
	LoteDestinoID             *uuid.UUID `gorm:"type:uuid"` // traslado destination
	TipoMovimiento            *string    // movement-type code, movimiento only
	Cantidad                  int        `gorm:"not null"`
	Peso                      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TipoPeso                  string          `gorm:"not null;default:'TOTAL'"` // TOTAL | PROMEDIO
}

func (ActividadDetalleAnimal) TableName() string { return "actividad_detalles_animales" }

// PesoTotalLinea normalizes the line weight to an aggregate regardless of
// TipoPeso.
func (d *ActividadDetalleAnimal) PesoTotalLinea() decimal.Decimal {
	if d.TipoPeso == PesoPromedio {
		return d.Peso.Mul(decimal.NewFromInt(int64(d.Cantidad)))
	}
	return d.Peso
}

// ActividadDetalleInsumo is one supply-consumption line of an activity.
// Same create/replace lifecycle as animal lines.
type ActividadDetalleInsumo struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ActividadID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InsumoID    uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad    decimal.Decimal `gorm:"type:decimal(14,3);not null"`
}

func (ActividadDetalleInsumo) TableName() string { return "actividad_detalles_insumos" }
