package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// DetalleAnimalRequest is one animal line of an activity submission.
// Referential and business constraints (existence, quantities, sex rules) are
// checked by the validation layer, which reports every violation at once;
// only the id formats are enforced at bind time.
type DetalleAnimalRequest struct {
	CategoriaAnimalID         string  `json:"categoria_animal_id"          validate:"omitempty,uuid"`
	CategoriaAnimalAnteriorID *string `json:"categoria_animal_anterior_id" validate:"omitempty,uuid"`
	LoteID                    *string `json:"lote_id"                      validate:"omitempty,uuid"` // defaults to header lote
	LoteOrigenID              *string `json:"lote_origen_id"               validate:"omitempty,uuid"`
	LoteDestinoID             *string `json:"lote_destino_id"              validate:"omitempty,uuid"`
	TipoMovimiento            *string `json:"tipo_movimiento"`
	Cantidad                  int     `json:"cantidad"`
	// Peso nil means omitted, resolved to the lot/category average when the
	// movement type allows it.
	Peso     *decimal.Decimal `json:"peso"`
	TipoPeso string           `json:"tipo_peso" validate:"omitempty,oneof=TOTAL PROMEDIO"`
}

// DetalleInsumoRequest is one supply-consumption line.
type DetalleInsumoRequest struct {
	InsumoID string          `json:"insumo_id" validate:"omitempty,uuid"`
	Cantidad decimal.Decimal `json:"cantidad"`
}

type CrearActividadRequest struct {
	Tipo              string                 `json:"tipo"               validate:"required,oneof=movimiento actividad_mixta reclasificacion destete traslado"`
	EstablecimientoID string                 `json:"establecimiento_id" validate:"required,uuid"`
	Fecha             string                 `json:"fecha"`  // YYYY-MM-DD
	Hora              string                 `json:"hora"`   // HH:MM
	Nota              *string                `json:"nota"`
	LoteID            *string                `json:"lote_id" validate:"omitempty,uuid"`
	DetallesAnimales  []DetalleAnimalRequest `json:"detalles_animales"`
	DetallesInsumos   []DetalleInsumoRequest `json:"detalles_insumos"`
}

// ActualizarActividadRequest carries the same shape as creation: edits are a
// destructive replace, the caller resends unchanged lines.
type ActualizarActividadRequest = CrearActividadRequest

type ActividadFilter struct {
	Fecha  string `form:"fecha"`
	Tipo   string `form:"tipo"`
	Estado string `form:"estado,default=all"`
	Page   int    `form:"page,default=1"  validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleAnimalResponse struct {
	CategoriaAnimalID         string          `json:"categoria_animal_id"`
	CategoriaAnimalAnteriorID *string         `json:"categoria_animal_anterior_id,omitempty"`
	LoteID                    string          `json:"lote_id"`
	LoteOrigenID              *string         `json:"lote_origen_id,omitempty"`
	LoteDestinoID             *string         `json:"lote_destino_id,omitempty"`
	TipoMovimiento            *string         `json:"tipo_movimiento,omitempty"`
	Cantidad                  int             `json:"cantidad"`
	Peso                      decimal.Decimal `json:"peso"`
	TipoPeso                  string          `json:"tipo_peso"`
}

type DetalleInsumoResponse struct {
	InsumoID string          `json:"insumo_id"`
	Cantidad decimal.Decimal `json:"cantidad"`
}

type ActividadResponse struct {
	ID               string                  `json:"id"`
	Tipo             string                  `json:"tipo"`
	Fecha            string                  `json:"fecha"`
	Hora             string                  `json:"hora"`
	Nota             *string                 `json:"nota,omitempty"`
	LoteID           *string                 `json:"lote_id,omitempty"`
	Estado           string                  `json:"estado"`
	Deshacible       bool                    `json:"deshacible"`
	Eliminada        bool                    `json:"eliminada"`
	DetallesAnimales []DetalleAnimalResponse `json:"detalles_animales"`
	DetallesInsumos  []DetalleInsumoResponse `json:"detalles_insumos"`
	CreatedAt        string                  `json:"created_at"`
}

// ReversibilidadResponse answers "can this activity be undone" without
// touching any stock.
type ReversibilidadResponse struct {
	ActividadID string `json:"actividad_id"`
	Deshacible  bool   `json:"deshacible"`
	Motivo      string `json:"motivo,omitempty"`
}

type ActividadListResponse struct {
	Data  []ActividadResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}
