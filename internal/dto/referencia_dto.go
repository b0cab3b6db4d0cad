package dto

import "github.com/shopspring/decimal"

type CrearEstablecimientoRequest struct {
	Nombre string `json:"nombre" validate:"required,min=1"`
}

type EstablecimientoResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type CrearLoteRequest struct {
	EstablecimientoID string `json:"establecimiento_id" validate:"required,uuid"`
	Nombre            string `json:"nombre"             validate:"required,min=1"`
}

type LoteResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type CrearCategoriaRequest struct {
	EstablecimientoID *string `json:"establecimiento_id" validate:"omitempty,uuid"` // nil = global
	Nombre            string  `json:"nombre" validate:"required,min=1"`
	Sexo              string  `json:"sexo"   validate:"required,oneof=macho hembra mixto"`
	Edad              string  `json:"edad"   validate:"required,min=1"`
}

type CategoriaResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Sexo   string `json:"sexo"`
	Edad   string `json:"edad"`
}

type CrearInsumoRequest struct {
	EstablecimientoID string          `json:"establecimiento_id" validate:"required,uuid"`
	Nombre            string          `json:"nombre"             validate:"required,min=1"`
	Unidad            string          `json:"unidad"             validate:"required,min=1"`
	StockActual       decimal.Decimal `json:"stock_actual"       validate:"min=0"`
}

type InsumoResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	Unidad      string          `json:"unidad"`
	StockActual decimal.Decimal `json:"stock_actual"`
}

type TipoMovimientoResponse struct {
	Codigo       string `json:"codigo"`
	Nombre       string `json:"nombre"`
	Direccion    int    `json:"direccion"`
	PesoOpcional bool   `json:"peso_opcional"`
}
