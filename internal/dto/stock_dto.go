package dto

import "github.com/shopspring/decimal"

type StockFilter struct {
	LoteID            string `form:"lote_id"             validate:"omitempty,uuid"`
	CategoriaAnimalID string `form:"categoria_animal_id" validate:"omitempty,uuid"`
}

type StockEntryResponse struct {
	LoteID            string           `json:"lote_id"`
	Lote              string           `json:"lote,omitempty"`
	CategoriaAnimalID string           `json:"categoria_animal_id"`
	Categoria         string           `json:"categoria,omitempty"`
	Cantidad          int              `json:"cantidad"`
	PesoTotal         decimal.Decimal  `json:"peso_total"`
	PesoPromedio      *decimal.Decimal `json:"peso_promedio,omitempty"`
}

type PesoPromedioResponse struct {
	LoteID            string           `json:"lote_id"`
	CategoriaAnimalID string           `json:"categoria_animal_id"`
	PesoPromedio      *decimal.Decimal `json:"peso_promedio"` // null when no stock
}

type MovimientoStockResponse struct {
	LoteID            string          `json:"lote_id"`
	CategoriaAnimalID string          `json:"categoria_animal_id"`
	ActividadID       *string         `json:"actividad_id,omitempty"`
	Motivo            string          `json:"motivo"`
	Cantidad          int             `json:"cantidad"`
	Peso              decimal.Decimal `json:"peso"`
	CantidadAnterior  int             `json:"cantidad_anterior"`
	CantidadNueva     int             `json:"cantidad_nueva"`
	CreatedAt         string          `json:"created_at"`
}
