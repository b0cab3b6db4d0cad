package service

import (
	"context"
	"fmt"
	"time"

	"partediario/internal/dto"
	"partediario/internal/model"
	"partediario/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// lineaAnimal is a fully parsed and resolved animal detail line, ready for
// the transaction engine.
type lineaAnimal struct {
	categoriaID         uuid.UUID
	categoriaAnteriorID *uuid.UUID
	loteID              uuid.UUID
	loteOrigenID        *uuid.UUID
	loteDestinoID       *uuid.UUID
	tipoMovimiento      *string
	cantidad            int
	peso                decimal.Decimal
	tipoPeso            string
	pesoOmitido         bool
}

type lineaInsumo struct {
	insumoID uuid.UUID
	cantidad decimal.Decimal
}

// solicitudActividad is the normalized activity request produced by a
// successful validation pass.
type solicitudActividad struct {
	tipo      string
	est       uuid.UUID
	fecha     time.Time
	hora      string
	nota      *string
	loteID    *uuid.UUID
	usuarioID uuid.UUID
	animales  []lineaAnimal
	insumos   []lineaInsumo
}

// Validador runs every check before any write and reports the complete list
// of violations in one *ErrValidacion, never failing fast on the first.
// Existence lookups are batched by id list.
type Validador struct {
	lotes      repository.LoteRepository
	categorias repository.CategoriaRepository
	insumos    repository.InsumoRepository
}

func NewValidador(lotes repository.LoteRepository, categorias repository.CategoriaRepository, insumos repository.InsumoRepository) *Validador {
	return &Validador{lotes: lotes, categorias: categorias, insumos: insumos}
}

// ValidarCrear validates a creation request.
func (v *Validador) ValidarCrear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearActividadRequest) (*solicitudActividad, error) {
	return v.validar(ctx, usuarioID, req, nil)
}

// ValidarActualizar validates an in-place edit. The existing activity's
// insumo lines are counted as already-reserved stock so the rows being
// replaced are not double-counted against availability.
func (v *Validador) ValidarActualizar(ctx context.Context, usuarioID uuid.UUID, existente *model.Actividad, req dto.ActualizarActividadRequest) (*solicitudActividad, error) {
	reservado := make(map[uuid.UUID]decimal.Decimal, len(existente.DetallesInsumos))
	for _, d := range existente.DetallesInsumos {
		reservado[d.InsumoID] = reservado[d.InsumoID].Add(d.Cantidad)
	}
	return v.validar(ctx, usuarioID, req, reservado)
}

func (v *Validador) validar(ctx context.Context, usuarioID uuid.UUID, req dto.CrearActividadRequest, reservado map[uuid.UUID]decimal.Decimal) (*solicitudActividad, error) {
	campos := make(map[string]string)

	sol := &solicitudActividad{
		tipo:      req.Tipo,
		hora:      req.Hora,
		nota:      req.Nota,
		usuarioID: usuarioID,
	}

	est, err := uuid.Parse(req.EstablecimientoID)
	if err != nil {
		campos["establecimiento_id"] = "requerido"
	}
	sol.est = est

	// Required date/time
	if req.Fecha == "" {
		campos["fecha"] = "requerida"
	} else if f, err := time.Parse("2006-01-02", req.Fecha); err != nil {
		campos["fecha"] = "formato inválido (YYYY-MM-DD)"
	} else {
		sol.fecha = f
	}
	if req.Hora == "" {
		campos["hora"] = "requerida"
	} else if _, err := time.Parse("15:04", req.Hora); err != nil {
		campos["hora"] = "formato inválido (HH:MM)"
	}

	// Header lote is required for the kinds whose lines inherit it
	if req.LoteID != nil {
		if id, err := uuid.Parse(*req.LoteID); err == nil {
			sol.loteID = &id
		} else {
			campos["lote_id"] = "formato inválido"
		}
	}
	switch req.Tipo {
	case model.TipoActividadMixta, model.TipoReclasificacion, model.TipoDestete:
		if sol.loteID == nil {
			campos["lote_id"] = "selección de lote requerida"
		}
	}

	// At least one detail line where the kind requires it
	switch req.Tipo {
	case model.TipoMovimientoAnimal, model.TipoReclasificacion, model.TipoDestete, model.TipoTraslado:
		if len(req.DetallesAnimales) == 0 {
			campos["detalles_animales"] = "se requiere al menos una línea"
		}
	case model.TipoActividadMixta:
		if len(req.DetallesAnimales) == 0 && len(req.DetallesInsumos) == 0 {
			campos["detalles"] = "se requiere al menos una línea de animales o insumos"
		}
	}

	// Parse lines, collecting every referenced id for batched lookups.
	var loteIDs, catIDs, insumoIDs []uuid.UUID
	if sol.loteID != nil {
		loteIDs = append(loteIDs, *sol.loteID)
	}

	animales := make([]lineaAnimal, len(req.DetallesAnimales))
	for i, d := range req.DetallesAnimales {
		pref := fmt.Sprintf("detalles_animales[%d]", i)
		lin := lineaAnimal{cantidad: d.Cantidad, tipoPeso: d.TipoPeso}

		if id, err := uuid.Parse(d.CategoriaAnimalID); err == nil {
			lin.categoriaID = id
			catIDs = append(catIDs, id)
		} else {
			campos[pref+".categoria_animal_id"] = "requerida"
		}
		if d.CategoriaAnimalAnteriorID != nil {
			if id, err := uuid.Parse(*d.CategoriaAnimalAnteriorID); err == nil {
				lin.categoriaAnteriorID = &id
				catIDs = append(catIDs, id)
			} else {
				campos[pref+".categoria_animal_anterior_id"] = "formato inválido"
			}
		}

		switch {
		case d.LoteID != nil:
			if id, err := uuid.Parse(*d.LoteID); err == nil {
				lin.loteID = id
				loteIDs = append(loteIDs, id)
			} else {
				campos[pref+".lote_id"] = "formato inválido"
			}
		case sol.loteID != nil:
			lin.loteID = *sol.loteID
		case req.Tipo != model.TipoTraslado:
			campos[pref+".lote_id"] = "requerido"
		}

		if d.LoteOrigenID != nil {
			if id, err := uuid.Parse(*d.LoteOrigenID); err == nil {
				lin.loteOrigenID = &id
				loteIDs = append(loteIDs, id)
			} else {
				campos[pref+".lote_origen_id"] = "formato inválido"
			}
		}
		if d.LoteDestinoID != nil {
			if id, err := uuid.Parse(*d.LoteDestinoID); err == nil {
				lin.loteDestinoID = &id
				loteIDs = append(loteIDs, id)
			} else {
				campos[pref+".lote_destino_id"] = "formato inválido"
			}
		}

		lin.tipoMovimiento = d.TipoMovimiento
		if d.Peso == nil {
			lin.pesoOmitido = true
		} else {
			if d.Peso.IsNegative() {
				campos[pref+".peso"] = "debe ser mayor o igual a cero"
			}
			lin.peso = *d.Peso
			lin.pesoOmitido = d.Peso.IsZero()
		}
		if lin.tipoPeso == "" {
			lin.tipoPeso = model.PesoTotal
		}
		animales[i] = lin
	}

	insumos := make([]lineaInsumo, len(req.DetallesInsumos))
	for i, d := range req.DetallesInsumos {
		pref := fmt.Sprintf("detalles_insumos[%d]", i)
		lin := lineaInsumo{cantidad: d.Cantidad}
		if id, err := uuid.Parse(d.InsumoID); err == nil {
			lin.insumoID = id
			insumoIDs = append(insumoIDs, id)
		} else {
			campos[pref+".insumo_id"] = "requerido"
		}
		insumos[i] = lin
	}

	// Batched referential lookups
	lotesMap, err := v.lotes.FindByIDs(ctx, est, loteIDs)
	if err != nil {
		return nil, err
	}
	catsMap, err := v.categorias.FindByIDs(ctx, est, catIDs)
	if err != nil {
		return nil, err
	}
	insumosMap, err := v.insumos.FindByIDs(ctx, est, insumoIDs)
	if err != nil {
		return nil, err
	}

	if sol.loteID != nil {
		if _, ok := lotesMap[*sol.loteID]; !ok {
			campos["lote_id"] = "el lote no existe"
		}
	}

	for i, lin := range animales {
		pref := fmt.Sprintf("detalles_animales[%d]", i)

		if lin.cantidad <= 0 {
			campos[pref+".cantidad"] = "debe ser mayor a cero"
		}

		if lin.categoriaID != uuid.Nil {
			if _, ok := catsMap[lin.categoriaID]; !ok {
				campos[pref+".categoria_animal_id"] = "la categoría no existe"
			}
		}
		if lin.categoriaAnteriorID != nil {
			if _, ok := catsMap[*lin.categoriaAnteriorID]; !ok {
				campos[pref+".categoria_animal_anterior_id"] = "la categoría no existe"
			}
		}
		if lin.loteID != uuid.Nil {
			if _, ok := lotesMap[lin.loteID]; !ok {
				campos[pref+".lote_id"] = "el lote no existe"
			}
		}
		if lin.loteOrigenID != nil {
			if _, ok := lotesMap[*lin.loteOrigenID]; !ok {
				campos[pref+".lote_origen_id"] = "el lote no existe"
			}
		}
		if lin.loteDestinoID != nil {
			if _, ok := lotesMap[*lin.loteDestinoID]; !ok {
				campos[pref+".lote_destino_id"] = "el lote no existe"
			}
		}

		switch req.Tipo {
		case model.TipoMovimientoAnimal:
			if lin.tipoMovimiento == nil {
				campos[pref+".tipo_movimiento"] = "requerido"
			} else {
				tm, ok := model.TipoMovimientoPorCodigo(*lin.tipoMovimiento)
				if !ok {
					campos[pref+".tipo_movimiento"] = "tipo de movimiento desconocido"
				} else if lin.pesoOmitido && !tm.PesoOpcional {
					campos[pref+".peso"] = "requerido para este tipo de movimiento"
				}
			}

		case model.TipoReclasificacion, model.TipoDestete:
			if lin.categoriaAnteriorID == nil {
				campos[pref+".categoria_animal_anterior_id"] = "requerida"
				break
			}
			origen, okO := catsMap[*lin.categoriaAnteriorID]
			destino, okD := catsMap[lin.categoriaID]
			if !okO || !okD {
				break
			}
			if origen.ID == destino.ID {
				campos[pref+".categoria_animal_id"] = "la categoría destino debe ser distinta de la actual"
			} else if req.Tipo == model.TipoReclasificacion && origen.Sexo != destino.Sexo {
				campos[pref+".categoria_animal_id"] = "la categoría destino debe compartir sexo con la actual"
			}
			if req.Tipo == model.TipoDestete && lin.pesoOmitido {
				campos[pref+".peso"] = "requerido"
			}

		case model.TipoTraslado:
			if lin.loteOrigenID == nil {
				campos[pref+".lote_origen_id"] = "requerido"
			}
			if lin.loteDestinoID == nil {
				campos[pref+".lote_destino_id"] = "requerido"
			}
			if lin.loteOrigenID != nil && lin.loteDestinoID != nil && *lin.loteOrigenID == *lin.loteDestinoID {
				campos[pref+".lote_destino_id"] = "debe ser distinto del lote origen"
			}
			if lin.pesoOmitido {
				campos[pref+".peso"] = "requerido"
			}
		}
	}

	// Supply quantities: positive and within availability. Availability is
	// stock_actual plus whatever this same edit is releasing.
	pedido := make(map[uuid.UUID]decimal.Decimal)
	for i, lin := range insumos {
		pref := fmt.Sprintf("detalles_insumos[%d]", i)
		if !lin.cantidad.IsPositive() {
			campos[pref+".cantidad"] = "debe ser mayor a cero"
			continue
		}
		if lin.insumoID == uuid.Nil {
			continue
		}
		ins, ok := insumosMap[lin.insumoID]
		if !ok {
			campos[pref+".insumo_id"] = "el insumo no existe"
			continue
		}
		pedido[lin.insumoID] = pedido[lin.insumoID].Add(lin.cantidad)
		disponible := ins.StockActual
		if reservado != nil {
			disponible = disponible.Add(reservado[lin.insumoID])
		}
		if pedido[lin.insumoID].GreaterThan(disponible) {
			campos[pref+".cantidad"] = fmt.Sprintf("supera el stock disponible (%s %s)", disponible.String(), ins.Unidad)
		}
	}

	if len(campos) > 0 {
		return nil, &ErrValidacion{Campos: campos}
	}

	sol.animales = animales
	sol.insumos = insumos
	return sol, nil
}
