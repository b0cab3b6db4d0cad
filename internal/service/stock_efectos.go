package service

import (
	"fmt"

	"partediario/internal/model"
	"partediario/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// efectosStock applies (or inverts) the stock deltas implied by an activity's
// detail lines, writing one audit row per touched ledger row inside the same
// transaction. Shared by the transaction engine (create, diff-based update)
// and the reversal engine.
type efectosStock struct {
	stock       repository.StockRepository
	movimientos repository.MovimientoStockRepository
	insumos     repository.InsumoRepository
}

// aplicarAnimales mutates the ledger for every animal line and returns the
// stock keys the operation consumed (decremented), which the caller uses to
// lock dependent activities.
func (e *efectosStock) aplicarAnimales(tx *gorm.DB, a *model.Actividad, lineas []model.ActividadDetalleAnimal, invertir bool, motivo string) ([]repository.StockClave, error) {
	var consumidas []repository.StockClave

	for i, d := range lineas {
		switch a.Tipo {
		case model.TipoMovimientoAnimal:
			if d.TipoMovimiento == nil {
				return nil, fmt.Errorf("línea %d sin tipo de movimiento", i)
			}
			tm, ok := model.TipoMovimientoPorCodigo(*d.TipoMovimiento)
			if !ok {
				return nil, fmt.Errorf("tipo de movimiento desconocido: %s", *d.TipoMovimiento)
			}
			dir := tm.Direccion
			if invertir {
				dir = -dir
			}
			dCant := dir * d.Cantidad
			dPeso := d.PesoTotalLinea()
			if dir < 0 {
				dPeso = dPeso.Neg()
			}
			fila, err := e.stock.AjustarTx(tx, a.EstablecimientoID, d.LoteID, d.CategoriaAnimalID, dCant, dPeso)
			if err != nil {
				return nil, err
			}
			if err := e.auditar(tx, a, motivo, dCant, dPeso, fila); err != nil {
				return nil, err
			}
			if dir < 0 {
				consumidas = append(consumidas, repository.StockClave{LoteID: d.LoteID, CategoriaAnimalID: d.CategoriaAnimalID})
			}

		case model.TipoActividadMixta:
			// Bookkeeping only: lot/category selection without a stock formula.

		case model.TipoReclasificacion, model.TipoDestete:
			if d.CategoriaAnimalAnteriorID == nil {
				return nil, fmt.Errorf("línea %d sin categoría anterior", i)
			}
			origen := repository.StockClave{LoteID: d.LoteID, CategoriaAnimalID: *d.CategoriaAnimalAnteriorID}
			destino := repository.StockClave{LoteID: d.LoteID, CategoriaAnimalID: d.CategoriaAnimalID}
			claves, err := e.mover(tx, a, origen, destino, d, invertir, motivo)
			if err != nil {
				return nil, err
			}
			consumidas = append(consumidas, claves...)

		case model.TipoTraslado:
			if d.LoteOrigenID == nil || d.LoteDestinoID == nil {
				return nil, fmt.Errorf("línea %d sin lote origen/destino", i)
			}
			origen := repository.StockClave{LoteID: *d.LoteOrigenID, CategoriaAnimalID: d.CategoriaAnimalID}
			destino := repository.StockClave{LoteID: *d.LoteDestinoID, CategoriaAnimalID: d.CategoriaAnimalID}
			claves, err := e.mover(tx, a, origen, destino, d, invertir, motivo)
			if err != nil {
				return nil, err
			}
			consumidas = append(consumidas, claves...)

		default:
			return nil, fmt.Errorf("tipo de actividad desconocido: %s", a.Tipo)
		}
	}
	return consumidas, nil
}

// mover applies one category/lot move using the recorded snapshot quantity
// and weight, inverted when requested.
func (e *efectosStock) mover(tx *gorm.DB, a *model.Actividad, origen, destino repository.StockClave, d model.ActividadDetalleAnimal, invertir bool, motivo string) ([]repository.StockClave, error) {
	if invertir {
		origen, destino = destino, origen
	}
	peso := d.PesoTotalLinea()
	src, dst, err := e.stock.MoverTx(tx, a.EstablecimientoID, origen, destino, d.Cantidad, peso)
	if err != nil {
		return nil, err
	}
	if err := e.auditar(tx, a, motivo, -d.Cantidad, peso.Neg(), src); err != nil {
		return nil, err
	}
	if err := e.auditar(tx, a, motivo, d.Cantidad, peso, dst); err != nil {
		return nil, err
	}
	return []repository.StockClave{origen}, nil
}

func (e *efectosStock) auditar(tx *gorm.DB, a *model.Actividad, motivo string, dCant int, dPeso decimal.Decimal, fila *model.StockAnimal) error {
	mov := &model.MovimientoStock{
		EstablecimientoID: a.EstablecimientoID,
		LoteID:            fila.LoteID,
		CategoriaAnimalID: fila.CategoriaAnimalID,
		ActividadID:       &a.ID,
		Motivo:            motivo,
		Cantidad:          dCant,
		Peso:              dPeso,
		CantidadAnterior:  fila.Cantidad - dCant,
		CantidadNueva:     fila.Cantidad,
	}
	return e.movimientos.CreateTx(tx, mov)
}

// aplicarInsumos decrements (or re-credits when inverting) the supply stock
// for every insumo line.
func (e *efectosStock) aplicarInsumos(tx *gorm.DB, lineas []model.ActividadDetalleInsumo, invertir bool) error {
	for _, d := range lineas {
		delta := d.Cantidad.Neg()
		if invertir {
			delta = d.Cantidad
		}
		if err := e.insumos.AjustarStockTx(tx, d.InsumoID, delta); err != nil {
			return err
		}
	}
	return nil
}
