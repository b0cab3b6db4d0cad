package service

import (
	"context"
	"errors"
	"time"

	"partediario/internal/dto"
	"partediario/internal/model"
	"partediario/internal/repository"
	"partediario/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ActividadService is the activity transaction engine: it turns a validated
// request into one committed header plus its detail batch, applying the stock
// deltas the activity kind implies, all inside a single transaction.
type ActividadService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearActividadRequest) (*dto.ActividadResponse, error)
	Actualizar(ctx context.Context, usuarioID, id uuid.UUID, req dto.ActualizarActividadRequest) (*dto.ActividadResponse, error)
	DarDeBaja(ctx context.Context, id, usuarioID uuid.UUID) error
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ActividadResponse, error)
	Listar(ctx context.Context, est uuid.UUID, f dto.ActividadFilter) (*dto.ActividadListResponse, error)
}

type actividadService struct {
	actividades repository.ActividadRepository
	validador   *Validador
	resolver    *PesoResolver
	efectos     efectosStock
	dispatcher  *worker.Dispatcher
}

func NewActividadService(
	actividades repository.ActividadRepository,
	stock repository.StockRepository,
	movimientos repository.MovimientoStockRepository,
	insumos repository.InsumoRepository,
	validador *Validador,
	dispatcher *worker.Dispatcher,
) ActividadService {
	return &actividadService{
		actividades: actividades,
		validador:   validador,
		resolver:    NewPesoResolver(stock),
		efectos:     efectosStock{stock: stock, movimientos: movimientos, insumos: insumos},
		dispatcher:  dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// 1. Validate (complete violation list, before any write).
// 2. In one transaction: resolve omitted weights from the same snapshot,
//    insert header + detail batch, apply stock deltas, lock dependents.
// 3. After commit: fire-and-forget receipt job.

func (s *actividadService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearActividadRequest) (*dto.ActividadResponse, error) {
	sol, err := s.validador.ValidarCrear(ctx, usuarioID, req)
	if err != nil {
		return nil, err
	}

	var actividad model.Actividad
	txErr := runTx(ctx, s.actividades.DB(), func(tx *gorm.DB) error {
		actividad = model.Actividad{
			EstablecimientoID: sol.est,
			Tipo:              sol.tipo,
			Fecha:             sol.fecha,
			Hora:              sol.hora,
			Nota:              sol.nota,
			UsuarioID:         sol.usuarioID,
			LoteID:            sol.loteID,
			Estado:            model.EstadoActiva,
		}

		detalles, err := s.construirDetalles(tx, sol)
		if err != nil {
			return err
		}
		actividad.DetallesAnimales = detalles
		actividad.DetallesInsumos = construirInsumos(sol)

		if err := s.actividades.CreateTx(tx, &actividad); err != nil {
			return err
		}

		consumidas, err := s.efectos.aplicarAnimales(tx, &actividad, actividad.DetallesAnimales, false, actividad.Tipo)
		if err != nil {
			return err
		}
		if err := s.efectos.aplicarInsumos(tx, actividad.DetallesInsumos, false); err != nil {
			return err
		}
		if len(consumidas) > 0 {
			if err := s.actividades.BloquearDependientesTx(tx, sol.est, consumidas, actividad.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Receipt PDF + email job. Best effort, never blocks the caller.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueParteDiario(ctx, worker.ParteDiarioPayload{
			ActividadID: actividad.ID.String(),
		})
	}

	return actividadToResponse(&actividad), nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// Destructive replace with diff-based stock accounting: the old lines' deltas
// are inverted, the detail rows replaced wholesale, and the new lines' deltas
// applied, all in the same transaction, so an edit never double-counts.

func (s *actividadService) Actualizar(ctx context.Context, usuarioID, id uuid.UUID, req dto.ActualizarActividadRequest) (*dto.ActividadResponse, error) {
	existente, err := s.actividades.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existente.Eliminada() {
		return nil, ErrActividadEliminada
	}
	if existente.Estado != model.EstadoActiva {
		return nil, ErrNoEditable
	}
	if req.Tipo != existente.Tipo {
		return nil, &ErrValidacion{Campos: map[string]string{"tipo": "no puede cambiarse al editar"}}
	}

	sol, err := s.validador.ValidarActualizar(ctx, usuarioID, existente, req)
	if err != nil {
		return nil, err
	}
	if sol.est != existente.EstablecimientoID {
		return nil, &ErrValidacion{Campos: map[string]string{"establecimiento_id": "no puede cambiarse al editar"}}
	}

	var actualizada model.Actividad
	txErr := runTx(ctx, s.actividades.DB(), func(tx *gorm.DB) error {
		// Undo the old effect first; a downstream-consumed pair shows up
		// here as insufficient stock and blocks the edit.
		if _, err := s.efectos.aplicarAnimales(tx, existente, existente.DetallesAnimales, true, "edicion"); err != nil {
			if errors.Is(err, repository.ErrStockInsuficiente) {
				return ErrStockInconsistente
			}
			return err
		}
		if err := s.efectos.aplicarInsumos(tx, existente.DetallesInsumos, true); err != nil {
			return err
		}
		if err := s.actividades.DeleteDetallesTx(tx, id); err != nil {
			return err
		}

		actualizada = *existente
		actualizada.Fecha = sol.fecha
		actualizada.Hora = sol.hora
		actualizada.Nota = sol.nota
		actualizada.LoteID = sol.loteID
		if err := s.actividades.UpdateHeaderTx(tx, &actualizada); err != nil {
			return err
		}

		detalles, err := s.construirDetalles(tx, sol)
		if err != nil {
			return err
		}
		for i := range detalles {
			detalles[i].ActividadID = id
		}
		insumos := construirInsumos(sol)
		for i := range insumos {
			insumos[i].ActividadID = id
		}
		if err := s.actividades.CreateDetallesTx(tx, detalles, insumos); err != nil {
			return err
		}
		actualizada.DetallesAnimales = detalles
		actualizada.DetallesInsumos = insumos

		consumidas, err := s.efectos.aplicarAnimales(tx, &actualizada, detalles, false, actualizada.Tipo)
		if err != nil {
			return err
		}
		if err := s.efectos.aplicarInsumos(tx, insumos, false); err != nil {
			return err
		}
		if len(consumidas) > 0 {
			if err := s.actividades.BloquearDependientesTx(tx, sol.est, consumidas, id); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return actividadToResponse(&actualizada), nil
}

// DarDeBaja sets the deletion triple atomically. It is an audit/visibility
// flag only: stock effects stay applied (reversal is a separate operation).
func (s *actividadService) DarDeBaja(ctx context.Context, id, usuarioID uuid.UUID) error {
	existente, err := s.actividades.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existente.Eliminada() {
		return ErrActividadEliminada
	}
	return runTx(ctx, s.actividades.DB(), func(tx *gorm.DB) error {
		return s.actividades.MarcarBajaTx(tx, id, usuarioID, time.Now())
	})
}

func (s *actividadService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ActividadResponse, error) {
	a, err := s.actividades.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return actividadToResponse(a), nil
}

func (s *actividadService) Listar(ctx context.Context, est uuid.UUID, f dto.ActividadFilter) (*dto.ActividadListResponse, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 50
	}
	actividades, total, err := s.actividades.List(ctx, est, repository.ActividadFilter{
		Fecha:  f.Fecha,
		Tipo:   f.Tipo,
		Estado: f.Estado,
		Page:   f.Page,
		Limit:  f.Limit,
	})
	if err != nil {
		return nil, err
	}
	data := make([]dto.ActividadResponse, 0, len(actividades))
	for i := range actividades {
		data = append(data, *actividadToResponse(&actividades[i]))
	}
	return &dto.ActividadListResponse{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// ── Detail construction ───────────────────────────────────────────────────────

// construirDetalles turns validated lines into detail rows, resolving omitted
// weights and reclassification snapshots against the transaction's own
// snapshot, before any stock mutation touches the same rows.
func (s *actividadService) construirDetalles(tx *gorm.DB, sol *solicitudActividad) ([]model.ActividadDetalleAnimal, error) {
	detalles := make([]model.ActividadDetalleAnimal, 0, len(sol.animales))
	for _, lin := range sol.animales {
		d := model.ActividadDetalleAnimal{
			CategoriaAnimalID:         lin.categoriaID,
			CategoriaAnimalAnteriorID: lin.categoriaAnteriorID,
			LoteID:                    lin.loteID,
			LoteOrigenID:              lin.loteOrigenID,
			LoteDestinoID:             lin.loteDestinoID,
			TipoMovimiento:            lin.tipoMovimiento,
			Cantidad:                  lin.cantidad,
			Peso:                      lin.peso,
			TipoPeso:                  lin.tipoPeso,
		}

		switch sol.tipo {
		case model.TipoReclasificacion:
			// Full-row move: snapshot the source row's cantidad/peso at
			// transaction time so the line is reversible as recorded.
			fila, err := s.efectos.stock.FindTx(tx, sol.est, lin.loteID, *lin.categoriaAnteriorID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, repository.ErrStockInsuficiente
				}
				return nil, err
			}
			if fila.Cantidad == 0 {
				return nil, repository.ErrStockInsuficiente
			}
			d.Cantidad = fila.Cantidad
			d.Peso = fila.PesoTotal
			d.TipoPeso = model.PesoTotal

		case model.TipoMovimientoAnimal:
			if lin.pesoOmitido && lin.tipoMovimiento != nil {
				if tm, ok := model.TipoMovimientoPorCodigo(*lin.tipoMovimiento); ok && tm.PesoOpcional {
					promedio, err := s.resolver.ResolverPromedioTx(tx, sol.est, lin.loteID, lin.categoriaID)
					if err != nil {
						return nil, err
					}
					if promedio != nil {
						d.Peso = *promedio
						d.TipoPeso = model.PesoPromedio
					} else {
						d.Peso = decimal.Zero
						d.TipoPeso = model.PesoTotal
					}
				}
			}

		case model.TipoTraslado:
			// The detail's lote is where the line ends up.
			d.LoteID = *lin.loteDestinoID
		}

		detalles = append(detalles, d)
	}
	return detalles, nil
}

func construirInsumos(sol *solicitudActividad) []model.ActividadDetalleInsumo {
	out := make([]model.ActividadDetalleInsumo, 0, len(sol.insumos))
	for _, lin := range sol.insumos {
		out = append(out, model.ActividadDetalleInsumo{InsumoID: lin.insumoID, Cantidad: lin.cantidad})
	}
	return out
}

// ── Response mapping ─────────────────────────────────────────────────────────

func actividadToResponse(a *model.Actividad) *dto.ActividadResponse {
	det := make([]dto.DetalleAnimalResponse, 0, len(a.DetallesAnimales))
	for _, d := range a.DetallesAnimales {
		det = append(det, dto.DetalleAnimalResponse{
			CategoriaAnimalID:         d.CategoriaAnimalID.String(),
			CategoriaAnimalAnteriorID: uuidPtrString(d.CategoriaAnimalAnteriorID),
			LoteID:                    d.LoteID.String(),
			LoteOrigenID:              uuidPtrString(d.LoteOrigenID),
			LoteDestinoID:             uuidPtrString(d.LoteDestinoID),
			TipoMovimiento:            d.TipoMovimiento,
			Cantidad:                  d.Cantidad,
			Peso:                      d.Peso,
			TipoPeso:                  d.TipoPeso,
		})
	}
	ins := make([]dto.DetalleInsumoResponse, 0, len(a.DetallesInsumos))
	for _, d := range a.DetallesInsumos {
		ins = append(ins, dto.DetalleInsumoResponse{InsumoID: d.InsumoID.String(), Cantidad: d.Cantidad})
	}
	return &dto.ActividadResponse{
		ID:               a.ID.String(),
		Tipo:             a.Tipo,
		Fecha:            a.Fecha.Format("2006-01-02"),
		Hora:             a.Hora,
		Nota:             a.Nota,
		LoteID:           uuidPtrString(a.LoteID),
		Estado:           a.Estado,
		Deshacible:       a.Deshacible(),
		Eliminada:        a.Eliminada(),
		DetallesAnimales: det,
		DetallesInsumos:  ins,
		CreatedAt:        a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
