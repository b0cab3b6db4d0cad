package service

import (
	"context"
	"errors"
	"time"

	"partediario/internal/dto"
	"partediario/internal/model"
	"partediario/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReversionService undoes a committed activity by applying the exact inverse
// of every recorded stock delta. The detail rows are the snapshot: the engine
// never recomputes amounts from current stock.
type ReversionService interface {
	PuedeRevertir(ctx context.Context, id uuid.UUID) (*dto.ReversibilidadResponse, error)
	Revertir(ctx context.Context, id, usuarioID uuid.UUID) (*dto.ActividadResponse, error)
}

type reversionService struct {
	actividades repository.ActividadRepository
	efectos     efectosStock
}

func NewReversionService(
	actividades repository.ActividadRepository,
	stock repository.StockRepository,
	movimientos repository.MovimientoStockRepository,
	insumos repository.InsumoRepository,
) ReversionService {
	return &reversionService{
		actividades: actividades,
		efectos:     efectosStock{stock: stock, movimientos: movimientos, insumos: insumos},
	}
}

// PuedeRevertir reports whether the activity qualifies for reversal and the
// reason when it does not. It never mutates anything.
func (s *reversionService) PuedeRevertir(ctx context.Context, id uuid.UUID) (*dto.ReversibilidadResponse, error) {
	a, err := s.actividades.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.ReversibilidadResponse{ActividadID: a.ID.String(), Deshacible: true}
	switch {
	case a.Eliminada():
		resp.Deshacible = false
		resp.Motivo = "la actividad fue dada de baja"
	case a.Estado == model.EstadoRevertida:
		resp.Deshacible = false
		resp.Motivo = "la actividad ya fue revertida"
	case a.Estado == model.EstadoBloqueada:
		resp.Deshacible = false
		resp.Motivo = "una actividad posterior depende del stock generado"
	case !a.Deshacible():
		resp.Deshacible = false
		resp.Motivo = "el tipo de actividad no admite reversión"
	}
	return resp, nil
}

// Revertir applies the inverse of every move in one transaction and marks the
// activity revertida. A source row that no longer holds the recorded amounts
// yields ErrStockInconsistente and the whole reversal rolls back.
func (s *reversionService) Revertir(ctx context.Context, id, usuarioID uuid.UUID) (*dto.ActividadResponse, error) {
	a, err := s.actividades.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case a.Estado == model.EstadoRevertida:
		return nil, ErrYaRevertida
	case a.Eliminada():
		return nil, ErrNoReversible
	case a.Estado == model.EstadoBloqueada:
		return nil, ErrNoReversible
	case !a.Deshacible():
		return nil, ErrNoReversible
	}

	txErr := runTx(ctx, s.actividades.DB(), func(tx *gorm.DB) error {
		if _, err := s.efectos.aplicarAnimales(tx, a, a.DetallesAnimales, true, "reversion"); err != nil {
			if errors.Is(err, repository.ErrStockInsuficiente) || errors.Is(err, repository.ErrStockNegativo) {
				return ErrStockInconsistente
			}
			return err
		}
		// Consumed supplies come back to stock.
		if err := s.efectos.aplicarInsumos(tx, a.DetallesInsumos, true); err != nil {
			return err
		}
		return s.actividades.MarcarRevertidaTx(tx, id, usuarioID, time.Now())
	})
	if txErr != nil {
		return nil, txErr
	}

	a.Estado = model.EstadoRevertida
	return actividadToResponse(a), nil
}
