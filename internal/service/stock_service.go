package service

import (
	"context"
	"errors"

	"partediario/internal/dto"
	"partediario/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockService serves the read side of the ledger: current rows, resolved
// average weights and the audit trail. It never mutates stock.
type StockService interface {
	Listar(ctx context.Context, est uuid.UUID, f dto.StockFilter) ([]dto.StockEntryResponse, error)
	PesoPromedio(ctx context.Context, est, lote, cat uuid.UUID) (*dto.PesoPromedioResponse, error)
	Movimientos(ctx context.Context, est uuid.UUID, loteID *uuid.UUID, limit int) ([]dto.MovimientoStockResponse, error)
}

type stockService struct {
	stock       repository.StockRepository
	movimientos repository.MovimientoStockRepository
}

func NewStockService(stock repository.StockRepository, movimientos repository.MovimientoStockRepository) StockService {
	return &stockService{stock: stock, movimientos: movimientos}
}

func (s *stockService) Listar(ctx context.Context, est uuid.UUID, f dto.StockFilter) ([]dto.StockEntryResponse, error) {
	var loteID, catID *uuid.UUID
	if f.LoteID != "" {
		if id, err := uuid.Parse(f.LoteID); err == nil {
			loteID = &id
		}
	}
	if f.CategoriaAnimalID != "" {
		if id, err := uuid.Parse(f.CategoriaAnimalID); err == nil {
			catID = &id
		}
	}

	rows, err := s.stock.List(ctx, est, loteID, catID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockEntryResponse, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		e := dto.StockEntryResponse{
			LoteID:            r.LoteID.String(),
			CategoriaAnimalID: r.CategoriaAnimalID.String(),
			Cantidad:          r.Cantidad,
			PesoTotal:         r.PesoTotal,
			PesoPromedio:      r.PesoPromedio(),
		}
		if r.Lote != nil {
			e.Lote = r.Lote.Nombre
		}
		if r.Categoria != nil {
			e.Categoria = r.Categoria.Nombre
		}
		out = append(out, e)
	}
	return out, nil
}

// PesoPromedio reports the rounded average weight for one ledger row, or a
// null peso_promedio when the row is absent or holds no animals.
func (s *stockService) PesoPromedio(ctx context.Context, est, lote, cat uuid.UUID) (*dto.PesoPromedioResponse, error) {
	resp := &dto.PesoPromedioResponse{
		LoteID:            lote.String(),
		CategoriaAnimalID: cat.String(),
	}
	row, err := s.stock.Find(ctx, est, lote, cat)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resp, nil
		}
		return nil, err
	}
	resp.PesoPromedio = row.PesoPromedio()
	return resp, nil
}

func (s *stockService) Movimientos(ctx context.Context, est uuid.UUID, loteID *uuid.UUID, limit int) ([]dto.MovimientoStockResponse, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	movs, err := s.movimientos.List(ctx, est, loteID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimientoStockResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.MovimientoStockResponse{
			LoteID:            m.LoteID.String(),
			CategoriaAnimalID: m.CategoriaAnimalID.String(),
			ActividadID:       uuidPtrString(m.ActividadID),
			Motivo:            m.Motivo,
			Cantidad:          m.Cantidad,
			Peso:              m.Peso,
			CantidadAnterior:  m.CantidadAnterior,
			CantidadNueva:     m.CantidadNueva,
			CreatedAt:         m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return out, nil
}
