package repository

import (
	"context"
	"time"

	"partediario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActividadFilter narrows List results; zero values mean "no filter".
type ActividadFilter struct {
	Fecha  string // YYYY-MM-DD
	Tipo   string
	Estado string // activa | revertida | bloqueada | all
	Page   int
	Limit  int
}

// ActividadRepository persists activity headers and their detail batches.
// Detail rows are always replaced wholesale (delete-all-then-reinsert); the
// engine never updates a detail row in place.
type ActividadRepository interface {
	CreateTx(tx *gorm.DB, a *model.Actividad) error
	UpdateHeaderTx(tx *gorm.DB, a *model.Actividad) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Actividad, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Actividad, error)
	List(ctx context.Context, est uuid.UUID, f ActividadFilter) ([]model.Actividad, int64, error)

	DeleteDetallesTx(tx *gorm.DB, actividadID uuid.UUID) error
	CreateDetallesTx(tx *gorm.DB, animales []model.ActividadDetalleAnimal, insumos []model.ActividadDetalleInsumo) error

	MarcarRevertidaTx(tx *gorm.DB, id, usuarioID uuid.UUID, at time.Time) error
	MarcarBajaTx(tx *gorm.DB, id, usuarioID uuid.UUID, at time.Time) error

	// BloquearDependientesTx flips to "bloqueada" every active reversible
	// activity whose destination stock pair is being consumed by a newer
	// activity, so a later Revertir cannot drive that pair negative.
	BloquearDependientesTx(tx *gorm.DB, est uuid.UUID, consumidas []StockClave, excluirID uuid.UUID) error

	DB() *gorm.DB
}

type actividadRepo struct{ db *gorm.DB }

func NewActividadRepository(db *gorm.DB) ActividadRepository { return &actividadRepo{db: db} }

func (r *actividadRepo) CreateTx(tx *gorm.DB, a *model.Actividad) error {
	// Header first, then the detail batches referencing its id; one Create
	// with associations does exactly that ordering.
	return tx.Create(a).Error
}

func (r *actividadRepo) UpdateHeaderTx(tx *gorm.DB, a *model.Actividad) error {
	return tx.Model(&model.Actividad{}).Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"fecha":   a.Fecha,
			"hora":    a.Hora,
			"nota":    a.Nota,
			"lote_id": a.LoteID,
		}).Error
}

func (r *actividadRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Actividad, error) {
	var a model.Actividad
	err := r.db.WithContext(ctx).
		Preload("DetallesAnimales").Preload("DetallesInsumos").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *actividadRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Actividad, error) {
	var a model.Actividad
	err := tx.
		Preload("DetallesAnimales").Preload("DetallesInsumos").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *actividadRepo) List(ctx context.Context, est uuid.UUID, f ActividadFilter) ([]model.Actividad, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Actividad{}).
		Where("establecimiento_id = ? AND baja_fecha IS NULL", est)
	if f.Fecha != "" {
		q = q.Where("fecha = ?", f.Fecha)
	}
	if f.Tipo != "" {
		q = q.Where("tipo = ?", f.Tipo)
	}
	if f.Estado != "" && f.Estado != "all" {
		q = q.Where("estado = ?", f.Estado)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	var actividades []model.Actividad
	err := q.Preload("DetallesAnimales").Preload("DetallesInsumos").
		Order("fecha DESC, hora DESC").
		Limit(f.Limit).Offset(offset).
		Find(&actividades).Error
	return actividades, total, err
}

func (r *actividadRepo) DeleteDetallesTx(tx *gorm.DB, actividadID uuid.UUID) error {
	if err := tx.Where("actividad_id = ?", actividadID).
		Delete(&model.ActividadDetalleAnimal{}).Error; err != nil {
		return err
	}
	return tx.Where("actividad_id = ?", actividadID).
		Delete(&model.ActividadDetalleInsumo{}).Error
}

func (r *actividadRepo) CreateDetallesTx(tx *gorm.DB, animales []model.ActividadDetalleAnimal, insumos []model.ActividadDetalleInsumo) error {
	if len(animales) > 0 {
		if err := tx.Create(&animales).Error; err != nil {
			return err
		}
	}
	if len(insumos) > 0 {
		if err := tx.Create(&insumos).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *actividadRepo) MarcarRevertidaTx(tx *gorm.DB, id, usuarioID uuid.UUID, at time.Time) error {
	return tx.Model(&model.Actividad{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"estado":        model.EstadoRevertida,
			"revertida_at":  at,
			"revertida_por": usuarioID,
		}).Error
}

func (r *actividadRepo) MarcarBajaTx(tx *gorm.DB, id, usuarioID uuid.UUID, at time.Time) error {
	// Both baja fields are written together, in one UPDATE.
	return tx.Model(&model.Actividad{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"baja_fecha":      at,
			"baja_usuario_id": usuarioID,
		}).Error
}

func (r *actividadRepo) BloquearDependientesTx(tx *gorm.DB, est uuid.UUID, consumidas []StockClave, excluirID uuid.UUID) error {
	for _, c := range consumidas {
		err := tx.Exec(`
			UPDATE actividades SET estado = ?
			WHERE establecimiento_id = ?
			  AND estado = ?
			  AND id <> ?
			  AND tipo IN (?, ?, ?)
			  AND id IN (
			    SELECT actividad_id FROM actividad_detalles_animales d
			    WHERE (d.lote_id = ? AND d.categoria_animal_id = ? AND d.lote_destino_id IS NULL)
			       OR (d.lote_destino_id = ? AND d.categoria_animal_id = ?)
			  )`,
			model.EstadoBloqueada, est, model.EstadoActiva, excluirID,
			model.TipoReclasificacion, model.TipoDestete, model.TipoTraslado,
			c.LoteID, c.CategoriaAnimalID,
			c.LoteID, c.CategoriaAnimalID,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *actividadRepo) DB() *gorm.DB { return r.db }
