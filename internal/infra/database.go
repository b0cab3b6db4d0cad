package infra

import (
	"fmt"

	"partediario/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create or update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial indexes, check constraints).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the full schema. Also used by integration tests
// against a throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Establecimiento{},
		&model.Lote{},
		&model.CategoriaAnimal{},
		&model.Insumo{},
		&model.Usuario{},
		&model.StockAnimal{},
		&model.Actividad{},
		&model.ActividadDetalleAnimal{},
		&model.ActividadDetalleInsumo{},
		&model.MovimientoStock{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
// Every statement is safe to re-run on an already-patched schema.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Row invariants enforced at the database as a last line of defense;
		// the repositories check them first and return typed errors.
		{"stock non-negative check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stock_no_negativo') THEN
    ALTER TABLE stock_animales
      ADD CONSTRAINT chk_stock_no_negativo
      CHECK (cantidad >= 0 AND peso_total >= 0);
  END IF;
END $$`},
		{"stock zero-count zero-weight check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stock_cero_sin_peso') THEN
    ALTER TABLE stock_animales
      ADD CONSTRAINT chk_stock_cero_sin_peso
      CHECK (cantidad > 0 OR peso_total = 0);
  END IF;
END $$`},
		// Partial index for the default listing (active, not deleted)
		{"partial index on live activities", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_actividades_vivas') THEN
    CREATE INDEX idx_actividades_vivas
        ON actividades (establecimiento_id, fecha DESC)
        WHERE baja_fecha IS NULL;
  END IF;
END $$`},
		// The audit trail is queried almost exclusively by activity
		{"movimientos_stock actividad index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movimientos_actividad') THEN
    CREATE INDEX idx_movimientos_actividad ON movimientos_stock (actividad_id);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
