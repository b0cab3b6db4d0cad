package service_test

import (
	"context"
	"errors"
	"testing"

	"partediario/internal/dto"
	"partediario/internal/model"
	"partediario/internal/repository"
	"partediario/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Crear: movimiento ─────────────────────────────────────────────────────────

func TestCrearNacimientoSinPesoNiStockPrevio(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Potrero Norte")
	cat := e.seedCategoria("ternero", model.SexoMixto)

	resp, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoMovimientoAnimal,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-10",
		Hora:              "08:30",
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID: cat.ID.String(),
			LoteID:            strPtr(lote.ID.String()),
			TipoMovimiento:    strPtr(model.MovNacimiento),
			Cantidad:          10,
			// peso omitted on purpose: no prior stock means zero-weight TOTAL
		}},
	})
	require.NoError(t, err)
	require.Len(t, resp.DetallesAnimales, 1)
	assert.Equal(t, model.PesoTotal, resp.DetallesAnimales[0].TipoPeso)
	assert.True(t, resp.DetallesAnimales[0].Peso.IsZero())

	fila := e.stockDe(lote.ID, cat.ID)
	require.NotNil(t, fila)
	assert.Equal(t, 10, fila.Cantidad)
	assert.True(t, fila.PesoTotal.IsZero())
}

func TestCrearNacimientoResuelvePesoPromedio(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Potrero Sur")
	cat := e.seedCategoria("vaca", model.SexoHembra)
	e.seedStock(lote.ID, cat.ID, 40, 8000) // promedio 200 kg

	resp, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoMovimientoAnimal,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-10",
		Hora:              "09:00",
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID: cat.ID.String(),
			LoteID:            strPtr(lote.ID.String()),
			TipoMovimiento:    strPtr(model.MovNacimiento),
			Cantidad:          10,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.PesoPromedio, resp.DetallesAnimales[0].TipoPeso)
	assert.Equal(t, "200", resp.DetallesAnimales[0].Peso.String())

	fila := e.stockDe(lote.ID, cat.ID)
	assert.Equal(t, 50, fila.Cantidad)
	assert.Equal(t, "10000", fila.PesoTotal.String())
}

func TestCrearVentaStockInsuficiente(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote 3")
	cat := e.seedCategoria("novillo", model.SexoMacho)
	e.seedStock(lote.ID, cat.ID, 3, 600)

	_, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoMovimientoAnimal,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-11",
		Hora:              "10:00",
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID: cat.ID.String(),
			LoteID:            strPtr(lote.ID.String()),
			TipoMovimiento:    strPtr(model.MovVenta),
			Cantidad:          5,
			Peso:              decPtr(1000),
		}},
	})
	require.ErrorIs(t, err, repository.ErrStockNegativo)

	// Nothing touched: the guard rejects before any write.
	fila := e.stockDe(lote.ID, cat.ID)
	assert.Equal(t, 3, fila.Cantidad)
	assert.Equal(t, "600", fila.PesoTotal.String())
	assert.Empty(t, e.movimientos.movimientos)
}

func TestCrearVentaRegistraAuditoria(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote 1")
	cat := e.seedCategoria("novillo", model.SexoMacho)
	e.seedStock(lote.ID, cat.ID, 20, 4000)

	resp, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoMovimientoAnimal,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-11",
		Hora:              "11:00",
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID: cat.ID.String(),
			LoteID:            strPtr(lote.ID.String()),
			TipoMovimiento:    strPtr(model.MovVenta),
			Cantidad:          8,
			Peso:              decPtr(1600),
		}},
	})
	require.NoError(t, err)

	require.Len(t, e.movimientos.movimientos, 1)
	mov := e.movimientos.movimientos[0]
	assert.Equal(t, resp.ID, mov.ActividadID.String())
	assert.Equal(t, model.TipoMovimientoAnimal, mov.Motivo)
	assert.Equal(t, -8, mov.Cantidad)
	assert.Equal(t, 20, mov.CantidadAnterior)
	assert.Equal(t, 12, mov.CantidadNueva)
}

// ── Validation ────────────────────────────────────────────────────────────────

func TestValidacionReportaTodasLasViolaciones(t *testing.T) {
	e := nuevoEntorno(t)
	cat := e.seedCategoria("vaca", model.SexoHembra)
	loteInexistente := "51075b39-58e0-4c2b-90ca-57044e2b1d7f"

	_, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoMovimientoAnimal,
		EstablecimientoID: e.est.String(),
		// fecha missing
		Hora: "08:00",
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID: cat.ID.String(),
			LoteID:            &loteInexistente,
			TipoMovimiento:    strPtr(model.MovCompra),
			Cantidad:          0, // invalid
			Peso:              decPtr(500),
		}},
	})

	var ev *service.ErrValidacion
	require.True(t, errors.As(err, &ev))
	assert.Contains(t, ev.Campos, "fecha")
	assert.Contains(t, ev.Campos, "detalles_animales[0].lote_id")
	assert.Contains(t, ev.Campos, "detalles_animales[0].cantidad")
	assert.Len(t, ev.Campos, 3)
}

func TestValidacionPesoRequeridoSegunTipoMovimiento(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote 2")
	cat := e.seedCategoria("novillo", model.SexoMacho)

	_, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoMovimientoAnimal,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-12",
		Hora:              "08:00",
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID: cat.ID.String(),
			LoteID:            strPtr(lote.ID.String()),
			TipoMovimiento:    strPtr(model.MovCompra), // compra never resolves the weight
			Cantidad:          5,
		}},
	})

	var ev *service.ErrValidacion
	require.True(t, errors.As(err, &ev))
	assert.Contains(t, ev.Campos, "detalles_animales[0].peso")
}

func TestValidacionInsumoSuperaDisponible(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote 4")
	ins := e.seedInsumo("Maíz", 100)

	_, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoActividadMixta,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-12",
		Hora:              "09:00",
		LoteID:            strPtr(lote.ID.String()),
		DetallesInsumos: []dto.DetalleInsumoRequest{{
			InsumoID: ins.ID.String(),
			Cantidad: *decPtr(150),
		}},
	})

	var ev *service.ErrValidacion
	require.True(t, errors.As(err, &ev))
	assert.Contains(t, ev.Campos["detalles_insumos[0].cantidad"], "supera el stock disponible")
}

// ── Actividad mixta ───────────────────────────────────────────────────────────

func TestActividadMixtaConsumeInsumosSinTocarAnimales(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote 5")
	cat := e.seedCategoria("vaca", model.SexoHembra)
	ins := e.seedInsumo("Alimento balanceado", 100)
	e.seedStock(lote.ID, cat.ID, 15, 3000)

	_, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoActividadMixta,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-13",
		Hora:              "07:30",
		LoteID:            strPtr(lote.ID.String()),
		DetallesInsumos: []dto.DetalleInsumoRequest{{
			InsumoID: ins.ID.String(),
			Cantidad: *decPtr(30),
		}},
	})
	require.NoError(t, err)

	// No stock formula for mixta; only the supply moved.
	fila := e.stockDe(lote.ID, cat.ID)
	assert.Equal(t, 15, fila.Cantidad)
	assert.Equal(t, "70", e.insumos.insumos[ins.ID].StockActual.String())
	assert.Empty(t, e.movimientos.movimientos)
}

// ── Reclasificación ───────────────────────────────────────────────────────────

func TestReclasificacionTomaSnapshotCompleto(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote 6")
	origen := e.seedCategoria("ternera", model.SexoHembra)
	destino := e.seedCategoria("vaquillona", model.SexoHembra)
	e.seedStock(lote.ID, origen.ID, 5, 1000)

	resp, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoReclasificacion,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-14",
		Hora:              "10:00",
		LoteID:            strPtr(lote.ID.String()),
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID:         destino.ID.String(),
			CategoriaAnimalAnteriorID: strPtr(origen.ID.String()),
			Cantidad:                  1, // ignored: the whole source row moves
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.DetallesAnimales[0].Cantidad)
	assert.Equal(t, "1000", resp.DetallesAnimales[0].Peso.String())
	assert.Equal(t, model.PesoTotal, resp.DetallesAnimales[0].TipoPeso)
	assert.True(t, resp.Deshacible)

	assert.Equal(t, 0, e.stockDe(lote.ID, origen.ID).Cantidad)
	assert.True(t, e.stockDe(lote.ID, origen.ID).PesoTotal.IsZero())
	assert.Equal(t, 5, e.stockDe(lote.ID, destino.ID).Cantidad)
	assert.Equal(t, "1000", e.stockDe(lote.ID, destino.ID).PesoTotal.String())
}

func TestReclasificacionRequiereMismoSexo(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote 7")
	origen := e.seedCategoria("ternero", model.SexoMacho)
	destino := e.seedCategoria("vaquillona", model.SexoHembra)
	e.seedStock(lote.ID, origen.ID, 5, 1000)

	_, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoReclasificacion,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-14",
		Hora:              "10:00",
		LoteID:            strPtr(lote.ID.String()),
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID:         destino.ID.String(),
			CategoriaAnimalAnteriorID: strPtr(origen.ID.String()),
			Cantidad:                  1,
		}},
	})

	var ev *service.ErrValidacion
	require.True(t, errors.As(err, &ev))
	assert.Contains(t, ev.Campos["detalles_animales[0].categoria_animal_id"], "sexo")
}

func TestReclasificacionSinStockEnOrigen(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote 8")
	origen := e.seedCategoria("ternera", model.SexoHembra)
	destino := e.seedCategoria("vaquillona", model.SexoHembra)

	_, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoReclasificacion,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-14",
		Hora:              "10:00",
		LoteID:            strPtr(lote.ID.String()),
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID:         destino.ID.String(),
			CategoriaAnimalAnteriorID: strPtr(origen.ID.String()),
			Cantidad:                  1,
		}},
	})
	assert.ErrorIs(t, err, repository.ErrStockInsuficiente)
}

// ── Traslado ──────────────────────────────────────────────────────────────────

func TestTrasladoMueveEntreLotes(t *testing.T) {
	e := nuevoEntorno(t)
	origen := e.seedLote("Potrero A")
	destino := e.seedLote("Potrero B")
	cat := e.seedCategoria("novillo", model.SexoMacho)
	e.seedStock(origen.ID, cat.ID, 10, 2000)

	resp, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoTraslado,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-15",
		Hora:              "16:00",
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID: cat.ID.String(),
			LoteOrigenID:      strPtr(origen.ID.String()),
			LoteDestinoID:     strPtr(destino.ID.String()),
			Cantidad:          4,
			Peso:              decPtr(800),
		}},
	})
	require.NoError(t, err)
	// The line's lote is where the animals end up.
	assert.Equal(t, destino.ID.String(), resp.DetallesAnimales[0].LoteID)

	assert.Equal(t, 6, e.stockDe(origen.ID, cat.ID).Cantidad)
	assert.Equal(t, "1200", e.stockDe(origen.ID, cat.ID).PesoTotal.String())
	assert.Equal(t, 4, e.stockDe(destino.ID, cat.ID).Cantidad)
	assert.Equal(t, "800", e.stockDe(destino.ID, cat.ID).PesoTotal.String())
}

func TestTrasladoMismoLoteOrigenDestino(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Potrero A")
	cat := e.seedCategoria("novillo", model.SexoMacho)
	e.seedStock(lote.ID, cat.ID, 10, 2000)

	_, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoTraslado,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-15",
		Hora:              "16:00",
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID: cat.ID.String(),
			LoteOrigenID:      strPtr(lote.ID.String()),
			LoteDestinoID:     strPtr(lote.ID.String()),
			Cantidad:          4,
			Peso:              decPtr(800),
		}},
	})

	var ev *service.ErrValidacion
	require.True(t, errors.As(err, &ev))
	assert.Contains(t, ev.Campos, "detalles_animales[0].lote_destino_id")
}

// ── Actualizar ────────────────────────────────────────────────────────────────

func TestActualizarNoDuplicaEfectos(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote 9")
	cat := e.seedCategoria("vaca", model.SexoHembra)

	crear := dto.CrearActividadRequest{
		Tipo:              model.TipoMovimientoAnimal,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-16",
		Hora:              "08:00",
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID: cat.ID.String(),
			LoteID:            strPtr(lote.ID.String()),
			TipoMovimiento:    strPtr(model.MovCompra),
			Cantidad:          10,
			Peso:              decPtr(2000),
		}},
	}
	resp, err := e.svc.Crear(context.Background(), e.usuarioID, crear)
	require.NoError(t, err)
	require.Equal(t, 10, e.stockDe(lote.ID, cat.ID).Cantidad)

	editar := crear
	editar.Nota = strPtr("cantidad corregida")
	editar.DetallesAnimales = []dto.DetalleAnimalRequest{{
		CategoriaAnimalID: cat.ID.String(),
		LoteID:            strPtr(lote.ID.String()),
		TipoMovimiento:    strPtr(model.MovCompra),
		Cantidad:          6,
		Peso:              decPtr(1200),
	}}
	actualizada, err := e.svc.Actualizar(context.Background(), e.usuarioID, mustUUID(t, resp.ID), editar)
	require.NoError(t, err)
	require.NotNil(t, actualizada.Nota)
	assert.Equal(t, "cantidad corregida", *actualizada.Nota)
	require.Len(t, actualizada.DetallesAnimales, 1)
	assert.Equal(t, 6, actualizada.DetallesAnimales[0].Cantidad)

	// Old effect inverted, new effect applied, never both.
	fila := e.stockDe(lote.ID, cat.ID)
	assert.Equal(t, 6, fila.Cantidad)
	assert.Equal(t, "1200", fila.PesoTotal.String())
}

func TestActualizarNoPermiteCambiarTipo(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote 10")
	cat := e.seedCategoria("vaca", model.SexoHembra)

	resp, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoMovimientoAnimal,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-16",
		Hora:              "08:00",
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID: cat.ID.String(),
			LoteID:            strPtr(lote.ID.String()),
			TipoMovimiento:    strPtr(model.MovCompra),
			Cantidad:          3,
			Peso:              decPtr(600),
		}},
	})
	require.NoError(t, err)

	_, err = e.svc.Actualizar(context.Background(), e.usuarioID, mustUUID(t, resp.ID), dto.ActualizarActividadRequest{
		Tipo:              model.TipoTraslado,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-16",
		Hora:              "08:00",
	})
	var ev *service.ErrValidacion
	require.True(t, errors.As(err, &ev))
	assert.Contains(t, ev.Campos, "tipo")
}

func TestActualizarLiberaInsumosReemplazados(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote 11")
	ins := e.seedInsumo("Vacuna aftosa", 100)

	crear := dto.CrearActividadRequest{
		Tipo:              model.TipoActividadMixta,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-17",
		Hora:              "09:00",
		LoteID:            strPtr(lote.ID.String()),
		DetallesInsumos: []dto.DetalleInsumoRequest{{
			InsumoID: ins.ID.String(),
			Cantidad: *decPtr(80),
		}},
	}
	resp, err := e.svc.Crear(context.Background(), e.usuarioID, crear)
	require.NoError(t, err)
	require.Equal(t, "20", e.insumos.insumos[ins.ID].StockActual.String())

	// 90 > 20 on hand, but the edit releases the original 80 first.
	editar := crear
	editar.DetallesInsumos = []dto.DetalleInsumoRequest{{
		InsumoID: ins.ID.String(),
		Cantidad: *decPtr(90),
	}}
	_, err = e.svc.Actualizar(context.Background(), e.usuarioID, mustUUID(t, resp.ID), editar)
	require.NoError(t, err)
	assert.Equal(t, "10", e.insumos.insumos[ins.ID].StockActual.String())
}

// ── Baja ──────────────────────────────────────────────────────────────────────

func TestDarDeBajaNoRevierteStock(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote 12")
	cat := e.seedCategoria("vaca", model.SexoHembra)

	resp, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoMovimientoAnimal,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-03-18",
		Hora:              "08:00",
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID: cat.ID.String(),
			LoteID:            strPtr(lote.ID.String()),
			TipoMovimiento:    strPtr(model.MovCompra),
			Cantidad:          7,
			Peso:              decPtr(1400),
		}},
	})
	require.NoError(t, err)
	id := mustUUID(t, resp.ID)

	require.NoError(t, e.svc.DarDeBaja(context.Background(), id, e.usuarioID))

	// Soft delete is a visibility flag; the ledger keeps the movement.
	assert.Equal(t, 7, e.stockDe(lote.ID, cat.ID).Cantidad)

	obtenida, err := e.svc.Obtener(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, obtenida.Eliminada)

	// Second baja and edits on a deleted activity are rejected.
	assert.ErrorIs(t, e.svc.DarDeBaja(context.Background(), id, e.usuarioID), service.ErrActividadEliminada)
	_, err = e.svc.Actualizar(context.Background(), e.usuarioID, id, dto.ActualizarActividadRequest{Tipo: model.TipoMovimientoAnimal})
	assert.ErrorIs(t, err, service.ErrActividadEliminada)
}
