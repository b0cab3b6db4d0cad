package service_test

import (
	"context"
	"testing"

	"partediario/internal/dto"
	"partediario/internal/model"
	"partediario/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crearDestete(t *testing.T, e *entorno, lote, origen, destino uuid.UUID, cantidad int, peso float64) uuid.UUID {
	t.Helper()
	resp, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoDestete,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-04-01",
		Hora:              "07:00",
		LoteID:            strPtr(lote.String()),
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID:         destino.String(),
			CategoriaAnimalAnteriorID: strPtr(origen.String()),
			Cantidad:                  cantidad,
			Peso:                      decPtr(peso),
		}},
	})
	require.NoError(t, err)
	return mustUUID(t, resp.ID)
}

func TestRevertirDesteteRestauraStock(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote Cría")
	vaca := e.seedCategoria("vaca", model.SexoHembra)
	ternera := e.seedCategoria("ternera", model.SexoHembra)
	e.seedStock(lote.ID, vaca.ID, 10, 2000)

	id := crearDestete(t, e, lote.ID, vaca.ID, ternera.ID, 4, 100)
	require.Equal(t, 6, e.stockDe(lote.ID, vaca.ID).Cantidad)
	require.Equal(t, 4, e.stockDe(lote.ID, ternera.ID).Cantidad)

	resp, err := e.reversiones.Revertir(context.Background(), id, e.usuarioID)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoRevertida, resp.Estado)

	// The exact snapshot comes back; nothing is recomputed.
	assert.Equal(t, 10, e.stockDe(lote.ID, vaca.ID).Cantidad)
	assert.Equal(t, "2000", e.stockDe(lote.ID, vaca.ID).PesoTotal.String())
	assert.Equal(t, 0, e.stockDe(lote.ID, ternera.ID).Cantidad)
	assert.True(t, e.stockDe(lote.ID, ternera.ID).PesoTotal.IsZero())

	// Audit rows carry the reversal motive.
	movs, err := e.movimientos.ListByActividad(context.Background(), id)
	require.NoError(t, err)
	ultimos := movs[len(movs)-2:]
	assert.Equal(t, "reversion", ultimos[0].Motivo)
	assert.Equal(t, "reversion", ultimos[1].Motivo)
}

func TestRevertirDosVeces(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote Cría")
	vaca := e.seedCategoria("vaca", model.SexoHembra)
	ternera := e.seedCategoria("ternera", model.SexoHembra)
	e.seedStock(lote.ID, vaca.ID, 10, 2000)

	id := crearDestete(t, e, lote.ID, vaca.ID, ternera.ID, 4, 100)

	_, err := e.reversiones.Revertir(context.Background(), id, e.usuarioID)
	require.NoError(t, err)
	_, err = e.reversiones.Revertir(context.Background(), id, e.usuarioID)
	assert.ErrorIs(t, err, service.ErrYaRevertida)
}

func TestRevertirConStockYaConsumido(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote Cría")
	vaca := e.seedCategoria("vaca", model.SexoHembra)
	ternera := e.seedCategoria("ternera", model.SexoHembra)
	e.seedStock(lote.ID, vaca.ID, 10, 2000)

	id := crearDestete(t, e, lote.ID, vaca.ID, ternera.ID, 4, 100)

	// Someone consumed part of the destete output outside the engine.
	fila := e.stockDe(lote.ID, ternera.ID)
	fila.Cantidad = 2
	fila.PesoTotal = *decPtr(50)

	_, err := e.reversiones.Revertir(context.Background(), id, e.usuarioID)
	assert.ErrorIs(t, err, service.ErrStockInconsistente)

	// Still active: nothing was marked revertida on failure.
	a, findErr := e.actividades.FindByID(context.Background(), id)
	require.NoError(t, findErr)
	assert.Equal(t, model.EstadoActiva, a.Estado)
}

func TestRevertirMovimientoNoAdmiteReversion(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote 1")
	cat := e.seedCategoria("novillo", model.SexoMacho)

	resp, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoMovimientoAnimal,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-04-02",
		Hora:              "08:00",
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID: cat.ID.String(),
			LoteID:            strPtr(lote.ID.String()),
			TipoMovimiento:    strPtr(model.MovCompra),
			Cantidad:          5,
			Peso:              decPtr(1000),
		}},
	})
	require.NoError(t, err)
	id := mustUUID(t, resp.ID)

	puede, err := e.reversiones.PuedeRevertir(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, puede.Deshacible)
	assert.Contains(t, puede.Motivo, "no admite")

	_, err = e.reversiones.Revertir(context.Background(), id, e.usuarioID)
	assert.ErrorIs(t, err, service.ErrNoReversible)
}

func TestRevertirEliminada(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote Cría")
	vaca := e.seedCategoria("vaca", model.SexoHembra)
	ternera := e.seedCategoria("ternera", model.SexoHembra)
	e.seedStock(lote.ID, vaca.ID, 10, 2000)

	id := crearDestete(t, e, lote.ID, vaca.ID, ternera.ID, 4, 100)
	require.NoError(t, e.svc.DarDeBaja(context.Background(), id, e.usuarioID))

	puede, err := e.reversiones.PuedeRevertir(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, puede.Deshacible)
	assert.Contains(t, puede.Motivo, "dada de baja")

	_, err = e.reversiones.Revertir(context.Background(), id, e.usuarioID)
	assert.ErrorIs(t, err, service.ErrNoReversible)
}

func TestActividadDependienteQuedaBloqueada(t *testing.T) {
	e := nuevoEntorno(t)
	lote := e.seedLote("Lote Engorde")
	ternera := e.seedCategoria("ternera", model.SexoHembra)
	vaquillona := e.seedCategoria("vaquillona", model.SexoHembra)
	e.seedStock(lote.ID, ternera.ID, 8, 1600)

	// Reclassify the whole row, then sell part of the output.
	resp, err := e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoReclasificacion,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-04-03",
		Hora:              "09:00",
		LoteID:            strPtr(lote.ID.String()),
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID:         vaquillona.ID.String(),
			CategoriaAnimalAnteriorID: strPtr(ternera.ID.String()),
			Cantidad:                  1,
		}},
	})
	require.NoError(t, err)
	reclasID := mustUUID(t, resp.ID)

	_, err = e.svc.Crear(context.Background(), e.usuarioID, dto.CrearActividadRequest{
		Tipo:              model.TipoMovimientoAnimal,
		EstablecimientoID: e.est.String(),
		Fecha:             "2026-04-04",
		Hora:              "10:00",
		DetallesAnimales: []dto.DetalleAnimalRequest{{
			CategoriaAnimalID: vaquillona.ID.String(),
			LoteID:            strPtr(lote.ID.String()),
			TipoMovimiento:    strPtr(model.MovVenta),
			Cantidad:          3,
			Peso:              decPtr(600),
		}},
	})
	require.NoError(t, err)

	puede, err := e.reversiones.PuedeRevertir(context.Background(), reclasID)
	require.NoError(t, err)
	assert.False(t, puede.Deshacible)
	assert.Contains(t, puede.Motivo, "posterior")

	_, err = e.reversiones.Revertir(context.Background(), reclasID, e.usuarioID)
	assert.ErrorIs(t, err, service.ErrNoReversible)
}
