package service_test

import (
	"context"
	"testing"
	"time"

	"partediario/internal/model"
	"partediario/internal/repository"
	"partediario/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory StockRepository stub ───────────────────────────────────────────

type claveStock struct {
	est  uuid.UUID
	lote uuid.UUID
	cat  uuid.UUID
}

type stubStockRepo struct {
	filas map[claveStock]*model.StockAnimal
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{filas: make(map[claveStock]*model.StockAnimal)}
}

func (r *stubStockRepo) Find(_ context.Context, est, lote, cat uuid.UUID) (*model.StockAnimal, error) {
	return r.FindTx(nil, est, lote, cat)
}

func (r *stubStockRepo) FindTx(_ *gorm.DB, est, lote, cat uuid.UUID) (*model.StockAnimal, error) {
	s, ok := r.filas[claveStock{est, lote, cat}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *s
	return &copia, nil
}

func (r *stubStockRepo) List(_ context.Context, est uuid.UUID, loteID, catID *uuid.UUID) ([]model.StockAnimal, error) {
	var out []model.StockAnimal
	for k, s := range r.filas {
		if k.est != est {
			continue
		}
		if loteID != nil && k.lote != *loteID {
			continue
		}
		if catID != nil && k.cat != *catID {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubStockRepo) AjustarTx(_ *gorm.DB, est, lote, cat uuid.UUID, dCantidad int, dPeso decimal.Decimal) (*model.StockAnimal, error) {
	return r.ajustar(est, lote, cat, dCantidad, dPeso, repository.ErrStockNegativo)
}

func (r *stubStockRepo) MoverTx(_ *gorm.DB, est uuid.UUID, origen, destino repository.StockClave, cantidad int, peso decimal.Decimal) (*model.StockAnimal, *model.StockAnimal, error) {
	src, err := r.ajustar(est, origen.LoteID, origen.CategoriaAnimalID, -cantidad, peso.Neg(), repository.ErrStockInsuficiente)
	if err != nil {
		return nil, nil, err
	}
	dst, err := r.ajustar(est, destino.LoteID, destino.CategoriaAnimalID, cantidad, peso, repository.ErrStockInsuficiente)
	if err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

func (r *stubStockRepo) ajustar(est, lote, cat uuid.UUID, dCantidad int, dPeso decimal.Decimal, guard error) (*model.StockAnimal, error) {
	k := claveStock{est, lote, cat}
	fila, ok := r.filas[k]
	if !ok {
		if dCantidad < 0 || dPeso.IsNegative() {
			return nil, guard
		}
		fila = &model.StockAnimal{
			ID:                uuid.New(),
			EstablecimientoID: est,
			LoteID:            lote,
			CategoriaAnimalID: cat,
			Cantidad:          dCantidad,
			PesoTotal:         dPeso,
		}
		if fila.Cantidad == 0 {
			fila.PesoTotal = decimal.Zero
		}
		r.filas[k] = fila
		copia := *fila
		return &copia, nil
	}

	nuevaCantidad := fila.Cantidad + dCantidad
	nuevoPeso := fila.PesoTotal.Add(dPeso)
	if nuevaCantidad < 0 || nuevoPeso.IsNegative() {
		return nil, guard
	}
	if nuevaCantidad == 0 {
		nuevoPeso = decimal.Zero
	}
	fila.Cantidad = nuevaCantidad
	fila.PesoTotal = nuevoPeso
	copia := *fila
	return &copia, nil
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

// ── In-memory ActividadRepository stub ───────────────────────────────────────

type stubActividadRepo struct {
	actividades map[uuid.UUID]*model.Actividad
}

func newStubActividadRepo() *stubActividadRepo {
	return &stubActividadRepo{actividades: make(map[uuid.UUID]*model.Actividad)}
}

func (r *stubActividadRepo) CreateTx(_ *gorm.DB, a *model.Actividad) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	for i := range a.DetallesAnimales {
		a.DetallesAnimales[i].ID = uuid.New()
		a.DetallesAnimales[i].ActividadID = a.ID
	}
	for i := range a.DetallesInsumos {
		a.DetallesInsumos[i].ID = uuid.New()
		a.DetallesInsumos[i].ActividadID = a.ID
	}
	r.actividades[a.ID] = a
	return nil
}

func (r *stubActividadRepo) UpdateHeaderTx(_ *gorm.DB, a *model.Actividad) error {
	stored, ok := r.actividades[a.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Fecha = a.Fecha
	stored.Hora = a.Hora
	stored.Nota = a.Nota
	stored.LoteID = a.LoteID
	return nil
}

func (r *stubActividadRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Actividad, error) {
	a, ok := r.actividades[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubActividadRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Actividad, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubActividadRepo) List(_ context.Context, est uuid.UUID, f repository.ActividadFilter) ([]model.Actividad, int64, error) {
	var out []model.Actividad
	for _, a := range r.actividades {
		if a.EstablecimientoID != est || a.Eliminada() {
			continue
		}
		if f.Tipo != "" && a.Tipo != f.Tipo {
			continue
		}
		if f.Estado != "" && f.Estado != "all" && a.Estado != f.Estado {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (r *stubActividadRepo) DeleteDetallesTx(_ *gorm.DB, actividadID uuid.UUID) error {
	a, ok := r.actividades[actividadID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.DetallesAnimales = nil
	a.DetallesInsumos = nil
	return nil
}

func (r *stubActividadRepo) CreateDetallesTx(_ *gorm.DB, animales []model.ActividadDetalleAnimal, insumos []model.ActividadDetalleInsumo) error {
	for i := range animales {
		animales[i].ID = uuid.New()
		a, ok := r.actividades[animales[i].ActividadID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		a.DetallesAnimales = append(a.DetallesAnimales, animales[i])
	}
	for i := range insumos {
		insumos[i].ID = uuid.New()
		a, ok := r.actividades[insumos[i].ActividadID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		a.DetallesInsumos = append(a.DetallesInsumos, insumos[i])
	}
	return nil
}

func (r *stubActividadRepo) MarcarRevertidaTx(_ *gorm.DB, id, usuarioID uuid.UUID, at time.Time) error {
	a, ok := r.actividades[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Estado = model.EstadoRevertida
	a.RevertidaAt = &at
	a.RevertidaPor = &usuarioID
	return nil
}

func (r *stubActividadRepo) MarcarBajaTx(_ *gorm.DB, id, usuarioID uuid.UUID, at time.Time) error {
	a, ok := r.actividades[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Baja.Fecha = &at
	a.Baja.UsuarioID = &usuarioID
	return nil
}

func (r *stubActividadRepo) BloquearDependientesTx(_ *gorm.DB, est uuid.UUID, consumidas []repository.StockClave, excluirID uuid.UUID) error {
	for _, c := range consumidas {
		for _, a := range r.actividades {
			if a.EstablecimientoID != est || a.ID == excluirID || a.Estado != model.EstadoActiva {
				continue
			}
			switch a.Tipo {
			case model.TipoReclasificacion, model.TipoDestete, model.TipoTraslado:
			default:
				continue
			}
			for _, d := range a.DetallesAnimales {
				destinoEnLote := d.LoteDestinoID == nil && d.LoteID == c.LoteID && d.CategoriaAnimalID == c.CategoriaAnimalID
				destinoEnDestino := d.LoteDestinoID != nil && *d.LoteDestinoID == c.LoteID && d.CategoriaAnimalID == c.CategoriaAnimalID
				if destinoEnLote || destinoEnDestino {
					a.Estado = model.EstadoBloqueada
					break
				}
			}
		}
	}
	return nil
}

func (r *stubActividadRepo) DB() *gorm.DB { return nil }

// ── In-memory MovimientoStockRepository stub ─────────────────────────────────

type stubMovimientoRepo struct {
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) ListByActividad(_ context.Context, actividadID uuid.UUID) ([]model.MovimientoStock, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.ActividadID != nil && *m.ActividadID == actividadID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMovimientoRepo) List(_ context.Context, est uuid.UUID, loteID *uuid.UUID, limit int) ([]model.MovimientoStock, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.EstablecimientoID != est {
			continue
		}
		if loteID != nil && m.LoteID != *loteID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// ── In-memory InsumoRepository stub ──────────────────────────────────────────

type stubInsumoRepo struct {
	insumos map[uuid.UUID]*model.Insumo
}

func newStubInsumoRepo() *stubInsumoRepo {
	return &stubInsumoRepo{insumos: make(map[uuid.UUID]*model.Insumo)}
}

func (r *stubInsumoRepo) Create(_ context.Context, i *model.Insumo) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	r.insumos[i.ID] = i
	return nil
}

func (r *stubInsumoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Insumo, error) {
	i, ok := r.insumos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return i, nil
}

func (r *stubInsumoRepo) FindByIDs(_ context.Context, est uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]model.Insumo, error) {
	out := make(map[uuid.UUID]model.Insumo, len(ids))
	for _, id := range ids {
		if i, ok := r.insumos[id]; ok && i.Activo && i.EstablecimientoID == est {
			out[id] = *i
		}
	}
	return out, nil
}

func (r *stubInsumoRepo) List(_ context.Context, est uuid.UUID) ([]model.Insumo, error) {
	var out []model.Insumo
	for _, i := range r.insumos {
		if i.EstablecimientoID == est && i.Activo {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (r *stubInsumoRepo) Update(_ context.Context, i *model.Insumo) error {
	r.insumos[i.ID] = i
	return nil
}

func (r *stubInsumoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	i, ok := r.insumos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	i.Activo = false
	return nil
}

func (r *stubInsumoRepo) AjustarStockTx(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	i, ok := r.insumos[id]
	if !ok {
		return repository.ErrInsumoInsuficiente
	}
	nuevo := i.StockActual.Add(delta)
	if nuevo.IsNegative() {
		return repository.ErrInsumoInsuficiente
	}
	i.StockActual = nuevo
	return nil
}

// ── In-memory LoteRepository / CategoriaRepository stubs ─────────────────────

type stubLoteRepo struct {
	lotes map[uuid.UUID]*model.Lote
}

func newStubLoteRepo() *stubLoteRepo {
	return &stubLoteRepo{lotes: make(map[uuid.UUID]*model.Lote)}
}

func (r *stubLoteRepo) Create(_ context.Context, l *model.Lote) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	r.lotes[l.ID] = l
	return nil
}

func (r *stubLoteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Lote, error) {
	l, ok := r.lotes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return l, nil
}

func (r *stubLoteRepo) FindByIDs(_ context.Context, est uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]model.Lote, error) {
	out := make(map[uuid.UUID]model.Lote, len(ids))
	for _, id := range ids {
		if l, ok := r.lotes[id]; ok && l.Activo && l.EstablecimientoID == est {
			out[id] = *l
		}
	}
	return out, nil
}

func (r *stubLoteRepo) List(_ context.Context, est uuid.UUID) ([]model.Lote, error) {
	var out []model.Lote
	for _, l := range r.lotes {
		if l.EstablecimientoID == est && l.Activo {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubLoteRepo) Update(_ context.Context, l *model.Lote) error {
	r.lotes[l.ID] = l
	return nil
}

func (r *stubLoteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	l, ok := r.lotes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	l.Activo = false
	return nil
}

type stubCategoriaRepo struct {
	categorias map[uuid.UUID]*model.CategoriaAnimal
}

func newStubCategoriaRepo() *stubCategoriaRepo {
	return &stubCategoriaRepo{categorias: make(map[uuid.UUID]*model.CategoriaAnimal)}
}

func (r *stubCategoriaRepo) Create(_ context.Context, c *model.CategoriaAnimal) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCategoriaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CategoriaAnimal, error) {
	c, ok := r.categorias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCategoriaRepo) FindByIDs(_ context.Context, est uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]model.CategoriaAnimal, error) {
	out := make(map[uuid.UUID]model.CategoriaAnimal, len(ids))
	for _, id := range ids {
		c, ok := r.categorias[id]
		if !ok || !c.Activo {
			continue
		}
		if c.EstablecimientoID != nil && *c.EstablecimientoID != est {
			continue
		}
		out[id] = *c
	}
	return out, nil
}

func (r *stubCategoriaRepo) List(_ context.Context, est uuid.UUID) ([]model.CategoriaAnimal, error) {
	var out []model.CategoriaAnimal
	for _, c := range r.categorias {
		if !c.Activo {
			continue
		}
		if c.EstablecimientoID != nil && *c.EstablecimientoID != est {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCategoriaRepo) Update(_ context.Context, c *model.CategoriaAnimal) error {
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCategoriaRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := r.categorias[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Activo = false
	return nil
}

// ── Test environment ─────────────────────────────────────────────────────────

type entorno struct {
	est       uuid.UUID
	usuarioID uuid.UUID

	stock       *stubStockRepo
	actividades *stubActividadRepo
	movimientos *stubMovimientoRepo
	insumos     *stubInsumoRepo
	lotes       *stubLoteRepo
	categorias  *stubCategoriaRepo

	svc         service.ActividadService
	reversiones service.ReversionService
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	e := &entorno{
		est:         uuid.New(),
		usuarioID:   uuid.New(),
		stock:       newStubStockRepo(),
		actividades: newStubActividadRepo(),
		movimientos: &stubMovimientoRepo{},
		insumos:     newStubInsumoRepo(),
		lotes:       newStubLoteRepo(),
		categorias:  newStubCategoriaRepo(),
	}
	validador := service.NewValidador(e.lotes, e.categorias, e.insumos)
	e.svc = service.NewActividadService(e.actividades, e.stock, e.movimientos, e.insumos, validador, nil)
	e.reversiones = service.NewReversionService(e.actividades, e.stock, e.movimientos, e.insumos)
	return e
}

func (e *entorno) seedLote(nombre string) *model.Lote {
	l := &model.Lote{ID: uuid.New(), EstablecimientoID: e.est, Nombre: nombre, Activo: true}
	e.lotes.lotes[l.ID] = l
	return l
}

func (e *entorno) seedCategoria(nombre, sexo string) *model.CategoriaAnimal {
	c := &model.CategoriaAnimal{ID: uuid.New(), Nombre: nombre, Sexo: sexo, Edad: nombre, Activo: true}
	e.categorias.categorias[c.ID] = c
	return c
}

func (e *entorno) seedInsumo(nombre string, stock float64) *model.Insumo {
	i := &model.Insumo{
		ID:                uuid.New(),
		EstablecimientoID: e.est,
		Nombre:            nombre,
		Unidad:            "kg",
		StockActual:       decimal.NewFromFloat(stock),
		Activo:            true,
	}
	e.insumos.insumos[i.ID] = i
	return i
}

func (e *entorno) seedStock(lote, cat uuid.UUID, cantidad int, peso float64) {
	k := claveStock{e.est, lote, cat}
	e.stock.filas[k] = &model.StockAnimal{
		ID:                uuid.New(),
		EstablecimientoID: e.est,
		LoteID:            lote,
		CategoriaAnimalID: cat,
		Cantidad:          cantidad,
		PesoTotal:         decimal.NewFromFloat(peso),
	}
}

func (e *entorno) stockDe(lote, cat uuid.UUID) *model.StockAnimal {
	s, ok := e.stock.filas[claveStock{e.est, lote, cat}]
	if !ok {
		return nil
	}
	return s
}

func strPtr(s string) *string { return &s }

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("invalid uuid %q: %v", s, err)
	}
	return id
}

func decPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// keep the compiler honest about the interfaces the stubs claim to satisfy
var (
	_ repository.StockRepository           = (*stubStockRepo)(nil)
	_ repository.ActividadRepository       = (*stubActividadRepo)(nil)
	_ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)
	_ repository.InsumoRepository          = (*stubInsumoRepo)(nil)
	_ repository.LoteRepository            = (*stubLoteRepo)(nil)
	_ repository.CategoriaRepository       = (*stubCategoriaRepo)(nil)
)
