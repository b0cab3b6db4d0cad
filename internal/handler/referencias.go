package handler

// referencias.go
// Catalog endpoints: lotes, categorías, insumos and the fixed movement-type
// list. The read endpoints are hit by every form in the field app, so the
// list responses are cached in redis with a short TTL and invalidated on
// every write.

import (
	"net/http"
	"sort"
	"time"

	"partediario/internal/apierror"
	"partediario/internal/dto"
	"partediario/internal/infra"
	"partediario/internal/model"
	"partediario/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const referenciaCacheTTL = 5 * time.Minute

type ReferenciasHandler struct {
	establecimientos repository.EstablecimientoRepository
	lotes            repository.LoteRepository
	categorias       repository.CategoriaRepository
	insumos          repository.InsumoRepository
	rdb              *redis.Client
}

func NewReferenciasHandler(
	establecimientos repository.EstablecimientoRepository,
	lotes repository.LoteRepository,
	categorias repository.CategoriaRepository,
	insumos repository.InsumoRepository,
	rdb *redis.Client,
) *ReferenciasHandler {
	return &ReferenciasHandler{
		establecimientos: establecimientos,
		lotes:            lotes,
		categorias:       categorias,
		insumos:          insumos,
		rdb:              rdb,
	}
}

// ── Establecimientos ─────────────────────────────────────────────────────────

// ListarEstablecimientos godoc
// @Summary  Listar establecimientos activos
// @Tags     referencias
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} dto.EstablecimientoResponse
// @Router   /v1/establecimientos [get]
func (h *ReferenciasHandler) ListarEstablecimientos(c *gin.Context) {
	ests, err := h.establecimientos.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar establecimientos"))
		return
	}
	resp := make([]dto.EstablecimientoResponse, 0, len(ests))
	for _, e := range ests {
		resp = append(resp, dto.EstablecimientoResponse{ID: e.ID.String(), Nombre: e.Nombre})
	}
	c.JSON(http.StatusOK, resp)
}

// CrearEstablecimiento godoc
// @Summary  Crear establecimiento
// @Tags     referencias
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body dto.CrearEstablecimientoRequest true "Establecimiento"
// @Success  201 {object} dto.EstablecimientoResponse
// @Router   /v1/establecimientos [post]
func (h *ReferenciasHandler) CrearEstablecimiento(c *gin.Context) {
	var req dto.CrearEstablecimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	e := &model.Establecimiento{Nombre: req.Nombre, Activo: true}
	if err := h.establecimientos.Create(c.Request.Context(), e); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, dto.EstablecimientoResponse{ID: e.ID.String(), Nombre: e.Nombre})
}

// ── Lotes ────────────────────────────────────────────────────────────────────

// ListarLotes godoc
// @Summary  Listar lotes del establecimiento
// @Tags     referencias
// @Produce  json
// @Security BearerAuth
// @Param    establecimiento_id query string true "UUID del establecimiento"
// @Success  200 {array} dto.LoteResponse
// @Router   /v1/lotes [get]
func (h *ReferenciasHandler) ListarLotes(c *gin.Context) {
	est, ok := establecimientoID(c)
	if !ok {
		return
	}
	key := "ref:lotes:" + est.String()
	var cached []dto.LoteResponse
	if infra.CacheGetJSON(c.Request.Context(), h.rdb, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	lotes, err := h.lotes.List(c.Request.Context(), est)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar lotes"))
		return
	}
	resp := make([]dto.LoteResponse, 0, len(lotes))
	for _, l := range lotes {
		resp = append(resp, dto.LoteResponse{ID: l.ID.String(), Nombre: l.Nombre})
	}
	infra.CacheSetJSON(c.Request.Context(), h.rdb, key, resp, referenciaCacheTTL)
	c.JSON(http.StatusOK, resp)
}

// CrearLote godoc
// @Summary  Crear lote
// @Tags     referencias
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body dto.CrearLoteRequest true "Lote"
// @Success  201 {object} dto.LoteResponse
// @Router   /v1/lotes [post]
func (h *ReferenciasHandler) CrearLote(c *gin.Context) {
	var req dto.CrearLoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	est, _ := uuid.Parse(req.EstablecimientoID)
	lote := &model.Lote{EstablecimientoID: est, Nombre: req.Nombre, Activo: true}
	if err := h.lotes.Create(c.Request.Context(), lote); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	infra.CacheInvalidate(c.Request.Context(), h.rdb, "ref:lotes:"+est.String())
	c.JSON(http.StatusCreated, dto.LoteResponse{ID: lote.ID.String(), Nombre: lote.Nombre})
}

// EliminarLote godoc
// @Summary  Desactivar lote
// @Tags     referencias
// @Security BearerAuth
// @Param    id path string true "UUID del lote"
// @Success  204
// @Router   /v1/lotes/{id} [delete]
func (h *ReferenciasHandler) EliminarLote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	lote, err := h.lotes.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Lote no encontrado"))
		return
	}
	if err := h.lotes.SoftDelete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	infra.CacheInvalidate(c.Request.Context(), h.rdb, "ref:lotes:"+lote.EstablecimientoID.String())
	c.Status(http.StatusNoContent)
}

// ── Categorías ───────────────────────────────────────────────────────────────

// ListarCategorias godoc
// @Summary  Listar categorías (globales + del establecimiento)
// @Tags     referencias
// @Produce  json
// @Security BearerAuth
// @Param    establecimiento_id query string true "UUID del establecimiento"
// @Success  200 {array} dto.CategoriaResponse
// @Router   /v1/categorias [get]
func (h *ReferenciasHandler) ListarCategorias(c *gin.Context) {
	est, ok := establecimientoID(c)
	if !ok {
		return
	}
	key := "ref:categorias:" + est.String()
	var cached []dto.CategoriaResponse
	if infra.CacheGetJSON(c.Request.Context(), h.rdb, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	cats, err := h.categorias.List(c.Request.Context(), est)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar categorias"))
		return
	}
	resp := make([]dto.CategoriaResponse, 0, len(cats))
	for _, cat := range cats {
		resp = append(resp, dto.CategoriaResponse{
			ID: cat.ID.String(), Nombre: cat.Nombre, Sexo: cat.Sexo, Edad: cat.Edad,
		})
	}
	infra.CacheSetJSON(c.Request.Context(), h.rdb, key, resp, referenciaCacheTTL)
	c.JSON(http.StatusOK, resp)
}

// CrearCategoria godoc
// @Summary  Crear categoría animal
// @Tags     referencias
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body dto.CrearCategoriaRequest true "Categoría"
// @Success  201 {object} dto.CategoriaResponse
// @Router   /v1/categorias [post]
func (h *ReferenciasHandler) CrearCategoria(c *gin.Context) {
	var req dto.CrearCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cat := &model.CategoriaAnimal{Nombre: req.Nombre, Sexo: req.Sexo, Edad: req.Edad, Activo: true}
	if req.EstablecimientoID != nil {
		if id, err := uuid.Parse(*req.EstablecimientoID); err == nil {
			cat.EstablecimientoID = &id
		}
	}
	if err := h.categorias.Create(c.Request.Context(), cat); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if cat.EstablecimientoID != nil {
		infra.CacheInvalidate(c.Request.Context(), h.rdb, "ref:categorias:"+cat.EstablecimientoID.String())
	}
	c.JSON(http.StatusCreated, dto.CategoriaResponse{
		ID: cat.ID.String(), Nombre: cat.Nombre, Sexo: cat.Sexo, Edad: cat.Edad,
	})
}

// ── Insumos ──────────────────────────────────────────────────────────────────

// ListarInsumos godoc
// @Summary  Listar insumos con stock actual
// @Tags     referencias
// @Produce  json
// @Security BearerAuth
// @Param    establecimiento_id query string true "UUID del establecimiento"
// @Success  200 {array} dto.InsumoResponse
// @Router   /v1/insumos [get]
func (h *ReferenciasHandler) ListarInsumos(c *gin.Context) {
	est, ok := establecimientoID(c)
	if !ok {
		return
	}
	// Insumo stock changes with every mixed activity; not worth caching.
	insumos, err := h.insumos.List(c.Request.Context(), est)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar insumos"))
		return
	}
	resp := make([]dto.InsumoResponse, 0, len(insumos))
	for _, i := range insumos {
		resp = append(resp, dto.InsumoResponse{
			ID: i.ID.String(), Nombre: i.Nombre, Unidad: i.Unidad, StockActual: i.StockActual,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// CrearInsumo godoc
// @Summary  Crear insumo
// @Tags     referencias
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body dto.CrearInsumoRequest true "Insumo"
// @Success  201 {object} dto.InsumoResponse
// @Router   /v1/insumos [post]
func (h *ReferenciasHandler) CrearInsumo(c *gin.Context) {
	var req dto.CrearInsumoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	est, _ := uuid.Parse(req.EstablecimientoID)
	insumo := &model.Insumo{
		EstablecimientoID: est,
		Nombre:            req.Nombre,
		Unidad:            req.Unidad,
		StockActual:       req.StockActual,
		Activo:            true,
	}
	if err := h.insumos.Create(c.Request.Context(), insumo); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, dto.InsumoResponse{
		ID: insumo.ID.String(), Nombre: insumo.Nombre, Unidad: insumo.Unidad, StockActual: insumo.StockActual,
	})
}

// ── Tipos de movimiento ──────────────────────────────────────────────────────

// ListarTiposMovimiento godoc
// @Summary  Catálogo de tipos de movimiento
// @Tags     referencias
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} dto.TipoMovimientoResponse
// @Router   /v1/tipos-movimiento [get]
func (h *ReferenciasHandler) ListarTiposMovimiento(c *gin.Context) {
	tipos := model.TiposMovimiento()
	sort.Slice(tipos, func(i, j int) bool { return tipos[i].Codigo < tipos[j].Codigo })
	resp := make([]dto.TipoMovimientoResponse, 0, len(tipos))
	for _, t := range tipos {
		resp = append(resp, dto.TipoMovimientoResponse{
			Codigo: t.Codigo, Nombre: t.Nombre, Direccion: t.Direccion, PesoOpcional: t.PesoOpcional,
		})
	}
	c.JSON(http.StatusOK, resp)
}
