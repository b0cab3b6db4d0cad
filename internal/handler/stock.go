package handler

import (
	"net/http"
	"strconv"

	"partediario/internal/apierror"
	"partediario/internal/dto"
	"partediario/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler { return &StockHandler{svc: svc} }

// Listar godoc
// @Summary      Consultar stock
// @Description  Devuelve las filas vigentes del stock animal, con peso promedio calculado por fila.
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        establecimiento_id  query string true  "UUID del establecimiento"
// @Param        lote_id             query string false "Filtrar por lote"
// @Param        categoria_animal_id query string false "Filtrar por categoría"
// @Success      200 {array} dto.StockEntryResponse
// @Router       /v1/stock [get]
func (h *StockHandler) Listar(c *gin.Context) {
	est, ok := establecimientoID(c)
	if !ok {
		return
	}
	var filter dto.StockFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), est, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al consultar stock"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PesoPromedio godoc
// @Summary      Peso promedio de un lote y categoría
// @Description  peso_total / cantidad redondeado al kilo; null cuando no hay stock.
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        establecimiento_id  query string true "UUID del establecimiento"
// @Param        lote_id             query string true "UUID del lote"
// @Param        categoria_animal_id query string true "UUID de la categoría"
// @Success      200 {object} dto.PesoPromedioResponse
// @Router       /v1/stock/peso-promedio [get]
func (h *StockHandler) PesoPromedio(c *gin.Context) {
	est, ok := establecimientoID(c)
	if !ok {
		return
	}
	lote, err := uuid.Parse(c.Query("lote_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("lote_id invalido"))
		return
	}
	cat, err := uuid.Parse(c.Query("categoria_animal_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("categoria_animal_id invalido"))
		return
	}
	resp, err := h.svc.PesoPromedio(c.Request.Context(), est, lote, cat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al calcular peso promedio"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimientos godoc
// @Summary      Auditoría de movimientos de stock
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        establecimiento_id query string true  "UUID del establecimiento"
// @Param        lote_id            query string false "Filtrar por lote"
// @Param        limit              query int    false "Máximo de filas (default 100)"
// @Success      200 {array} dto.MovimientoStockResponse
// @Router       /v1/stock/movimientos [get]
func (h *StockHandler) Movimientos(c *gin.Context) {
	est, ok := establecimientoID(c)
	if !ok {
		return
	}
	var loteID *uuid.UUID
	if q := c.Query("lote_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("lote_id invalido"))
			return
		}
		loteID = &id
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	resp, err := h.svc.Movimientos(c.Request.Context(), est, loteID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar movimientos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
