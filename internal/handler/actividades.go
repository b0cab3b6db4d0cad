package handler

import (
	"net/http"

	"partediario/internal/apierror"
	"partediario/internal/dto"
	"partediario/internal/middleware"
	"partediario/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ActividadesHandler struct {
	svc         service.ActividadService
	reversiones service.ReversionService
}

func NewActividadesHandler(svc service.ActividadService, reversiones service.ReversionService) *ActividadesHandler {
	return &ActividadesHandler{svc: svc, reversiones: reversiones}
}

// Crear godoc
// @Summary      Registrar una actividad
// @Description  Crea una actividad ACID: inserta cabecera y detalles, aplica los deltas de stock animal e insumos y despacha el parte diario asíncrono.
// @Tags         actividades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearActividadRequest true "Detalle de la actividad"
// @Success      201  {object} dto.ActividadResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/actividades [post]
func (h *ActividadesHandler) Crear(c *gin.Context) {
	var req dto.CrearActividadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	middleware.ContarActividad(resp.Tipo)
	c.JSON(http.StatusCreated, resp)
}

// Actualizar godoc
// @Summary      Editar una actividad
// @Description  Reemplaza fecha, hora, nota y líneas. Los efectos de stock anteriores se revierten y los nuevos se aplican en la misma transacción.
// @Tags         actividades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la actividad"
// @Param        body body dto.ActualizarActividadRequest true "Detalle actualizado"
// @Success      200  {object} dto.ActividadResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/actividades/{id} [put]
func (h *ActividadesHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarActividadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), usuarioID(c), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DarDeBaja godoc
// @Summary      Dar de baja una actividad
// @Description  Marca la actividad como eliminada sin tocar el stock; queda fuera de los listados por defecto.
// @Tags         actividades
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la actividad"
// @Success      204
// @Failure      410 {object} apierror.APIError
// @Router       /v1/actividades/{id}/baja [patch]
func (h *ActividadesHandler) DarDeBaja(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.DarDeBaja(c.Request.Context(), id, usuarioID(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Obtener godoc
// @Summary      Obtener una actividad
// @Tags         actividades
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la actividad"
// @Success      200 {object} dto.ActividadResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/actividades/{id} [get]
func (h *ActividadesHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar actividades
// @Description  Lista paginada filtrada por fecha, tipo y estado. Las actividades dadas de baja no aparecen.
// @Tags         actividades
// @Produce      json
// @Security     BearerAuth
// @Param        establecimiento_id query string true  "UUID del establecimiento"
// @Param        fecha  query string false "Fecha YYYY-MM-DD"
// @Param        tipo   query string false "movimiento | actividad_mixta | reclasificacion | destete | traslado"
// @Param        estado query string false "activa | revertida | bloqueada | all"
// @Param        page   query int    false "Página (default 1)"
// @Param        limit  query int    false "Registros por página (default 50)"
// @Success      200    {object} dto.ActividadListResponse
// @Router       /v1/actividades [get]
func (h *ActividadesHandler) Listar(c *gin.Context) {
	est, ok := establecimientoID(c)
	if !ok {
		return
	}
	var filter dto.ActividadFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), est, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar actividades"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Revertir godoc
// @Summary      Revertir una actividad
// @Description  Aplica el inverso exacto de cada movimiento registrado y marca la actividad como revertida. Todo o nada.
// @Tags         actividades
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la actividad"
// @Success      200 {object} dto.ActividadResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/actividades/{id}/revertir [post]
func (h *ActividadesHandler) Revertir(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.reversiones.Revertir(c.Request.Context(), id, usuarioID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	middleware.ContarReversion()
	c.JSON(http.StatusOK, resp)
}

// Reversibilidad godoc
// @Summary      Consultar si una actividad puede revertirse
// @Tags         actividades
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la actividad"
// @Success      200 {object} dto.ReversibilidadResponse
// @Router       /v1/actividades/{id}/reversibilidad [get]
func (h *ActividadesHandler) Reversibilidad(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.reversiones.PuedeRevertir(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
