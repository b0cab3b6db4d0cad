package handler

import (
	"errors"
	"net/http"
	"reflect"

	"partediario/internal/apierror"
	"partediario/internal/middleware"
	"partediario/internal/repository"
	"partediario/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// usuarioID extracts the authenticated user's id from the JWT claims.
func usuarioID(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return id
}

// establecimientoID resolves the target establecimiento: the explicit query
// param when present, otherwise the one the user is scoped to.
func establecimientoID(c *gin.Context) (uuid.UUID, bool) {
	if q := c.Query("establecimiento_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("establecimiento_id invalido"))
			return uuid.Nil, false
		}
		return id, true
	}
	claims := middleware.GetClaims(c)
	if claims.EstablecimientoID != nil {
		if id, err := uuid.Parse(*claims.EstablecimientoID); err == nil {
			return id, true
		}
	}
	c.JSON(http.StatusBadRequest, apierror.New("establecimiento_id requerido"))
	return uuid.Nil, false
}

// writeServiceError maps domain errors to HTTP responses. Validation failures
// carry the full field list; conflict-class errors map to 409 so clients can
// distinguish them from malformed requests.
func writeServiceError(c *gin.Context, err error) {
	var ev *service.ErrValidacion
	switch {
	case errors.As(err, &ev):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(ev.Campos))
	case errors.Is(err, repository.ErrStockNegativo),
		errors.Is(err, repository.ErrStockInsuficiente),
		errors.Is(err, repository.ErrInsumoInsuficiente),
		errors.Is(err, service.ErrYaRevertida),
		errors.Is(err, service.ErrNoReversible),
		errors.Is(err, service.ErrStockInconsistente),
		errors.Is(err, service.ErrNoEditable):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrActividadEliminada):
		c.JSON(http.StatusGone, apierror.New(err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Recurso no encontrado"))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}
