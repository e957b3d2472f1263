package handler

import (
	"errors"
	"net/http"
	"reflect"

	"arcadeorders/internal/apierror"
	"arcadeorders/internal/middleware"
	"arcadeorders/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
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
// Returns false and writes the error response if validation fails; the
// caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "JSON invalido: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "Parametros invalidos: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(apierror.CodeValidation, err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseID reads a UUID path parameter, writing 400 when malformed.
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// actorFrom builds the service actor from the JWT claims.
func actorFrom(c *gin.Context) (service.Actor, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(apierror.CodeUnauthorized, "Autenticacion requerida"))
		return service.Actor{}, false
	}
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(apierror.CodeUnauthorized, "Token invalido o expirado"))
		return service.Actor{}, false
	}
	return service.Actor{UserID: uid, Role: claims.Role}, true
}

// respondError maps a service error to its HTTP status. Persistence errors are
// logged and answered with a generic message.
func respondError(c *gin.Context, err error) {
	var de *service.Error
	if !errors.As(err, &de) {
		de = &service.Error{Kind: service.KindPersistence, Message: "error inesperado", Err: err}
	}

	switch de.Kind {
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, apierror.New(apierror.CodeNotFound, de.Message))
	case service.KindValidation:
		c.JSON(http.StatusUnprocessableEntity, apierror.New(apierror.CodeValidation, de.Message))
	case service.KindIntegrity:
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeConflict, de.Message))
	case service.ErrUnauthorized.Kind:
		c.JSON(http.StatusUnauthorized, apierror.New(apierror.CodeUnauthorized, de.Message))
	default:
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(err).
			Msg("persistence failure")
		c.JSON(http.StatusInternalServerError, apierror.New(apierror.CodeInternal, "Error interno del servidor"))
	}
}
