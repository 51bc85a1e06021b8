package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"agrotrace/internal/apierror"
	"agrotrace/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
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
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
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

// intQuery parses an optional integer query parameter, zero when absent or
// malformed (list endpoints apply their own defaults).
func intQuery(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}

// writeError maps engine error kinds to HTTP statuses. Anything unrecognized
// is logged and hidden behind a generic 500 so internals never leak.
func writeError(c *gin.Context, err error) {
	switch {
	case model.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New("record not found"))
	case errors.Is(err, model.ErrInsufficientQuantity):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, model.ErrCertificationExpired):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, model.ErrConflict):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, model.ErrTxAbort):
		c.JSON(http.StatusConflict, apierror.New("operation aborted by a concurrent change, retry"))
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled service error")
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}
