package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/likbrus/likbrus.github.io/internal/apierror"
	"github.com/likbrus/likbrus.github.io/internal/middleware"
	"github.com/likbrus/likbrus.github.io/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// exposeBackendErrors appends store error text to user messages. Off in
// production.
var exposeBackendErrors = true

// SetErrorDetail controls whether backend error text reaches clients.
func SetErrorDetail(expose bool) { exposeBackendErrors = expose }

const (
	msgError        = "Feil oppstod"
	msgUnknownError = "Ukjent feil"
)

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Ugyldig JSON: "+err.Error()))
		return false
	}
	if fields := validationFields(req); fields != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation("", fields))
		return false
	}
	return true
}

// validationFields runs validator tags and returns field -> tag, or nil.
func validationFields(req interface{}) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}

// userMessage is the text shown to a person for err, on pages and in JSON.
func userMessage(err error) string {
	var (
		verr *service.ValidationError
		berr *service.BackendError
		rerr *service.ResetError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &rerr):
		if exposeBackendErrors {
			return "Feil: " + rerr.Error()
		}
		return "Feil: tilbakestilling stoppet (" + rerr.Stage + ")"
	case errors.As(err, &berr):
		if exposeBackendErrors {
			return msgError + ": " + berr.Error()
		}
		return msgError
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrInvalidCredentials):
		return err.Error()
	}
	return msgUnknownError
}

// respondError maps service errors onto status codes and the apierror
// envelope.
func respondError(c *gin.Context, err error) {
	var (
		verr *service.ValidationError
		berr *service.BackendError
		rerr *service.ResetError
	)
	msg := userMessage(err)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(msg, verr.Fields))
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, apierror.New(msg))
	case errors.Is(err, service.ErrOutOfStock):
		c.JSON(http.StatusConflict, apierror.New(msg))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, apierror.New(msg))
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apierror.New(msg))
	case errors.As(err, &rerr):
		logFailure(c, err)
		c.JSON(http.StatusInternalServerError, apierror.NewReset(msg, rerr.Stage))
	case errors.As(err, &berr):
		logFailure(c, err)
		c.JSON(http.StatusServiceUnavailable, apierror.New(msg))
	default:
		_ = c.Error(err)
	}
}

func logFailure(c *gin.Context, err error) {
	log.Error().
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("path", c.FullPath()).
		Err(err).
		Msg("request failed")
}
