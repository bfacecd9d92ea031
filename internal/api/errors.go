package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/goatkit/incidentquery/internal/apierrors"
	"github.com/goatkit/incidentquery/internal/auth"
	"github.com/goatkit/incidentquery/internal/middleware"
	"github.com/goatkit/incidentquery/internal/repository"
)

// Field error types reported in validation envelopes.
const (
	errTypeMissing     = "missing"
	errTypeUUIDParsing = "uuid_parsing"
	errTypeJSONInvalid = "json_invalid"
)

var registerValidationOnce sync.Once

// registerValidation makes gin's validator report JSON field names and adds
// the uuidstr tag, which accepts any textual form uuid.Parse accepts.
func registerValidation() {
	registerValidationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("uuidstr", func(fl validator.FieldLevel) bool {
			_, err := uuid.Parse(fl.Field().String())
			return err == nil
		})
	})
}

// bindingErrors converts a ShouldBindJSON error to field errors.
func bindingErrors(err error) []apierrors.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]apierrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fieldError([]string{"body", fe.Field()}, fe.Tag()))
		}
		return out
	}

	if errors.Is(err, io.EOF) {
		return []apierrors.FieldError{fieldError([]string{"body"}, "required")}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return []apierrors.FieldError{{
			Location: []string{"body", typeErr.Field},
			Message:  "Input should be a valid " + typeErr.Type.String(),
			Type:     "type_error",
		}}
	}

	return []apierrors.FieldError{{
		Location: []string{"body"},
		Message:  "JSON decode error",
		Type:     errTypeJSONInvalid,
	}}
}

func fieldError(location []string, tag string) apierrors.FieldError {
	switch tag {
	case "required":
		return apierrors.FieldError{Location: location, Message: "Field required", Type: errTypeMissing}
	case "uuidstr", "uuid":
		return apierrors.FieldError{Location: location, Message: "Input should be a valid UUID", Type: errTypeUUIDParsing}
	default:
		return apierrors.FieldError{Location: location, Message: "Invalid value", Type: tag}
	}
}

// respondError writes the envelope for an error returned by the service.
// Store failures on aggregation endpoints expose the driver message in
// details; listings report a generic internal error.
func respondError(c *gin.Context, logger *slog.Logger, err error, aggregation bool) {
	switch {
	case errors.Is(err, auth.ErrAuthenticationRequired), errors.Is(err, auth.ErrNotAuthorized):
		middleware.AbortAuth(c, err)
		return
	case errors.Is(err, repository.ErrNotFound):
		apierrors.Abort(c, apierrors.CodeIncidentNotFound, "")
		return
	}

	_ = c.Error(err)
	logger.ErrorContext(c.Request.Context(), "incident query failed",
		slog.String("route", c.FullPath()),
		slog.Any("error", err))

	if aggregation {
		apierrors.Abort(c, apierrors.CodeStoreError, driverMessage(err))
		return
	}
	apierrors.Abort(c, apierrors.CodeInternalError, "")
}

// driverMessage strips the repository and service context from a store
// error, leaving the message the database driver produced.
func driverMessage(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err.Error()
		}
		err = inner
	}
}
