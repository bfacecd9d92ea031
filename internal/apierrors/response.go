package apierrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is reported in every error envelope.
const Version = "1.0"

// APIError is the JSON envelope for every non-validation error.
type APIError struct {
	Mssg    string `json:"mssg"`
	Details string `json:"details"`
	Version string `json:"version"`
}

// FieldError describes one invalid request field.
type FieldError struct {
	Location []string `json:"location"`
	Message  string   `json:"message"`
	Type     string   `json:"type"`
}

// ValidationError is the envelope for request validation failures.
type ValidationError struct {
	Message string       `json:"message"`
	Details []FieldError `json:"details"`
	Version string       `json:"version"`
}

// New creates an APIError for a registered code without sending it.
// An empty details string falls back to the code's description.
func New(code, details string) APIError {
	msg := Registry.Message(code)
	if details == "" {
		details = msg
	}
	return APIError{Mssg: msg, Details: details, Version: Version}
}

// Abort writes the envelope for code and stops the handler chain.
func Abort(c *gin.Context, code, details string) {
	c.AbortWithStatusJSON(Registry.HTTPStatus(code), New(code, details))
}

// AbortValidation writes a 400 validation envelope listing each field.
func AbortValidation(c *gin.Context, details []FieldError) {
	if details == nil {
		details = []FieldError{}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationError{
		Message: Registry.Message(CodeValidationFailed),
		Details: details,
		Version: Version,
	})
}
