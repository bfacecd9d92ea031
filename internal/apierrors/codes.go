// Package apierrors provides structured API error codes and responses.
// All codes are namespaced (e.g., "core:unauthorized", "incident:not_found").
package apierrors

import "net/http"

// Core error codes - registered automatically at init
const (
	// Authentication & Authorization
	CodeUnauthorized = "core:unauthorized"
	CodeForbidden    = "core:forbidden"

	// Request errors
	CodeValidationFailed = "core:validation_failed"

	// Resource errors
	CodeIncidentNotFound = "incident:not_found"
	CodeRouteNotFound    = "core:route_not_found"

	// Server errors
	CodeStoreError    = "core:store_error"
	CodeInternalError = "core:internal_error"
)

// coreErrors defines all error codes with their fixed descriptions and HTTP status
var coreErrors = []ErrorCode{
	{Code: CodeUnauthorized, Message: "Authentication required", HTTPStatus: http.StatusUnauthorized},
	{Code: CodeForbidden, Message: "Not authorized to access this data", HTTPStatus: http.StatusForbidden},

	{Code: CodeValidationFailed, Message: "Validation Error", HTTPStatus: http.StatusBadRequest},

	{Code: CodeIncidentNotFound, Message: "Incident not found", HTTPStatus: http.StatusNotFound},
	{Code: CodeRouteNotFound, Message: "Not Found", HTTPStatus: http.StatusNotFound},

	{Code: CodeStoreError, Message: "Database error", HTTPStatus: http.StatusInternalServerError},
	{Code: CodeInternalError, Message: "Internal server error", HTTPStatus: http.StatusInternalServerError},
}

func init() {
	for _, e := range coreErrors {
		Registry.Register(e)
	}
}
