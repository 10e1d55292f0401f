// Package errors provides structured error handling with i18n support.
package errors

import (
	"net/http"
	"strings"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// User service errors
	CodeNetworkFailure Code = "NETWORK_FAILURE"
	CodeShapeMismatch  Code = "SHAPE_MISMATCH"

	// Request errors
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeUnavailable  Code = "UNAVAILABLE"
)

// HTTPStatus maps the code to the status this service answers with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNetworkFailure, CodeShapeMismatch:
		return http.StatusBadGateway
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// LocalizationKey returns the catalog key for the code, or "" for codes
// without user-facing copy.
func (c Code) LocalizationKey() string {
	if c == "" || c == CodeUnknown {
		return ""
	}
	return "error." + strings.ToLower(string(c))
}
