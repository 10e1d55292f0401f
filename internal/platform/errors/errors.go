package errors

import (
	stderrors "errors"
	"strings"
)

// Metadata keys shared by error producers and renderers.
const (
	MetaStatus  = "status"
	MetaMessage = "message"
	MetaField   = "field"
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs/telemetry)
	Metadata map[string]string // Additional context for templating
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithMetadata creates a domain error with both metadata and a cause.
func WrapWithMetadata(code Code, message string, metadata map[string]string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
		Cause:    cause,
	}
}

// CodeOf returns the code of the first domain error in err's chain.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}

// HTTPStatus resolves the response status for err.
func HTTPStatus(err error) int {
	return CodeOf(err).HTTPStatus()
}

// LocalizationKey returns the catalog key describing err to users, or "" when
// err carries no domain code.
func LocalizationKey(err error) string {
	return CodeOf(err).LocalizationKey()
}

// MetadataValue returns one metadata value from the first domain error in
// err's chain.
func MetadataValue(err error, key string) string {
	var domainErr *Error
	if !stderrors.As(err, &domainErr) || domainErr.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(domainErr.Metadata[key])
}
