package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// The closed error taxonomy. Services wrap one of these sentinels; handlers
// map them to HTTP status codes through Status/JSON so the mapping lives in
// exactly one place.
var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrValidation           = errors.New("validation error")
	ErrDuplicateAssignment  = errors.New("duplicate assignment")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrUpstream             = errors.New("upstream failure")
)

// NotFoundf wraps ErrNotFound with context.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

// Forbiddenf wraps ErrForbidden with context.
func Forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrForbidden}, args...)...)
}

// Validationf wraps ErrValidation with context.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// Upstreamf wraps ErrUpstream with context.
func Upstreamf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrUpstream}, args...)...)
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateAssignment):
		return http.StatusConflict
	case errors.Is(err, ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// JSON writes the standard error payload for err.
func JSON(c *gin.Context, err error) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Do not leak driver/storage details to clients.
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}
