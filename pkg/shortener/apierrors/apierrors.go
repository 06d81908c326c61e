// Package apierrors defines the domain error taxonomy and its HTTP shape.
// Operations return these as plain error values; handlers render them with
// Abort. Anything that is not an *Error is treated as an internal failure,
// logged with a correlation id, and answered with a generic 500 body.
package apierrors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Error is a domain error carrying the code/message/status triple returned
// to API clients.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return e.Message
}

// New creates a domain error.
func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

var (
	// ErrInvalidAlias is returned when a custom alias fails validation.
	ErrInvalidAlias = New("INVALID_ALIAS",
		"Custom alias must be 3-20 characters long, contain only alphanumeric characters, hyphens, and underscores, and start and end with an alphanumeric character",
		http.StatusBadRequest)

	// ErrAliasTaken is returned when a code or custom alias already exists,
	// including codes held by deactivated links.
	ErrAliasTaken = New("ALIAS_TAKEN",
		"This alias is already in use",
		http.StatusConflict)

	// ErrAllocationExhausted is returned when every generated code collided.
	// Retryable by the caller.
	ErrAllocationExhausted = New("ALLOCATION_EXHAUSTED",
		"Unable to generate a unique short code. Please try again.",
		http.StatusServiceUnavailable)

	// ErrNotFound is returned when a short code does not resolve.
	ErrNotFound = New("URL_NOT_FOUND",
		"The requested short URL does not exist",
		http.StatusNotFound)

	// ErrExpired is returned when a short code resolves but has expired.
	ErrExpired = New("URL_EXPIRED",
		"This short URL has expired and is no longer accessible",
		http.StatusGone)
)

// errorBody is the wire envelope: {"error": {"code", "message", "status"}}.
type errorBody struct {
	Error *Error `json:"error"`
}

// Abort writes err as a JSON error response and aborts the request. Unknown
// errors are logged with a correlation id and never leak their message.
func Abort(c *gin.Context, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, errorBody{Error: apiErr})
		return
	}

	errorID := uuid.NewString()[:8]
	log.Error().Err(err).Str("error_id", errorID).
		Str("path", c.Request.URL.Path).
		Msg("unhandled error")

	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{
		Error: New("INTERNAL_SERVER_ERROR",
			"An unexpected error occurred. Please try again later",
			http.StatusInternalServerError),
	})
}
