// Package apperr holds the error kinds shared across the order and
// inventory core. Domain packages wrap one of these sentinels so callers
// can branch with errors.Is regardless of which layer produced the error.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrRateLimited       = errors.New("rate limited")
	ErrCircuitOpen       = errors.New("circuit open")
	ErrInternal          = errors.New("internal error")
)

// Envelope codes.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeRateLimited       = "RATE_LIMITED"
	CodeCircuitOpen       = "CIRCUIT_OPEN"
	CodeInternal          = "INTERNAL_ERROR"
)

// Code returns the envelope code for err. Anything not wrapping a known
// kind is reported as internal.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrCircuitOpen):
		return CodeCircuitOpen
	default:
		return CodeInternal
	}
}

// HTTPStatus maps err to the status code used by the transport layer.
func HTTPStatus(err error) int {
	switch Code(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeCircuitOpen:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether err was caused by the caller's input
// rather than by a failing dependency.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidTransition)
}
