package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fastfood-be/internal/apperr"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// RetryAfterError is implemented by errors that know when the caller may
// try again.
type RetryAfterError interface {
	error
	RetryIn(now time.Time) time.Duration
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteSuccess(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, Envelope{Success: true, Data: data})
}

// WriteError maps err to its status code and envelope. Internal errors are
// reported with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}

	var ra RetryAfterError
	if errors.As(err, &ra) {
		SetRetryAfter(w, ra.RetryIn(time.Now()))
	}

	WriteJSON(w, status, Envelope{
		Error: &ErrorBody{Code: apperr.Code(err), Message: msg},
	})
}

// WriteJSONError writes a validation error with a fixed message.
func WriteJSONError(w http.ResponseWriter, message string, code int) {
	kind := apperr.ErrValidation
	if code >= http.StatusInternalServerError {
		kind = apperr.ErrInternal
	}
	WriteJSON(w, code, Envelope{
		Error: &ErrorBody{Code: apperr.Code(kind), Message: message},
	})
}

// SetRetryAfter writes the Retry-After header in whole seconds, at least 1.
func SetRetryAfter(w http.ResponseWriter, d time.Duration) {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
}

func ParseInt64(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", apperr.ErrValidation, s)
	}
	return n, nil
}

// QueryInt reads an optional integer query parameter.
func QueryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", apperr.ErrValidation, key)
	}
	return n, nil
}
