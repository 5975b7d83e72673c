package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeAndStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", fmt.Errorf("%w: total must be positive", ErrValidation), CodeValidation, http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: order", ErrNotFound), CodeNotFound, http.StatusNotFound},
		{"transition", fmt.Errorf("%w: PENDING -> DELIVERED", ErrInvalidTransition), CodeInvalidTransition, http.StatusConflict},
		{"rate limited", ErrRateLimited, CodeRateLimited, http.StatusTooManyRequests},
		{"circuit open", ErrCircuitOpen, CodeCircuitOpen, http.StatusServiceUnavailable},
		{"unknown", errors.New("connection reset"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, Code(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(fmt.Errorf("%w: x", ErrValidation)))
	assert.True(t, IsClientError(ErrNotFound))
	assert.True(t, IsClientError(ErrInvalidTransition))
	assert.False(t, IsClientError(ErrCircuitOpen))
	assert.False(t, IsClientError(errors.New("db down")))
}
