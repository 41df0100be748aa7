package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPerCode(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err    *AppError
		code   string
		status int
	}{
		{Validation("bad"), CodeValidation, http.StatusBadRequest},
		{NotFound("Bid", nil), CodeNotFound, http.StatusNotFound},
		{ForbiddenTransition("no"), CodeForbiddenTransition, http.StatusConflict},
		{Conflict("dup"), CodeConflict, http.StatusConflict},
		{Dependency("store", cause), CodeDependency, http.StatusServiceUnavailable},
		{CascadeIncomplete("half", cause), CodeCascadeIncomplete, http.StatusInternalServerError},
		{TooManyRequests("slow"), CodeTooManyRequests, http.StatusTooManyRequests},
		{Unauthorized("who", nil), CodeUnauthorized, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
		})
	}
}

func TestIsAndAsFollowWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("delete requirement: %w", CascadeIncomplete("bids left behind", cause))

	assert.True(t, Is(err, CodeCascadeIncomplete))
	assert.False(t, Is(err, CodeDependency))
	assert.ErrorIs(t, err, cause)

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "bids left behind", appErr.Message)
	assert.Contains(t, appErr.Error(), "connection reset")

	_, ok = As(cause)
	assert.False(t, ok)
	assert.False(t, Is(nil, CodeNotFound))
}
