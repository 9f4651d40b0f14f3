package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewValidation(t *testing.T) {
	err := NewValidation("client_id")

	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "client_id", err.Param)
	assert.Contains(t, err.Error(), "client_id")
}

func TestResponseContentUnwrapsCause(t *testing.T) {
	cause := stderrors.New("unexpected end of JSON input")
	err := NewResponseContent("cannot extract access token", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "unexpected end of JSON input")
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("refresh failed: %w", NewUnsupported("nope"))

	assert.True(t, Is(wrapped, ErrorTypeUnsupported))
	assert.False(t, Is(wrapped, ErrorTypeValidation))
	assert.False(t, Is(stderrors.New("plain"), ErrorTypeUnsupported))
	assert.False(t, Is(nil, ErrorTypeUnsupported))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      bool
	}{
		{ErrorTypeNetwork, true},
		{ErrorTypeRateLimit, true},
		{ErrorTypeServerError, true},
		{ErrorTypeOAuth, false},
		{ErrorTypeValidation, false},
		{ErrorTypeUnsupported, false},
		{ErrorTypeResponseContent, false},
		{ErrorTypeNotFound, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.errorType))
		})
	}
}

func TestIsRetryableStatusCode(t *testing.T) {
	assert.True(t, IsRetryableStatusCode(0))
	assert.True(t, IsRetryableStatusCode(429))
	assert.True(t, IsRetryableStatusCode(503))
	assert.False(t, IsRetryableStatusCode(400))
	assert.False(t, IsRetryableStatusCode(401))
	assert.False(t, IsRetryableStatusCode(404))
}
