package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	assert.True(t, ErrAuth.IsFatal())
	assert.False(t, ErrAuth.IsRetryable())

	assert.True(t, ErrSource.IsRetryable())
	assert.False(t, ErrSource.IsFatal())

	assert.True(t, ErrSource.AsFatal().IsFatal())
	assert.False(t, ErrSource.AsFatal().IsRetryable())
	assert.True(t, ErrAuth.AsRetryable().IsRetryable())
}

func TestWrapPreservesCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrSource)

	assert.True(t, IsSource(err))
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Wrap(nil, ErrSource))
}

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	err := ErrNotFound.WithDetail("agent_id", "a-1")

	assert.Equal(t, "a-1", err.Details["agent_id"])
	assert.Empty(t, ErrNotFound.Details)
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "auth", err: ErrAuth, want: http.StatusUnauthorized},
		{name: "source", err: ErrSource, want: http.StatusBadGateway},
		{name: "normalization", err: ErrNormalization, want: http.StatusUnprocessableEntity},
		{name: "summarization", err: ErrSummarization, want: http.StatusServiceUnavailable},
		{name: "not supported", err: ErrNotSupported, want: http.StatusNotImplemented},
		{name: "not found", err: ErrNotFound, want: http.StatusNotFound},
		{name: "plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
		})
	}
}

func TestToErrorResponseGuidance(t *testing.T) {
	resp := ToErrorResponse(ErrAuth)
	assert.Equal(t, "AUTH_ERROR", resp["error_code"])
	assert.Contains(t, resp["error"], "reconnect")

	resp = ToErrorResponse(ErrSummarization)
	assert.Contains(t, resp["error"], "try again later")

	resp = ToErrorResponse(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", resp["error_code"])
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := ErrSource.WithCause(errors.New("dial tcp: refused"))
	require.Contains(t, err.Error(), "SOURCE_ERROR")
	assert.Contains(t, err.Error(), "dial tcp: refused")
}
