package httputil_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/beatpulse/httputil"
)

func TestAPIErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "overloaded_error: Overloaded", httputil.APIErrorMessage([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`)))
	assert.Equal(t, "Overloaded", httputil.APIErrorMessage([]byte(`{"error":{"message":"Overloaded"}}`)))
	assert.Equal(t, "Bad Gateway", httputil.APIErrorMessage([]byte("  Bad Gateway\n")))
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, httputil.IsRetryable(http.StatusTooManyRequests))
	assert.True(t, httputil.IsRetryable(http.StatusServiceUnavailable))
	assert.False(t, httputil.IsRetryable(http.StatusUnauthorized))
	assert.False(t, httputil.IsRetryable(0))
}

func TestReadOptionalResponseBody(t *testing.T) {
	t.Parallel()

	resp := &http.Response{Body: io.NopCloser(strings.NewReader(""))}
	b, err := httputil.ReadOptionalResponseBody(context.Background(), resp)
	require.NoError(t, err)
	assert.Empty(t, b)

	resp = &http.Response{Body: io.NopCloser(strings.NewReader("ok"))}
	b, err = httputil.ReadOptionalResponseBody(context.Background(), resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(b))
}
