package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestStatusFailure(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		want    error
		message string
	}{
		{http.StatusNotFound, `{"detail":"Profile not found"}`, domain.ErrNotFound, "Profile not found"},
		{http.StatusTooManyRequests, ``, domain.ErrNetworkFailure, "Too Many Requests"},
		{http.StatusBadGateway, `upstream down`, domain.ErrNetworkFailure, "upstream down"},
		{http.StatusUnauthorized, `{"detail":"Not authenticated"}`, domain.ErrUnauthenticated, "Not authenticated"},
		{http.StatusUnprocessableEntity, `{"detail":"invalid mode"}`, domain.ErrValidationFailure, "invalid mode"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			f := statusFailure("create profile", response(tt.status, tt.body))

			assert.ErrorIs(t, f, tt.want)
			assert.Equal(t, tt.status, f.StatusCode)
			assert.Equal(t, tt.message, f.Message)
			assert.Contains(t, f.Error(), "create profile")
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	notFound := statusFailure("get", response(http.StatusNotFound, ""))
	limited := statusFailure("get", response(http.StatusTooManyRequests, ""))
	unauthorized := statusFailure("get", response(http.StatusUnauthorized, ""))

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(limited))
	assert.True(t, IsRateLimited(limited))
	assert.False(t, IsRateLimited(errors.New("boom")))
	assert.True(t, IsUnauthorized(unauthorized))
	assert.False(t, IsUnauthorized(notFound))

	transport := transportFailure("list", errors.New("connection refused"))
	assert.ErrorIs(t, transport, domain.ErrNetworkFailure)
	assert.True(t, domain.IsFailure(transport))
}

func TestRateLimiter_Observe(t *testing.T) {
	limiter := NewRateLimiter(0)

	limiter.Observe(response(http.StatusOK, ""))
	assert.True(t, limiter.BlockedUntil().IsZero())

	resp := response(http.StatusTooManyRequests, "")
	resp.Header.Set(HeaderRetryAfter, "2")
	limiter.Observe(resp)

	until := limiter.BlockedUntil()
	assert.WithinDuration(t, time.Now().Add(2*time.Second), until, 500*time.Millisecond)
}

func TestRateLimiter_WaitRespectsContext(t *testing.T) {
	limiter := NewRateLimiter(0)

	resp := response(http.StatusTooManyRequests, "")
	resp.Header.Set(HeaderRetryAfter, "60")
	limiter.Observe(resp)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_UnlimitedDoesNotBlock(t *testing.T) {
	limiter := NewRateLimiter(0)
	for range 20 {
		require.NoError(t, limiter.Wait(context.Background()))
	}
}
