package server

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterPerMinute(t *testing.T) {
	rl := NewRateLimiter(3, 0, 0)

	for i := 0; i < 3; i++ {
		require.NoError(t, rl.CheckRequest("client", 0))
	}

	err := rl.CheckRequest("client", 0)
	require.Error(t, err)

	var rle *RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, "minute", rle.Scope)
	assert.Equal(t, int64(3), rle.Limit)
	assert.Positive(t, rle.RetryAfter)
}

func TestRateLimiterUploadQuota(t *testing.T) {
	rl := NewRateLimiter(0, 0, 1000)

	require.NoError(t, rl.CheckRequest("client", 600))
	err := rl.CheckRequest("client", 600)
	require.Error(t, err)

	var rle *RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, "upload_bytes", rle.Scope)
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(1, 0, 0)

	require.NoError(t, rl.CheckRequest("a", 0))
	require.NoError(t, rl.CheckRequest("b", 0))
	require.Error(t, rl.CheckRequest("a", 0))
}

func TestRateLimiterZeroLimitsDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0, 0)

	for i := 0; i < 100; i++ {
		require.NoError(t, rl.CheckRequest("client", 1<<20))
	}
}
