package gelf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimited(t *testing.T) {
	inner := &recordingTransport{}
	limited := RateLimited(inner, rate.NewLimiter(rate.Inf, 1))

	require.NoError(t, limited.Send(context.Background(), []byte("a")))
	require.NoError(t, limited.Send(context.Background(), []byte("b")))
	assert.Len(t, inner.payloads, 2)

	require.NoError(t, limited.Close())
	assert.True(t, inner.closed)
}

func TestRateLimited_WaitHonoursContext(t *testing.T) {
	inner := &recordingTransport{}
	limited := RateLimited(inner, rate.NewLimiter(rate.Limit(0.001), 1))

	require.NoError(t, limited.Send(context.Background(), []byte("a")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, limited.Send(ctx, []byte("b")))
	assert.Len(t, inner.payloads, 1)
}
