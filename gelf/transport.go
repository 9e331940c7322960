package gelf

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

var (
	ErrClosed              = errors.New("gelf transport is closed")
	ErrTooManyChunks       = errors.New("gelf payload needs too many chunks")
	ErrMissingShortMessage = errors.New("gelf message has no short_message")
)

// Transport puts one serialized GELF payload on the wire.
// Implementations are safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// RateLimited makes every send wait for a token first. Waiting is
// backpressure on the caller; nothing is dropped here.
func RateLimited(t Transport, limiter *rate.Limiter) Transport {
	return &limitedTransport{
		Transport: t,
		limiter:   limiter,
	}
}

type limitedTransport struct {
	Transport
	limiter *rate.Limiter
}

func (t *limitedTransport) Send(ctx context.Context, payload []byte) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return t.Transport.Send(ctx, payload)
}
