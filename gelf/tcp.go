package gelf

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

type TCPOptions struct {
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	KeepAlive    time.Duration
}

// TCPTransport writes uncompressed payloads framed by a trailing NUL
// byte. GELF over TCP does not support compression or chunking.
type TCPTransport struct {
	addr   string
	opts   TCPOptions
	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

func NewTCPTransport(addr string, opts TCPOptions) *TCPTransport {
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.KeepAlive == 0 {
		opts.KeepAlive = 30 * time.Second
	}
	return &TCPTransport{
		addr: addr,
		opts: opts,
	}
}

func (t *TCPTransport) Send(ctx context.Context, payload []byte) error {
	frame := make([]byte, 0, len(payload)+1)
	frame = append(frame, payload...)
	frame = append(frame, 0)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}

	err := t.write(ctx, frame)
	if err == nil {
		return nil
	}
	// the server may have dropped an idle connection; try once more
	t.drop()
	if retryErr := t.write(ctx, frame); retryErr != nil {
		t.drop()
		return retryErr
	}
	return nil
}

func (t *TCPTransport) write(ctx context.Context, frame []byte) error {
	if t.conn == nil {
		dialer := &net.Dialer{
			Timeout:   t.opts.DialTimeout,
			KeepAlive: t.opts.KeepAlive,
		}
		conn, err := dialer.DialContext(ctx, "tcp", t.addr)
		if err != nil {
			return fmt.Errorf("dial tcp %s: %w", t.addr, err)
		}
		t.conn = conn
	}

	if err := t.conn.SetWriteDeadline(time.Now().Add(t.opts.WriteTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	n, err := t.conn.Write(frame)
	if err != nil {
		return fmt.Errorf("tcp write: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("partial write: %d/%d bytes", n, len(frame))
	}
	return nil
}

func (t *TCPTransport) drop() {
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
}

func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.drop()
	return nil
}
