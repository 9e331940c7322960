package gelf

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
)

const (
	DefaultPort      = 12201
	DefaultChunkSize = 1420
	MinChunkSize     = 128
	MaxChunkSize     = 65507 // largest IPv4 UDP payload

	chunkedHeaderLen = 12
	maxChunks        = 128
)

var magicChunked = []byte{0x1e, 0x0f}

type UDPOptions struct {
	// ChunkSize bounds every datagram, chunk header included.
	ChunkSize        int
	Compression      CompressionType
	CompressionLevel int
}

// UDPTransport sends compressed GELF payloads, splitting anything larger
// than the chunk size into GELF chunks.
type UDPTransport struct {
	opts   UDPOptions
	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

func NewUDPTransport(addr string, opts UDPOptions) (*UDPTransport, error) {
	if opts.ChunkSize == 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ChunkSize < MinChunkSize || opts.ChunkSize > MaxChunkSize {
		return nil, fmt.Errorf("chunk size %d outside %d..%d", opts.ChunkSize, MinChunkSize, MaxChunkSize)
	}
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial udp %s: %w", addr, err)
	}
	return &UDPTransport{
		opts: opts,
		conn: conn,
	}, nil
}

func (t *UDPTransport) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := compress(t.opts.Compression, t.opts.CompressionLevel, payload)
	if err != nil {
		return err
	}

	var datagrams [][]byte
	if len(data) <= t.opts.ChunkSize {
		datagrams = [][]byte{data}
	} else {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("chunk id: %w", err)
		}
		datagrams, err = chunk(data, t.opts.ChunkSize, id[:8])
		if err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	// chunks of one message must not interleave with another's
	for _, datagram := range datagrams {
		if _, err := t.conn.Write(datagram); err != nil {
			return fmt.Errorf("udp write: %w", err)
		}
	}
	return nil
}

func (t *UDPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}

// chunk splits data into GELF chunks of at most chunkSize bytes each:
// magic, 8-byte message id, sequence number, sequence count, data.
func chunk(data []byte, chunkSize int, id []byte) ([][]byte, error) {
	if len(id) != 8 {
		return nil, fmt.Errorf("chunk id must be 8 bytes, got %d", len(id))
	}
	dataLen := chunkSize - chunkedHeaderLen
	count := (len(data) + dataLen - 1) / dataLen
	if count > maxChunks {
		return nil, fmt.Errorf("%d bytes in chunks of %d: %w", len(data), chunkSize, ErrTooManyChunks)
	}

	chunks := make([][]byte, 0, count)
	for seq := 0; seq < count; seq++ {
		start := seq * dataLen
		end := min(start+dataLen, len(data))

		datagram := make([]byte, 0, chunkedHeaderLen+end-start)
		datagram = append(datagram, magicChunked...)
		datagram = append(datagram, id...)
		datagram = append(datagram, byte(seq), byte(count))
		datagram = append(datagram, data[start:end]...)
		chunks = append(chunks, datagram)
	}
	return chunks, nil
}
