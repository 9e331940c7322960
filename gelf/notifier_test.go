package gelf

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
	closed   bool
}

func (r *recordingTransport) Send(_ context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.payloads = append(r.payloads, append([]byte(nil), payload...))
	return nil
}

func (r *recordingTransport) Close() error {
	r.closed = true
	return nil
}

func (r *recordingTransport) decoded(t *testing.T) []map[string]any {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []map[string]any
	for _, p := range r.payloads {
		var m map[string]any
		require.NoError(t, json.Unmarshal(p, &m))
		out = append(out, m)
	}
	return out
}

func fixedNotifier(transport Transport, host string) *Notifier {
	n := NewNotifier(transport, NotifierOptions{Host: host})
	n.now = func() time.Time { return time.Unix(1000, 500_000_000) }
	return n
}

func TestNotifier_Envelope(t *testing.T) {
	n := fixedNotifier(&recordingTransport{}, "default-host")
	msg := NewMessage()
	msg.Set(KeyShortMessage, "hi")

	wire, err := n.Envelope(msg)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"short_message": "hi",
		"version":       "1.1",
		"host":          "default-host",
		"timestamp":     1000.5,
	}, wire.Map())
	assert.Equal(t, []string{"short_message"}, msg.Keys())
}

func TestNotifier_EnvelopeOptions(t *testing.T) {
	n := fixedNotifier(&recordingTransport{}, "default-host")
	msg := NewMessage()
	msg.Set(KeyShortMessage, "hi")

	wire, err := n.Envelope(msg, WithHost("web1"), WithLevel(LevelError), WithTimestamp(12.25))
	require.NoError(t, err)
	host, _ := wire.Get(KeyHost)
	assert.Equal(t, "web1", host)
	level, _ := wire.Get(KeyLevel)
	assert.Equal(t, LevelError, level)
	ts, _ := wire.Get(KeyTimestamp)
	assert.Equal(t, 12.25, ts)
}

func TestNotifier_MessageValuesWin(t *testing.T) {
	n := fixedNotifier(&recordingTransport{}, "default-host")
	msg := NewMessage()
	msg.Set(KeyShortMessage, "hi")
	msg.Set(KeyHost, "own-host")
	msg.Set(KeyTimestamp, 99.0)
	msg.Set(KeyLevel, LevelDebug)

	wire, err := n.Envelope(msg, WithHost("web1"), WithLevel(LevelError), WithTimestamp(12.25))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"short_message": "hi",
		"host":          "own-host",
		"timestamp":     99.0,
		"level":         LevelDebug,
		"version":       "1.1",
	}, wire.Map())
}

func TestNotifier_MissingShortMessage(t *testing.T) {
	transport := &recordingTransport{}
	n := fixedNotifier(transport, "h")

	err := n.Notify(context.Background(), NewMessage())
	assert.ErrorIs(t, err, ErrMissingShortMessage)

	msg := NewMessage()
	msg.Set(KeyShortMessage, "")
	err = n.Notify(context.Background(), msg)
	assert.ErrorIs(t, err, ErrMissingShortMessage)
	assert.Empty(t, transport.payloads)
}

func TestNotifier_Notify(t *testing.T) {
	transport := &recordingTransport{}
	n := fixedNotifier(transport, "h")

	msg := NewMessage()
	msg.Set(KeyShortMessage, "hello")
	msg.Set("_answer", 42)
	require.NoError(t, n.Notify(context.Background(), msg, WithLevel(LevelInfo)))

	got := transport.decoded(t)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0]["short_message"])
	assert.Equal(t, float64(42), got[0]["_answer"])
	assert.Equal(t, float64(LevelInfo), got[0]["level"])
	assert.Equal(t, "1.1", got[0]["version"])

	require.NoError(t, n.Close())
	assert.True(t, transport.closed)
}

func TestNotifier_TransportError(t *testing.T) {
	boom := errors.New("boom")
	n := fixedNotifier(&recordingTransport{err: boom}, "h")
	msg := NewMessage()
	msg.Set(KeyShortMessage, "hello")
	assert.ErrorIs(t, n.Notify(context.Background(), msg), boom)
}
