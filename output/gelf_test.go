package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicwaller/loglang-gelf"
	"github.com/nicwaller/loglang-gelf/gelf"
)

type memoryTransport struct {
	payloads []map[string]any
	err      error
}

func (m *memoryTransport) Send(_ context.Context, payload []byte) error {
	if m.err != nil {
		return m.err
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return err
	}
	m.payloads = append(m.payloads, decoded)
	return nil
}

func (m *memoryTransport) Close() error { return nil }

type notifyCall struct {
	msg  *gelf.Message
	opts []gelf.NotifyOption
}

type fakeNotifier struct {
	calls []notifyCall
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, msg *gelf.Message, opts ...gelf.NotifyOption) error {
	f.calls = append(f.calls, notifyCall{msg: msg, opts: opts})
	return f.err
}

func testEvent() loglang.Event {
	evt := loglang.NewEvent()
	evt.Message = "boom"
	evt.SourceHost = "web1"
	evt.Timestamp = time.Unix(1359864306, 500_000_000)
	evt.Fields["message"] = "boom"
	evt.Fields["user"] = "bob"
	return evt
}

func TestGelf_Delivers(t *testing.T) {
	transport := &memoryTransport{}
	out := Gelf(GelfOptions{
		Notifier: gelf.NewNotifier(transport, gelf.NotifierOptions{Host: "fallback"}),
		Builder:  gelf.NewBuilder(gelf.BuilderOptions{Facility: "svc"}),
	})

	evt := testEvent()
	evt.Fields["severity"] = "error"
	require.NoError(t, out.Run(context.Background(), evt))

	require.Len(t, transport.payloads, 1)
	assert.Equal(t, map[string]any{
		"short_message": "boom",
		"full_message":  "boom",
		"_severity":     "error",
		"_user":         "bob",
		"facility":      "svc",
		"version":       "1.1",
		"host":          "web1",
		"level":         float64(gelf.LevelWarning),
		"timestamp":     1359864306.5,
	}, transport.payloads[0])
}

func TestGelf_Defaults(t *testing.T) {
	transport := &memoryTransport{}
	out := Gelf(GelfOptions{
		Notifier: gelf.NewNotifier(transport, gelf.NotifierOptions{Host: "fallback"}),
	})

	evt := testEvent()
	evt.SourceHost = ""
	require.NoError(t, out.Run(context.Background(), evt))

	require.Len(t, transport.payloads, 1)
	got := transport.payloads[0]
	// an unresolved sender falls back to the notifier host
	assert.Equal(t, "fallback", got["host"])
	assert.Equal(t, float64(gelf.LevelInfo), got["level"])
	assert.Equal(t, gelf.DefaultFacility, got["facility"])
}

func TestGelf_MessageTimestampWins(t *testing.T) {
	notifier := &fakeNotifier{}
	out := Gelf(GelfOptions{
		Notifier: notifier,
		Builder:  gelf.NewBuilder(gelf.BuilderOptions{ExemptFields: []string{"timestamp"}}),
	})

	evt := testEvent()
	evt.Fields["timestamp"] = 42.0
	require.NoError(t, out.Run(context.Background(), evt))

	require.Len(t, notifier.calls, 1)
	call := notifier.calls[0]
	ts, _ := call.msg.Get(gelf.KeyTimestamp)
	assert.Equal(t, 42.0, ts)

	// only sender and level are passed along
	assert.Len(t, call.opts, 2)
}

func TestGelf_EventTimestampPassed(t *testing.T) {
	notifier := &fakeNotifier{}
	out := Gelf(GelfOptions{Notifier: notifier})
	require.NoError(t, out.Run(context.Background(), testEvent()))

	require.Len(t, notifier.calls, 1)
	assert.False(t, notifier.calls[0].msg.Has(gelf.KeyTimestamp))
	assert.Len(t, notifier.calls[0].opts, 3)
}

func TestGelf_FailureIsSwallowed(t *testing.T) {
	var logs bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	defer slog.SetDefault(previous)

	transport := &memoryTransport{err: errors.New("connection refused")}
	reg := prometheus.NewRegistry()
	metrics := NewGelfMetrics(reg)
	out := Gelf(GelfOptions{
		Notifier: gelf.NewNotifier(transport, gelf.NotifierOptions{Host: "h"}),
		Metrics:  metrics,
	})

	assert.NoError(t, out.Run(context.Background(), testEvent()))
	assert.NoError(t, out.Run(context.Background(), testEvent()))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.EventsTotal.WithLabelValues(StatusFailed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.EventsTotal.WithLabelValues(StatusSent)))
	assert.Contains(t, logs.String(), "Trouble sending GELF event")
	assert.Contains(t, logs.String(), "connection refused")

	// the next event proceeds normally once the transport recovers
	transport.err = nil
	assert.NoError(t, out.Run(context.Background(), testEvent()))
	assert.Len(t, transport.payloads, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsTotal.WithLabelValues(StatusSent)))
}

func TestGelf_Conditions(t *testing.T) {
	notifier := &fakeNotifier{}
	reg := prometheus.NewRegistry()
	metrics := NewGelfMetrics(reg)
	out := Gelf(GelfOptions{
		Notifier: notifier,
		Conditions: loglang.OutputConditions{
			Type:        "app",
			ExcludeTags: []string{"noisy"},
		},
		Metrics: metrics,
	})

	wrongType := testEvent()
	wrongType.Type = "other"
	excluded := testEvent()
	excluded.Type = "app"
	excluded.AddTag("noisy")
	wanted := testEvent()
	wanted.Type = "app"

	for _, evt := range []loglang.Event{wrongType, excluded, wanted} {
		require.NoError(t, out.Run(context.Background(), evt))
	}

	assert.Len(t, notifier.calls, 1)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.EventsTotal.WithLabelValues(StatusSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsTotal.WithLabelValues(StatusSent)))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.EventsTotal.WithLabelValues(StatusSent)))
}

func TestGelf_NilMetrics(t *testing.T) {
	out := Gelf(GelfOptions{Notifier: &fakeNotifier{err: errors.New("x")}})
	assert.NoError(t, out.Run(context.Background(), testEvent()))
}
