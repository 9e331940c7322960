package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicwaller/loglang-gelf"
	"github.com/nicwaller/loglang-gelf/config"
	"github.com/nicwaller/loglang-gelf/gelf"
)

func TestInputFilters(t *testing.T) {
	cfg := config.Defaults()
	cfg.Rename = map[string]string{"msg": "message"}
	cfg.AddField = map[string]string{"env": "prod-%{region}"}
	cfg.RemoveField = []string{"secret"}
	cfg.AddTag = []string{"forwarded"}

	evt := loglang.NewEvent()
	evt.Set("msg", "hello")
	evt.Set("region", "eu")
	evt.Set("secret", "hunter2")

	filters := inputFilters(cfg)
	require.Len(t, filters, 4)
	for _, f := range filters {
		require.NoError(t, f.Value(&evt, nil, func() {}))
	}

	assert.Equal(t, "hello", evt.Get("message"))
	assert.False(t, evt.Field("msg").Exists())
	assert.Equal(t, "prod-eu", evt.Get("env"))
	assert.False(t, evt.Field("secret").Exists())
	assert.True(t, evt.HasTag("forwarded"))
}

func TestNewInput_StampsInputType(t *testing.T) {
	cfg := config.Defaults()
	cfg.Input = "generator"
	cfg.InputType = "heartbeat"
	cfg.Type = "app"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var events []loglang.Event
	err := newInput(cfg).Run(ctx, func(batch ...loglang.Event) loglang.BatchResult {
		events = append(events, batch...)
		cancel()
		return loglang.BatchResult{Total: len(batch), Success: len(batch), Ok: true}
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "heartbeat", events[0].Type)

	// the output condition on type is a separate setting
	conditions := loglang.OutputConditions{Type: cfg.Type}
	assert.False(t, conditions.Allows(&events[0]))
}

func TestNewTransport(t *testing.T) {
	cfg := config.Defaults()
	cfg.Host = "127.0.0.1"

	transport, err := newTransport(cfg)
	require.NoError(t, err)
	assert.IsType(t, &gelf.UDPTransport{}, transport)
	require.NoError(t, transport.Close())

	cfg.Protocol = "tcp"
	cfg.MaxEventsPerSecond = 5
	transport, err = newTransport(cfg)
	require.NoError(t, err)
	assert.NotNil(t, transport)
	require.NoError(t, transport.Close())

	cfg.Protocol = "udp"
	cfg.Compression = "brotli"
	_, err = newTransport(cfg)
	assert.Error(t, err)
}
