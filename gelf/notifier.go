package gelf

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nicwaller/loglang-gelf"
)

const Version = "1.1"

type NotifierOptions struct {
	// Host is the sender used when neither the message nor the call
	// names one. Defaults to the OS hostname.
	Host string
}

// Notifier fills in the GELF envelope (version, host, level, timestamp),
// serializes the message and hands it to a transport.
type Notifier struct {
	transport Transport
	host      string
	now       func() time.Time
}

func NewNotifier(transport Transport, opts NotifierOptions) *Notifier {
	host := opts.Host
	if host == "" {
		host, _ = os.Hostname()
	}
	return &Notifier{
		transport: transport,
		host:      host,
		now:       time.Now,
	}
}

type notifyParams struct {
	timestamp    float64
	hasTimestamp bool
	host         string
	level        int
	hasLevel     bool
}

type NotifyOption func(*notifyParams)

// WithTimestamp is used only when the message carries no timestamp.
func WithTimestamp(ts float64) NotifyOption {
	return func(p *notifyParams) {
		p.timestamp = ts
		p.hasTimestamp = true
	}
}

// WithHost is used only when the message carries no host.
func WithHost(host string) NotifyOption {
	return func(p *notifyParams) {
		p.host = host
	}
}

// WithLevel is used only when the message carries no level.
func WithLevel(level int) NotifyOption {
	return func(p *notifyParams) {
		p.level = level
		p.hasLevel = true
	}
}

// Envelope returns the message as it will go on the wire. The message
// passed in is never modified.
func (n *Notifier) Envelope(msg *Message, opts ...NotifyOption) (*Message, error) {
	var params notifyParams
	for _, opt := range opts {
		opt(&params)
	}

	short, ok := msg.Get(KeyShortMessage)
	if !ok || short == nil || short == "" {
		return nil, ErrMissingShortMessage
	}

	wire := msg.Clone()
	if !wire.Has(KeyVersion) {
		wire.Set(KeyVersion, Version)
	}
	if !wire.Has(KeyHost) {
		wire.Set(KeyHost, loglang.CoalesceStr(params.host, n.host, "unknown"))
	}
	if !wire.Has(KeyLevel) && params.hasLevel {
		wire.Set(KeyLevel, params.level)
	}
	if !wire.Has(KeyTimestamp) {
		if params.hasTimestamp {
			wire.Set(KeyTimestamp, params.timestamp)
		} else {
			wire.Set(KeyTimestamp, float64(n.now().UnixNano())/float64(time.Second))
		}
	}
	return wire, nil
}

func (n *Notifier) Notify(ctx context.Context, msg *Message, opts ...NotifyOption) error {
	wire, err := n.Envelope(msg, opts...)
	if err != nil {
		return err
	}
	payload, err := wire.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal gelf message: %w", err)
	}
	return n.transport.Send(ctx, payload)
}

func (n *Notifier) Close() error {
	return n.transport.Close()
}
