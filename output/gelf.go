package output

import (
	"context"
	"strings"

	"github.com/nicwaller/loglang-gelf"
	"github.com/nicwaller/loglang-gelf/gelf"
)

// DefaultSender names the event's source host as the GELF host.
const DefaultSender = "%{@source_host}"

// DefaultLevel prefers a "severity" field and otherwise reports INFO.
var DefaultLevel = []string{"%{severity}", "INFO"}

// Notifier is the part of *gelf.Notifier this output needs.
type Notifier interface {
	Notify(context.Context, *gelf.Message, ...gelf.NotifyOption) error
}

type GelfOptions struct {
	Notifier   Notifier
	Builder    *gelf.Builder
	Sender     string
	Level      []string
	Conditions loglang.OutputConditions
	Renderer   gelf.Renderer
	// Metrics may be nil.
	Metrics *GelfMetrics
}

// Gelf forwards every event it accepts to a GELF endpoint. Delivery
// failures are logged and dropped; Run never returns them.
func Gelf(opts GelfOptions) loglang.OutputPlugin {
	if opts.Builder == nil {
		opts.Builder = gelf.NewBuilder(gelf.BuilderOptions{Renderer: opts.Renderer})
	}
	if opts.Renderer == nil {
		opts.Renderer = gelf.SprintfRenderer
	}
	if opts.Sender == "" {
		opts.Sender = DefaultSender
	}
	if opts.Level == nil {
		opts.Level = DefaultLevel
	}
	return &gelfOutput{opts: opts}
}

type gelfOutput struct {
	opts GelfOptions
}

func (p *gelfOutput) Run(ctx context.Context, event loglang.Event) error {
	log := loglang.ContextLogger(ctx)

	if !p.opts.Conditions.Allows(&event) {
		p.opts.Metrics.observe(StatusSkipped)
		return nil
	}

	m := p.opts.Builder.Build(&event)

	var notifyOpts []gelf.NotifyOption
	if sender := p.opts.Renderer.Render(p.opts.Sender, &event); sender != "" && !strings.Contains(sender, "%{") {
		notifyOpts = append(notifyOpts, gelf.WithHost(sender))
	}
	if level, ok := gelf.SelectLevel(p.opts.Level, &event, p.opts.Renderer); ok {
		notifyOpts = append(notifyOpts, gelf.WithLevel(level))
	}
	// a timestamp produced by the event itself wins over the event time
	if !m.Has(gelf.KeyTimestamp) {
		notifyOpts = append(notifyOpts, gelf.WithTimestamp(event.UnixTimestamp()))
	}

	log.Debug("Sending GELF event", "gelf_event", m)
	if err := p.opts.Notifier.Notify(ctx, m, notifyOpts...); err != nil {
		p.opts.Metrics.observe(StatusFailed)
		log.Warn("Trouble sending GELF event",
			"gelf_event", m,
			"event", event,
			"error", err)
		return nil
	}
	p.opts.Metrics.observe(StatusSent)
	return nil
}
