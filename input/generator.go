package input

import (
	"context"
	"os"
	"time"

	"github.com/nicwaller/loglang-gelf"
)

func Generator(opts GeneratorOptions) loglang.InputPlugin {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Message == "" {
		opts.Message = "heartbeat"
	}
	if opts.SourceHost == "" {
		opts.SourceHost, _ = os.Hostname()
	}
	p := generator{opts: opts}
	return &p
}

type generator struct {
	opts GeneratorOptions
}

type GeneratorOptions struct {
	Interval time.Duration
	// Count stops the generator after that many events; 0 runs until cancelled.
	Count      int
	Message    string
	Type       string
	SourceHost string
}

func (p *generator) Run(ctx context.Context, send loglang.BatchSender) error {
	log := loglang.ContextLogger(ctx)
	started := time.Now()
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for count := 0; p.opts.Count == 0 || count < p.opts.Count; count++ {
		evt := loglang.NewEvent()
		evt.Message = p.opts.Message
		evt.SourceHost = p.opts.SourceHost
		evt.Source = "generator://" + p.opts.SourceHost + "/"
		evt.Type = p.opts.Type
		evt.Field("module").SetString("loglang")
		evt.Field("dataset").SetString("heartbeat")
		evt.Field("sequence").SetInt(count)
		evt.Field("uptime").SetFloat(time.Since(started).Seconds())
		evt.Field("synthetic").SetBool(true)
		send(evt)

		if p.opts.Count != 0 && count == p.opts.Count-1 {
			break
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			log.Debug("stopped generator")
			return nil
		}
	}

	log.Debug("generator finished", "count", p.opts.Count)
	return nil
}
