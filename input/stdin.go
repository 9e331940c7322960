package input

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nicwaller/loglang-gelf"
	"github.com/nicwaller/loglang-gelf/codec"
	"github.com/nicwaller/loglang-gelf/framing"
)

// TagParseFailure marks events whose line could not be decoded by the codec.
const TagParseFailure = "_jsonparsefailure"

type StdinOptions struct {
	// Reader defaults to os.Stdin
	Reader  io.Reader
	Codec   loglang.CodecPlugin
	Framing loglang.FramingPlugin
	Type    string
	// SourceHost defaults to the OS hostname
	SourceHost string
}

func Stdin(opts StdinOptions) loglang.InputPlugin {
	if opts.Reader == nil {
		opts.Reader = os.Stdin
	}
	if opts.Codec == nil {
		opts.Codec = codec.Json()
	}
	if opts.Framing == nil {
		opts.Framing = framing.Lines()
	}
	if opts.SourceHost == "" {
		opts.SourceHost, _ = os.Hostname()
	}
	return &stdInput{opts: opts}
}

type stdInput struct {
	opts StdinOptions
}

func (p *stdInput) Run(ctx context.Context, send loglang.BatchSender) error {
	log := loglang.ContextLogger(ctx)

	frames := make(chan []byte, loglang.ChanBufferSize)
	framingErr := make(chan error, 1)
	go func() {
		framingErr <- p.opts.Framing.Run(ctx, p.opts.Reader, frames)
	}()

	fallback := codec.Plain()
	for frame := range frames {
		if len(frame) == 0 {
			continue
		}
		evt, err := p.opts.Codec.Decode(frame)
		if err != nil {
			log.Debug("codec failed; treating line as plain text", "error", err)
			evt, _ = fallback.Decode(frame)
			evt.AddTag(TagParseFailure)
		}
		p.stamp(&evt)
		if result := send(evt); !result.Ok {
			log.Warn("input batch not accepted", "result", result.Summary())
		}
	}

	if err := <-framingErr; err != nil && ctx.Err() == nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

func (p *stdInput) stamp(evt *loglang.Event) {
	if evt.Fields == nil {
		evt.Fields = make(map[string]any)
	}
	if evt.SourceHost == "" {
		evt.SourceHost = p.opts.SourceHost
	}
	if evt.Source == "" {
		evt.Source = "stdin://" + p.opts.SourceHost + "/"
	}
	if evt.Type == "" {
		evt.Type = p.opts.Type
	}
}
