package output

import (
	"context"
	"io"
	"os"

	"github.com/nicwaller/loglang-gelf"
	"github.com/nicwaller/loglang-gelf/codec"
)

func StdOut(opts StdoutOptions) loglang.OutputPlugin {
	if opts.Codec == nil {
		opts.Codec = codec.Json()
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	return &stdOut{opts: opts}
}

type stdOut struct {
	opts StdoutOptions
}

type StdoutOptions struct {
	Codec  loglang.CodecPlugin
	Writer io.Writer
}

func (p *stdOut) Run(ctx context.Context, event loglang.Event) error {
	dat, err := p.opts.Codec.Encode(event)
	if err != nil {
		return err
	}
	if len(dat) == 0 || dat[len(dat)-1] != '\n' {
		dat = append(dat, '\n')
	}
	_, err = p.opts.Writer.Write(dat)
	return err
}
