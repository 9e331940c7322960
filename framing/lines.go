package framing

import (
	"bufio"
	"context"
	"io"

	"github.com/nicwaller/loglang-gelf"
)

// MaxFrameSize bounds a single line; longer lines stop the scanner.
const MaxFrameSize = 1024 * 1024

func Lines() loglang.FramingPlugin {
	return &lines{}
}

type lines struct{}

// Run emits one frame per line and closes frames when the reader is done.
func (p *lines) Run(ctx context.Context, reader io.Reader, frames chan<- []byte) error {
	defer close(frames)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxFrameSize)
	for scanner.Scan() {
		// the scanner reuses its buffer between calls
		frame := append([]byte(nil), scanner.Bytes()...)
		select {
		case frames <- frame:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}
