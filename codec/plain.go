package codec

import (
	"github.com/nicwaller/loglang-gelf"
)

// Plain treats the whole frame as the event message.
func Plain() loglang.CodecPlugin {
	return &plainCodec{}
}

type plainCodec struct{}

func (p *plainCodec) Encode(event loglang.Event) ([]byte, error) {
	return []byte(event.Message), nil
}

func (p *plainCodec) Decode(dat []byte) (loglang.Event, error) {
	evt := loglang.NewEvent()
	evt.Message = string(dat)
	return evt, nil
}
