package codec

import (
	"bytes"
	"encoding/json"

	"github.com/nicwaller/loglang-gelf"
)

// Json reads and writes Logstash json_event documents. Flat objects decode
// too: every key without an "@" becomes a field.
func Json() loglang.CodecPlugin {
	return &jsonCodec{}
}

type jsonCodec struct{}

func (p *jsonCodec) Encode(event loglang.Event) ([]byte, error) {
	// encoding/json sorts map keys, so output is deterministic
	return json.Marshal(toMap(event))
}

func (p *jsonCodec) Decode(dat []byte) (loglang.Event, error) {
	var raw map[string]any
	if err := json.NewDecoder(bytes.NewReader(dat)).Decode(&raw); err != nil {
		return loglang.Event{}, err
	}
	return fromMap(raw)
}
