package codec

import (
	"github.com/nicwaller/loglang-gelf"
	"gopkg.in/yaml.v3"
)

func Yaml() loglang.CodecPlugin {
	return &yamlCodec{}
}

type yamlCodec struct{}

func (p *yamlCodec) Encode(event loglang.Event) ([]byte, error) {
	return yaml.Marshal(toMap(event))
}

func (p *yamlCodec) Decode(dat []byte) (loglang.Event, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(dat, &raw); err != nil {
		return loglang.Event{}, err
	}
	return fromMap(raw)
}
