package gelf

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Reserved GELF keys. Everything else in a message should be an
// additional field carrying the "_" prefix.
const (
	KeyVersion      = "version"
	KeyHost         = "host"
	KeyShortMessage = "short_message"
	KeyFullMessage  = "full_message"
	KeyTimestamp    = "timestamp"
	KeyLevel        = "level"
	KeyFacility     = "facility"
)

// Message is a GELF payload object: an insertion-ordered mapping.
// Overwriting a key keeps its original position, so the wire order always
// reflects the first time a key was produced.
type Message struct {
	keys   []string
	values map[string]any
}

func NewMessage() *Message {
	return &Message{
		values: make(map[string]any),
	}
}

func (m *Message) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Message) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *Message) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

func (m *Message) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *Message) Keys() []string {
	return append([]string(nil), m.keys...)
}

func (m *Message) Len() int {
	return len(m.keys)
}

func (m *Message) Clone() *Message {
	c := &Message{
		keys:   append([]string(nil), m.keys...),
		values: make(map[string]any, len(m.values)),
	}
	for k, v := range m.values {
		c.values[k] = v
	}
	return c
}

// Map flattens the message for callers that do not care about order.
func (m *Message) Map() map[string]any {
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func (m *Message) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the wire JSON, which is also how log lines show it.
func (m *Message) String() string {
	dat, err := m.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", m.values)
	}
	return string(dat)
}
