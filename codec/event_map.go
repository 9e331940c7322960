package codec

import (
	"fmt"
	"time"

	"github.com/nicwaller/loglang-gelf"
)

// Logstash json_event attribute names
const (
	keyMessage    = "@message"
	keySource     = "@source"
	keySourceHost = "@source_host"
	keyType       = "@type"
	keyTags       = "@tags"
	keyTimestamp  = "@timestamp"
	keyFields     = "@fields"
)

// toMap renders an event in json_event shape.
func toMap(evt loglang.Event) map[string]any {
	out := map[string]any{
		keyMessage: evt.Message,
	}
	if evt.Source != "" {
		out[keySource] = evt.Source
	}
	if evt.SourceHost != "" {
		out[keySourceHost] = evt.SourceHost
	}
	if evt.Type != "" {
		out[keyType] = evt.Type
	}
	if len(evt.Tags) > 0 {
		out[keyTags] = evt.Tags
	}
	if !evt.Timestamp.IsZero() {
		out[keyTimestamp] = evt.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	if len(evt.Fields) > 0 {
		out[keyFields] = evt.Fields
	}
	return out
}

// fromMap accepts both json_event documents and flat objects.
// Unknown top-level keys become fields.
func fromMap(raw map[string]any) (loglang.Event, error) {
	evt := loglang.NewEvent()
	hasMessage := false
	for k, v := range raw {
		switch k {
		case keyMessage:
			evt.Message = loglang.Stringify(v)
			hasMessage = true
		case keySource:
			evt.Source = loglang.Stringify(v)
		case keySourceHost:
			evt.SourceHost = loglang.Stringify(v)
		case keyType:
			evt.Type = loglang.Stringify(v)
		case keyTags:
			evt.Tags = toStrings(v)
		case keyTimestamp:
			ts, err := toTime(v)
			if err != nil {
				return evt, fmt.Errorf("bad %s: %w", keyTimestamp, err)
			}
			evt.Timestamp = ts
		case keyFields:
			fields, isMap := v.(map[string]any)
			if !isMap {
				return evt, fmt.Errorf("%s must be an object", keyFields)
			}
			for name, value := range fields {
				evt.Fields[name] = normalize(value)
			}
		default:
			evt.Fields[k] = normalize(v)
		}
	}
	if !hasMessage {
		if msg, ok := evt.Fields["message"]; ok {
			evt.Message = loglang.Stringify(msg)
		}
	}
	return evt, nil
}

// whole-number floats come back as int64 so ids and counters stay integral
func normalize(v any) any {
	switch val := v.(type) {
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
		return val
	case int:
		return int64(val)
	case []any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = normalize(val[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k := range val {
			out[k] = normalize(val[k])
		}
		return out
	default:
		return v
	}
}

func toStrings(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		return loglang.Map(loglang.Stringify, val)
	case string:
		return []string{val}
	default:
		return nil
	}
}

func toTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		return time.Parse(time.RFC3339Nano, val)
	case float64:
		return time.Unix(0, int64(val*float64(time.Second))), nil
	case int:
		return time.Unix(int64(val), 0), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp %v", v)
	}
}
