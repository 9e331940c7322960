package loglang

import (
	"log/slog"
	"slices"
	"sort"
	"time"
)

// Event follows the Logstash 1.x event shape: a handful of well-known
// attributes (the "@" fields) plus a free-form bag of fields.
type Event struct {
	Fields map[string]any

	Message    string    // @message
	Source     string    // @source
	SourceHost string    // @source_host
	Type       string    // @type
	Tags       []string  // @tags
	Timestamp  time.Time // @timestamp
}

func NewEvent() Event {
	var newEvt Event
	newEvt.Fields = make(map[string]any)
	newEvt.Timestamp = time.Now()
	return newEvt
}

func (evt *Event) Field(path ...string) *Field {
	// warning: don't try to be clever and split the path components
	//on "." to get smaller path components. It must be possible to
	//specify fields that contain a "." in the Name!
	//
	// no need to verify that the field currently exists
	// because we can also use this for setting values
	return &Field{
		Path:     path,
		original: evt,
	}
}

func (evt *Event) Set(field string, value any) {
	evt.Field(field).Set(value)
}

func (evt *Event) Get(field string) any {
	return evt.Field(field).MustGet()
}

// Keys returns the top-level field names in iteration order.
// Go maps have no order of their own, so lexical order is the contract.
func (evt *Event) Keys() []string {
	keys := make([]string, 0, len(evt.Fields))
	for k := range evt.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnixTimestamp is the event time in fractional seconds since the epoch.
func (evt *Event) UnixTimestamp() float64 {
	if evt.Timestamp.IsZero() {
		return 0
	}
	return float64(evt.Timestamp.UnixNano()) / float64(time.Second)
}

func (evt *Event) HasTag(tag string) bool {
	return slices.Contains(evt.Tags, tag)
}

func (evt *Event) AddTag(tag string) {
	if !evt.HasTag(tag) {
		evt.Tags = append(evt.Tags, tag)
	}
}

// Copy is shallow for field values but never shares the field map or tags.
func (evt *Event) Copy() Event {
	newEvt := *evt
	newEvt.Fields = make(map[string]any, len(evt.Fields))
	for k, v := range evt.Fields {
		newEvt.Fields[k] = v
	}
	newEvt.Tags = slices.Clone(evt.Tags)
	return newEvt
}

// LogValue lets an event be attached to a log record as a single attribute.
func (evt Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("message", evt.Message),
		slog.Time("timestamp", evt.Timestamp),
	}
	if evt.SourceHost != "" {
		attrs = append(attrs, slog.String("source_host", evt.SourceHost))
	}
	if evt.Type != "" {
		attrs = append(attrs, slog.String("type", evt.Type))
	}
	if len(evt.Tags) > 0 {
		attrs = append(attrs, slog.Any("tags", evt.Tags))
	}
	if len(evt.Fields) > 0 {
		attrs = append(attrs, slog.Any("fields", evt.Fields))
	}
	return slog.GroupValue(attrs...)
}
