package gelf

import (
	"slices"
	"sort"

	"github.com/nicwaller/loglang-gelf"
)

// DefaultFacility is used when no facility template is configured.
const DefaultFacility = "logstash-gelf"

// the event field whose value becomes short_message
const messageField = "message"

// GELF reserves the bare "id" key, so an "id" field is only ever written
// as an additional field unless explicitly exempted.
const reservedID = "id"

// Renderer expands %{field} references in a template against an event.
// It must never fail; unresolved references are the renderer's business.
type Renderer interface {
	Render(template string, event *loglang.Event) string
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(template string, event *loglang.Event) string

func (f RendererFunc) Render(template string, event *loglang.Event) string {
	return f(template, event)
}

// SprintfRenderer is the default Renderer, backed by Event.Sprintf.
var SprintfRenderer Renderer = RendererFunc(func(template string, event *loglang.Event) string {
	return event.Sprintf(template)
})

type BuilderOptions struct {
	// Facility is a template; DefaultFacility when empty.
	Facility string
	// ExemptFields are written under their bare name instead of "_name".
	ExemptFields []string
	// CustomFields are written as "_name" into every message, last.
	CustomFields map[string]any
	Renderer     Renderer
}

// Builder turns events into GELF messages. It holds no mutable state
// and is safe for concurrent use.
type Builder struct {
	facility     string
	exempt       map[string]struct{}
	customNames  []string
	customFields map[string]any
	renderer     Renderer
}

func NewBuilder(opts BuilderOptions) *Builder {
	b := &Builder{
		facility:     opts.Facility,
		exempt:       make(map[string]struct{}, len(opts.ExemptFields)),
		customFields: make(map[string]any, len(opts.CustomFields)),
		renderer:     opts.Renderer,
	}
	if b.facility == "" {
		b.facility = DefaultFacility
	}
	if b.renderer == nil {
		b.renderer = SprintfRenderer
	}
	for _, name := range opts.ExemptFields {
		b.exempt[name] = struct{}{}
	}
	for name, value := range opts.CustomFields {
		b.customNames = append(b.customNames, name)
		b.customFields[name] = value
	}
	sort.Strings(b.customNames)
	return b
}

// Build maps an event onto a GELF message. It never fails: missing data
// degrades to fallbacks and skipped fields.
//
// When two fields produce the same key, the later one in event order wins,
// and custom fields win over everything.
func (b *Builder) Build(event *loglang.Event) *Message {
	m := NewMessage()

	// an empty "message" field falls back too; GELF rejects an empty short_message
	if v := Collapse(event.Fields[messageField]); Emittable(v) {
		m.Set(KeyShortMessage, v)
	} else {
		m.Set(KeyShortMessage, event.Message)
	}
	m.Set(KeyFullMessage, event.Message)

	for _, name := range event.Keys() {
		if name == messageField {
			continue
		}
		value := Collapse(event.Fields[name])
		if !Emittable(value) {
			continue
		}
		m.Set(b.outputKey(name), value)
	}

	if !m.Has(KeyFacility) {
		m.Set(KeyFacility, b.renderer.Render(b.facility, event))
	}

	for _, name := range b.customNames {
		if name == reservedID {
			continue
		}
		m.Set("_"+name, b.customFields[name])
	}

	return m
}

func (b *Builder) outputKey(name string) string {
	if _, exempt := b.exempt[name]; exempt {
		return name
	}
	// "id" lands on "_id" like any other additional field
	return "_" + name
}

// Collapse unwraps single-element sequences. Longer sequences and
// scalars come back unchanged.
func Collapse(value any) any {
	switch v := value.(type) {
	case []any:
		if len(v) == 1 {
			return v[0]
		}
	case []string:
		if len(v) == 1 {
			return v[0]
		}
	}
	return value
}

// Emittable reports whether a value may appear in a message at all:
// not nil (including a nil map), not an empty string, not an empty sequence.
func Emittable(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []any:
		return len(v) > 0 && slices.ContainsFunc(v, func(elem any) bool { return elem != nil })
	case []string:
		return len(v) > 0
	case map[string]any:
		return v != nil
	default:
		return true
	}
}
