package loglang

import (
	"strconv"
	"strings"
)

// Sprintf substitutes %{name} references with event values.
//
// References that cannot be resolved are left in place, so a template
// never fails; callers can check for a leftover "%{" if they care.
// %{+%s} renders the event time as epoch seconds and %{+LAYOUT} formats it
// with a Go time layout (in UTC).
func (evt *Event) Sprintf(template string) string {
	if !strings.Contains(template, "%{") {
		return template
	}

	var sb strings.Builder
	rest := template
	for {
		start := strings.Index(rest, "%{")
		if start < 0 {
			sb.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			sb.WriteString(rest)
			break
		}
		end += start

		sb.WriteString(rest[:start])
		ref := rest[start+2 : end]
		if value, ok := evt.resolve(ref); ok {
			sb.WriteString(value)
		} else {
			sb.WriteString(rest[start : end+1])
		}
		rest = rest[end+1:]
	}
	return sb.String()
}

func (evt *Event) resolve(ref string) (string, bool) {
	if layout, isTime := strings.CutPrefix(ref, "+"); isTime {
		if evt.Timestamp.IsZero() || layout == "" {
			return "", false
		}
		if layout == "%s" {
			return strconv.FormatInt(evt.Timestamp.Unix(), 10), true
		}
		return evt.Timestamp.UTC().Format(layout), true
	}

	switch ref {
	case "@message":
		return evt.Message, true
	case "@source":
		return evt.Source, evt.Source != ""
	case "@source_host":
		return evt.SourceHost, evt.SourceHost != ""
	case "@type":
		return evt.Type, evt.Type != ""
	case "@tags":
		return strings.Join(evt.Tags, ","), len(evt.Tags) > 0
	case "@timestamp":
		if evt.Timestamp.IsZero() {
			return "", false
		}
		return evt.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"), true
	}

	value, err := evt.Field(ref).Get()
	if err != nil || value == nil {
		return "", false
	}
	return Stringify(value), true
}
