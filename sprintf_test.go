package loglang

import (
	"testing"
	"time"
)

func TestSprintf(t *testing.T) {
	evt := NewEvent()
	evt.Message = "hello"
	evt.SourceHost = "web1"
	evt.Type = "app"
	evt.Tags = []string{"a", "b"}
	evt.Timestamp = time.Date(2013, 2, 3, 4, 5, 6, 789_000_000, time.UTC)
	evt.Set("user", "bob")
	evt.Set("count", 3)
	evt.Field("http", "status").SetInt(200)

	tests := []struct {
		template string
		expected string
	}{
		{"plain", "plain"},
		{"%{user}", "bob"},
		{"%{user} x%{count}", "bob x3"},
		{"%{@message} from %{@source_host}", "hello from web1"},
		{"%{@type}:%{@tags}", "app:a,b"},
		{"%{@timestamp}", "2013-02-03T04:05:06.789Z"},
		{"%{+%s}", "1359864306"},
		{"%{+2006.01.02}", "2013.02.03"},
		{"%{missing}", "%{missing}"},
		{"%{@source}", "%{@source}"},
		{"a %{user", "a %{user"},
		{"%{http}", `{"status":200}`},
	}
	for _, tt := range tests {
		if got := evt.Sprintf(tt.template); got != tt.expected {
			t.Errorf(`Sprintf(%q): Expected "%s" but got "%s"`, tt.template, tt.expected, got)
		}
	}
}
