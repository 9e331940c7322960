package loglang

import "testing"

func TestOutputConditions_Allows(t *testing.T) {
	evt := NewEvent()
	evt.Type = "app"
	evt.Tags = []string{"prod", "web"}

	tests := []struct {
		name     string
		cond     OutputConditions
		expected bool
	}{
		{"zero value", OutputConditions{}, true},
		{"type match", OutputConditions{Type: "app"}, true},
		{"type mismatch", OutputConditions{Type: "db"}, false},
		{"all tags present", OutputConditions{Tags: []string{"prod", "web"}}, true},
		{"tag missing", OutputConditions{Tags: []string{"prod", "api"}}, false},
		{"excluded tag", OutputConditions{ExcludeTags: []string{"web"}}, false},
		{"excluded tag absent", OutputConditions{ExcludeTags: []string{"debug"}}, true},
	}
	for _, tt := range tests {
		if got := tt.cond.Allows(&evt); got != tt.expected {
			t.Errorf(`%s: Expected "%t" but got "%t"`, tt.name, tt.expected, got)
		}
	}
}
