package gelf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nicwaller/loglang-gelf"
)

// Syslog severities as GELF uses them.
const (
	LevelEmergency = 0
	LevelAlert     = 1
	LevelCritical  = 2
	LevelError     = 3
	LevelWarning   = 4
	LevelNotice    = 5
	LevelInfo      = 6
	LevelDebug     = 7
)

// logger-style names, mapped the way Ruby's gelf notifier maps them
var levelNames = map[string]int{
	"debug":   LevelDebug,
	"d":       LevelDebug,
	"info":    LevelInfo,
	"i":       LevelInfo,
	"warn":    LevelNotice,
	"w":       LevelNotice,
	"error":   LevelWarning,
	"e":       LevelWarning,
	"fatal":   LevelError,
	"f":       LevelError,
	"unknown": LevelAlert,
	"u":       LevelAlert,
}

// ParseLevel accepts 0..7 or one of the logger level names.
func ParseLevel(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < LevelEmergency || n > LevelDebug {
			return 0, fmt.Errorf("level %d out of range 0..7", n)
		}
		return n, nil
	}
	if n, ok := levelNames[strings.ToLower(s)]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// SelectLevel renders each selector in turn and returns the first one that
// resolves completely and parses as a level.
func SelectLevel(selectors []string, event *loglang.Event, r Renderer) (int, bool) {
	if r == nil {
		r = SprintfRenderer
	}
	for _, selector := range selectors {
		rendered := r.Render(selector, event)
		if rendered == "" || strings.Contains(rendered, "%{") {
			continue
		}
		if level, err := ParseLevel(rendered); err == nil {
			return level, true
		}
	}
	return 0, false
}
