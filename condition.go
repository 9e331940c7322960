package loglang

// OutputConditions decide whether an output wants an event at all.
// The zero value allows everything.
type OutputConditions struct {
	Type        string
	Tags        []string
	ExcludeTags []string
}

func (c OutputConditions) Allows(event *Event) bool {
	if c.Type != "" && event.Type != c.Type {
		return false
	}
	for _, tag := range c.Tags {
		if !event.HasTag(tag) {
			return false
		}
	}
	for _, tag := range c.ExcludeTags {
		if event.HasTag(tag) {
			return false
		}
	}
	return true
}
