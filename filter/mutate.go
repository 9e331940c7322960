package filter

import (
	"github.com/nicwaller/loglang-gelf"
)

// Replace the value of a field with a new value, or add the field if it doesn’t already exist.
// The content may reference other fields with %{name}.
func Replace(field string, content string) loglang.FilterPlugin {
	return func(event *loglang.Event, inject chan<- loglang.Event, drop func()) error {
		event.Field(field).SetString(event.Sprintf(content))
		return nil
	}
}

func Remove(field string) loglang.FilterPlugin {
	return func(event *loglang.Event, inject chan<- loglang.Event, drop func()) error {
		event.Field(field).Delete()
		return nil
	}
}

// FIXME: rename doesn't support deep fields
func Rename(oldField string, newField string) loglang.FilterPlugin {
	return func(event *loglang.Event, inject chan<- loglang.Event, drop func()) error {
		oldF := event.Field(oldField)
		value, err := oldF.Get()
		if err != nil {
			// nothing to rename
			return nil
		}
		if err := event.Field(newField).SetCarefully(value); err != nil {
			return err
		}
		oldF.Delete()
		return nil
	}
}

func AddTag(tag string) loglang.FilterPlugin {
	return func(event *loglang.Event, inject chan<- loglang.Event, drop func()) error {
		event.AddTag(event.Sprintf(tag))
		return nil
	}
}
