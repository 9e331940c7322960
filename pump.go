package loglang

import (
	"context"
	"fmt"
	"time"
)

// PumpFilterList runs events from input through every filter stage, in
// order, and forwards survivors to output. It returns once input is closed
// and drained, or ctx is done. The output channel is left open.
func PumpFilterList(ctx context.Context, input <-chan Event, output chan<- Event,
	filters []NamedEntity[FilterPlugin]) {

	log := ContextLogger(ctx)
	log.Debug(fmt.Sprintf("set up filter chain length=%d", len(filters)))

	// make channels to go between filter stages
	stageIn := input
	for _, filter := range filters {
		stageOut := make(chan Event, ChanBufferSize)
		go PumpFilter(ctx, stageIn, stageOut, filter)
		stageIn = stageOut
	}

forward:
	for {
		select {
		case event, more := <-stageIn:
			if !more {
				break forward
			}
			select {
			case output <- event:
			case <-ctx.Done():
				break forward
			}
		case <-ctx.Done():
			break forward
		}
	}
}

// intended to be run as a goroutine; closes output when it stops
func PumpFilter(ctx context.Context, input <-chan Event, output chan<- Event,
	filter NamedEntity[FilterPlugin]) {

	log := ContextLogger(ctx).With("filter", filter.Name)
	filterFunc := filter.Value
	defer close(output)
filterPump:
	for {
		select {
		case event, more := <-input:
			if !more {
				break filterPump
			}
			dropped := false
			dropFunc := func() {
				if dropped {
					log.Warn("drop() should only be called once")
				} else {
					dropped = true
				}
			}
			err := filterFunc(&event, output, dropFunc)
			if err != nil {
				// a failing filter does not stop the event
				log.Warn("filter error", "error", err)
			} else if dropped {
				// do not pass to next stage of filter pipeline
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				break filterPump
			}
		case <-ctx.Done():
			break filterPump
		}
	}
}

// intended to be run as a goroutine; closes every output when it stops
func PumpFanOut(ctx context.Context, input <-chan Event, outputs []chan Event, idle time.Duration) {
	defer func() {
		for i := range outputs {
			close(outputs[i])
		}
	}()
	log := ContextLogger(ctx)
	log.Debug("starting pump fanOut")
fanOut:
	for {
		select {
		case event, more := <-input:
			if !more {
				break fanOut
			}
			for i := range outputs {
				// each output gets its own copy of the field map
				select {
				case outputs[i] <- event.Copy():
				case <-ctx.Done():
					break fanOut
				}
			}
		case <-time.After(idle):
			log.Info(fmt.Sprintf("no events for %v", idle))
		case <-ctx.Done():
			break fanOut
		}
	}
	log.Debug("halted fan-out")
}

// PumpToOutput hands events to a single output strictly one at a time.
func PumpToOutput(ctx context.Context, input <-chan Event, output OutputPlugin) {
	log := ContextLogger(ctx)
outputPump:
	for {
		select {
		case event, more := <-input:
			if !more {
				break outputPump
			}
			if err := output.Run(ctx, event); err != nil {
				log.Error("output failed", "error", err)
			}
		case <-ctx.Done():
			break outputPump
		}
	}
	log.Debug("output pump stopped")
}
