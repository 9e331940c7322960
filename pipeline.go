package loglang

import (
	"context"
	"fmt"
	"sync"
	"time"
)

func NewPipeline(name string, options PipelineOptions) *Pipeline {
	if options.StalledOutputThreshold == 0 {
		options.StalledOutputThreshold = 24 * time.Hour
	}
	var p Pipeline
	p.opts = options
	p.Name = name
	return &p
}

type Pipeline struct {
	Name    string
	inputs  []NamedEntity[inputDetail]
	filters []NamedEntity[FilterPlugin]
	outputs []NamedEntity[OutputPlugin]
	opts    PipelineOptions
}

type PipelineOptions struct {
	// how long the fan-out may sit idle before saying so
	StalledOutputThreshold time.Duration
}

type inputDetail struct {
	plugin      InputPlugin
	filterChain []NamedEntity[FilterPlugin]
}

func (p *Pipeline) GetName() string {
	return p.Name
}

const ChanBufferSize = 2

// Run blocks until every input has stopped and every accepted event has
// been handed to every output, or until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	if len(p.outputs) == 0 {
		return fmt.Errorf("pipeline %q has no outputs", p.Name)
	}
	ctx = context.WithValue(ctx, ContextKeyPipelineName, p.GetName())
	log := ContextLogger(ctx)

	// all inputs are multiplexed to a single input channel
	combinedInputs := make(chan Event, ChanBufferSize)
	// a single output channel does fan-out to all outputs
	outChan := make(chan Event, ChanBufferSize)

	// set up outputs first, then filters, then inputs LAST!
	outputsDone := p.runOutputs(ctx, outChan)

	go func() {
		defer close(outChan)
		PumpFilterList(ctx, combinedInputs, outChan, p.filters)
	}()
	log.Info(fmt.Sprintf("set up %d filters", len(p.filters)))

	p.runInputs(ctx, combinedInputs)

	outputsDone.Wait()
	log.Info("pipeline stopped")
	return nil
}

func (p *Pipeline) runInputs(ctx context.Context, combinedInputs chan<- Event) {
	var wg sync.WaitGroup
	for _, entity := range p.inputs {
		entity := entity // per-iteration copy (go directive < 1.22 shares loop vars)
		pluginCtx := context.WithValue(ctx, ContextKeyPluginName, entity.Name)
		pluginCtx = context.WithValue(pluginCtx, ContextKeyPluginType, "input")
		log := ContextLogger(pluginCtx)

		inChan := make(chan Event, ChanBufferSize)

		wg.Add(2)
		go func() {
			defer wg.Done()
			PumpFilterList(pluginCtx, inChan, combinedInputs, entity.Value.filterChain)
		}()

		log.Info("starting input")
		go func() {
			defer wg.Done()
			defer close(inChan)
			err := entity.Value.plugin.Run(pluginCtx, channelSender(pluginCtx, inChan))
			if err == nil {
				log.Info("input stopped")
			} else {
				log.Error("input failed", "error", err)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(combinedInputs)
	}()
}

func channelSender(ctx context.Context, inChan chan<- Event) BatchSender {
	return func(events ...Event) BatchResult {
		result := BatchResult{
			Total: len(events),
			Start: time.Now(),
		}
		for _, event := range events {
			select {
			case inChan <- event:
				result.Success++
			case <-ctx.Done():
				result.Dropped++
			}
		}
		result.Ok = result.Dropped == 0
		result.Finish = time.Now()
		return result
	}
}

func (p *Pipeline) runOutputs(ctx context.Context, events <-chan Event) *sync.WaitGroup {
	log := ContextLogger(ctx)
	log.Debug("starting outputs")

	// each output gets its own channel so a slow output only stalls itself
	// once the small buffer fills
	outputChannels := make([]chan Event, len(p.outputs))
	for i := range p.outputs {
		outputChannels[i] = make(chan Event, 1)
	}

	go PumpFanOut(ctx, events, outputChannels, p.opts.StalledOutputThreshold)

	var wg sync.WaitGroup
	for i, namedOutput := range p.outputs {
		pluginCtx := context.WithValue(ctx, ContextKeyPluginName, namedOutput.Name)
		pluginCtx = context.WithValue(pluginCtx, ContextKeyPluginType, "output")
		ContextLogger(pluginCtx).Info("starting output")

		wg.Add(1)
		go func(output OutputPlugin, soloChan <-chan Event) {
			defer wg.Done()
			PumpToOutput(pluginCtx, soloChan, output)
		}(namedOutput.Value, outputChannels[i])
	}
	return &wg
}

func (p *Pipeline) Input(name string, plugin InputPlugin, filters ...NamedEntity[FilterPlugin]) {
	p.inputs = append(p.inputs, NamedEntity[inputDetail]{
		Name: name,
		Value: inputDetail{
			plugin:      plugin,
			filterChain: filters,
		},
	})
}

func (p *Pipeline) Filter(name string, f FilterPlugin) {
	p.filters = append(p.filters, NamedEntity[FilterPlugin]{
		Name:  name,
		Value: f,
	})
}

func (p *Pipeline) Output(name string, f OutputPlugin) {
	p.outputs = append(p.outputs, NamedEntity[OutputPlugin]{
		Name:  name,
		Value: f,
	})
}
