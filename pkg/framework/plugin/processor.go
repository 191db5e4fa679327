// Package plugin provides processor building blocks shared by plugin
// implementations.
package plugin

import (
	"github.com/subrou-audio/subrou/pkg/framework/bus"
	"github.com/subrou-audio/subrou/pkg/framework/param"
	"github.com/subrou-audio/subrou/pkg/framework/process"
)

// AudioProcessor renders one block. Implementations must not allocate.
type AudioProcessor interface {
	ProcessAudio(ctx *process.Context)
}

type hooks struct {
	initialize func(sampleRate float64, maxBlockSize int32) error
	setActive  func(active bool) error
	reset      func()
}

// BaseProcessor implements the lifecycle half of a processor: parameters,
// buses, setup and activation. Embed it and add ProcessAudio.
type BaseProcessor struct {
	params *param.Registry
	buses  *bus.Configuration
	hooks  hooks

	sampleRate   float64
	maxBlockSize int32
	active       bool
}

// NewBaseProcessor uses buses, or a stereo effect layout when nil.
func NewBaseProcessor(buses *bus.Configuration) *BaseProcessor {
	if buses == nil {
		buses = bus.NewEffectStereo()
	}
	return &BaseProcessor{params: param.NewRegistry(), buses: buses}
}

// OnInitialize runs fn from Initialize after the setup is recorded.
func (b *BaseProcessor) OnInitialize(fn func(sampleRate float64, maxBlockSize int32) error) {
	b.hooks.initialize = fn
}

// OnSetActive runs fn from SetActive.
func (b *BaseProcessor) OnSetActive(fn func(active bool) error) {
	b.hooks.setActive = fn
}

// OnReset runs fn whenever the processor is deactivated.
func (b *BaseProcessor) OnReset(fn func()) {
	b.hooks.reset = fn
}

func (b *BaseProcessor) Initialize(sampleRate float64, maxBlockSize int32) error {
	b.sampleRate, b.maxBlockSize = sampleRate, maxBlockSize
	if b.hooks.initialize == nil {
		return nil
	}
	return b.hooks.initialize(sampleRate, maxBlockSize)
}

// SetActive resets state on deactivation before calling the activation hook.
func (b *BaseProcessor) SetActive(active bool) error {
	if !active && b.hooks.reset != nil {
		b.hooks.reset()
	}
	b.active = active
	if b.hooks.setActive == nil {
		return nil
	}
	return b.hooks.setActive(active)
}

func (b *BaseProcessor) GetParameters() *param.Registry {
	return b.params
}

func (b *BaseProcessor) GetBuses() *bus.Configuration {
	return b.buses
}

func (b *BaseProcessor) GetLatencySamples() int32 {
	return 0
}

func (b *BaseProcessor) GetTailSamples() int32 {
	return 0
}

// Parameters is GetParameters, for declaring parameters in constructors.
func (b *BaseProcessor) Parameters() *param.Registry { return b.params }

// IsActive reports the last SetActive state.
func (b *BaseProcessor) IsActive() bool { return b.active }

// SampleRate returns the rate passed to the last Initialize.
func (b *BaseProcessor) SampleRate() float64 { return b.sampleRate }

// MaxBlockSize returns the block size passed to the last Initialize.
func (b *BaseProcessor) MaxBlockSize() int32 { return b.maxBlockSize }

// SimpleProcessor is a BaseProcessor driven by a plain function.
type SimpleProcessor struct {
	*BaseProcessor
	fn func(ctx *process.Context)
}

// NewSimpleProcessor wraps fn. A nil fn leaves the output untouched.
func NewSimpleProcessor(buses *bus.Configuration, fn func(ctx *process.Context)) *SimpleProcessor {
	return &SimpleProcessor{BaseProcessor: NewBaseProcessor(buses), fn: fn}
}

func (s *SimpleProcessor) ProcessAudio(ctx *process.Context) {
	if s.fn != nil {
		s.fn(ctx)
	}
}
