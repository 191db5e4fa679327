// Package plugin defines the contract between a processor implementation and
// the hosts that drive it.
package plugin

import (
	"github.com/subrou-audio/subrou/pkg/framework/bus"
	"github.com/subrou-audio/subrou/pkg/framework/param"
	"github.com/subrou-audio/subrou/pkg/framework/plugin"
	"github.com/subrou-audio/subrou/pkg/framework/process"
)

// Plugin is the main interface that users implement
type Plugin interface {
	// GetInfo returns plugin metadata
	GetInfo() plugin.Info

	// CreateProcessor creates a new instance of the audio processor
	CreateProcessor() Processor
}

// Processor handles the actual audio processing
type Processor interface {
	// Initialize is called whenever the sample rate or maximum block size changes
	Initialize(sampleRate float64, maxBlockSize int32) error

	// ProcessAudio renders one block from ctx.Input into ctx.Output. It must not allocate.
	ProcessAudio(ctx *process.Context)

	// GetParameters returns the parameter registry
	GetParameters() *param.Registry

	// GetBuses returns the bus configuration
	GetBuses() *bus.Configuration

	// SetActive is called when processing starts/stops; false resets state
	SetActive(active bool) error

	// GetLatencySamples returns the plugin's latency in samples
	GetLatencySamples() int32

	// GetTailSamples returns the tail length in samples
	GetTailSamples() int32
}
