// Package subrou implements the Subrou sub-bass generator: the level of the
// input drives an additive sawtooth that is mixed into, or routed onto, the
// output channels.
package subrou

import (
	"github.com/subrou-audio/subrou/pkg/framework/plugin"
	vst3plugin "github.com/subrou-audio/subrou/pkg/plugin"
)

// Plugin describes the Subrou plugin class.
type Plugin struct{}

// GetInfo returns the plugin metadata.
func (Plugin) GetInfo() plugin.Info {
	return plugin.Info{
		ID:       "Subrou!!!!!!!!!!",
		Name:     "Subrou Rs",
		Version:  "0.1.0",
		Vendor:   "Daishi Suzuki",
		Category: "Fx|Dynamics",
	}
}

// CreateProcessor returns a new processor with default parameters.
func (Plugin) CreateProcessor() vst3plugin.Processor {
	return NewProcessor()
}
