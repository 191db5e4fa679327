package bus

import (
	"errors"
	"fmt"
)

// MaxChannels bounds the channel count of a single bus.
const MaxChannels = 32

// eventChannels is the channel count reported for event buses.
const eventChannels = 16

// Builder accumulates buses in declaration order. Problems are collected
// and reported together by Build.
type Builder struct {
	audio  []Info
	events []Info
	errs   []error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Audio appends an audio bus. Main buses start active, aux buses inactive.
// Aux buses may report zero channels; main buses need at least one.
func (b *Builder) Audio(direction Direction, busType Type, name string, channels int32) *Builder {
	low := int32(1)
	if busType == TypeAux {
		low = 0
	}
	if channels < low || channels > MaxChannels {
		b.errs = append(b.errs, fmt.Errorf("bus %q: channel count %d outside %d..%d", name, channels, low, MaxChannels))
	}
	b.audio = append(b.audio, Info{
		MediaType:    MediaTypeAudio,
		Direction:    direction,
		ChannelCount: channels,
		Name:         name,
		BusType:      busType,
		IsActive:     busType == TypeMain,
	})
	return b
}

// Input appends a main audio input.
func (b *Builder) Input(name string, channels int32) *Builder {
	return b.Audio(DirectionInput, TypeMain, name, channels)
}

// Output appends a main audio output.
func (b *Builder) Output(name string, channels int32) *Builder {
	return b.Audio(DirectionOutput, TypeMain, name, channels)
}

// Sidechain appends an aux audio input.
func (b *Builder) Sidechain(name string, channels int32) *Builder {
	return b.Audio(DirectionInput, TypeAux, name, channels)
}

// Events appends an event input.
func (b *Builder) Events(name string) *Builder {
	b.events = append(b.events, Info{
		MediaType:    MediaTypeEvent,
		Direction:    DirectionInput,
		ChannelCount: eventChannels,
		Name:         name,
		BusType:      TypeMain,
		IsActive:     true,
	})
	return b
}

// Active overrides the activation state of the most recent audio bus.
func (b *Builder) Active(active bool) *Builder {
	if len(b.audio) == 0 {
		b.errs = append(b.errs, errors.New("Active called before any audio bus"))
		return b
	}
	b.audio[len(b.audio)-1].IsActive = active
	return b
}

// Build checks the layout and returns it. A configuration needs at least
// one main audio output.
func (b *Builder) Build() (*Configuration, error) {
	errs := b.errs
	cfg := &Configuration{
		audio:  append([]Info(nil), b.audio...),
		events: append([]Info(nil), b.events...),
	}
	if cfg.MainChannels(DirectionOutput) == 0 {
		errs = append(errs, errors.New("no main audio output bus"))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("bus layout: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// MustBuild is Build for layouts declared in code.
func (b *Builder) MustBuild() *Configuration {
	cfg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return cfg
}
