// Package inproc hosts Go processors directly, without a native bundle.
// Paths take the form "builtin:<name>".
package inproc

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/subrou-audio/subrou/internal/subrou"
	"github.com/subrou-audio/subrou/pkg/audio"
	"github.com/subrou-audio/subrou/pkg/framework/bus"
	"github.com/subrou-audio/subrou/pkg/framework/debug"
	"github.com/subrou-audio/subrou/pkg/framework/process"
	"github.com/subrou-audio/subrou/pkg/host"
	vst3plugin "github.com/subrou-audio/subrou/pkg/plugin"
)

// Scheme is the path prefix handled by this loader.
const Scheme = "builtin"

// Loader creates in-process instances of registered plugins.
type Loader struct {
	cfg host.Config

	mu      sync.RWMutex
	plugins map[string]vst3plugin.Plugin
}

// NewLoader returns a loader with the Subrou plugin registered as
// "builtin:subrou".
func NewLoader(cfg host.Config) *Loader {
	l := &Loader{cfg: cfg, plugins: make(map[string]vst3plugin.Plugin)}
	l.Register("subrou", subrou.Plugin{})
	return l
}

// Register makes p available as "builtin:<name>".
func (l *Loader) Register(name string, p vst3plugin.Plugin) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.plugins[strings.ToLower(name)] = p
}

// Names returns the registered plugin names.
func (l *Loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.plugins))
	for name := range l.plugins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Load implements host.Loader.
func (l *Loader) Load(ctx context.Context, path string) (host.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, host.LoadError(path, err)
	}

	name, ok := strings.CutPrefix(path, Scheme+":")
	if !ok {
		return nil, host.LoadError(path, fmt.Errorf("expected %s:<name>", Scheme))
	}

	l.mu.RLock()
	p, found := l.plugins[strings.ToLower(name)]
	l.mu.RUnlock()
	if !found {
		return nil, host.LoadError(path, fmt.Errorf("unknown plugin %q (have %s)", name, strings.Join(l.Names(), ", ")))
	}

	info := p.GetInfo()
	if err := info.Validate(); err != nil {
		return nil, host.LoadError(path, err)
	}

	proc := p.CreateProcessor()
	if proc.GetBuses().MainChannels(bus.DirectionOutput) == 0 {
		return nil, host.LoadError(path, fmt.Errorf("%s has no main output bus", info.Name))
	}
	params := proc.GetParameters()
	for _, key := range l.cfg.ParamNames() {
		if err := params.SetText(key, l.cfg.Params[key]); err != nil {
			return nil, host.LoadError(path, err)
		}
	}

	log := debug.Component("inproc")
	log.Debug("loaded %s %s by %s", info.Name, info.Version, info.Vendor)

	return &Instance{
		cfg:  l.cfg,
		name: info.Name,
		proc: proc,
		log:  log,
	}, nil
}

// Instance runs one processor.
type Instance struct {
	cfg  host.Config
	name string
	proc vst3plugin.Processor
	log  *debug.Logger

	mu         sync.Mutex
	pctx       *process.Context
	sampleRate float64
	active     bool
	closed     bool
	aux        [][][]float32
}

// Name returns the plugin name.
func (i *Instance) Name() string {
	return i.name
}

// Process implements host.Instance. The processor sees every channel of buf.
func (i *Instance) Process(ctx context.Context, buf *audio.Buffer, sampleRate float64) (*audio.Buffer, error) {
	if err := host.CheckInput(buf, sampleRate); err != nil {
		return nil, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil, host.ErrClosed
	}
	if err := i.prepare(sampleRate); err != nil {
		return nil, err
	}
	if err := i.activate(); err != nil {
		return nil, err
	}

	in := buf.Clone()
	out, err := audio.New(buf.Channels(), buf.Frames())
	if err != nil {
		return nil, err
	}

	channels := buf.Channels()
	inSlices := make([][]float32, channels)
	outSlices := make([][]float32, channels)
	auxSlices := make([][][]float32, len(i.aux))
	for b := range i.aux {
		auxSlices[b] = make([][]float32, len(i.aux[b]))
	}

	block := i.pctx.MaxBlockSize()
	defer i.pctx.Unbind()
	for offset := 0; offset < buf.Frames(); offset += block {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := min(block, buf.Frames()-offset)
		for ch := 0; ch < channels; ch++ {
			inSlices[ch] = in.Channel(ch)[offset : offset+n]
			outSlices[ch] = out.Channel(ch)[offset : offset+n]
		}
		for b := range i.aux {
			for ch := range i.aux[b] {
				auxSlices[b][ch] = i.aux[b][ch][:n]
			}
		}

		i.pctx.Bind(inSlices, outSlices, auxSlices)
		i.proc.ProcessAudio(i.pctx)
	}
	return out, nil
}

// prepare initializes the processor when the sample rate changes.
func (i *Instance) prepare(sampleRate float64) error {
	if i.pctx != nil && i.sampleRate == sampleRate {
		return nil
	}

	if i.active {
		if err := i.proc.SetActive(false); err != nil {
			return fmt.Errorf("deactivate %s: %w", i.name, err)
		}
		i.active = false
	}

	block := i.cfg.EffectiveBlockSize()
	if err := i.proc.Initialize(sampleRate, int32(block)); err != nil {
		return fmt.Errorf("initialize %s: %w", i.name, err)
	}
	i.log.Debug("initialized %s at %g Hz, block %d", i.name, sampleRate, block)

	i.pctx = process.NewContext(block, i.proc.GetParameters())
	i.pctx.SampleRate = sampleRate
	i.sampleRate = sampleRate

	i.aux = i.aux[:0]
	for _, info := range i.proc.GetBuses().Audio(bus.DirectionInput) {
		if info.BusType != bus.TypeAux {
			continue
		}
		silent := make([][]float32, info.ChannelCount)
		for ch := range silent {
			silent[ch] = make([]float32, block)
		}
		i.aux = append(i.aux, silent)
	}
	return nil
}

// activate starts processing. With Reset set, an active processor is cycled
// off and on so that no state survives from the previous call.
func (i *Instance) activate() error {
	if i.active && !i.cfg.Reset {
		return nil
	}
	if i.active {
		if err := i.proc.SetActive(false); err != nil {
			return fmt.Errorf("reset %s: %w", i.name, err)
		}
		i.active = false
	}
	if err := i.proc.SetActive(true); err != nil {
		return fmt.Errorf("activate %s: %w", i.name, err)
	}
	i.active = true
	return nil
}

// Close implements host.Instance.
func (i *Instance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	i.closed = true

	if i.active {
		i.active = false
		if err := i.proc.SetActive(false); err != nil {
			return fmt.Errorf("deactivate %s: %w", i.name, err)
		}
	}
	i.log.Debug("closed %s", i.name)
	return nil
}
