//go:build linux || darwin

package bundle

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/subrou-audio/subrou/pkg/audio"
	"github.com/subrou-audio/subrou/pkg/framework/bus"
	"github.com/subrou-audio/subrou/pkg/framework/debug"
	"github.com/subrou-audio/subrou/pkg/host"
	"github.com/subrou-audio/subrou/pkg/vst3"
)

// instance drives one IComponent/IAudioProcessor pair.
type instance struct {
	mod       *module
	component unsafe.Pointer
	processor unsafe.Pointer
	name      string

	cfg  host.Config
	mode int32
	log  *debug.Logger

	buses *bus.Configuration

	mu          sync.Mutex
	initialized bool
	setup       bool
	sampleRate  float64
	active      bool
	processing  bool
	closed      bool
	warned      bool
}

func open(binary string, cfg host.Config, mode int32, log *debug.Logger) (host.Instance, error) {
	mod, err := openModule(binary)
	if err != nil {
		return nil, err
	}

	i, err := attach(mod, cfg, mode, log)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// attach instantiates an audio class of an opened module. On failure
// everything acquired so far is released and the module is closed.
func attach(mod *module, cfg host.Config, mode int32, log *debug.Logger) (*instance, error) {
	i := &instance{mod: mod, cfg: cfg, mode: mode, log: log}
	if err := i.init(); err != nil {
		return nil, errors.Join(err, i.teardown())
	}
	return i, nil
}

func (i *instance) init() error {
	classes, err := i.mod.classes()
	if err != nil {
		return err
	}

	var names []string
	var class *vst3.PClassInfo
	for k := range classes {
		c := &classes[k]
		if c.CategoryString() != vst3.CategoryAudioEffect {
			continue
		}
		names = append(names, c.NameString())
		if class == nil && (i.cfg.Class == "" || c.NameString() == i.cfg.Class) {
			class = c
		}
	}
	if class == nil {
		if i.cfg.Class != "" {
			return fmt.Errorf("no audio class named %q (have %s)", i.cfg.Class, strings.Join(names, ", "))
		}
		return errors.New("module exports no audio classes")
	}
	i.name = class.NameString()
	i.log.Debug("selected class %s %s from %q", i.name, class.CID, i.mod.vendor())

	if i.component, err = i.mod.createInstance(class.CID, vst3.IIDIComponent); err != nil {
		return err
	}
	if r := result(call(i.component, vst3.PluginBaseInitialize, 0)); !r.OK() {
		return fmt.Errorf("initialize: %w", r)
	}
	i.initialized = true

	if i.processor, err = queryInterface(i.component, vst3.IIDIAudioProcessor); err != nil {
		return err
	}
	if r := result(call(i.processor, vst3.AudioProcessorCanProcessSampleSize, uintptr(vst3.Sample32))); !r.OK() {
		return fmt.Errorf("32-bit float processing not supported: %w", r)
	}

	if i.buses, err = i.readBuses(); err != nil {
		return err
	}
	i.arrangeBuses()
	return i.activateBuses()
}

// readBuses queries every audio and event bus of the component.
func (i *instance) readBuses() (*bus.Configuration, error) {
	b := bus.NewBuilder()

	info := new(vst3.BusInfo)
	var pinner runtime.Pinner
	pinner.Pin(info)
	defer pinner.Unpin()

	for _, dir := range []int32{vst3.BusDirectionInput, vst3.BusDirectionOutput} {
		count := int32(call(i.component, vst3.ComponentGetBusCount, uintptr(vst3.MediaTypeAudio), uintptr(dir)))
		for idx := int32(0); idx < count; idx++ {
			*info = vst3.BusInfo{}
			r := result(call(i.component, vst3.ComponentGetBusInfo,
				uintptr(vst3.MediaTypeAudio), uintptr(dir), uintptr(idx), uintptr(unsafe.Pointer(info))))
			if !r.OK() {
				return nil, fmt.Errorf("getBusInfo(%d, %d): %w", dir, idx, r)
			}

			kind := bus.TypeAux
			if info.BusType == vst3.BusTypeMain {
				kind = bus.TypeMain
			}
			b.Audio(bus.Direction(dir), kind, info.NameString(), info.ChannelCount)
			if kind == bus.TypeAux && info.Flags&vst3.BusDefaultActive != 0 {
				b.Active(true)
			}
		}
	}

	events := int32(call(i.component, vst3.ComponentGetBusCount, uintptr(vst3.MediaTypeEvent), uintptr(vst3.BusDirectionInput)))
	for idx := int32(0); idx < events; idx++ {
		b.Events(fmt.Sprintf("Event In %d", idx+1))
	}
	return b.Build()
}

func arrangements(buses []bus.Info) []vst3.SpeakerArrangement {
	out := make([]vst3.SpeakerArrangement, len(buses))
	for k, info := range buses {
		out[k] = vst3.ArrangementFor(int(info.ChannelCount))
	}
	return out
}

// arrangeBuses confirms the default speaker arrangements. Plugins may reject
// the call; the reported channel counts still apply.
func (i *instance) arrangeBuses() {
	ins := arrangements(i.buses.Audio(bus.DirectionInput))
	outs := arrangements(i.buses.Audio(bus.DirectionOutput))

	var pinner runtime.Pinner
	defer pinner.Unpin()

	var inPtr, outPtr uintptr
	if len(ins) > 0 {
		pinner.Pin(&ins[0])
		inPtr = uintptr(unsafe.Pointer(&ins[0]))
	}
	if len(outs) > 0 {
		pinner.Pin(&outs[0])
		outPtr = uintptr(unsafe.Pointer(&outs[0]))
	}

	r := result(call(i.processor, vst3.AudioProcessorSetBusArrangements,
		inPtr, uintptr(len(ins)), outPtr, uintptr(len(outs))))
	if !r.OK() {
		i.log.Debug("setBusArrangements rejected: %v", r)
	}
}

func (i *instance) activateBuses() error {
	for _, dir := range []bus.Direction{bus.DirectionInput, bus.DirectionOutput} {
		for idx, info := range i.buses.Audio(dir) {
			if !info.IsActive {
				continue
			}
			r := result(call(i.component, vst3.ComponentActivateBus,
				uintptr(vst3.MediaTypeAudio), uintptr(dir), uintptr(idx), vst3.Bool(true)))
			if !r.OK() {
				return fmt.Errorf("activateBus(%d, %d): %w", dir, idx, r)
			}
		}
	}
	return nil
}

// Name returns the selected class name.
func (i *instance) Name() string {
	return i.name
}

// Process implements host.Instance.
func (i *instance) Process(ctx context.Context, buf *audio.Buffer, sampleRate float64) (*audio.Buffer, error) {
	if err := host.CheckInput(buf, sampleRate); err != nil {
		return nil, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil, host.ErrClosed
	}

	blockSize := i.cfg.EffectiveBlockSize()
	if err := i.prepare(sampleRate, blockSize); err != nil {
		return nil, err
	}
	if err := i.start(); err != nil {
		return nil, err
	}

	out, err := audio.New(buf.Channels(), buf.Frames())
	if err != nil {
		return nil, err
	}

	blk, err := newBlock(i.buses, blockSize)
	if err != nil {
		return nil, err
	}
	defer blk.release()
	blk.data.ProcessMode = i.mode

	mainIn := blk.mainInput()
	mainOut := blk.mainOutput()
	if mainOut == nil {
		return nil, errors.New("plugin has no main output bus")
	}
	if !i.warned && (mainOut.Channels() != buf.Channels() || (mainIn != nil && mainIn.Channels() != buf.Channels())) {
		i.warned = true
		i.log.Warn("%s expects %d output channels, buffer has %d; extra channels are left silent",
			i.name, mainOut.Channels(), buf.Channels())
	}

	for offset := 0; offset < buf.Frames(); offset += blockSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := min(blockSize, buf.Frames()-offset)

		blk.clearInputs()
		if mainIn != nil {
			for ch := 0; ch < min(mainIn.Channels(), buf.Channels()); ch++ {
				copy(mainIn.Channel(ch), buf.Channel(ch)[offset:offset+n])
			}
		}

		blk.data.NumSamples = int32(n)
		r := result(call(i.processor, vst3.AudioProcessorProcess, uintptr(unsafe.Pointer(blk.data))))
		if !r.OK() {
			return nil, fmt.Errorf("process: %w", r)
		}

		for ch := 0; ch < min(mainOut.Channels(), buf.Channels()); ch++ {
			copy(out.Channel(ch)[offset:offset+n], mainOut.Channel(ch)[:n])
		}
	}
	return out, nil
}

// prepare calls setupProcessing when the sample rate changes.
func (i *instance) prepare(sampleRate float64, maxFrames int) error {
	if i.setup && i.sampleRate == sampleRate {
		return nil
	}
	if err := i.stop(); err != nil {
		return err
	}

	setup := &vst3.ProcessSetup{
		ProcessMode:        i.mode,
		SymbolicSampleSize: vst3.Sample32,
		MaxSamplesPerBlock: int32(maxFrames),
		SampleRate:         sampleRate,
	}
	var pinner runtime.Pinner
	pinner.Pin(setup)
	defer pinner.Unpin()

	if r := result(call(i.processor, vst3.AudioProcessorSetupProcessing, uintptr(unsafe.Pointer(setup)))); !r.OK() {
		return fmt.Errorf("setupProcessing(%g Hz, %d): %w", sampleRate, maxFrames, r)
	}
	i.setup = true
	i.sampleRate = sampleRate
	i.log.Debug("setup %s at %g Hz, block %d", i.name, sampleRate, maxFrames)
	return nil
}

// start activates the component. With Reset set, a running component is
// stopped first so that no state survives from the previous call.
func (i *instance) start() error {
	if i.active && i.processing && !i.cfg.Reset {
		return nil
	}
	if err := i.stop(); err != nil {
		return err
	}

	if r := result(call(i.component, vst3.ComponentSetActive, vst3.Bool(true))); !r.OK() {
		return fmt.Errorf("setActive(true): %w", r)
	}
	i.active = true

	if r := result(call(i.processor, vst3.AudioProcessorSetProcessing, vst3.Bool(true))); !r.OK() && r != vst3.ResultNotImplemented {
		return fmt.Errorf("setProcessing(true): %w", r)
	}
	i.processing = true
	return nil
}

func (i *instance) stop() error {
	var errs []error
	if i.processing {
		i.processing = false
		if r := result(call(i.processor, vst3.AudioProcessorSetProcessing, vst3.Bool(false))); !r.OK() && r != vst3.ResultNotImplemented {
			errs = append(errs, fmt.Errorf("setProcessing(false): %w", r))
		}
	}
	if i.active {
		i.active = false
		if r := result(call(i.component, vst3.ComponentSetActive, vst3.Bool(false))); !r.OK() {
			errs = append(errs, fmt.Errorf("setActive(false): %w", r))
		}
	}
	return errors.Join(errs...)
}

// Close implements host.Instance.
func (i *instance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	i.closed = true
	return i.teardown()
}

func (i *instance) teardown() error {
	var errs []error
	if i.processor != nil {
		errs = append(errs, i.stop())
		release(i.processor)
		i.processor = nil
	}
	if i.component != nil {
		if i.initialized {
			if r := result(call(i.component, vst3.PluginBaseTerminate)); !r.OK() {
				errs = append(errs, fmt.Errorf("terminate: %w", r))
			}
			i.initialized = false
		}
		release(i.component)
		i.component = nil
	}
	errs = append(errs, i.mod.close())

	if err := errors.Join(errs...); err != nil {
		return err
	}
	i.log.Debug("closed %s", i.name)
	return nil
}

// block holds the pinned buffers handed to IAudioProcessor::process.
type block struct {
	pinner  runtime.Pinner
	data    *vst3.ProcessData
	inputs  []*audio.Buffer
	outputs []*audio.Buffer
	inMain  int
	outMain int
}

func newBlock(buses *bus.Configuration, frames int) (*block, error) {
	b := &block{data: &vst3.ProcessData{SymbolicSampleSize: vst3.Sample32}, inMain: -1, outMain: -1}
	b.pinner.Pin(b.data)

	ins, err := b.side(buses.Audio(bus.DirectionInput), frames, &b.inputs, &b.inMain)
	if err != nil {
		b.release()
		return nil, err
	}
	outs, err := b.side(buses.Audio(bus.DirectionOutput), frames, &b.outputs, &b.outMain)
	if err != nil {
		b.release()
		return nil, err
	}

	b.data.NumInputs = int32(len(ins))
	b.data.NumOutputs = int32(len(outs))
	if len(ins) > 0 {
		b.data.Inputs = unsafe.Pointer(&ins[0])
	}
	if len(outs) > 0 {
		b.data.Outputs = unsafe.Pointer(&outs[0])
	}
	return b, nil
}

func (b *block) side(infos []bus.Info, frames int, bufs *[]*audio.Buffer, main *int) ([]vst3.AudioBusBuffers, error) {
	if len(infos) == 0 {
		return nil, nil
	}

	out := make([]vst3.AudioBusBuffers, len(infos))
	b.pinner.Pin(&out[0])

	for k, info := range infos {
		if info.ChannelCount == 0 {
			*bufs = append(*bufs, nil)
			continue
		}
		buf, err := audio.New(int(info.ChannelCount), frames)
		if err != nil {
			return nil, err
		}
		*bufs = append(*bufs, buf)
		if info.BusType == bus.TypeMain && *main < 0 {
			*main = k
		}

		ptrs := make([]unsafe.Pointer, buf.Channels())
		for ch := range ptrs {
			ptrs[ch] = unsafe.Pointer(&buf.Channel(ch)[0])
		}
		b.pinner.Pin(&buf.Samples()[0])
		b.pinner.Pin(&ptrs[0])

		out[k] = vst3.AudioBusBuffers{
			NumChannels:      info.ChannelCount,
			ChannelBuffers32: unsafe.Pointer(&ptrs[0]),
		}
		if info.BusType != bus.TypeMain {
			out[k].SilenceFlags = 1<<uint(info.ChannelCount) - 1
		}
	}
	return out, nil
}

func (b *block) mainInput() *audio.Buffer {
	if b.inMain < 0 {
		return nil
	}
	return b.inputs[b.inMain]
}

func (b *block) mainOutput() *audio.Buffer {
	if b.outMain < 0 {
		return nil
	}
	return b.outputs[b.outMain]
}

func (b *block) clearInputs() {
	for _, buf := range b.inputs {
		if buf != nil {
			buf.Fill(0)
		}
	}
}

func (b *block) release() {
	b.pinner.Unpin()
}
