//go:build linux || darwin

package bundle

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"unicode/utf16"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subrou-audio/subrou/pkg/audio"
	"github.com/subrou-audio/subrou/pkg/framework/debug"
	"github.com/subrou-audio/subrou/pkg/host"
	"github.com/subrou-audio/subrou/pkg/vst3"
)

// The fake plugin below is a factory, an IComponent and an IAudioProcessor
// whose vtables hold purego callbacks, so the instance code runs against
// the same calling convention a shared object would use.

var (
	fakeCID        = vst3.TUID{0xfa, 0xce, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}
	fakeControlCID = vst3.TUID{0xfa, 0xce, 0xc0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}
)

type comObject struct {
	vtbl *[16]uintptr
}

type fakeBus struct {
	name     string
	busType  int32
	channels int32
	flags    uint32
}

type fakePlugin struct {
	inputs      []fakeBus
	outputs     []fakeBus
	gain        float32
	rejectFloat bool

	factory   *comObject
	component *comObject
	processor *comObject
	refs      map[string]int

	calls      []string
	violations []string
	active     bool
	processing bool
	aux        []vst3.AudioBusBuffers
}

var (
	fakeMu      sync.Mutex
	fakeObjects = map[uintptr]struct {
		plugin *fakePlugin
		name   string
	}{}

	vtblOnce      sync.Once
	vtblErr       any
	factoryVtbl   [16]uintptr
	componentVtbl [16]uintptr
	processorVtbl [16]uintptr
)

func newFakePlugin(t *testing.T, inputs, outputs []fakeBus) *fakePlugin {
	t.Helper()
	fakeVtables(t)

	f := &fakePlugin{
		inputs:    inputs,
		outputs:   outputs,
		gain:      0.5,
		factory:   &comObject{vtbl: &factoryVtbl},
		component: &comObject{vtbl: &componentVtbl},
		processor: &comObject{vtbl: &processorVtbl},
		refs:      map[string]int{"factory": 1},
	}

	fakeMu.Lock()
	defer fakeMu.Unlock()
	for name, obj := range map[string]*comObject{"factory": f.factory, "component": f.component, "processor": f.processor} {
		fakeObjects[uintptr(unsafe.Pointer(obj))] = struct {
			plugin *fakePlugin
			name   string
		}{f, name}
	}
	t.Cleanup(func() {
		fakeMu.Lock()
		defer fakeMu.Unlock()
		for _, obj := range []*comObject{f.factory, f.component, f.processor} {
			delete(fakeObjects, uintptr(unsafe.Pointer(obj)))
		}
	})
	return f
}

func (f *fakePlugin) module() *module {
	return &module{factory: unsafe.Pointer(f.factory)}
}

func (f *fakePlugin) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func lookup(this uintptr) (*fakePlugin, string) {
	fakeMu.Lock()
	defer fakeMu.Unlock()
	o := fakeObjects[this]
	return o.plugin, o.name
}

func ret(r vst3.Result) uintptr {
	return uintptr(uint32(r))
}

// fakeVtables fills the shared vtables once. Callbacks cannot be freed, so
// every fake plugin dispatches through the same set by object address.
func fakeVtables(t *testing.T) {
	t.Helper()
	vtblOnce.Do(func() {
		defer func() { vtblErr = recover() }()

		unknown := [3]uintptr{
			purego.NewCallback(fakeQueryInterface),
			purego.NewCallback(fakeAddRef),
			purego.NewCallback(fakeRelease),
		}
		notImplemented := purego.NewCallback(func(this uintptr) uintptr {
			return ret(vst3.ResultNotImplemented)
		})
		for _, vtbl := range []*[16]uintptr{&factoryVtbl, &componentVtbl, &processorVtbl} {
			copy(vtbl[:], unknown[:])
			for k := len(unknown); k < len(vtbl); k++ {
				vtbl[k] = notImplemented
			}
		}

		factoryVtbl[vst3.PluginFactoryGetFactoryInfo] = purego.NewCallback(fakeGetFactoryInfo)
		factoryVtbl[vst3.PluginFactoryCountClasses] = purego.NewCallback(fakeCountClasses)
		factoryVtbl[vst3.PluginFactoryGetClassInfo] = purego.NewCallback(fakeGetClassInfo)
		factoryVtbl[vst3.PluginFactoryCreateInstance] = purego.NewCallback(fakeCreateInstance)

		componentVtbl[vst3.PluginBaseInitialize] = purego.NewCallback(fakeInitialize)
		componentVtbl[vst3.PluginBaseTerminate] = purego.NewCallback(fakeTerminate)
		componentVtbl[vst3.ComponentGetBusCount] = purego.NewCallback(fakeGetBusCount)
		componentVtbl[vst3.ComponentGetBusInfo] = purego.NewCallback(fakeGetBusInfo)
		componentVtbl[vst3.ComponentActivateBus] = purego.NewCallback(fakeActivateBus)
		componentVtbl[vst3.ComponentSetActive] = purego.NewCallback(fakeSetActive)

		processorVtbl[vst3.AudioProcessorSetBusArrangements] = purego.NewCallback(fakeSetBusArrangements)
		processorVtbl[vst3.AudioProcessorCanProcessSampleSize] = purego.NewCallback(fakeCanProcessSampleSize)
		processorVtbl[vst3.AudioProcessorSetupProcessing] = purego.NewCallback(fakeSetupProcessing)
		processorVtbl[vst3.AudioProcessorSetProcessing] = purego.NewCallback(fakeSetProcessing)
		processorVtbl[vst3.AudioProcessorProcess] = purego.NewCallback(fakeProcess)
	})
	if vtblErr != nil {
		t.Skipf("native callbacks unavailable: %v", vtblErr)
	}
}

func fakeQueryInterface(this, iid, out uintptr) uintptr {
	f, _ := lookup(this)
	var obj *comObject
	switch *(*vst3.TUID)(ptr(iid)) {
	case vst3.IIDIAudioProcessor:
		obj, f.refs["processor"] = f.processor, f.refs["processor"]+1
	case vst3.IIDIComponent:
		obj, f.refs["component"] = f.component, f.refs["component"]+1
	default:
		*(*uintptr)(ptr(out)) = 0
		return ret(vst3.ResultNoInterface)
	}
	*(*uintptr)(ptr(out)) = uintptr(unsafe.Pointer(obj))
	return ret(vst3.ResultOK)
}

func fakeAddRef(this uintptr) uintptr {
	f, name := lookup(this)
	f.refs[name]++
	return uintptr(f.refs[name])
}

func fakeRelease(this uintptr) uintptr {
	f, name := lookup(this)
	f.refs[name]--
	f.record("release %s", name)
	return uintptr(f.refs[name])
}

func fakeGetFactoryInfo(this, info uintptr) uintptr {
	copy((*vst3.PFactoryInfo)(ptr(info)).Vendor[:], "Fake Audio")
	return ret(vst3.ResultOK)
}

func fakeCountClasses(this uintptr) uintptr {
	return 2
}

func fakeGetClassInfo(this, index, info uintptr) uintptr {
	c := (*vst3.PClassInfo)(ptr(info))
	switch index {
	case 0:
		c.CID = fakeControlCID
		copy(c.Category[:], "Component Controller Class")
		copy(c.Name[:], "Fake Gain Controller")
	case 1:
		c.CID = fakeCID
		copy(c.Category[:], vst3.CategoryAudioEffect)
		copy(c.Name[:], "Fake Gain")
	default:
		return ret(vst3.ResultInvalidArgument)
	}
	c.Cardinality = 0x7fffffff
	return ret(vst3.ResultOK)
}

func fakeCreateInstance(this, cid, iid, out uintptr) uintptr {
	f, _ := lookup(this)
	if *(*vst3.TUID)(ptr(cid)) != fakeCID || *(*vst3.TUID)(ptr(iid)) != vst3.IIDIComponent {
		*(*uintptr)(ptr(out)) = 0
		return ret(vst3.ResultNoInterface)
	}
	f.refs["component"] = 1
	f.record("createInstance")
	*(*uintptr)(ptr(out)) = uintptr(unsafe.Pointer(f.component))
	return ret(vst3.ResultOK)
}

func fakeInitialize(this, hostContext uintptr) uintptr {
	f, _ := lookup(this)
	f.record("initialize")
	return ret(vst3.ResultOK)
}

func fakeTerminate(this uintptr) uintptr {
	f, _ := lookup(this)
	f.record("terminate")
	return ret(vst3.ResultOK)
}

func (f *fakePlugin) buses(media, dir uintptr) []fakeBus {
	if int32(media) != vst3.MediaTypeAudio {
		return nil
	}
	if int32(dir) == vst3.BusDirectionInput {
		return f.inputs
	}
	return f.outputs
}

func fakeGetBusCount(this, media, dir uintptr) uintptr {
	f, _ := lookup(this)
	return uintptr(len(f.buses(media, dir)))
}

func fakeGetBusInfo(this, media, dir, index, info uintptr) uintptr {
	f, _ := lookup(this)
	buses := f.buses(media, dir)
	if int(index) >= len(buses) {
		return ret(vst3.ResultInvalidArgument)
	}
	b := buses[index]
	bi := (*vst3.BusInfo)(ptr(info))
	bi.MediaType = int32(media)
	bi.Direction = int32(dir)
	bi.ChannelCount = b.channels
	copy(bi.Name[:], utf16.Encode([]rune(b.name)))
	bi.BusType = b.busType
	bi.Flags = b.flags
	return ret(vst3.ResultOK)
}

func fakeActivateBus(this, media, dir, index, state uintptr) uintptr {
	f, _ := lookup(this)
	f.record("activateBus %d %d", dir, index)
	return ret(vst3.ResultOK)
}

func fakeSetActive(this, state uintptr) uintptr {
	f, _ := lookup(this)
	f.active = state&0xff != 0
	f.record("setActive %v", f.active)
	return ret(vst3.ResultOK)
}

func fakeSetBusArrangements(this, inputs, numIns, outputs, numOuts uintptr) uintptr {
	f, _ := lookup(this)
	f.record("setBusArrangements %d %d", numIns, numOuts)
	return ret(vst3.ResultOK)
}

func fakeCanProcessSampleSize(this, size uintptr) uintptr {
	f, _ := lookup(this)
	if f.rejectFloat || int32(size) != vst3.Sample32 {
		return ret(vst3.ResultFalse)
	}
	return ret(vst3.ResultOK)
}

func fakeSetupProcessing(this, setup uintptr) uintptr {
	f, _ := lookup(this)
	s := (*vst3.ProcessSetup)(ptr(setup))
	if f.active {
		f.violations = append(f.violations, "setupProcessing while active")
	}
	f.record("setupProcessing %g %d", s.SampleRate, s.MaxSamplesPerBlock)
	return ret(vst3.ResultOK)
}

func fakeSetProcessing(this, state uintptr) uintptr {
	f, _ := lookup(this)
	f.processing = state&0xff != 0
	if f.processing && !f.active {
		f.violations = append(f.violations, "setProcessing while inactive")
	}
	f.record("setProcessing %v", f.processing)
	return ret(vst3.ResultOK)
}

func fakeChannels(b vst3.AudioBusBuffers, n int) [][]float32 {
	if b.NumChannels == 0 || b.ChannelBuffers32 == nil {
		return nil
	}
	ptrs := unsafe.Slice((**float32)(b.ChannelBuffers32), b.NumChannels)
	out := make([][]float32, len(ptrs))
	for c, p := range ptrs {
		out[c] = unsafe.Slice(p, n)
	}
	return out
}

// fakeProcess writes the main input scaled by gain to the main output.
func fakeProcess(this, data uintptr) uintptr {
	f, _ := lookup(this)
	d := (*vst3.ProcessData)(ptr(data))
	n := int(d.NumSamples)
	if !f.processing {
		f.violations = append(f.violations, "process while not processing")
	}
	f.record("process %d", n)

	ins := unsafe.Slice((*vst3.AudioBusBuffers)(d.Inputs), d.NumInputs)
	outs := unsafe.Slice((*vst3.AudioBusBuffers)(d.Outputs), d.NumOutputs)
	f.aux = f.aux[:0]
	for k := 1; k < len(ins); k++ {
		f.aux = append(f.aux, ins[k])
	}
	if len(ins) == 0 || len(outs) == 0 {
		return ret(vst3.ResultOK)
	}

	in := fakeChannels(ins[0], n)
	for c, out := range fakeChannels(outs[0], n) {
		for s := range out {
			out[s] = in[c%len(in)][s] * f.gain
		}
	}
	return ret(vst3.ResultOK)
}

func stereoBuses() ([]fakeBus, []fakeBus) {
	return []fakeBus{{name: "Input", busType: vst3.BusTypeMain, channels: 2, flags: vst3.BusDefaultActive}},
		[]fakeBus{{name: "Output", busType: vst3.BusTypeMain, channels: 2, flags: vst3.BusDefaultActive}}
}

func fakeConfig() host.Config {
	cfg := host.DefaultConfig()
	cfg.BlockSize = 100
	return cfg
}

func quietLogger() *debug.Logger {
	return debug.New(io.Discard, "test")
}

func TestInstanceLifecycle(t *testing.T) {
	ins, outs := stereoBuses()
	ins = append(ins, fakeBus{name: "Sidechain", busType: vst3.BusTypeAux, channels: 0, flags: vst3.BusDefaultActive})
	f := newFakePlugin(t, ins, outs)

	inst, err := attach(f.module(), fakeConfig(), vst3.ProcessModeRealtime, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "Fake Gain", inst.Name())

	run := func(channels, frames int, rate float64) {
		t.Helper()
		ones, err := audio.Ones(channels, frames)
		require.NoError(t, err)

		out, err := inst.Process(context.Background(), ones, rate)
		require.NoError(t, err)
		require.True(t, out.SameShape(ones))
		for ch := 0; ch < out.Channels(); ch++ {
			for _, v := range out.Channel(ch) {
				require.Equal(t, float32(0.5), v)
			}
		}
	}
	run(2, 256, 44100)
	run(2, 128, 48000)
	run(2, 128, 48000)

	require.Len(t, f.aux, 1)
	assert.Equal(t, int32(0), f.aux[0].NumChannels)
	assert.Nil(t, f.aux[0].ChannelBuffers32)

	require.NoError(t, inst.Close())
	require.NoError(t, inst.Close())
	zeros, err := audio.Zeros(2, 8)
	require.NoError(t, err)
	_, err = inst.Process(context.Background(), zeros, 44100)
	assert.ErrorIs(t, err, host.ErrClosed)

	assert.Empty(t, f.violations)
	assert.Equal(t, []string{
		"createInstance",
		"initialize",
		"setBusArrangements 2 1",
		"activateBus 0 0",
		"activateBus 0 1",
		"activateBus 1 0",
		// 256 frames at 44.1 kHz
		"setupProcessing 44100 100",
		"setActive true",
		"setProcessing true",
		"process 100",
		"process 100",
		"process 56",
		// new rate
		"setProcessing false",
		"setActive false",
		"setupProcessing 48000 100",
		"setActive true",
		"setProcessing true",
		"process 100",
		"process 28",
		// same rate, reset
		"setProcessing false",
		"setActive false",
		"setActive true",
		"setProcessing true",
		"process 100",
		"process 28",
		// close
		"setProcessing false",
		"setActive false",
		"release processor",
		"terminate",
		"release component",
		"release factory",
	}, f.calls)
	assert.Equal(t, map[string]int{"factory": 0, "component": 0, "processor": 0}, f.refs)
}

func TestInstanceWithoutReset(t *testing.T) {
	ins, outs := stereoBuses()
	f := newFakePlugin(t, ins, outs)

	cfg := fakeConfig()
	cfg.Reset = false
	inst, err := attach(f.module(), cfg, vst3.ProcessModeOffline, quietLogger())
	require.NoError(t, err)
	defer inst.Close()

	for range 2 {
		ones, err := audio.Ones(2, 50)
		require.NoError(t, err)
		_, err = inst.Process(context.Background(), ones, 44100)
		require.NoError(t, err)
	}

	var activations int
	for _, c := range f.calls {
		if c == "setActive true" {
			activations++
		}
	}
	assert.Equal(t, 1, activations)
	assert.Empty(t, f.violations)
}

func TestInstanceNarrowOutput(t *testing.T) {
	ins, _ := stereoBuses()
	f := newFakePlugin(t, ins, []fakeBus{{name: "Mono Out", busType: vst3.BusTypeMain, channels: 1}})

	inst, err := attach(f.module(), fakeConfig(), vst3.ProcessModeRealtime, quietLogger())
	require.NoError(t, err)
	defer inst.Close()

	ones, err := audio.Ones(2, 64)
	require.NoError(t, err)
	out, err := inst.Process(context.Background(), ones, 44100)
	require.NoError(t, err)
	require.True(t, out.SameShape(ones))

	for _, v := range out.Channel(0) {
		assert.Equal(t, float32(0.5), v)
	}
	for _, v := range out.Channel(1) {
		assert.Zero(t, v)
	}
}

func TestInstanceInitFailureReleases(t *testing.T) {
	t.Run("SampleSizeRejected", func(t *testing.T) {
		ins, outs := stereoBuses()
		f := newFakePlugin(t, ins, outs)
		f.rejectFloat = true

		_, err := attach(f.module(), fakeConfig(), vst3.ProcessModeRealtime, quietLogger())
		require.ErrorContains(t, err, "32-bit")

		assert.Equal(t, []string{
			"createInstance",
			"initialize",
			"release processor",
			"terminate",
			"release component",
			"release factory",
		}, f.calls)
		assert.Equal(t, map[string]int{"factory": 0, "component": 0, "processor": 0}, f.refs)
	})

	t.Run("NoMainOutput", func(t *testing.T) {
		ins, _ := stereoBuses()
		f := newFakePlugin(t, ins, nil)

		_, err := attach(f.module(), fakeConfig(), vst3.ProcessModeRealtime, quietLogger())
		require.ErrorContains(t, err, "no main audio output")
		assert.Contains(t, f.calls, "terminate")
		assert.Equal(t, map[string]int{"factory": 0, "component": 0, "processor": 0}, f.refs)
	})

	t.Run("UnknownClass", func(t *testing.T) {
		ins, outs := stereoBuses()
		f := newFakePlugin(t, ins, outs)

		cfg := fakeConfig()
		cfg.Class = "Other"
		_, err := attach(f.module(), cfg, vst3.ProcessModeRealtime, quietLogger())
		require.ErrorContains(t, err, `"Other"`)
		assert.ErrorContains(t, err, "Fake Gain")
		assert.Equal(t, []string{"release factory"}, f.calls)
	})
}
