package subrou

import (
	"math"

	"github.com/subrou-audio/subrou/pkg/dsp/envelope"
	"github.com/subrou-audio/subrou/pkg/dsp/gain"
	"github.com/subrou-audio/subrou/pkg/dsp/wave"
	"github.com/subrou-audio/subrou/pkg/framework/bus"
	"github.com/subrou-audio/subrou/pkg/framework/param"
	"github.com/subrou-audio/subrou/pkg/framework/plugin"
	"github.com/subrou-audio/subrou/pkg/framework/process"
)

// Parameter IDs
const (
	ParamPostGain uint32 = iota
	ParamPitch
	ParamOutputChannel
)

const (
	sawTerms = 3

	followAttackMs  = 10
	followReleaseMs = 10

	maxPostGainDb       = 6
	postGainSmoothingMs = 10

	maxOutputChannel = 10
)

// Processor renders the sub-bass saw.
type Processor struct {
	*plugin.BaseProcessor

	postGain *param.SmoothedParameter
	follower *envelope.Detector
}

// NewProcessor creates a processor with a stereo main bus.
func NewProcessor() *Processor {
	p := &Processor{
		BaseProcessor: plugin.NewBaseProcessor(bus.NewEffectStereo()),
	}

	postGain := param.New(ParamPostGain, "Post Gain").
		Range(0, gain.DbToLinear(maxPostGainDb)).
		Skew(param.GainSkewFactor(param.SilenceDB, maxPostGainDb)).
		Default(1).
		Unit("dB").
		Formatter(param.GainFormatter, param.GainParser).
		MustBuild()
	pitch := param.New(ParamPitch, "Pitch").
		Range(10, 2000).
		Default(440).
		Unit("Hz").
		Formatter(param.FrequencyFormatter, param.FrequencyParser).
		MustBuild()
	outputChannel := param.New(ParamOutputChannel, "Output Channel").
		ShortName("Out Ch").
		Range(0, maxOutputChannel).
		Steps(maxOutputChannel).
		Formatter(param.IntegerFormatter, nil).
		MustBuild()

	// Registering fresh IDs cannot fail.
	_ = p.Parameters().Add(postGain, pitch, outputChannel)

	p.postGain = param.NewSmoothedParameter(postGain, param.LogarithmicSmoothing, postGainSmoothingMs)
	p.follower = envelope.NewFollower(44100, followAttackMs, followReleaseMs)

	p.OnInitialize(func(sampleRate float64, _ int32) error {
		p.follower.SetSampleRate(sampleRate)
		p.postGain.UpdateSampleRate(sampleRate)
		p.postGain.Reset()
		return nil
	})
	p.OnReset(func() {
		p.follower.Reset()
		p.postGain.Reset()
	})

	return p
}

// SetPostGain sets the post gain as a linear factor and starts smoothing towards it.
func (p *Processor) SetPostGain(linear float64) {
	p.postGain.SetPlainValue(linear)
}

// ProcessAudio mixes or routes the envelope-scaled saw onto the output.
func (p *Processor) ProcessAudio(ctx *process.Context) {
	n := ctx.NumSamples()
	if n == 0 {
		return
	}

	ctx.CopyInputToOutput()

	sampleRate := ctx.SampleRate
	if sampleRate <= 0 {
		sampleRate = p.SampleRate()
	}

	// Envelope of the mono input, restarted from silence every block.
	mono := ctx.SumToMono(ctx.WorkBuffer())
	curve := ctx.TempBuffer()
	p.follower.Reset()
	p.follower.Process(mono, curve)

	freq := float32(ctx.ParamPlain(ParamPitch))
	post := float32(p.postGain.Next())

	// mono is no longer needed; reuse it for the saw.
	saw := wave.SawWithGain(mono, freq, float32(sampleRate), sawTerms, curve)
	gain.ApplyBuffer(saw, post)

	outCh := int(math.Round(ctx.ParamPlain(ParamOutputChannel)))
	if outCh == 0 {
		for _, out := range ctx.Output {
			gain.AddScaled(out, saw, 1)
		}
		return
	}
	if idx := outCh - 1; idx < ctx.NumOutputChannels() {
		copy(ctx.Output[idx], saw)
	}
}
