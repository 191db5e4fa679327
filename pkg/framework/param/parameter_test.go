package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subrou-audio/subrou/pkg/dsp/gain"
)

func TestParameterNormalization(t *testing.T) {
	p := New(2, "Pitch").Range(10, 2000).Default(440).Unit("Hz").MustBuild()

	assert.InDelta(t, (440.0-10)/1990, p.DefaultValue, 1e-12)
	assert.InDelta(t, 440.0, p.GetPlainValue(), 1e-9)

	p.SetPlainValue(5000)
	assert.Equal(t, 1.0, p.GetValue(), "clamped to max")
	assert.Equal(t, 2000.0, p.GetPlainValue())

	p.SetValue(-1)
	assert.Equal(t, 10.0, p.GetPlainValue())

	p.Reset()
	assert.InDelta(t, 440.0, p.GetPlainValue(), 1e-9)
}

func TestParameterDefaultBeforeRange(t *testing.T) {
	p := New(1, "X").Default(5).Range(0, 10).MustBuild()
	assert.Equal(t, 0.5, p.GetValue())
}

func TestSteppedParameterSnaps(t *testing.T) {
	p := New(3, "Output Channel").Range(0, 10).Steps(10).MustBuild()

	p.SetValue(0.26)
	assert.Equal(t, 3.0, p.GetPlainValue())
	assert.Equal(t, "3", p.FormatValue(p.GetValue()))
}

func TestParameterFormatting(t *testing.T) {
	p := New(1, "Post Gain").Range(0, 2).Default(1).Formatter(GainFormatter, GainParser).MustBuild()

	assert.Equal(t, "0.00 dB", p.FormatValue(p.GetValue()))
	assert.Equal(t, "-inf dB", p.FormatValue(0))

	norm, err := p.ParseValue("6 dB")
	require.NoError(t, err)
	assert.InDelta(t, 1.9953/2, norm, 1e-4)

	_, err = p.ParseValue("loud")
	assert.ErrorContains(t, err, "Post Gain")
}

func TestSkewedParameter(t *testing.T) {
	factor := GainSkewFactor(SilenceDB, 6)
	assert.InDelta(t, 0.1136, factor, 1e-3)

	p := New(0, "Post Gain").
		Range(0, gain.DbToLinear(6)).
		Skew(factor).
		Default(1).
		Formatter(GainFormatter, GainParser).
		MustBuild()

	assert.InDelta(t, gain.DbToLinear(-47), p.Denormalize(0.5), 1e-9, "dB midpoint sits mid-travel")
	assert.InDelta(t, 0.9245, p.DefaultValue, 1e-3)
	assert.InDelta(t, 1.0, p.GetPlainValue(), 1e-9)
	assert.Equal(t, "0.00 dB", p.FormatValue(p.GetValue()))

	for _, plain := range []float64{0, 0.001, 0.25, 1, 1.5, gain.DbToLinear(6)} {
		assert.InDelta(t, plain, p.Denormalize(p.Normalize(plain)), 1e-9, "plain %g", plain)
	}
	assert.Equal(t, 0.0, p.Normalize(0))
	assert.Equal(t, 1.0, p.Normalize(10))

	linear := New(1, "Linear").Range(0, 2).Skew(1).MustBuild()
	assert.Equal(t, 0.25, linear.Normalize(0.5))

	_, err := New(2, "Bad").Skew(-1).Build()
	assert.ErrorContains(t, err, "skew")
}

func TestFrequencyParser(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"440", 440},
		{"440 Hz", 440},
		{"1.5kHz", 1500},
		{" 2 khz ", 2000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FrequencyParser(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "1.50 kHz", FrequencyFormatter(1500))
	assert.Equal(t, "440.0 Hz", FrequencyFormatter(440))
}

func TestBuilderValidation(t *testing.T) {
	_, err := New(1, "Pitch").Range(10, 10).Build()
	assert.ErrorContains(t, err, "empty")

	_, err = New(1, "Pitch").Range(10, 2000).Default(5).Build()
	assert.ErrorContains(t, err, "outside")

	_, err = New(1, "").Build()
	assert.Error(t, err)

	p, err := New(1, "Meter").ReadOnly().Build()
	require.NoError(t, err)
	assert.NotZero(t, p.Flags&IsReadOnly)
	assert.Zero(t, p.Flags&CanAutomate)

	assert.Panics(t, func() { New(2, "Broken").Range(1, 0).MustBuild() })
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	postGain := New(0, "Post Gain").Range(0, 2).Default(1).Formatter(GainFormatter, GainParser).MustBuild()
	pitch := New(1, "Pitch").Range(10, 2000).Default(440).MustBuild()
	ch := New(2, "Output Channel").ShortName("Out Ch").Range(0, 10).Steps(10).MustBuild()

	require.NoError(t, r.Add(postGain, pitch, ch))
	assert.Equal(t, int32(3), r.Count())
	assert.Same(t, pitch, r.Get(1))
	assert.Nil(t, r.Get(7))
	assert.Equal(t, []string{"Post Gain", "Pitch", "Output Channel"}, r.Names())

	got, ok := r.Lookup("out ch")
	require.True(t, ok)
	assert.Same(t, ch, got)
	_, ok = r.Lookup("Volume")
	assert.False(t, ok)

	assert.Error(t, r.Add(New(1, "Duplicate").MustBuild()))
	assert.Error(t, r.Add(New(9, "PITCH").MustBuild()))
	assert.Equal(t, int32(3), r.Count())

	t.Run("SetText", func(t *testing.T) {
		require.NoError(t, r.SetText("pitch", "1000"))
		assert.InDelta(t, 1000, pitch.GetPlainValue(), 1e-9)

		require.NoError(t, r.SetText("Post Gain", "0 dB"))
		assert.InDelta(t, 1, postGain.GetPlainValue(), 1e-9)

		require.NoError(t, r.SetText("Out Ch", "3"))
		assert.Equal(t, 3.0, ch.GetPlainValue())

		assert.ErrorIs(t, r.SetText("Volume", "1"), ErrUnknown)
		assert.Error(t, r.SetText("Pitch", "high"))
	})

	t.Run("ReadOnly", func(t *testing.T) {
		ro := NewRegistry()
		require.NoError(t, ro.Add(New(5, "Meter").ReadOnly().MustBuild()))
		assert.ErrorContains(t, ro.SetText("meter", "0.5"), "read-only")
	})
}
