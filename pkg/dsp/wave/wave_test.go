package wave

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSawZeroPhase(t *testing.T) {
	assert.InDelta(t, 0, Saw(0, 10), 1e-6)
}

func TestSawConvergesWithMoreTerms(t *testing.T) {
	low := Saw(math.Pi/2, 1)
	high := Saw(math.Pi/2, 50)

	diffLow := math.Abs(float64(low) - 0.5)
	diffHigh := math.Abs(float64(high) - 0.5)

	assert.Less(t, diffHigh, diffLow)
	assert.Less(t, diffHigh, 0.1)
}

func TestSawQuarterPhase(t *testing.T) {
	tests := []struct {
		name  string
		phase float32
		want  float64
	}{
		{name: "positive", phase: math.Pi / 2, want: 0.5},
		{name: "negative", phase: -math.Pi / 2, want: -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Saw(tt.phase, 200), 0.01)
		})
	}
}

func TestSineQuarterCycle(t *testing.T) {
	// 1 Hz at 4 Hz sample rate peaks on the second sample.
	assert.InDelta(t, 1.0, Sine(1, 4, 1), 1e-6)
}

func TestWithGainLengths(t *testing.T) {
	curve := []float32{0, 0.5, 1}
	dst := make([]float32, 8)

	assert.Len(t, SineWithGain(dst, 1, 3, curve), len(curve))
	assert.Len(t, SawWithGain(dst, 100, 44100, 3, []float32{1, 1, 1, 1, 1}), 5)
}

func TestSawWithGainMatchesSaw(t *testing.T) {
	curve := []float32{1, 1, 1}
	out := SawWithGain(make([]float32, 3), 10, 10, 3, curve)

	require.Len(t, out, 3)
	for i := range out {
		assert.Equal(t, Saw(Phase(10, 10, i), 3), out[i])
	}
}
