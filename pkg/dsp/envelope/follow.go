package envelope

import "fmt"

// Follow writes a fresh peak envelope of samples into dst, starting from
// silence. Times are in milliseconds; a non-positive time is instantaneous.
// dst must be at least len(samples) long.
func Follow(dst, samples []float32, attackMs, releaseMs float32, sampleRate float64) []float32 {
	d := NewFollower(sampleRate, attackMs, releaseMs)
	dst = dst[:len(samples)]
	d.Process(samples, dst)
	return dst
}

// NewFollower returns the detector used by Follow: logarithmic peak
// follower without capture. Call Reset to restart it from silence.
func NewFollower(sampleRate float64, attackMs, releaseMs float32) *Detector {
	d := NewDetector(sampleRate, ModePeak)
	d.SetType(TypeLogarithmic)
	d.SetPeakCapture(false)
	d.SetTimeConstants(float64(attackMs)*0.001, float64(releaseMs)*0.001)
	return d
}

// ApplyGainCurve multiplies samples by curve element-wise.
// It panics if the lengths differ.
func ApplyGainCurve(samples, curve []float32) {
	if len(samples) != len(curve) {
		panic(fmt.Sprintf("envelope: gain curve length %d does not match %d samples", len(curve), len(samples)))
	}
	for i, g := range curve {
		samples[i] *= g
	}
}
