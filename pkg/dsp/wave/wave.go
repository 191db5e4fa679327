// Package wave provides stateless band-limited waveform generators.
package wave

import "math"

// Saw evaluates a Fourier-series sawtooth at phase (radians) using terms
// partials. The result spans roughly -1..1 and is 0 at phase 0.
func Saw(phase float32, terms int) float32 {
	p := float64(phase)
	sum := 0.0
	for n := 1; n <= terms; n++ {
		sign := 1.0
		if n%2 == 0 {
			sign = -1.0
		}
		nf := float64(n)
		sum += sign * math.Sin(p*nf) / nf
	}
	return float32(2.0 / math.Pi * sum)
}

// Sine returns sample index of a sine at freq Hz.
func Sine(freq, sampleRate float32, index int) float32 {
	return float32(math.Sin(float64(Phase(freq, sampleRate, index))))
}

// Phase returns the phase in radians of sample index for freq Hz.
func Phase(freq, sampleRate float32, index int) float32 {
	return 2.0 * math.Pi * freq * float32(index) / sampleRate
}

// SineWithGain writes a sine scaled sample-by-sample by curve into dst.
// dst must be at least len(curve) long.
func SineWithGain(dst []float32, freq, sampleRate float32, curve []float32) []float32 {
	dst = dst[:len(curve)]
	for i, g := range curve {
		dst[i] = Sine(freq, sampleRate, i) * g
	}
	return dst
}

// SawWithGain writes a terms-partial saw scaled by curve into dst.
// dst must be at least len(curve) long.
func SawWithGain(dst []float32, freq, sampleRate float32, terms int, curve []float32) []float32 {
	dst = dst[:len(curve)]
	for i, g := range curve {
		dst[i] = Saw(Phase(freq, sampleRate, i), terms) * g
	}
	return dst
}
