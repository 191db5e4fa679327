package analysis

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// WindowFunc selects the analysis window.
type WindowFunc int

const (
	RectangularWindow WindowFunc = iota
	HannWindow
	HammingWindow
	BlackmanWindow
)

// Spectrum computes magnitude spectra of real blocks.
// A Spectrum is not safe for concurrent use.
type Spectrum struct {
	size   int
	plan   *algofft.Plan[complex128]
	window []float64

	buf []complex128
	re  []float64
	im  []float64
	mag []float64
}

// NewSpectrum creates an analyzer. size is rounded up to a power of two;
// shorter blocks are zero padded.
func NewSpectrum(size int, window WindowFunc) (*Spectrum, error) {
	if size < 2 {
		return nil, fmt.Errorf("analysis: spectrum size %d too small", size)
	}
	n := nextPowerOfTwo(size)

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("analysis: create fft plan: %w", err)
	}

	bins := n/2 + 1
	s := &Spectrum{
		size:   n,
		plan:   plan,
		window: windowCoefficients(window, n),
		buf:    make([]complex128, n),
		re:     make([]float64, bins),
		im:     make([]float64, bins),
		mag:    make([]float64, bins),
	}
	return s, nil
}

// Size returns the FFT length.
func (s *Spectrum) Size() int {
	return s.size
}

// Magnitudes returns the n/2+1 bin magnitudes of samples with the mean
// removed. The returned slice is reused by the next call.
func (s *Spectrum) Magnitudes(samples []float32) ([]float64, error) {
	n := min(len(samples), s.size)

	mean := 0.0
	for i := 0; i < n; i++ {
		mean += float64(samples[i])
	}
	if n > 0 {
		mean /= float64(n)
	}

	for i := range s.buf {
		if i < n {
			s.buf[i] = complex((float64(samples[i])-mean)*s.window[i], 0)
		} else {
			s.buf[i] = 0
		}
	}

	if err := s.plan.Forward(s.buf, s.buf); err != nil {
		return nil, fmt.Errorf("analysis: forward fft: %w", err)
	}

	for i := range s.re {
		s.re[i] = real(s.buf[i])
		s.im[i] = imag(s.buf[i])
	}
	vecmath.Magnitude(s.mag, s.re, s.im)

	return s.mag, nil
}

// PeakFrequency returns the frequency and magnitude of the strongest non-DC bin.
// Silence yields (0, 0).
func (s *Spectrum) PeakFrequency(samples []float32, sampleRate float64) (freq, magnitude float64, err error) {
	mags, err := s.Magnitudes(samples)
	if err != nil {
		return 0, 0, err
	}

	peakBin := 0
	for i := 1; i < len(mags); i++ {
		if mags[i] > magnitude {
			magnitude = mags[i]
			peakBin = i
		}
	}
	if peakBin == 0 {
		return 0, 0, nil
	}
	return float64(peakBin) * sampleRate / float64(s.size), magnitude, nil
}

func windowCoefficients(window WindowFunc, n int) []float64 {
	w := make([]float64, n)
	den := float64(n - 1)
	for i := range w {
		x := 2.0 * math.Pi * float64(i) / den
		switch window {
		case HannWindow:
			w[i] = 0.5 * (1.0 - math.Cos(x))
		case HammingWindow:
			w[i] = 0.54 - 0.46*math.Cos(x)
		case BlackmanWindow:
			w[i] = math.Max(0, 0.42-0.5*math.Cos(x)+0.08*math.Cos(2*x))
		default:
			w[i] = 1.0
		}
	}
	return w
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
