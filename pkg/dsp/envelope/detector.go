// Package envelope provides envelope followers for level-driven processing.
package envelope

import (
	"math"
)

// DetectorMode defines how the input level is measured.
type DetectorMode int

const (
	// ModePeak follows the rectified signal
	ModePeak DetectorMode = iota
	// ModeRMS follows a sliding-window RMS level
	ModeRMS
)

// DetectorType defines the attack/release coefficient curve.
type DetectorType int

const (
	// TypeLinear reaches ~63% of a step within the time constant
	TypeLinear DetectorType = iota
	// TypeLogarithmic reaches ~90% of a step within the time constant
	TypeLogarithmic
)

// Detector is a one-pole attack/release envelope follower.
type Detector struct {
	sampleRate float64
	mode       DetectorMode
	detType    DetectorType

	attack  float64 // seconds
	release float64 // seconds

	attackCoef  float64
	releaseCoef float64

	// capture jumps straight to sharp peaks instead of ramping towards them
	capture bool

	envelope float64

	rmsWindow    []float64
	rmsIndex     int
	rmsSum       float64
	rmsWindowLen int
}

// NewDetector creates a detector with 1ms attack and 100ms release.
func NewDetector(sampleRate float64, mode DetectorMode) *Detector {
	d := &Detector{
		sampleRate:   sampleRate,
		mode:         mode,
		detType:      TypeLinear,
		attack:       0.001,
		release:      0.100,
		capture:      mode == ModePeak,
		rmsWindowLen: max(1, int(sampleRate*0.003)),
	}
	if mode == ModeRMS {
		d.rmsWindow = make([]float64, d.rmsWindowLen)
	}
	d.updateCoefficients()
	return d
}

// SetType sets the coefficient curve.
func (d *Detector) SetType(detType DetectorType) {
	d.detType = detType
	d.updateCoefficients()
}

// SetPeakCapture toggles the instantaneous jump to sharp peaks.
// Disable it for a strict one-pole follower.
func (d *Detector) SetPeakCapture(enabled bool) {
	d.capture = enabled
}

// SetTimeConstants sets attack and release in seconds.
// Non-positive values make that stage instantaneous.
func (d *Detector) SetTimeConstants(attack, release float64) {
	d.attack = attack
	d.release = release
	d.updateCoefficients()
}

// SetSampleRate updates the rate the coefficients are derived from.
func (d *Detector) SetSampleRate(sampleRate float64) {
	d.sampleRate = sampleRate
	d.updateCoefficients()
}

func (d *Detector) updateCoefficients() {
	k := 1.0
	if d.detType == TypeLogarithmic {
		k = 2.2
	}
	d.attackCoef = coefficient(k, d.attack, d.sampleRate)
	d.releaseCoef = coefficient(k, d.release, d.sampleRate)
}

func coefficient(k, seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return 1
	}
	return 1.0 - math.Exp(-k/(seconds*sampleRate))
}

// Detect feeds one sample and returns the updated envelope.
func (d *Detector) Detect(input float32) float32 {
	var level float64

	switch d.mode {
	case ModePeak:
		level = math.Abs(float64(input))
	case ModeRMS:
		sq := float64(input) * float64(input)
		d.rmsSum += sq - d.rmsWindow[d.rmsIndex]
		d.rmsWindow[d.rmsIndex] = sq
		d.rmsIndex = (d.rmsIndex + 1) % d.rmsWindowLen
		level = math.Sqrt(math.Max(0, d.rmsSum/float64(d.rmsWindowLen)))
	}

	if level > d.envelope {
		d.envelope += (level - d.envelope) * d.attackCoef
		if d.capture && (d.attackCoef > 0.5 || level > d.envelope*2.0) {
			d.envelope = level
		}
	} else {
		d.envelope += (level - d.envelope) * d.releaseCoef
	}

	return float32(d.envelope)
}

// Process writes the envelope of input into output.
func (d *Detector) Process(input, output []float32) {
	for i := range input {
		output[i] = d.Detect(input[i])
	}
}

// Envelope returns the current envelope value.
func (d *Detector) Envelope() float32 {
	return float32(d.envelope)
}

// Reset clears the envelope and RMS history.
func (d *Detector) Reset() {
	d.envelope = 0
	for i := range d.rmsWindow {
		d.rmsWindow[i] = 0
	}
	d.rmsSum = 0
	d.rmsIndex = 0
}
