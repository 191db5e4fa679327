package param

import (
	"math"
)

// SmoothingType defines different parameter smoothing algorithms.
type SmoothingType int

const (
	// LinearSmoothing uses linear interpolation
	LinearSmoothing SmoothingType = iota
	// ExponentialSmoothing uses a one-pole filter
	ExponentialSmoothing
	// LogarithmicSmoothing interpolates linearly in log space, for gain and frequency
	LogarithmicSmoothing
)

// logFloor keeps logarithmic smoothing away from log(0).
const logFloor = 1e-6

// Smoother ramps a value towards a target to prevent zipper noise.
type Smoother struct {
	smoothingType SmoothingType
	current       float64
	target        float64
	rate          float64 // samples for linear/log, coefficient for exponential
	threshold     float64
	isSmoothing   bool
	remaining     int

	step float64

	logCurrent float64
	logTarget  float64
	logStep    float64
}

// NewSmoother creates a new parameter smoother.
// rate: ramp length in samples for linear and logarithmic smoothing,
// pole coefficient (0.9-0.999) for exponential smoothing.
func NewSmoother(smoothingType SmoothingType, rate float64) *Smoother {
	return &Smoother{
		smoothingType: smoothingType,
		rate:          rate,
		threshold:     0.0001,
	}
}

// SetTarget sets the target value for smoothing.
func (s *Smoother) SetTarget(target float64) {
	if math.Abs(target-s.target) < s.threshold {
		return
	}

	s.target = target
	if s.rate <= 0 {
		s.current = target
		s.isSmoothing = false
		return
	}
	s.isSmoothing = true
	s.remaining = int(math.Ceil(s.rate))

	switch s.smoothingType {
	case LinearSmoothing:
		s.step = (target - s.current) / s.rate

	case LogarithmicSmoothing:
		s.logCurrent = math.Log(math.Max(s.current, logFloor))
		s.logTarget = math.Log(math.Max(target, logFloor))
		s.logStep = (s.logTarget - s.logCurrent) / s.rate
	}
}

// Next returns the next smoothed value.
func (s *Smoother) Next() float64 {
	if !s.isSmoothing {
		return s.current
	}

	switch s.smoothingType {
	case ExponentialSmoothing:
		s.current += (s.target - s.current) * (1.0 - s.rate)
		if math.Abs(s.current-s.target) < s.threshold {
			s.finish()
		}

	case LinearSmoothing:
		s.current += s.step
		s.remaining--
		if s.remaining <= 0 {
			s.finish()
		}

	case LogarithmicSmoothing:
		s.logCurrent += s.logStep
		s.remaining--
		if s.remaining <= 0 {
			s.finish()
		} else {
			s.current = math.Exp(s.logCurrent)
		}
	}

	return s.current
}

func (s *Smoother) finish() {
	s.current = s.target
	s.isSmoothing = false
}

// Current returns the value without advancing.
func (s *Smoother) Current() float64 {
	return s.current
}

// IsSmoothing returns true if the smoother is currently smoothing.
func (s *Smoother) IsSmoothing() bool {
	return s.isSmoothing
}

// Reset jumps to value and stops any ramp.
func (s *Smoother) Reset(value float64) {
	s.current = value
	s.target = value
	s.isSmoothing = false
}

// SetRate updates the smoothing rate.
func (s *Smoother) SetRate(rate float64) {
	s.rate = rate
}

// SmoothedParameter wraps a Parameter with smoothing capability.
type SmoothedParameter struct {
	*Parameter
	smoother *Smoother
	timeMs   float64
}

// NewSmoothedParameter creates a parameter smoothed over timeMs once a
// sample rate is known.
func NewSmoothedParameter(param *Parameter, smoothingType SmoothingType, timeMs float64) *SmoothedParameter {
	sp := &SmoothedParameter{
		Parameter: param,
		smoother:  NewSmoother(smoothingType, 0),
		timeMs:    timeMs,
	}
	sp.smoother.Reset(param.GetPlainValue())
	return sp
}

// SetValue sets the normalized value and retargets the smoother.
func (sp *SmoothedParameter) SetValue(value float64) {
	sp.Parameter.SetValue(value)
	sp.smoother.SetTarget(sp.GetPlainValue())
}

// SetPlainValue sets the plain value and retargets the smoother.
func (sp *SmoothedParameter) SetPlainValue(plain float64) {
	sp.SetValue(sp.Normalize(plain))
}

// Next advances the smoother by one step and returns the plain value.
func (sp *SmoothedParameter) Next() float64 {
	return sp.smoother.Next()
}

// IsSmoothing reports whether a ramp is in progress.
func (sp *SmoothedParameter) IsSmoothing() bool {
	return sp.smoother.IsSmoothing()
}

// Reset snaps the smoother to the current parameter value.
func (sp *SmoothedParameter) Reset() {
	sp.smoother.Reset(sp.GetPlainValue())
}

// UpdateSampleRate converts the smoothing time into a rate for sampleRate.
func (sp *SmoothedParameter) UpdateSampleRate(sampleRate float64) {
	samples := sampleRate * sp.timeMs / 1000.0
	switch sp.smoother.smoothingType {
	case LinearSmoothing, LogarithmicSmoothing:
		sp.smoother.SetRate(samples)
	case ExponentialSmoothing:
		// -60 dB after timeMs
		if samples > 0 {
			sp.smoother.SetRate(math.Exp(-6.908 / samples))
		} else {
			sp.smoother.SetRate(0)
		}
	}
}
