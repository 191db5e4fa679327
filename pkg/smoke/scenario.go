package smoke

import (
	"errors"
	"fmt"
	"slices"

	"github.com/subrou-audio/subrou/pkg/audio"
)

// Scenario is one synthetic input and the checks its output must pass.
type Scenario struct {
	Name       string  `koanf:"name" validate:"required"`
	Channels   int     `koanf:"channels" validate:"gte=1,lte=32"`
	Frames     int     `koanf:"frames" validate:"gte=1"`
	SampleRate float64 `koanf:"sample_rate" validate:"gt=0"`
	Fill       float32 `koanf:"fill"`
	Checks     []Check `koanf:"checks" validate:"min=1,dive,oneof=same_shape silent differs passthrough finite"`
}

// DefaultScenarios returns the three standard smoke scenarios:
// silence at 44.1 kHz, full scale at 44.1 kHz and full scale at 48 kHz with a
// shorter block.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{
			Name:       "silence",
			Channels:   2,
			Frames:     256,
			SampleRate: 44100,
			Fill:       0,
			Checks:     []Check{CheckSameShape, CheckSilent},
		},
		{
			Name:       "full-scale",
			Channels:   2,
			Frames:     256,
			SampleRate: 44100,
			Fill:       1,
			Checks:     []Check{CheckSameShape, CheckDiffers},
		},
		{
			Name:       "high-rate",
			Channels:   2,
			Frames:     128,
			SampleRate: 48000,
			Fill:       1,
			Checks:     []Check{CheckSameShape},
		},
	}
}

// Shape returns the input buffer shape.
func (s Scenario) Shape() audio.Shape {
	return audio.Shape{Channels: s.Channels, Frames: s.Frames}
}

// Validate checks the scenario without a struct validator.
func (s Scenario) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if s.Channels <= 0 || s.Frames <= 0 {
		errs = append(errs, fmt.Errorf("shape %s is empty", s.Shape()))
	}
	if s.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate %g is not positive", s.SampleRate))
	}
	if len(s.Checks) == 0 {
		errs = append(errs, errors.New("no checks"))
	}
	for _, c := range s.Checks {
		if !c.Valid() {
			errs = append(errs, fmt.Errorf("unknown check %q", c))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return nil
}

// orderedChecks returns the checks with same_shape first; value checks are
// meaningless on a buffer of the wrong shape.
func (s Scenario) orderedChecks() []Check {
	out := make([]Check, 0, len(s.Checks)+1)
	out = append(out, CheckSameShape)
	for _, c := range s.Checks {
		if c != CheckSameShape && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
