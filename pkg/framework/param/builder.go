package param

import (
	"fmt"
	"math"

	"github.com/subrou-audio/subrou/pkg/dsp/gain"
)

// SilenceDB is the level GainSkewFactor treats as a gain of zero.
const SilenceDB = -100.0

// Builder assembles a Parameter. Range and default are plain values and
// are checked at Build.
type Builder struct {
	p        Parameter
	def      float64
	hasDef   bool
	readOnly bool
}

// New starts an automatable parameter over 0..1.
func New(id uint32, name string) *Builder {
	return &Builder{p: Parameter{
		ID:        id,
		Name:      name,
		ShortName: name,
		Max:       1,
		Flags:     CanAutomate,
	}}
}

// ShortName sets the abbreviated display name.
func (b *Builder) ShortName(name string) *Builder {
	b.p.ShortName = name
	return b
}

// Range sets the plain bounds.
func (b *Builder) Range(lo, hi float64) *Builder {
	b.p.Min, b.p.Max = lo, hi
	return b
}

// Default sets the plain default.
func (b *Builder) Default(plain float64) *Builder {
	b.def, b.hasDef = plain, true
	return b
}

// Unit sets the display unit.
func (b *Builder) Unit(unit string) *Builder {
	b.p.Unit = unit
	return b
}

// Steps makes the parameter discrete with count steps between the bounds.
func (b *Builder) Steps(count int32) *Builder {
	b.p.StepCount = count
	return b
}

// Skew sets the normalized mapping exponent. See Parameter.Skew.
func (b *Builder) Skew(factor float64) *Builder {
	b.p.Skew = factor
	return b
}

// GainSkewFactor returns the skew that places the decibel midpoint of
// minDB..maxDB at the middle of a linear gain range. minDB at or below
// SilenceDB stands for a gain of zero.
func GainSkewFactor(minDB, maxDB float64) float64 {
	toGain := func(db float64) float64 {
		if db <= SilenceDB {
			return 0
		}
		return gain.DbToLinear(db)
	}
	lo, hi := toGain(minDB), toGain(maxDB)
	mid := toGain((minDB + maxDB) / 2)
	return math.Log(0.5) / math.Log((mid-lo)/(hi-lo))
}

// ReadOnly excludes the parameter from automation and text overrides.
func (b *Builder) ReadOnly() *Builder {
	b.readOnly = true
	return b
}

// Formatter sets display formatting and text parsing in plain units.
// A nil parse falls back to a bare float.
func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.p.formatFunc, b.p.parseFunc = format, parse
	return b
}

// Build validates the bounds and returns the parameter at its default.
func (b *Builder) Build() (*Parameter, error) {
	p := &Parameter{
		ID:        b.p.ID,
		Name:      b.p.Name,
		ShortName: b.p.ShortName,
		Unit:      b.p.Unit,
		Min:       b.p.Min,
		Max:       b.p.Max,
		StepCount: b.p.StepCount,
		Flags:     b.p.Flags,
		Skew:      b.p.Skew,

		formatFunc: b.p.formatFunc,
		parseFunc:  b.p.parseFunc,
	}
	if b.readOnly {
		p.Flags = (p.Flags | IsReadOnly) &^ CanAutomate
	}

	switch {
	case p.Name == "":
		return nil, fmt.Errorf("parameter %d: empty name", p.ID)
	case p.Max <= p.Min:
		return nil, fmt.Errorf("parameter %q: range %g..%g is empty", p.Name, p.Min, p.Max)
	case p.StepCount < 0:
		return nil, fmt.Errorf("parameter %q: negative step count", p.Name)
	case p.Skew < 0 || math.IsNaN(p.Skew) || math.IsInf(p.Skew, 0):
		return nil, fmt.Errorf("parameter %q: invalid skew %g", p.Name, p.Skew)
	}
	if b.hasDef {
		if b.def < p.Min || b.def > p.Max {
			return nil, fmt.Errorf("parameter %q: default %g outside %g..%g", p.Name, b.def, p.Min, p.Max)
		}
		p.DefaultValue = p.Normalize(b.def)
	}
	p.Reset()
	return p, nil
}

// MustBuild is Build for parameters declared in code.
func (b *Builder) MustBuild() *Parameter {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}
