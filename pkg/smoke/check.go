package smoke

import (
	"fmt"
	"math"

	"github.com/subrou-audio/subrou/pkg/audio"
	"github.com/subrou-audio/subrou/pkg/framework/debug"
)

// Check names a postcondition on a scenario's output.
type Check string

const (
	// CheckSameShape requires the output shape to equal the input shape.
	CheckSameShape Check = "same_shape"
	// CheckSilent requires every output sample to be close to zero.
	CheckSilent Check = "silent"
	// CheckDiffers requires the output not to be close to the input.
	CheckDiffers Check = "differs"
	// CheckPassthrough requires the output to be close to the input.
	CheckPassthrough Check = "passthrough"
	// CheckFinite rejects NaN and infinite samples.
	CheckFinite Check = "finite"
)

// AllChecks lists every known check.
var AllChecks = []Check{CheckSameShape, CheckSilent, CheckDiffers, CheckPassthrough, CheckFinite}

// Valid reports whether c is a known check.
func (c Check) Valid() bool {
	switch c {
	case CheckSameShape, CheckSilent, CheckDiffers, CheckPassthrough, CheckFinite:
		return true
	}
	return false
}

// evaluate returns "" when c holds and a description of the violation
// otherwise. out must already have the shape of in for value checks.
func evaluate(c Check, in, out *audio.Buffer, tol audio.Tolerance) string {
	switch c {
	case CheckSameShape:
		if out == nil {
			return "plugin returned no buffer"
		}
		if !in.SameShape(out) {
			return fmt.Sprintf("output shape %s, want %s", out.Shape(), in.Shape())
		}

	case CheckSilent:
		if out.AllCloseScalar(0, tol) {
			return ""
		}
		zeros, _ := audio.Zeros(out.Channels(), out.Frames())
		return firstDifference(out, zeros, tol)

	case CheckDiffers:
		if out.AllClose(in, tol) {
			diff, _, _ := out.MaxAbsDiff(in)
			return fmt.Sprintf("output matches input within tolerance (max difference %g)", diff)
		}

	case CheckPassthrough:
		if !out.AllClose(in, tol) {
			return firstDifference(out, in, tol)
		}

	case CheckFinite:
		analyzer := debug.NewAudioAnalyzer()
		for ch := 0; ch < out.Channels(); ch++ {
			r := analyzer.Analyze(out.Channel(ch))
			if !r.Finite() {
				return fmt.Sprintf("channel %d: %d NaN, %d Inf, first at sample %d",
					ch, r.NaNCount, r.InfCount, r.FirstNonFinite)
			}
		}

	default:
		return fmt.Sprintf("unknown check %q", c)
	}
	return ""
}

// firstDifference describes the first channel of got that is not close to want.
func firstDifference(got, want *audio.Buffer, tol audio.Tolerance) string {
	atol := float32(math.Max(tol.ATol, math.SmallestNonzeroFloat32))
	for ch := 0; ch < got.Channels(); ch++ {
		g, w := got.Channel(ch), want.Channel(ch)
		for i := range g {
			if !tol.Close(g[i], w[i]) {
				return fmt.Sprintf("channel %d: %s", ch, debug.CompareBuffers(g, w, atol))
			}
		}
	}
	return ""
}
