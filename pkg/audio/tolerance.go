package audio

import "math"

// Tolerance mirrors numpy's allclose: |a-b| <= ATol + RTol*|b|.
type Tolerance struct {
	RTol float64 `koanf:"rtol" validate:"gte=0"`
	ATol float64 `koanf:"atol" validate:"gte=0"`
}

// DefaultTolerance uses numpy's allclose defaults.
var DefaultTolerance = Tolerance{RTol: 1e-5, ATol: 1e-8}

// Close compares a single pair of samples. NaN is never close to anything.
func (t Tolerance) Close(a, b float32) bool {
	x, y := float64(a), float64(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	if math.IsInf(x, 0) || math.IsInf(y, 0) {
		return x == y
	}
	return math.Abs(x-y) <= t.ATol+t.RTol*math.Abs(y)
}
