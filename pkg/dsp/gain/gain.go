// Package gain provides amplitude and decibel conversions.
package gain

import (
	"math"
)

// MinDB is treated as silence; conversions clamp to it.
const MinDB = -200.0

// LinearToDb converts a linear amplitude to decibels.
// Returns MinDB for values <= 0.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	return max(MinDB, 20.0*math.Log10(linear))
}

// DbToLinear converts decibels to a linear amplitude.
// Values <= MinDB return 0.
func DbToLinear(db float64) float64 {
	if db <= MinDB {
		return 0
	}
	return math.Pow(10.0, db/20.0)
}

// ApplyBuffer scales buffer in place.
func ApplyBuffer(buffer []float32, gain float32) {
	for i := range buffer {
		buffer[i] *= gain
	}
}

// AddScaled adds src*gain into dst over the shorter of the two lengths.
func AddScaled(dst, src []float32, gain float32) {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] += src[i] * gain
	}
}
