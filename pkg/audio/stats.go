package audio

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Stats summarises the level of one channel.
type Stats struct {
	Peak float64
	RMS  float64
}

// ChannelStats computes peak and RMS for every channel.
func (b *Buffer) ChannelStats() []Stats {
	out := make([]Stats, len(b.channels))
	work := make([]float64, b.frames)
	squares := make([]float64, b.frames)

	for ch, samples := range b.channels {
		peak := 0.0
		for i, s := range samples {
			v := float64(s)
			work[i] = v
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}

		vecmath.MulBlock(squares, work, work)
		sum := 0.0
		for _, sq := range squares {
			sum += sq
		}

		out[ch] = Stats{Peak: peak, RMS: math.Sqrt(sum / float64(b.frames))}
	}
	return out
}
