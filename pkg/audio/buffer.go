// Package audio provides the fixed-shape sample buffers exchanged with plugins.
package audio

import (
	"errors"
	"fmt"
	"math"
)

// ErrShape is returned when a buffer cannot be created with the requested shape.
var ErrShape = errors.New("audio: invalid buffer shape")

// Shape is the (channels, frames) extent of a buffer.
type Shape struct {
	Channels int
	Frames   int
}

// String formats the shape like a numpy tuple.
func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Channels, s.Frames)
}

// Buffer holds channel-major float32 samples backed by one contiguous slice.
type Buffer struct {
	data     []float32
	channels [][]float32
	frames   int
}

// New allocates a zeroed buffer of the given shape.
func New(channels, frames int) (*Buffer, error) {
	if channels <= 0 || frames <= 0 {
		return nil, fmt.Errorf("%w: %d channels x %d frames", ErrShape, channels, frames)
	}

	b := &Buffer{
		data:     make([]float32, channels*frames),
		channels: make([][]float32, channels),
		frames:   frames,
	}
	for ch := range b.channels {
		b.channels[ch] = b.data[ch*frames : (ch+1)*frames : (ch+1)*frames]
	}
	return b, nil
}

// Zeros allocates a silent buffer.
func Zeros(channels, frames int) (*Buffer, error) {
	return New(channels, frames)
}

// Ones allocates a buffer filled with full-scale 1.0 samples.
func Ones(channels, frames int) (*Buffer, error) {
	b, err := New(channels, frames)
	if err != nil {
		return nil, err
	}
	b.Fill(1)
	return b, nil
}

// FromChannels copies per-channel slices into a new buffer.
// All channels must have the same length.
func FromChannels(src [][]float32) (*Buffer, error) {
	if len(src) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrShape)
	}
	frames := len(src[0])
	b, err := New(len(src), frames)
	if err != nil {
		return nil, err
	}
	for ch, samples := range src {
		if len(samples) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d", ErrShape, ch, len(samples), frames)
		}
		copy(b.channels[ch], samples)
	}
	return b, nil
}

// Fill sets every sample to v in place.
func (b *Buffer) Fill(v float32) {
	for i := range b.data {
		b.data[i] = v
	}
}

// Shape returns the buffer extent.
func (b *Buffer) Shape() Shape {
	return Shape{Channels: len(b.channels), Frames: b.frames}
}

// Channels returns the number of channels.
func (b *Buffer) Channels() int {
	return len(b.channels)
}

// Frames returns the number of frames per channel.
func (b *Buffer) Frames() int {
	return b.frames
}

// Channel returns the samples of one channel, or nil if out of range.
// The returned slice aliases the buffer.
func (b *Buffer) Channel(index int) []float32 {
	if index < 0 || index >= len(b.channels) {
		return nil
	}
	return b.channels[index]
}

// Data returns the channel slices. They alias the buffer.
func (b *Buffer) Data() [][]float32 {
	return b.channels
}

// Samples returns the contiguous backing slice in channel-major order.
func (b *Buffer) Samples() []float32 {
	return b.data
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	c, _ := New(len(b.channels), b.frames)
	copy(c.data, b.data)
	return c
}

// SameShape reports whether both buffers have identical extents.
func (b *Buffer) SameShape(other *Buffer) bool {
	if other == nil {
		return false
	}
	return b.Shape() == other.Shape()
}

// AllClose reports whether every sample of b is within tol of the matching
// sample of other. Buffers of different shape are never close.
func (b *Buffer) AllClose(other *Buffer, tol Tolerance) bool {
	if !b.SameShape(other) {
		return false
	}
	for i, v := range b.data {
		if !tol.Close(v, other.data[i]) {
			return false
		}
	}
	return true
}

// AllCloseScalar reports whether every sample is within tol of v.
func (b *Buffer) AllCloseScalar(v float32, tol Tolerance) bool {
	for _, s := range b.data {
		if !tol.Close(s, v) {
			return false
		}
	}
	return true
}

// MaxAbsDiff returns the largest absolute sample difference and its position.
// The frame index is -1 when the shapes differ.
func (b *Buffer) MaxAbsDiff(other *Buffer) (diff float64, channel, frame int) {
	if !b.SameShape(other) {
		return math.Inf(1), -1, -1
	}
	for ch := range b.channels {
		for i, v := range b.channels[ch] {
			d := math.Abs(float64(v) - float64(other.channels[ch][i]))
			if d > diff || math.IsNaN(d) {
				diff, channel, frame = d, ch, i
			}
		}
	}
	return diff, channel, frame
}
