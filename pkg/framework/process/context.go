// Package process provides the per-block context a host hands to a processor.
package process

import (
	"github.com/subrou-audio/subrou/pkg/framework/param"
)

// Context carries one block of audio. Hosts Bind slices into it before
// each ProcessAudio call; the context owns only its scratch buffers, which
// are sized once so processing does not allocate.
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	// AuxInputs holds one slice of channels per declared aux input bus.
	AuxInputs [][][]float32

	scratch [2][]float32
	params  *param.Registry
}

// NewContext allocates scratch space for blocks of up to maxBlockSize frames.
func NewContext(maxBlockSize int, params *param.Registry) *Context {
	c := &Context{params: params}
	for k := range c.scratch {
		c.scratch[k] = make([]float32, maxBlockSize)
	}
	return c
}

// Bind points the context at the next block.
func (c *Context) Bind(input, output [][]float32, aux [][][]float32) {
	c.Input, c.Output, c.AuxInputs = input, output, aux
}

// Unbind drops the references to host memory.
func (c *Context) Unbind() {
	c.Bind(nil, nil, nil)
}

// MaxBlockSize returns the largest block the context can serve.
func (c *Context) MaxBlockSize() int {
	return len(c.scratch[0])
}

// Param returns the normalized value of parameter id, or 0 if unknown.
func (c *Context) Param(id uint32) float64 {
	if p := c.lookup(id); p != nil {
		return p.GetValue()
	}
	return 0
}

// ParamPlain returns the plain value of parameter id, or 0 if unknown.
func (c *Context) ParamPlain(id uint32) float64 {
	if p := c.lookup(id); p != nil {
		return p.GetPlainValue()
	}
	return 0
}

func (c *Context) lookup(id uint32) *param.Parameter {
	if c.params == nil {
		return nil
	}
	return c.params.Get(id)
}

// NumSamples returns the block length, taken from the first input channel
// or, without inputs, the first output channel.
func (c *Context) NumSamples() int {
	switch {
	case len(c.Input) > 0:
		return len(c.Input[0])
	case len(c.Output) > 0:
		return len(c.Output[0])
	}
	return 0
}

// NumInputChannels returns the number of input channels.
func (c *Context) NumInputChannels() int { return len(c.Input) }

// NumOutputChannels returns the number of output channels.
func (c *Context) NumOutputChannels() int { return len(c.Output) }

// WorkBuffer returns the first scratch buffer sized to the current block.
func (c *Context) WorkBuffer() []float32 {
	return c.scratch[0][:c.NumSamples()]
}

// TempBuffer returns the second scratch buffer sized to the current block.
func (c *Context) TempBuffer() []float32 {
	return c.scratch[1][:c.NumSamples()]
}

// CopyInputToOutput copies every input channel that has an output
// counterpart and zeroes the remaining outputs.
func (c *Context) CopyInputToOutput() {
	shared := min(len(c.Input), len(c.Output))
	for ch := range shared {
		copy(c.Output[ch], c.Input[ch])
	}
	for _, out := range c.Output[shared:] {
		clear(out)
	}
}

// SumToMono writes the average of all input channels into dst and returns
// it resliced to the block length. With no inputs dst is zeroed.
func (c *Context) SumToMono(dst []float32) []float32 {
	dst = dst[:c.NumSamples()]
	clear(dst)
	if len(c.Input) == 0 {
		return dst
	}
	for _, in := range c.Input {
		for i, s := range in[:len(dst)] {
			dst[i] += s
		}
	}
	scale := 1 / float32(len(c.Input))
	for i := range dst {
		dst[i] *= scale
	}
	return dst
}
