package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subrou-audio/subrou/pkg/framework/param"
)

func newStereoContext(t *testing.T, frames int) *Context {
	t.Helper()

	registry := param.NewRegistry()
	require.NoError(t, registry.Add(param.New(0, "Pitch").Range(10, 2000).Default(440).MustBuild()))

	ctx := NewContext(frames, registry)
	ctx.Bind(
		[][]float32{make([]float32, frames), make([]float32, frames)},
		[][]float32{make([]float32, frames), make([]float32, frames)},
		nil,
	)
	ctx.SampleRate = 44100
	return ctx
}

func TestContextParams(t *testing.T) {
	ctx := newStereoContext(t, 64)

	assert.InDelta(t, 440.0, ctx.ParamPlain(0), 1e-9)
	assert.InDelta(t, (440.0-10)/1990, ctx.Param(0), 1e-12)
	assert.Zero(t, ctx.ParamPlain(99))
	assert.Zero(t, ctx.Param(99))

	bare := NewContext(8, nil)
	assert.Zero(t, bare.ParamPlain(0))
}

func TestContextBuffers(t *testing.T) {
	ctx := newStereoContext(t, 64)
	assert.Equal(t, 64, ctx.NumSamples())
	assert.Len(t, ctx.WorkBuffer(), 64)

	ctx.Input[0] = ctx.Input[0][:16]
	ctx.Input[1] = ctx.Input[1][:16]
	assert.Equal(t, 16, ctx.NumSamples())
	assert.Len(t, ctx.TempBuffer(), 16)
	assert.Equal(t, 64, ctx.MaxBlockSize())

	ctx.Unbind()
	assert.Zero(t, ctx.NumSamples())
	assert.Nil(t, ctx.AuxInputs)
}

func TestSumToMono(t *testing.T) {
	ctx := newStereoContext(t, 4)
	copy(ctx.Input[0], []float32{1, 1, 0, -1})
	copy(ctx.Input[1], []float32{1, 0, 0, 1})

	mono := ctx.SumToMono(ctx.WorkBuffer())
	assert.Equal(t, []float32{1, 0.5, 0, 0}, mono)

	ctx.Bind(nil, [][]float32{make([]float32, 4)}, nil)
	assert.Equal(t, []float32{0, 0, 0, 0}, ctx.SumToMono(ctx.WorkBuffer()))
}

func TestCopyInputToOutput(t *testing.T) {
	ctx := newStereoContext(t, 3)
	ctx.Input = ctx.Input[:1]
	copy(ctx.Input[0], []float32{0.1, 0.2, 0.3})
	ctx.Output[1][0] = 9

	ctx.CopyInputToOutput()
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, ctx.Output[0])
	assert.Equal(t, []float32{0, 0, 0}, ctx.Output[1])
}
