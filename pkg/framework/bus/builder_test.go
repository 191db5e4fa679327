package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	t.Run("Stereo", func(t *testing.T) {
		config, err := NewBuilder().Input("In", 2).Output("Out", 2).Build()
		require.NoError(t, err)

		assert.Equal(t, int32(1), config.Count(MediaTypeAudio, DirectionInput))
		assert.Equal(t, int32(1), config.Count(MediaTypeAudio, DirectionOutput))
		assert.Equal(t, int32(2), config.MainChannels(DirectionInput))
		assert.Equal(t, int32(2), config.MainChannels(DirectionOutput))
	})

	t.Run("AuxStartsInactive", func(t *testing.T) {
		config := NewEffectWithSidechain(2, 2)

		inputs := config.Audio(DirectionInput)
		require.Len(t, inputs, 2)
		assert.Equal(t, TypeMain, inputs[0].BusType)
		assert.True(t, inputs[0].IsActive)
		assert.Equal(t, TypeAux, inputs[1].BusType)
		assert.False(t, inputs[1].IsActive)
	})

	t.Run("Active", func(t *testing.T) {
		config, err := NewBuilder().
			Input("In", 2).
			Sidechain("SC", 2).Active(true).
			Output("Out", 2).
			Build()
		require.NoError(t, err)
		assert.True(t, config.Bus(MediaTypeAudio, DirectionInput, 1).IsActive)

		_, err = NewBuilder().Active(true).Output("Out", 2).Build()
		assert.ErrorContains(t, err, "before any audio bus")
	})

	t.Run("BusReturnsCopy", func(t *testing.T) {
		config := NewEffectStereo()
		config.Bus(MediaTypeAudio, DirectionOutput, 0).IsActive = false
		assert.True(t, config.Bus(MediaTypeAudio, DirectionOutput, 0).IsActive)
		assert.Nil(t, config.Bus(MediaTypeAudio, DirectionOutput, -1))
		assert.Nil(t, config.Bus(MediaTypeAudio, DirectionOutput, 1))
	})

	t.Run("NoMainOutput", func(t *testing.T) {
		_, err := NewBuilder().Input("In", 2).Build()
		assert.ErrorContains(t, err, "no main audio output")
	})

	t.Run("ErrorsAreJoined", func(t *testing.T) {
		_, err := NewBuilder().Input("In", 0).Output("Out", MaxChannels+1).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"In"`)
		assert.Contains(t, err.Error(), `"Out"`)
	})

	t.Run("EmptyAux", func(t *testing.T) {
		config, err := NewBuilder().Input("In", 2).Sidechain("Side", 0).Output("Out", 2).Build()
		require.NoError(t, err)
		assert.Equal(t, int32(0), config.Bus(MediaTypeAudio, DirectionInput, 1).ChannelCount)

		_, err = NewBuilder().Output("Out", 0).Build()
		assert.ErrorContains(t, err, "outside 1..")
	})

	t.Run("Events", func(t *testing.T) {
		config := NewBuilder().Events("MIDI").Output("Out", 1).MustBuild()
		assert.Equal(t, int32(1), config.Count(MediaTypeEvent, DirectionInput))
		assert.Equal(t, int32(0), config.Count(MediaTypeAudio, DirectionInput))
		assert.Nil(t, config.Bus(MediaTypeEvent, DirectionOutput, 0))
	})
}

func TestMustBuildPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewBuilder().MustBuild()
	})
}

func TestEffectTemplates(t *testing.T) {
	mono := NewEffect(1)
	assert.Equal(t, int32(1), mono.MainChannels(DirectionOutput))
	assert.Equal(t, "Mono In", mono.Bus(MediaTypeAudio, DirectionInput, 0).Name)

	stereo := NewEffectStereo()
	assert.Equal(t, "Stereo Out", stereo.Bus(MediaTypeAudio, DirectionOutput, 0).Name)

	side := NewEffectWithSidechain(6, 1)
	assert.Equal(t, int32(6), side.MainChannels(DirectionInput))
	aux := side.Bus(MediaTypeAudio, DirectionInput, 1)
	require.NotNil(t, aux)
	assert.Equal(t, int32(1), aux.ChannelCount)
	assert.Equal(t, TypeAux, aux.BusType)

	assert.Equal(t, "6ch", Label(6))
}
