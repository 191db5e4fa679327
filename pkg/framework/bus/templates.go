package bus

import "fmt"

// Label names a channel count the way hosts display it.
func Label(channels int32) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	}
	return fmt.Sprintf("%dch", channels)
}

// NewEffect returns one main input and one main output of the given width.
func NewEffect(channels int32) *Configuration {
	return NewBuilder().
		Input(Label(channels)+" In", channels).
		Output(Label(channels)+" Out", channels).
		MustBuild()
}

// NewEffectStereo is NewEffect(2), the layout of the Subrou processor.
func NewEffectStereo() *Configuration {
	return NewEffect(2)
}

// NewEffectWithSidechain adds an inactive aux input of sideChannels to NewEffect.
func NewEffectWithSidechain(channels, sideChannels int32) *Configuration {
	return NewBuilder().
		Input(Label(channels)+" In", channels).
		Output(Label(channels)+" Out", channels).
		Sidechain("Sidechain In", sideChannels).
		MustBuild()
}
