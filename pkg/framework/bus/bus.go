// Package bus describes the audio and event buses a processor exposes.
package bus

// MediaType distinguishes audio buses from event buses.
type MediaType int32

const (
	MediaTypeAudio MediaType = 0
	MediaTypeEvent MediaType = 1
)

// Direction is input or output.
type Direction int32

const (
	DirectionInput  Direction = 0
	DirectionOutput Direction = 1
)

// Type is main or auxiliary.
type Type int32

const (
	TypeMain Type = 0
	TypeAux  Type = 1
)

// Info describes one bus.
type Info struct {
	MediaType    MediaType
	Direction    Direction
	ChannelCount int32
	Name         string
	BusType      Type
	IsActive     bool
}

// Configuration is an immutable bus layout built by Builder.
type Configuration struct {
	audio  []Info
	events []Info
}

func (c *Configuration) of(mediaType MediaType) []Info {
	if mediaType == MediaTypeEvent {
		return c.events
	}
	return c.audio
}

// Count returns the number of buses of mediaType in direction.
func (c *Configuration) Count(mediaType MediaType, direction Direction) int32 {
	var n int32
	for _, b := range c.of(mediaType) {
		if b.Direction == direction {
			n++
		}
	}
	return n
}

// Bus returns the index-th bus of mediaType in direction, or nil.
func (c *Configuration) Bus(mediaType MediaType, direction Direction, index int32) *Info {
	if index < 0 {
		return nil
	}
	buses := c.of(mediaType)
	for i := range buses {
		if buses[i].Direction != direction {
			continue
		}
		if index == 0 {
			info := buses[i]
			return &info
		}
		index--
	}
	return nil
}

// Audio returns the audio buses of direction in declaration order. Index k
// of the result is bus index k for the VST3 API.
func (c *Configuration) Audio(direction Direction) []Info {
	var out []Info
	for _, b := range c.audio {
		if b.Direction == direction {
			out = append(out, b)
		}
	}
	return out
}

// MainChannels returns the width of the first main audio bus in direction,
// or 0 if there is none.
func (c *Configuration) MainChannels(direction Direction) int32 {
	for _, b := range c.audio {
		if b.Direction == direction && b.BusType == TypeMain {
			return b.ChannelCount
		}
	}
	return 0
}
