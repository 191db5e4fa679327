// Package vst3 mirrors the parts of the VST3 C ABI a host needs to load a
// module, instantiate an audio processor and drive it. Layouts follow
// vst3_c_api.h for non-Windows targets.
package vst3

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Result is a tresult returned by every interface method.
type Result int32

// Result codes for non-COM platforms
const (
	ResultNoInterface     Result = -1
	ResultOK              Result = 0
	ResultTrue            Result = 0
	ResultFalse           Result = 1
	ResultInvalidArgument Result = 2
	ResultNotImplemented  Result = 3
	ResultInternalError   Result = 4
	ResultNotInitialized  Result = 5
	ResultOutOfMemory     Result = 6
)

// OK reports whether r is ResultOK.
func (r Result) OK() bool {
	return r == ResultOK
}

// Err returns nil for ResultOK and r otherwise.
func (r Result) Err() error {
	if r == ResultOK {
		return nil
	}
	return r
}

func (r Result) Error() string {
	switch r {
	case ResultNoInterface:
		return "vst3: no interface"
	case ResultFalse:
		return "vst3: false"
	case ResultInvalidArgument:
		return "vst3: invalid argument"
	case ResultNotImplemented:
		return "vst3: not implemented"
	case ResultInternalError:
		return "vst3: internal error"
	case ResultNotInitialized:
		return "vst3: not initialized"
	case ResultOutOfMemory:
		return "vst3: out of memory"
	default:
		return fmt.Sprintf("vst3: result %d", int32(r))
	}
}

// TUID is a 16-byte interface or class identifier.
type TUID [16]byte

// String formats the ID as 32 upper-case hex digits.
func (id TUID) String() string {
	return strings.ToUpper(hex.EncodeToString(id[:]))
}

// ParseTUID parses 32 hex digits, ignoring dashes.
func ParseTUID(s string) (TUID, error) {
	var id TUID
	b, err := hex.DecodeString(strings.ReplaceAll(s, "-", ""))
	if err != nil {
		return id, fmt.Errorf("vst3: parse uid %q: %w", s, err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("vst3: parse uid %q: want 16 bytes, got %d", s, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// inlineUID builds a TUID from four 32-bit words in non-COM byte order.
func inlineUID(l1, l2, l3, l4 uint32) TUID {
	return TUID{
		byte(l1 >> 24), byte(l1 >> 16), byte(l1 >> 8), byte(l1),
		byte(l2 >> 24), byte(l2 >> 16), byte(l2 >> 8), byte(l2),
		byte(l3 >> 24), byte(l3 >> 16), byte(l3 >> 8), byte(l3),
		byte(l4 >> 24), byte(l4 >> 16), byte(l4 >> 8), byte(l4),
	}
}

// Interface IDs
var (
	IIDFUnknown        = inlineUID(0x00000000, 0x00000000, 0xC0000000, 0x00000046)
	IIDIPluginBase     = inlineUID(0x22888DDB, 0x156E45AE, 0x8358B348, 0x08190625)
	IIDIPluginFactory  = inlineUID(0x7A4D811C, 0x52114A1F, 0xAED9D2EE, 0x0B43BF9F)
	IIDIComponent      = inlineUID(0xE831FF31, 0xF2D54301, 0x928EBBEE, 0x25697802)
	IIDIAudioProcessor = inlineUID(0x42043F99, 0xB7DA453C, 0xA569E79D, 0x9AAEC33D)
	IIDIEditController = inlineUID(0xDCD7BBE3, 0x7742448D, 0xA874AACC, 0x979C759E)
)

// Class categories
const (
	CategoryAudioEffect = "Audio Module Class"
)

// Media types
const (
	MediaTypeAudio int32 = 0
	MediaTypeEvent int32 = 1
)

// Bus directions
const (
	BusDirectionInput  int32 = 0
	BusDirectionOutput int32 = 1
)

// Bus types
const (
	BusTypeMain int32 = 0
	BusTypeAux  int32 = 1
)

// Process modes
const (
	ProcessModeRealtime int32 = 0
	ProcessModePrefetch int32 = 1
	ProcessModeOffline  int32 = 2
)

// Symbolic sample sizes
const (
	Sample32 int32 = 0
	Sample64 int32 = 1
)

// SpeakerArrangement is a bit set of speaker positions.
type SpeakerArrangement uint64

// Speaker arrangements
const (
	SpeakerL SpeakerArrangement = 1 << 0
	SpeakerR SpeakerArrangement = 1 << 1
	SpeakerM SpeakerArrangement = 1 << 19

	ArrangementMono   = SpeakerM
	ArrangementStereo = SpeakerL | SpeakerR
)

// ArrangementFor returns the conventional arrangement for a channel count:
// mono, stereo, or the lowest channels bits set.
func ArrangementFor(channels int) SpeakerArrangement {
	switch {
	case channels <= 0:
		return 0
	case channels == 1:
		return ArrangementMono
	case channels == 2:
		return ArrangementStereo
	case channels >= 64:
		return ^SpeakerArrangement(0)
	default:
		return SpeakerArrangement(1)<<channels - 1
	}
}
