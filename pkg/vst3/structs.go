package vst3

import (
	"bytes"
	"unicode/utf16"
	"unsafe"
)

// ProcessSetup is passed to IAudioProcessor::setupProcessing.
type ProcessSetup struct {
	ProcessMode        int32
	SymbolicSampleSize int32
	MaxSamplesPerBlock int32
	SampleRate         float64
}

// AudioBusBuffers describes the channels of one bus for a process call.
// ChannelBuffers32 points to an array of NumChannels *float32.
type AudioBusBuffers struct {
	NumChannels      int32
	SilenceFlags     uint64
	ChannelBuffers32 unsafe.Pointer
}

// ProcessData is passed to IAudioProcessor::process.
type ProcessData struct {
	ProcessMode            int32
	SymbolicSampleSize     int32
	NumSamples             int32
	NumInputs              int32
	NumOutputs             int32
	Inputs                 unsafe.Pointer // *AudioBusBuffers
	Outputs                unsafe.Pointer // *AudioBusBuffers
	InputParameterChanges  unsafe.Pointer
	OutputParameterChanges unsafe.Pointer
	InputEvents            unsafe.Pointer
	OutputEvents           unsafe.Pointer
	ProcessContext         unsafe.Pointer
}

// BusInfo is filled by IComponent::getBusInfo.
type BusInfo struct {
	MediaType    int32
	Direction    int32
	ChannelCount int32
	Name         [128]uint16
	BusType      int32
	Flags        uint32
}

// BusInfo flags
const (
	BusDefaultActive uint32 = 1 << 0
)

// NameString decodes the UTF-16 bus name.
func (b *BusInfo) NameString() string {
	return string16(b.Name[:])
}

// PClassInfo is filled by IPluginFactory::getClassInfo.
type PClassInfo struct {
	CID         TUID
	Cardinality int32
	Category    [32]byte
	Name        [64]byte
}

// CategoryString returns the class category.
func (c *PClassInfo) CategoryString() string {
	return string8(c.Category[:])
}

// NameString returns the class name.
func (c *PClassInfo) NameString() string {
	return string8(c.Name[:])
}

// PFactoryInfo is filled by IPluginFactory::getFactoryInfo.
type PFactoryInfo struct {
	Vendor [64]byte
	URL    [256]byte
	Email  [128]byte
	Flags  int32
}

// VendorString returns the factory vendor.
func (f *PFactoryInfo) VendorString() string {
	return string8(f.Vendor[:])
}

func string8(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func string16(s []uint16) string {
	for i, c := range s {
		if c == 0 {
			s = s[:i]
			break
		}
	}
	return string(utf16.Decode(s))
}
