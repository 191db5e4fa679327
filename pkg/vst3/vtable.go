package vst3

import "unsafe"

// Vtable slots. Every interface starts with the three FUnknown methods.
const (
	FUnknownQueryInterface = 0
	FUnknownAddRef         = 1
	FUnknownRelease        = 2

	PluginFactoryGetFactoryInfo = 3
	PluginFactoryCountClasses   = 4
	PluginFactoryGetClassInfo   = 5
	PluginFactoryCreateInstance = 6

	PluginBaseInitialize = 3
	PluginBaseTerminate  = 4

	ComponentGetControllerClassID = 5
	ComponentSetIOMode            = 6
	ComponentGetBusCount          = 7
	ComponentGetBusInfo           = 8
	ComponentGetRoutingInfo       = 9
	ComponentActivateBus          = 10
	ComponentSetActive            = 11
	ComponentSetState             = 12
	ComponentGetState             = 13

	AudioProcessorSetBusArrangements   = 3
	AudioProcessorGetBusArrangement    = 4
	AudioProcessorCanProcessSampleSize = 5
	AudioProcessorGetLatencySamples    = 6
	AudioProcessorSetupProcessing      = 7
	AudioProcessorSetProcessing        = 8
	AudioProcessorProcess              = 9
	AudioProcessorGetTailSamples       = 10
)

// Method returns the function pointer in slot of obj's vtable. obj must be a
// live interface pointer.
func Method(obj unsafe.Pointer, slot int) uintptr {
	vtbl := *(*unsafe.Pointer)(obj)
	return *(*uintptr)(unsafe.Add(vtbl, slot*int(unsafe.Sizeof(uintptr(0)))))
}

// Bool converts a Go bool to a TBool argument.
func Bool(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}
