//go:build linux || darwin

package bundle

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/subrou-audio/subrou/pkg/vst3"
)

// module is an opened shared object and its plugin factory.
type module struct {
	handle  uintptr
	exit    uintptr
	factory unsafe.Pointer
}

func entryPoints() (entry, exit string) {
	if runtime.GOOS == "darwin" {
		return "bundleEntry", "bundleExit"
	}
	return "ModuleEntry", "ModuleExit"
}

func openModule(binary string) (*module, error) {
	handle, err := purego.Dlopen(binary, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen: %w", err)
	}
	m := &module{handle: handle}

	entryName, exitName := entryPoints()
	if entry, err := purego.Dlsym(handle, entryName); err == nil {
		// ModuleEntry takes the library handle; bundleEntry takes a
		// CFBundleRef, which the plugins we load do not use.
		arg := handle
		if runtime.GOOS == "darwin" {
			arg = 0
		}
		if r1, _, _ := purego.SyscallN(entry, arg); r1&0xff == 0 {
			_ = purego.Dlclose(handle)
			return nil, fmt.Errorf("%s returned false", entryName)
		}
		if exit, err := purego.Dlsym(handle, exitName); err == nil {
			m.exit = exit
		}
	}

	getFactory, err := purego.Dlsym(handle, "GetPluginFactory")
	if err != nil {
		return nil, errors.Join(fmt.Errorf("GetPluginFactory: %w", err), m.close())
	}
	r1, _, _ := purego.SyscallN(getFactory)
	if r1 == 0 {
		return nil, errors.Join(errors.New("GetPluginFactory returned null"), m.close())
	}
	m.factory = ptr(r1)
	return m, nil
}

// close releases the factory, calls the exit entry point and unloads the
// library.
func (m *module) close() error {
	if m.factory != nil {
		call(m.factory, vst3.FUnknownRelease)
		m.factory = nil
	}

	var errs []error
	if m.exit != 0 {
		if r1, _, _ := purego.SyscallN(m.exit); r1&0xff == 0 {
			errs = append(errs, errors.New("module exit returned false"))
		}
		m.exit = 0
	}
	if m.handle != 0 {
		if err := purego.Dlclose(m.handle); err != nil {
			errs = append(errs, fmt.Errorf("dlclose: %w", err))
		}
		m.handle = 0
	}
	return errors.Join(errs...)
}

// classes lists every class the factory exports.
func (m *module) classes() ([]vst3.PClassInfo, error) {
	count := int32(call(m.factory, vst3.PluginFactoryCountClasses))
	if count < 0 {
		return nil, fmt.Errorf("countClasses returned %d", count)
	}

	out := make([]vst3.PClassInfo, count)
	var pinner runtime.Pinner
	defer pinner.Unpin()

	for i := range out {
		info := &out[i]
		pinner.Pin(info)
		if r := result(call(m.factory, vst3.PluginFactoryGetClassInfo, uintptr(i), uintptr(unsafe.Pointer(info)))); !r.OK() {
			return nil, fmt.Errorf("getClassInfo(%d): %w", i, r)
		}
	}
	return out, nil
}

// vendor returns the factory vendor, or "" if the factory does not say.
func (m *module) vendor() string {
	info := new(vst3.PFactoryInfo)
	var pinner runtime.Pinner
	pinner.Pin(info)
	defer pinner.Unpin()

	if r := result(call(m.factory, vst3.PluginFactoryGetFactoryInfo, uintptr(unsafe.Pointer(info)))); !r.OK() {
		return ""
	}
	return info.VendorString()
}

// createInstance creates class cid and returns its iid interface.
func (m *module) createInstance(cid, iid vst3.TUID) (unsafe.Pointer, error) {
	c, i, out := &cid, &iid, new(uintptr)
	var pinner runtime.Pinner
	pinner.Pin(c)
	pinner.Pin(i)
	pinner.Pin(out)
	defer pinner.Unpin()

	r := result(call(m.factory, vst3.PluginFactoryCreateInstance,
		uintptr(unsafe.Pointer(c)), uintptr(unsafe.Pointer(i)), uintptr(unsafe.Pointer(out))))
	if !r.OK() {
		return nil, fmt.Errorf("createInstance %s: %w", cid, r)
	}
	if *out == 0 {
		return nil, fmt.Errorf("createInstance %s: null object", cid)
	}
	return ptr(*out), nil
}

// call invokes a COM method on obj.
func call(obj unsafe.Pointer, slot int, args ...uintptr) uintptr {
	full := make([]uintptr, 0, len(args)+1)
	full = append(full, uintptr(obj))
	full = append(full, args...)
	r1, _, _ := purego.SyscallN(vst3.Method(obj, slot), full...)
	return r1
}

func result(r1 uintptr) vst3.Result {
	return vst3.Result(int32(r1))
}

func queryInterface(obj unsafe.Pointer, iid vst3.TUID) (unsafe.Pointer, error) {
	i, out := &iid, new(uintptr)
	var pinner runtime.Pinner
	pinner.Pin(i)
	pinner.Pin(out)
	defer pinner.Unpin()

	r := result(call(obj, vst3.FUnknownQueryInterface, uintptr(unsafe.Pointer(i)), uintptr(unsafe.Pointer(out))))
	if !r.OK() {
		return nil, fmt.Errorf("queryInterface %s: %w", iid, r)
	}
	if *out == 0 {
		return nil, fmt.Errorf("queryInterface %s: null object", iid)
	}
	return ptr(*out), nil
}

func release(obj unsafe.Pointer) {
	if obj != nil {
		call(obj, vst3.FUnknownRelease)
	}
}

// ptr converts an address returned by native code.
func ptr(addr uintptr) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&addr))
}
