// Package host defines how the smoke harness talks to a loaded plugin,
// independent of whether it runs as a native bundle or in process.
package host

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/subrou-audio/subrou/pkg/audio"
)

var (
	// ErrLoad wraps every failure to locate, open or instantiate a plugin.
	ErrLoad = errors.New("host: failed to load plugin")
	// ErrClosed is returned by Process after Close.
	ErrClosed = errors.New("host: instance closed")
	// ErrShape is returned for buffers with no channels or no frames.
	ErrShape = errors.New("host: invalid buffer shape")
	// ErrUnsupported is returned on platforms without a native loader.
	ErrUnsupported = errors.New("host: platform not supported")
)

// Instance is a loaded plugin ready to process audio.
type Instance interface {
	// Process renders buf at sampleRate and returns a new buffer with the
	// same shape. buf is never modified.
	Process(ctx context.Context, buf *audio.Buffer, sampleRate float64) (*audio.Buffer, error)
	// Close releases the plugin. It is safe to call more than once.
	Close() error
}

// Loader opens plugins by path or name.
type Loader interface {
	Load(ctx context.Context, path string) (Instance, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, path string) (Instance, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, path string) (Instance, error) {
	return f(ctx, path)
}

// LoadError wraps err in ErrLoad with the path, unless it already is one.
func LoadError(path string, err error) error {
	if err == nil || errors.Is(err, ErrLoad) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
}

// With loads path, calls fn with the instance and always closes it, even
// when fn fails or panics. A close error is returned only if fn succeeded.
func With(ctx context.Context, loader Loader, path string, fn func(Instance) error) (err error) {
	inst, err := loader.Load(ctx, path)
	if err != nil {
		return LoadError(path, err)
	}
	defer func() {
		if cerr := inst.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	return fn(inst)
}

// CheckInput validates a buffer handed to Process.
func CheckInput(buf *audio.Buffer, sampleRate float64) error {
	if buf == nil || buf.Channels() == 0 || buf.Frames() == 0 {
		return ErrShape
	}
	if sampleRate <= 0 {
		return fmt.Errorf("host: invalid sample rate %g", sampleRate)
	}
	return nil
}

// Mux dispatches Load by a "scheme:" prefix, falling back to a default loader.
type Mux struct {
	schemes  map[string]Loader
	fallback Loader
}

// NewMux creates a Mux that sends unprefixed paths to fallback.
func NewMux(fallback Loader) *Mux {
	return &Mux{schemes: make(map[string]Loader), fallback: fallback}
}

// Handle routes paths starting with scheme + ":" to loader.
func (m *Mux) Handle(scheme string, loader Loader) {
	m.schemes[scheme] = loader
}

// Load implements Loader.
func (m *Mux) Load(ctx context.Context, path string) (Instance, error) {
	if scheme, _, ok := strings.Cut(path, ":"); ok {
		if loader, found := m.schemes[scheme]; found {
			return loader.Load(ctx, path)
		}
	}
	if m.fallback == nil {
		return nil, LoadError(path, errors.New("no loader"))
	}
	return m.fallback.Load(ctx, path)
}
