package bundle

import (
	"context"
	"fmt"
	"runtime"

	"github.com/subrou-audio/subrou/pkg/framework/debug"
	"github.com/subrou-audio/subrou/pkg/host"
)

// Loader opens VST3 bundles from disk.
type Loader struct {
	cfg  host.Config
	log  *debug.Logger
	goos string
	arch string
}

// NewLoader returns a loader for the running platform.
func NewLoader(cfg host.Config) *Loader {
	return &Loader{
		cfg:  cfg,
		log:  debug.Component("bundle"),
		goos: runtime.GOOS,
		arch: runtime.GOARCH,
	}
}

// Load implements host.Loader.
func (l *Loader) Load(ctx context.Context, path string) (host.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, host.LoadError(path, err)
	}

	mode, err := l.cfg.Mode()
	if err != nil {
		return nil, host.LoadError(path, err)
	}

	binary, err := Resolve(path, l.goos, l.arch)
	if err != nil {
		return nil, host.LoadError(path, err)
	}
	l.log.Debug("resolved %s to %s", path, binary)
	if len(l.cfg.Params) > 0 {
		l.log.Warn("parameter overrides %v are not applied to native bundles", l.cfg.ParamNames())
	}

	inst, err := open(binary, l.cfg, mode, l.log)
	if err != nil {
		return nil, host.LoadError(path, fmt.Errorf("%s: %w", binary, err))
	}
	return inst, nil
}
