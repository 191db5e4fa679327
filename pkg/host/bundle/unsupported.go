//go:build !linux && !darwin

package bundle

import (
	"github.com/subrou-audio/subrou/pkg/framework/debug"
	"github.com/subrou-audio/subrou/pkg/host"
)

func open(string, host.Config, int32, *debug.Logger) (host.Instance, error) {
	return nil, host.ErrUnsupported
}
