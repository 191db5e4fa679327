package host

import (
	"fmt"
	"slices"
	"strings"

	"github.com/subrou-audio/subrou/pkg/vst3"
)

// DefaultBlockSize is the largest block passed to a plugin in one call.
const DefaultBlockSize = 8192

// Config controls how a host drives a plugin.
type Config struct {
	// BlockSize caps the frames per process call; longer buffers are split.
	BlockSize int `koanf:"block_size" validate:"gte=1,lte=1048576"`
	// Reset deactivates and reactivates the plugin before every Process call
	// so no state carries over between calls.
	Reset bool `koanf:"reset"`
	// ProcessMode is one of "realtime", "prefetch" or "offline".
	ProcessMode string `koanf:"process_mode" validate:"oneof=realtime prefetch offline"`
	// Class selects a plugin class by name when a module exports several.
	Class string `koanf:"class"`
	// Params sets parameters by name to display text, e.g. "pitch" = "1 kHz",
	// before the first Process call.
	Params map[string]string `koanf:"params"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		BlockSize:   DefaultBlockSize,
		Reset:       true,
		ProcessMode: "realtime",
	}
}

// Mode converts ProcessMode to its ABI value.
func (c Config) Mode() (int32, error) {
	switch strings.ToLower(c.ProcessMode) {
	case "", "realtime":
		return vst3.ProcessModeRealtime, nil
	case "prefetch":
		return vst3.ProcessModePrefetch, nil
	case "offline":
		return vst3.ProcessModeOffline, nil
	}
	return 0, fmt.Errorf("host: unknown process mode %q", c.ProcessMode)
}

// ParamNames returns the keys of Params in sorted order.
func (c Config) ParamNames() []string {
	names := make([]string, 0, len(c.Params))
	for name := range c.Params {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// EffectiveBlockSize returns BlockSize, or DefaultBlockSize if unset.
func (c Config) EffectiveBlockSize() int {
	if c.BlockSize <= 0 {
		return DefaultBlockSize
	}
	return c.BlockSize
}
