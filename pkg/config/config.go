// Package config loads the smoke runner configuration from defaults, an
// optional YAML file, SUBROU_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/subrou-audio/subrou/pkg/audio"
	"github.com/subrou-audio/subrou/pkg/host"
	"github.com/subrou-audio/subrou/pkg/smoke"
)

// DefaultPlugin is the bundle produced by the project build.
const DefaultPlugin = "target/bundled/Subrou Rs.vst3"

// ErrInvalid wraps every configuration that fails to load or validate.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete runner configuration.
type Config struct {
	Plugin    string           `koanf:"plugin" validate:"required"`
	Host      host.Config      `koanf:"host"`
	Log       LogConfig        `koanf:"log"`
	Tolerance audio.Tolerance  `koanf:"tolerance"`
	Scenarios []smoke.Scenario `koanf:"scenarios" validate:"min=1,dive"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error off"`
}

// DefaultConfig returns the configuration used when no source overrides it.
func DefaultConfig() Config {
	return Config{
		Plugin:    DefaultPlugin,
		Host:      host.DefaultConfig(),
		Log:       LogConfig{Level: "warn"},
		Tolerance: audio.DefaultTolerance,
		Scenarios: smoke.DefaultScenarios(),
	}
}

// DefaultConfigAsMap flattens DefaultConfig for confmap.Provider.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()

	scenarios := make([]interface{}, len(def.Scenarios))
	for i, sc := range def.Scenarios {
		checks := make([]interface{}, len(sc.Checks))
		for j, c := range sc.Checks {
			checks[j] = string(c)
		}
		scenarios[i] = map[string]interface{}{
			"name":        sc.Name,
			"channels":    sc.Channels,
			"frames":      sc.Frames,
			"sample_rate": sc.SampleRate,
			"fill":        sc.Fill,
			"checks":      checks,
		}
	}

	return map[string]interface{}{
		"plugin": def.Plugin,

		"host.block_size":   def.Host.BlockSize,
		"host.reset":        def.Host.Reset,
		"host.process_mode": def.Host.ProcessMode,
		"host.class":        def.Host.Class,

		"log.level": def.Log.Level,

		"tolerance.rtol": def.Tolerance.RTol,
		"tolerance.atol": def.Tolerance.ATol,

		"scenarios": scenarios,
	}
}

// Load merges sources in priority order, unmarshals and validates the result.
func Load(sources ...Source) (Config, error) {
	sorted := make([]Source, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})

	k := koanf.New(".")
	for _, src := range sorted {
		if err := src.Load(k); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalid, src.Name(), err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadWithFlags loads defaults, the file at path (if any), the environment
// and flags.
func LoadWithFlags(flags *pflag.FlagSet, path string) (Config, error) {
	return Load(DefaultSources(flags, path)...)
}

var validate = validator.New()

// Validate checks struct constraints on cfg.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]error, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(msgs...))
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
