package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Source loads configuration values into a koanf instance. Lower priorities
// load first and are overridden by higher ones.
type Source interface {
	Name() string
	Priority() int
	Load(k *koanf.Koanf) error
}

// DefaultSource provides the built-in defaults.
type DefaultSource struct{}

func (s *DefaultSource) Name() string  { return "defaults" }
func (s *DefaultSource) Priority() int { return 10 }

func (s *DefaultSource) Load(k *koanf.Koanf) error {
	if err := k.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil); err != nil {
		return fmt.Errorf("error loading defaults: %w", err)
	}
	return nil
}

// FileSource loads a YAML file. An empty Path is skipped; a missing file is
// an error because it was asked for explicitly.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string  { return "file:" + s.Path }
func (s *FileSource) Priority() int { return 20 }

func (s *FileSource) Load(k *koanf.Koanf) error {
	if s.Path == "" {
		return nil
	}
	if _, err := os.Stat(s.Path); err != nil {
		return err
	}
	if err := k.Load(file.Provider(s.Path), yaml.Parser()); err != nil {
		return fmt.Errorf("error loading config file %s: %w", s.Path, err)
	}
	return nil
}

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates levels: SUBROU_HOST__BLOCK_SIZE sets host.block_size.
const EnvPrefix = "SUBROU_"

// EnvSource loads SUBROU_* environment variables.
type EnvSource struct {
	Prefix string
}

func (s *EnvSource) Name() string  { return "env" }
func (s *EnvSource) Priority() int { return 30 }

func (s *EnvSource) Load(k *koanf.Koanf) error {
	prefix := s.Prefix
	if prefix == "" {
		prefix = EnvPrefix
	}

	if err := k.Load(env.Provider(prefix, ".", func(key string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, prefix)), "__", ".")
	}), nil); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}
	return nil
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"plugin":       "plugin",
	"class":        "host.class",
	"block-size":   "host.block_size",
	"process-mode": "host.process_mode",
	"log-level":    "log.level",
}

// FlagSource loads command-line flags. Only flags the user set override
// lower sources.
type FlagSource struct {
	Flags *pflag.FlagSet
}

func (s *FlagSource) Name() string  { return "flags" }
func (s *FlagSource) Priority() int { return 40 }

func (s *FlagSource) Load(k *koanf.Koanf) error {
	if s.Flags == nil {
		return nil
	}

	provider := posflag.ProviderWithFlag(s.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		switch f.Name {
		case "no-reset":
			if f.Changed && f.Value.String() == "true" {
				return "host.reset", false
			}
			return "", nil
		case "debug":
			if f.Changed && f.Value.String() == "true" {
				return "log.level", "debug"
			}
			return "", nil
		case "param":
			if !f.Changed {
				return "", nil
			}
			kv, err := s.Flags.GetStringToString(f.Name)
			if err != nil || len(kv) == 0 {
				return "", nil
			}
			params := make(map[string]interface{}, len(kv))
			for name, text := range kv {
				params[name] = text
			}
			return "host.params", params
		case "builtin":
			if f.Changed && f.Value.String() == "true" {
				return "plugin", "builtin:subrou"
			}
			return "", nil
		}

		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(s.Flags, f)
	})

	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("error loading command-line flags: %w", err)
	}
	return nil
}

// DefaultSources returns defaults, file, env and flags.
func DefaultSources(flags *pflag.FlagSet, path string) []Source {
	return []Source{
		&DefaultSource{},
		&FileSource{Path: path},
		&EnvSource{},
		&FlagSource{Flags: flags},
	}
}
