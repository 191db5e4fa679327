// Package bundle loads VST3 plugins from native bundles through the
// platform dynamic loader.
package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoBinary is returned when a bundle holds no loadable module for the
// requested platform.
var ErrNoBinary = errors.New("bundle: no module binary")

var linuxArch = map[string]string{
	"amd64": "x86_64",
	"arm64": "aarch64",
	"386":   "i386",
	"arm":   "armv7l",
}

// Resolve maps a plugin path to the shared object the dynamic loader should
// open. A ".vst3" directory is searched in its platform subdirectory; any
// other regular file is returned unchanged.
func Resolve(path, goos, goarch string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return path, nil
	}

	base := filepath.Base(filepath.Clean(path))
	name := strings.TrimSuffix(base, filepath.Ext(base))

	var dir, want string
	switch goos {
	case "linux":
		arch, ok := linuxArch[goarch]
		if !ok {
			arch = goarch
		}
		dir = filepath.Join(path, "Contents", arch+"-linux")
		want = name + ".so"
	case "darwin":
		dir = filepath.Join(path, "Contents", "MacOS")
		want = name
	case "windows":
		arch := "x86_64"
		if goarch == "arm64" {
			arch = "arm64"
		}
		dir = filepath.Join(path, "Contents", arch+"-win")
		want = name + ".vst3"
	default:
		return "", fmt.Errorf("%w: unsupported os %q", ErrNoBinary, goos)
	}

	candidate := filepath.Join(dir, want)
	if isFile(candidate) {
		return candidate, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w in %s: %w", ErrNoBinary, path, err)
	}

	var found []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if goos == "linux" && filepath.Ext(e.Name()) != ".so" {
			continue
		}
		found = append(found, filepath.Join(dir, e.Name()))
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w in %s", ErrNoBinary, dir)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("%w: %s holds %d candidates, expected %s", ErrNoBinary, dir, len(found), want)
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
