package plugin

import (
	"errors"
	"fmt"
)

// Info contains plugin metadata
type Info struct {
	ID       string // Unique plugin identifier, used to derive the class ID
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	URL      string
	Email    string
	Category string // Plugin category (e.g., "Fx", "Fx|Dynamics")
}

// UID returns the 16-byte class ID: the first 16 bytes of ID, zero padded.
func (i Info) UID() [16]byte {
	var uid [16]byte
	copy(uid[:], i.ID)
	return uid
}

// Validate checks that the metadata can identify a plugin class.
func (i Info) Validate() error {
	var errs []error
	if i.ID == "" {
		errs = append(errs, errors.New("plugin id is empty"))
	}
	if len(i.ID) > 16 {
		errs = append(errs, fmt.Errorf("plugin id %q is longer than 16 bytes", i.ID))
	}
	if i.Name == "" {
		errs = append(errs, errors.New("plugin name is empty"))
	}
	return errors.Join(errs...)
}
