package param

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknown is returned when a name matches no registered parameter.
var ErrUnknown = errors.New("unknown parameter")

// Registry holds a processor's parameters in declaration order.
type Registry struct {
	mu     sync.RWMutex
	list   []*Parameter
	byID   map[uint32]*Parameter
	byName map[string]*Parameter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[uint32]*Parameter),
		byName: make(map[string]*Parameter),
	}
}

// Add registers parameters. IDs and names must be unique; the first
// conflict stops registration.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if prev, ok := r.byID[p.ID]; ok {
			return fmt.Errorf("parameter id %d (%s) already used by %s", p.ID, p.Name, prev.Name)
		}
		keys := nameKeys(p)
		for _, k := range keys {
			if prev, ok := r.byName[k]; ok {
				return fmt.Errorf("parameter name %q already used by id %d", k, prev.ID)
			}
		}
		r.byID[p.ID] = p
		for _, k := range keys {
			r.byName[k] = p
		}
		r.list = append(r.list, p)
	}
	return nil
}

func nameKeys(p *Parameter) []string {
	name := strings.ToLower(p.Name)
	short := strings.ToLower(p.ShortName)
	if short == "" || short == name {
		return []string{name}
	}
	return []string{name, short}
}

// Get returns the parameter with id, or nil.
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// Lookup finds a parameter by name or short name, ignoring case.
func (r *Registry) Lookup(name string) (*Parameter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// SetText parses text with the parameter's own parser and applies it.
func (r *Registry) SetText(name, text string) error {
	p, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknown, name)
	}
	if p.Flags&IsReadOnly != 0 {
		return fmt.Errorf("parameter %q is read-only", p.Name)
	}
	v, err := p.ParseValue(strings.TrimSpace(text))
	if err != nil {
		return err
	}
	p.SetValue(v)
	return nil
}

// Count returns the number of parameters.
func (r *Registry) Count() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int32(len(r.list))
}

// All returns the parameters in declaration order.
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Parameter(nil), r.list...)
}

// Names returns the full parameter names in declaration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.list))
	for i, p := range r.list {
		names[i] = p.Name
	}
	return names
}
