// FILE: lixenwraith/datacast/registry.go
package datacast

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownCaster is returned when a caster name is not registered
var ErrUnknownCaster = errors.New("unknown caster")

// NoopCasterName names the no-op caster in documents
const NoopCasterName = "none"

// Registry maps caster names to Funcs so schemas and settings can be written as documents.
type Registry struct {
	casters map[string]Func
	mutex   sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{casters: make(map[string]Func)}
}

// DefaultRegistry creates a registry holding the built-in casters
func DefaultRegistry() *Registry {
	r := NewRegistry()
	builtins := map[string]Func{
		"int":        Int,
		"float":      Float,
		"str":        String,
		"bool":       Bool,
		"strip":      Strip,
		"lower":      Lower,
		"upper":      Upper,
		"parse_bool": ParseBool,
		"parse_none": ParseNone,
		"guess":      Guess,
		"duration":   Duration,
		"list":       Split(","),
	}
	for name, f := range builtins {
		r.casters[name] = f
	}
	return r
}

// Register adds or replaces a named caster
func (r *Registry) Register(name string, f Func) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("caster name cannot be empty")
	}
	if name == NoopCasterName {
		return fmt.Errorf("caster name %q is reserved", name)
	}
	if f == nil {
		return fmt.Errorf("caster %q is nil", name)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.casters[name] = f
	return nil
}

// Lookup returns the caster registered under name
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	f, ok := r.casters[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Names returns the registered names, sorted
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.casters))
	for name := range r.casters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve turns a list of names into Funcs. The no-op name contributes no step.
func (r *Registry) Resolve(names ...string) ([]Func, error) {
	funcs := make([]Func, 0, len(names))
	for _, name := range names {
		if name == "" || strings.EqualFold(name, NoopCasterName) {
			continue
		}
		f, ok := r.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCaster, name)
		}
		funcs = append(funcs, f)
	}
	return funcs, nil
}

// Caster builds a Caster from a document value: a name, or a list of names.
func (r *Registry) Caster(value any) (Caster, error) {
	names, err := casterNames(value)
	if err != nil {
		return Caster{}, err
	}
	funcs, err := r.Resolve(names...)
	if err != nil {
		return Caster{}, err
	}
	return Of(funcs...), nil
}

// ResolveOverrides replaces caster names in precasters and postcasters with Funcs.
// Other settings are copied unchanged.
func (r *Registry) ResolveOverrides(o Overrides) (Overrides, error) {
	out := make(Overrides, len(o))
	for name, value := range o {
		switch strings.ToLower(name) {
		case SettingPrecasters, SettingPostcasters:
			names, err := casterNames(value)
			if err != nil {
				// Not names; leave for ResolveSettings to judge
				out[name] = value
				continue
			}
			funcs, err := r.Resolve(names...)
			if err != nil {
				return nil, &ConfigurationError{Setting: name, Err: err}
			}
			out[name] = funcs
		default:
			out[name] = value
		}
	}
	return out, nil
}

func casterNames(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		names := make([]string, 0, len(v))
		for i, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("caster %d: expected name, got %T", i, elem)
			}
			names = append(names, s)
		}
		return names, nil
	}
	return nil, fmt.Errorf("expected caster name or list of names, got %T", value)
}
