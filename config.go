// FILE: lixenwraith/datacast/config.go
package datacast

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/davecgh/go-spew/spew"
)

// Config holds a cast result as named attributes. It is the storage half of
// a schema: the Schema declares, the Config keeps what a cast produced.
// All methods are safe for concurrent use.
type Config struct {
	keys   []string
	values map[string]any
	mutex  sync.RWMutex
}

// Load casts input against schema and stores the result in a new Config.
func Load(input map[string]any, schema *Schema, opts ...CastOption) (*Config, error) {
	result, err := Cast(input, schema, opts...)
	if err != nil {
		return nil, err
	}
	return FromResult(result), nil
}

// LoadFile reads an input document and casts it against schema.
func LoadFile(path string, schema *Schema, opts ...CastOption) (*Config, error) {
	input, err := LoadInputFile(path)
	if err != nil {
		return nil, err
	}
	return Load(input, schema, opts...)
}

// FromResult copies a cast result into a new Config, keeping the result's key order.
func FromResult(result Result) *Config {
	keys := result.Keys()
	c := &Config{
		keys:   make([]string, 0, len(keys)),
		values: make(map[string]any, len(keys)),
	}
	for _, k := range keys {
		v, _ := result.Get(k)
		c.keys = append(c.keys, k)
		c.values[k] = v
	}
	return c
}

// Get retrieves the value stored under name.
// The second return value indicates if the name was stored.
func (c *Config) Get(name string) (any, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	v, ok := c.values[name]
	return v, ok
}

// Set updates a stored value. It returns an error if the name was not stored by the cast.
func (c *Config) Set(name string, value any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.values[name]; !ok {
		return fmt.Errorf("key not stored: %s", name)
	}
	c.values[name] = value
	return nil
}

// Keys returns the stored names in result order.
func (c *Config) Keys() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

// Len returns the number of stored names.
func (c *Config) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.keys)
}

// AsMap exports the stored values as a plain map.
func (c *Config) AsMap() map[string]any {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	m := make(map[string]any, len(c.values))
	for k, v := range c.values {
		m[k] = v
	}
	return m
}

// String retrieves a value rendered as a string.
func (c *Config) String(name string) (string, error) {
	val, err := c.convert(name, String)
	if err != nil {
		return "", err
	}
	return val.(string), nil
}

// Int64 retrieves a value converted to int64.
func (c *Config) Int64(name string) (int64, error) {
	val, err := c.convert(name, Int)
	if err != nil {
		return 0, err
	}
	return int64(val.(int)), nil
}

// Float64 retrieves a value converted to float64.
func (c *Config) Float64(name string) (float64, error) {
	val, err := c.convert(name, Float)
	if err != nil {
		return 0, err
	}
	return val.(float64), nil
}

// Bool retrieves a boolean value. Strings are parsed as bool words, other values by truthiness.
func (c *Config) Bool(name string) (bool, error) {
	conv := Bool
	if val, found := c.Get(name); found {
		if _, isStr := val.(string); isStr {
			conv = ParseBool
		}
	}
	val, err := c.convert(name, conv)
	if err != nil {
		return false, err
	}
	return val.(bool), nil
}

func (c *Config) convert(name string, fn Func) (any, error) {
	val, found := c.Get(name)
	if !found {
		return nil, fmt.Errorf("key not stored: %s", name)
	}
	out, err := fn(val)
	if err != nil {
		return nil, fmt.Errorf("key %s: %w", name, err)
	}
	return out, nil
}

// Save writes the stored values to a TOML file atomically.
// Dotted names become nested tables.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := WriteDocument(&buf, c.AsMap(), FormatTOML); err != nil {
		return err
	}
	return atomicWriteFile(path, buf.Bytes())
}

// Dump writes the stored values to w in the given format
func (c *Config) Dump(w io.Writer, format Format) error {
	return WriteDocument(w, c.AsMap(), format)
}

// Debug returns a formatted listing of all stored values and their Go types
func (c *Config) Debug() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	printer := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true, DisableCapacities: true}

	var b strings.Builder
	b.WriteString("Cast Result Debug Info:\n")
	for _, k := range c.keys {
		b.WriteString(fmt.Sprintf("  %s: %s", k, printer.Sdump(c.values[k])))
	}
	return b.String()
}

// Clone creates a copy of the stored values
func (c *Config) Clone() *Config {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	clone := &Config{
		keys:   make([]string, len(c.keys)),
		values: make(map[string]any, len(c.values)),
	}
	copy(clone.keys, c.keys)
	for k, v := range c.values {
		clone.values[k] = v
	}
	return clone
}

// Diff returns the names whose values differ from other, sorted.
// Names stored in only one of the two are included.
func (c *Config) Diff(other *Config) []string {
	mine, theirs := c.AsMap(), other.AsMap()

	var changed []string
	for k, v := range mine {
		ov, ok := theirs[k]
		if !ok || !reflect.DeepEqual(ov, v) {
			changed = append(changed, k)
		}
	}
	for k := range theirs {
		if _, ok := mine[k]; !ok {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}
