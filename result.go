// FILE: lixenwraith/datacast/result.go
package datacast

import (
	"errors"
	"fmt"
)

// Pair is one resolved field.
type Pair struct {
	Name  string
	Value any
}

// Result is the container a cast produces.
type Result interface {
	// Get returns the value stored under name.
	Get(name string) (any, bool)
	// Keys returns the stored names; ordered if the container preserves order.
	Keys() []string
	// Len returns the number of stored fields.
	Len() int
	// Map exports the content as a plain map.
	Map() map[string]any
}

// ResultFactory builds a Result from the resolved pairs, given in resolution order.
type ResultFactory func(pairs []Pair) (Result, error)

var resultClasses = map[string]ResultFactory{
	"record": NewRecord,
	"map":    NewMapResult,
}

// Record is an insertion-ordered mapping. It is the default result class.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord builds a Record; a repeated name keeps its first position and takes the last value.
func NewRecord(pairs []Pair) (Result, error) {
	r := &Record{
		keys:   make([]string, 0, len(pairs)),
		values: make(map[string]any, len(pairs)),
	}
	for _, p := range pairs {
		r.Set(p.Name, p.Value)
	}
	return r, nil
}

// Set stores value under name, appending name if it is new.
func (r *Record) Set(name string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[name]; !exists {
		r.keys = append(r.keys, name)
	}
	r.values[name] = value
}

func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

func (r *Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

func (r *Record) Len() int {
	return len(r.keys)
}

func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// Pairs returns the content in insertion order.
func (r *Record) Pairs() []Pair {
	pairs := make([]Pair, 0, len(r.keys))
	for _, k := range r.keys {
		pairs = append(pairs, Pair{Name: k, Value: r.values[k]})
	}
	return pairs
}

func (r *Record) String() string {
	return fmt.Sprintf("Record%v", r.Pairs())
}

// MapResult is an unordered result backed by a plain map.
type MapResult map[string]any

// NewMapResult builds a MapResult. Keys() of a MapResult has no defined order.
func NewMapResult(pairs []Pair) (Result, error) {
	m := make(MapResult, len(pairs))
	for _, p := range pairs {
		m[p.Name] = p.Value
	}
	return m, nil
}

func (m MapResult) Get(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

func (m MapResult) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func (m MapResult) Len() int {
	return len(m)
}

func (m MapResult) Map() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// assemble hands the accumulated pairs to the configured result class.
func assemble(factory ResultFactory, pairs []Pair) (Result, error) {
	result, err := factory(pairs)
	if err != nil {
		return nil, &ConfigurationError{Setting: SettingResultClass, Err: err}
	}
	if result == nil {
		return nil, &ConfigurationError{Setting: SettingResultClass, Err: errors.New("result class returned nil")}
	}
	return result, nil
}
