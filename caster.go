// FILE: lixenwraith/datacast/caster.go
package datacast

import (
	"fmt"
	"reflect"
)

// Func is a single conversion step. It receives the running value and returns the next one.
type Func func(value any) (any, error)

type casterKind int

const (
	kindNoop casterKind = iota
	kindSingle
	kindChain
)

// Caster is the conversion rule declared for a field: a no-op, a single Func,
// or an ordered chain of Funcs. The zero value is the no-op caster.
type Caster struct {
	kind  casterKind
	steps []Func
}

// Noop returns the caster that passes values through unchanged.
func Noop() Caster {
	return Caster{}
}

// Single wraps one Func. A nil Func yields the no-op caster.
func Single(f Func) Caster {
	if f == nil {
		return Caster{}
	}
	return Caster{kind: kindSingle, steps: []Func{f}}
}

// Chain builds an ordered caster chain; the output of each step feeds the next.
func Chain(fs ...Func) Caster {
	if len(fs) == 0 {
		return Caster{}
	}
	steps := make([]Func, len(fs))
	copy(steps, fs)
	return Caster{kind: kindChain, steps: steps}
}

// Of picks the caster shape from the number of Funcs given.
func Of(fs ...Func) Caster {
	switch len(fs) {
	case 0:
		return Noop()
	case 1:
		return Single(fs[0])
	default:
		return Chain(fs...)
	}
}

// IsNoop reports whether the caster leaves values untouched.
func (c Caster) IsNoop() bool {
	return len(c.steps) == 0
}

// Len returns the number of steps in the base chain.
func (c Caster) Len() int {
	return len(c.steps)
}

// Steps returns a copy of the base chain.
func (c Caster) Steps() []Func {
	steps := make([]Func, len(c.steps))
	copy(steps, c.steps)
	return steps
}

func (c Caster) String() string {
	switch c.kind {
	case kindSingle:
		return "single"
	case kindChain:
		return fmt.Sprintf("chain(%d)", len(c.steps))
	default:
		return "noop"
	}
}

func (c Caster) validate() error {
	for i, f := range c.steps {
		if f == nil {
			return fmt.Errorf("caster step %d is nil", i)
		}
	}
	return nil
}

// castChain is the full sequence executed for one value.
// The segments stay separate because store_callables only affects the base.
type castChain struct {
	pre  []Func
	base []Func
	post []Func
}

// buildChain prepends the configured precasters and appends the postcasters to the base chain.
func buildChain(c Caster, s *Settings) castChain {
	return castChain{
		pre:  s.Precasters,
		base: c.steps,
		post: s.Postcasters,
	}
}

// Len returns the total number of steps.
func (ch castChain) Len() int {
	return len(ch.pre) + len(ch.base) + len(ch.post)
}

// apply runs every step in order. A panicking step is reported as *PanicError.
// With storeCallables, a function value entering the base chain skips it.
func (ch castChain) apply(value any, storeCallables bool) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &PanicError{Value: r}
		}
	}()

	if value, err = runSteps(ch.pre, value); err != nil {
		return nil, err
	}
	if !(storeCallables && isCallable(value)) {
		if value, err = runSteps(ch.base, value); err != nil {
			return nil, err
		}
	}
	return runSteps(ch.post, value)
}

func runSteps(steps []Func, value any) (any, error) {
	var err error
	for _, step := range steps {
		if value, err = step(value); err != nil {
			return nil, err
		}
	}
	return value, nil
}

// isCallable reports whether v holds a non-nil Go function.
func isCallable(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}
