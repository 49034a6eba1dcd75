// FILE: lixenwraith/datacast/processor.go
package datacast

import (
	"fmt"
	"sort"
)

// CastOption configures the call-time settings of a cast
type CastOption func(*castConfig)

type castConfig struct {
	settings  *Settings
	overrides []Overrides
}

// WithSettings supplies a complete settings object. It replaces the library
// defaults and the schema-level settings; keyword overrides still apply on top.
func WithSettings(s Settings) CastOption {
	return func(c *castConfig) {
		c.settings = &s
	}
}

// WithOverrides supplies call-time keyword overrides. Multiple layers apply in order.
func WithOverrides(o Overrides) CastOption {
	return func(c *castConfig) {
		c.overrides = append(c.overrides, o)
	}
}

// WithSetting supplies a single call-time override
func WithSetting(name string, value any) CastOption {
	return WithOverrides(Overrides{name: value})
}

// Processor casts inputs against one schema with settings resolved once.
// A Processor holds no mutable state and may be used by concurrent goroutines.
type Processor struct {
	schema   *Schema
	settings Settings
}

// NewProcessor resolves the effective settings for schema:
// library defaults, then schema settings, then call-time settings.
func NewProcessor(schema *Schema, opts ...CastOption) (*Processor, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: schema is nil", ErrInvalidSchema)
	}

	var cfg castConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var (
		settings Settings
		err      error
	)
	if cfg.settings != nil {
		settings = *cfg.settings
		err = settings.Validate()
	} else {
		settings, err = ResolveSettings(schema.overrides)
	}
	if err != nil {
		return nil, err
	}

	for _, layer := range cfg.overrides {
		if settings, err = settings.With(layer); err != nil {
			return nil, err
		}
	}

	return &Processor{schema: schema, settings: settings}, nil
}

// Cast resolves input against schema in one call
func Cast(input map[string]any, schema *Schema, opts ...CastOption) (Result, error) {
	p, err := NewProcessor(schema, opts...)
	if err != nil {
		return nil, err
	}
	return p.Run(input)
}

// Schema returns the schema the processor casts against
func (p *Processor) Schema() *Schema {
	return p.schema
}

// Settings returns the effective settings
func (p *Processor) Settings() Settings {
	return p.settings
}

// Run resolves every declared field in declaration order, then the extra
// fields, and assembles the result. The first fatal error aborts the run, so
// an error from a declared field always takes priority over an extra-field error.
// The input map is never modified.
func (p *Processor) Run(input map[string]any) (Result, error) {
	pairs := make([]Pair, 0, len(p.schema.fields))

	for i := range p.schema.fields {
		value, keep, err := p.resolveField(&p.schema.fields[i], input)
		if err != nil {
			return nil, err
		}
		if keep {
			pairs = append(pairs, Pair{Name: p.schema.fields[i].Name, Value: value})
		}
	}

	extras, err := p.resolveExtras(input)
	if err != nil {
		return nil, err
	}
	pairs = append(pairs, extras...)

	return assemble(p.settings.ResultClass, pairs)
}

// resolveField returns the value to store for f and whether to store it at all.
func (p *Processor) resolveField(f *Field, input map[string]any) (any, bool, error) {
	value, present := input[f.Name]
	if !present {
		if !f.HasDefault {
			return p.resolveMissing(f.Name)
		}
		value = f.defaultValue()
		if !p.settings.CastDefaults {
			return value, true, nil
		}
	}

	out, err := buildChain(f.Caster, &p.settings).apply(value, p.settings.StoreCallables)
	if err != nil {
		return p.resolveInvalid(f.Name, value, err)
	}
	return out, true, nil
}

func (p *Processor) resolveMissing(name string) (any, bool, error) {
	switch p.settings.OnMissing {
	case OptionStore:
		return p.settings.missingValue(), true, nil
	case OptionIgnore:
		return nil, false, nil
	default:
		return nil, false, &RequiredFieldError{Field: name}
	}
}

// resolveInvalid applies on_invalid; store keeps the pre-cast value.
func (p *Processor) resolveInvalid(name string, raw any, err error) (any, bool, error) {
	switch p.settings.OnInvalid {
	case OptionStore:
		return raw, true, nil
	case OptionIgnore:
		return nil, false, nil
	default:
		if p.settings.RaiseOriginal {
			return nil, false, err
		}
		return nil, false, &CastError{Field: name, Value: raw, Err: err}
	}
}

// resolveExtras applies on_extra to the undeclared input keys, visited in sorted order.
// Caster failures under on_extra=cast propagate unwrapped.
func (p *Processor) resolveExtras(input map[string]any) ([]Pair, error) {
	keys := p.extraKeys(input)
	if len(keys) == 0 {
		return nil, nil
	}

	switch p.settings.OnExtra {
	case OptionStore:
		pairs := make([]Pair, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, Pair{Name: k, Value: input[k]})
		}
		return pairs, nil

	case OptionCast:
		chain := buildChain(Noop(), &p.settings)
		pairs := make([]Pair, 0, len(keys))
		for _, k := range keys {
			out, err := chain.apply(input[k], p.settings.StoreCallables)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, Pair{Name: k, Value: out})
		}
		return pairs, nil

	case OptionRaise:
		return nil, &ExtraFieldError{Keys: keys}

	default:
		return nil, nil
	}
}

func (p *Processor) extraKeys(input map[string]any) []string {
	var keys []string
	for k := range input {
		if !p.schema.Has(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
