// FILE: lixenwraith/datacast/schema.go
package datacast

import (
	"errors"
	"fmt"
)

// Field declares one named value of a schema.
type Field struct {
	Name       string
	Caster     Caster
	Default    any  // used only when HasDefault is set
	HasDefault bool // a field without default is required
}

// Required declares a field without default.
func Required(name string, casters ...Func) Field {
	return Field{Name: name, Caster: Of(casters...)}
}

// Optional declares a field with a default value.
func Optional(name string, def any, casters ...Func) Field {
	return Field{Name: name, Caster: Of(casters...), Default: def, HasDefault: true}
}

// defaultValue returns the declared default, producing it first if it is a Factory.
func (f *Field) defaultValue() any {
	if factory, ok := f.Default.(Factory); ok {
		return factory()
	}
	return f.Default
}

// Schema is an ordered, immutable set of fields with optional schema-level settings.
// A Schema may be shared by concurrent casts.
type Schema struct {
	fields    []Field
	index     map[string]int
	overrides Overrides
}

// NewSchema validates the fields and builds a Schema.
func NewSchema(fields ...Field) (*Schema, error) {
	return newSchema(fields, nil)
}

// MustSchema is like NewSchema but panics on error
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(fmt.Sprintf("schema build failed: %v", err))
	}
	return s
}

func newSchema(fields []Field, overrides Overrides) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	var errs []error
	for _, f := range fields {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("%w: field name cannot be empty", ErrInvalidSchema))
			continue
		}
		if _, dup := s.index[f.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name))
			continue
		}
		if err := f.Caster.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: field %q: %v", ErrInvalidSchema, f.Name, err))
			continue
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if len(overrides) > 0 {
		// Fail at declaration time rather than on the first cast
		if _, err := ResolveSettings(overrides); err != nil {
			return nil, err
		}
		s.overrides = make(Overrides, len(overrides))
		for k, v := range overrides {
			s.overrides[k] = v
		}
	}

	return s, nil
}

// Fields returns a copy of the declared fields in declaration order.
func (s *Schema) Fields() []Field {
	fields := make([]Field, len(s.fields))
	copy(fields, s.fields)
	return fields
}

// Field returns the declaration of name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Has reports whether name is declared.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns the declared names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of declared fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Overrides returns a copy of the schema-level settings layer.
func (s *Schema) Overrides() Overrides {
	if s.overrides == nil {
		return nil
	}
	o := make(Overrides, len(s.overrides))
	for k, v := range s.overrides {
		o[k] = v
	}
	return o
}

// Exclude returns a new schema without the named fields.
func (s *Schema) Exclude(names ...string) *Schema {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	out := &Schema{
		fields:    make([]Field, 0, len(s.fields)),
		index:     make(map[string]int, len(s.fields)),
		overrides: s.overrides,
	}
	for _, f := range s.fields {
		if drop[f.Name] {
			continue
		}
		out.index[f.Name] = len(out.fields)
		out.fields = append(out.fields, f)
	}
	return out
}

// SchemaBuilder provides a fluent interface for declaring schemas
type SchemaBuilder struct {
	fields    []Field
	overrides Overrides
	err       error
}

// NewSchemaBuilder creates a new schema builder
func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{
		fields:    make([]Field, 0),
		overrides: make(Overrides),
	}
}

// Field declares a required field
func (b *SchemaBuilder) Field(name string, casters ...Func) *SchemaBuilder {
	b.fields = append(b.fields, Required(name, casters...))
	return b
}

// FieldWithDefault declares a field with a default value
func (b *SchemaBuilder) FieldWithDefault(name string, def any, casters ...Func) *SchemaBuilder {
	b.fields = append(b.fields, Optional(name, def, casters...))
	return b
}

// Declare adds prepared field declarations
func (b *SchemaBuilder) Declare(fields ...Field) *SchemaBuilder {
	b.fields = append(b.fields, fields...)
	return b
}

// WithOverrides attaches schema-level settings; later calls win per setting
func (b *SchemaBuilder) WithOverrides(o Overrides) *SchemaBuilder {
	for k, v := range o {
		b.overrides[k] = v
	}
	return b
}

// WithSetting attaches a single schema-level setting
func (b *SchemaBuilder) WithSetting(name string, value any) *SchemaBuilder {
	b.overrides[name] = value
	return b
}

// WithSettings attaches a complete settings object to the schema
func (b *SchemaBuilder) WithSettings(s Settings) *SchemaBuilder {
	if err := s.Validate(); err != nil && b.err == nil {
		b.err = err
	}
	return b.WithOverrides(s.Overrides())
}

// Build creates the Schema with all declared fields and settings
func (b *SchemaBuilder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	return newSchema(b.fields, b.overrides)
}

// MustBuild is like Build but panics on error
func (b *SchemaBuilder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("schema build failed: %v", err))
	}
	return s
}
