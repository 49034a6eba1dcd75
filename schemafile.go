// FILE: lixenwraith/datacast/schemafile.go
package datacast

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// schemaDocument is the document form of a schema:
//
//	[settings]
//	on_extra = "store"
//	precasters = ["strip"]
//
//	[[fields]]
//	name = "port"
//	caster = "int"
//	default = 8080
type schemaDocument struct {
	Settings map[string]any   `toml:"settings"`
	Fields   []map[string]any `toml:"fields"`
}

type fieldDocument struct {
	Name     string `toml:"name"`
	Caster   any    `toml:"caster"`
	Default  any    `toml:"default"`
	Optional bool   `toml:"optional"`
}

// LoadSchemaFile reads a schema document (TOML, JSON or YAML).
// Caster names are resolved with reg; nil means DefaultRegistry.
func LoadSchemaFile(path string, reg *Registry) (*Schema, error) {
	doc, err := readDocument(path, FormatAuto)
	if err != nil {
		return nil, err
	}
	return schemaFromDocument(doc, reg)
}

// ParseSchema decodes a schema document from data
func ParseSchema(data []byte, format Format, reg *Registry) (*Schema, error) {
	doc, err := decodeDocument(data, format, "schema")
	if err != nil {
		return nil, err
	}
	return schemaFromDocument(doc, reg)
}

func schemaFromDocument(raw map[string]any, reg *Registry) (*Schema, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}

	var doc schemaDocument
	if err := strictDecode(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	b := NewSchemaBuilder()
	for i, rawField := range doc.Fields {
		var fd fieldDocument
		if err := strictDecode(rawField, &fd); err != nil {
			return nil, fmt.Errorf("%w: field %d: %v", ErrInvalidSchema, i, err)
		}
		caster, err := reg.Caster(fd.Caster)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidSchema, fd.Name, err)
		}

		_, hasDefault := rawField["default"]
		b.Declare(Field{
			Name:       fd.Name,
			Caster:     caster,
			Default:    fd.Default,
			HasDefault: hasDefault || fd.Optional,
		})
	}

	if len(doc.Settings) > 0 {
		overrides, err := reg.ResolveOverrides(Overrides(doc.Settings))
		if err != nil {
			return nil, err
		}
		b.WithOverrides(overrides)
	}

	return b.Build()
}

func strictDecode(input any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target,
		TagName:     "toml",
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}
	return decoder.Decode(input)
}
