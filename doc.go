// File: lixenwraith/datacast/doc.go

// Package datacast validates and converts loosely typed key-value input
// (parsed documents, environment variables, flags) into a typed result
// according to a declarative schema.
//
// Features:
//   - Ordered schemas of required and optional fields
//   - Per-field casters: no-op, single function, or a chain of functions
//   - Global precasters and postcasters wrapped around every field chain
//   - Policies for extra, invalid and missing input (ignore, store, raise, cast)
//   - Layered settings: library defaults, schema settings, call-time overrides
//   - Pluggable result containers (ordered Record by default)
//   - Schema and input documents in TOML, JSON or YAML
//   - Environment variable adapter and a polling file watcher
//
// Quick Start:
//
//	schema := datacast.NewSchemaBuilder().
//	    Field("host", datacast.String).
//	    FieldWithDefault("port", 8080, datacast.Int).
//	    FieldWithDefault("debug", false, datacast.ParseBool).
//	    MustBuild()
//
//	result, err := datacast.Cast(map[string]any{"host": "db", "port": "5432"}, schema)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	port, _ := result.Get("port") // 5432 (int)
//
// Settings Precedence (highest to lowest):
//  1. Call-time overrides (WithOverrides, WithSetting)
//  2. Call-time settings object (WithSettings), replacing 3 and 4
//  3. Schema settings (SchemaBuilder.WithOverrides)
//  4. Library defaults (on_extra=ignore, on_invalid=raise, on_missing=raise)
//
// Errors:
// Failures match the sentinels ErrRequiredField, ErrCast, ErrExtraField,
// ErrConfiguration and ErrInvalidSchema through errors.Is. With
// raise_original set, the caster's own error is returned instead of a CastError.
//
// Thread Safety:
// Schemas and Processors are immutable after construction and may be shared by
// concurrent casts. Config uses a read-write mutex for its stored values.
package datacast
