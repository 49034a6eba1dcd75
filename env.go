// FILE: lixenwraith/datacast/env.go
package datacast

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// MaxValueSize bounds a single environment value
const MaxValueSize = 1024 * 1024

// ErrValueSize is returned when an environment value exceeds MaxValueSize
var ErrValueSize = errors.New("value size exceeds maximum")

// EnvTransformFunc converts a field name to an environment variable name
type EnvTransformFunc func(name string) string

// EnvAdapter feeds environment variables into a cast.
// Only declared fields are looked up, so undeclared variables never reach the engine.
type EnvAdapter struct {
	// Prefix is prepended to variable names by the default transform
	// Example: "MYAPP_" transforms "server.port" to "MYAPP_SERVER_PORT"
	Prefix string

	// Transform customizes how field names map to variables
	// If nil, uses default transformation (dots to underscores, uppercase)
	Transform EnvTransformFunc

	// Lookup reads a variable; defaults to os.LookupEnv
	Lookup func(key string) (string, bool)
}

// Input builds a cast input from the environment.
// Recognized words are converted before the engine sees them: none/null/nil
// become nil, bool words become true or false. Everything else is passed on as a string.
func (a EnvAdapter) Input(schema *Schema) (map[string]any, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: schema is nil", ErrInvalidSchema)
	}

	transform := a.transform()
	lookup := a.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	input := make(map[string]any)
	for _, f := range schema.fields {
		envVar := transform(f.Name)
		raw, exists := lookup(envVar)
		if !exists {
			continue
		}
		if len(raw) > MaxValueSize {
			return nil, fmt.Errorf("%w: %s", ErrValueSize, envVar)
		}
		input[f.Name] = normalizeEnvValue(raw)
	}
	return input, nil
}

// Load casts the environment against schema. on_extra is forced to ignore.
func (a EnvAdapter) Load(schema *Schema, opts ...CastOption) (*Config, error) {
	input, err := a.Input(schema)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithSetting(SettingOnExtra, OptionIgnore))
	return Load(input, schema, opts...)
}

// Discover returns field name -> variable name for the variables present
func (a EnvAdapter) Discover(schema *Schema) map[string]string {
	transform := a.transform()
	lookup := a.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	discovered := make(map[string]string)
	for _, name := range schema.Names() {
		envVar := transform(name)
		if _, exists := lookup(envVar); exists {
			discovered[name] = envVar
		}
	}
	return discovered
}

// Export renders the stored values of c as environment variables.
// nil values are exported as the empty string.
func (a EnvAdapter) Export(c *Config) map[string]string {
	transform := a.transform()

	exports := make(map[string]string)
	for name, value := range c.AsMap() {
		s, err := String(value)
		if err != nil {
			s = fmt.Sprintf("%v", value)
		}
		exports[transform(name)] = s.(string)
	}
	return exports
}

// LoadEnv casts the environment against schema using the default transform with prefix
func LoadEnv(schema *Schema, prefix string, opts ...CastOption) (*Config, error) {
	return EnvAdapter{Prefix: prefix}.Load(schema, opts...)
}

func (a EnvAdapter) transform() EnvTransformFunc {
	if a.Transform != nil {
		return a.Transform
	}
	return defaultEnvTransform(a.Prefix)
}

// defaultEnvTransform creates the default environment variable transformer
func defaultEnvTransform(prefix string) EnvTransformFunc {
	return func(name string) string {
		env := strings.ReplaceAll(name, ".", "_")
		env = strings.ReplaceAll(env, "-", "_")
		env = strings.ToUpper(env)
		if prefix != "" {
			env = prefix + env
		}
		return env
	}
}

// normalizeEnvValue maps none and bool words for every field, whatever its caster
func normalizeEnvValue(raw string) any {
	if validNoneStr[strings.ToLower(strings.TrimSpace(raw))] {
		return nil
	}
	if b, err := ParseBool(raw); err == nil {
		return b
	}
	return raw
}
