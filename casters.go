// FILE: lixenwraith/datacast/casters.go
package datacast

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	validNoneStr = map[string]bool{"none": true, "null": true, "nil": true}
	validBoolStr = map[string]bool{
		"true": true, "t": true, "yes": true, "y": true, "on": true, "1": true,
		"false": false, "f": false, "no": false, "n": false, "off": false, "0": false, "": false,
	}
)

// Int converts numbers, booleans and base-10 strings to int.
// Floats are truncated toward zero.
func Int(value any) (any, error) {
	if value == nil {
		return nil, fmt.Errorf("cannot convert nil to int")
	}
	if n, ok := value.(int); ok {
		return n, nil
	}
	if n, ok := value.(json.Number); ok {
		value = string(n)
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := v.Int()
		if i > math.MaxInt || i < math.MinInt {
			return nil, fmt.Errorf("cannot convert %d (type %T) to int: overflow", i, value)
		}
		return int(i), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt {
			return nil, fmt.Errorf("cannot convert %d (type %T) to int: overflow", u, value)
		}
		return int(u), nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("cannot convert %v to int", f)
		}
		if f > math.MaxInt || f < math.MinInt {
			return nil, fmt.Errorf("cannot convert %v to int: overflow", f)
		}
		return int(f), nil
	case reflect.String:
		s := strings.TrimSpace(v.String())
		i, err := strconv.ParseInt(s, 10, 0)
		if err != nil {
			return nil, fmt.Errorf("cannot convert string %q to int: %w", v.String(), err)
		}
		return int(i), nil
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return nil, fmt.Errorf("cannot convert type %T to int", value)
}

// Float converts numbers, booleans and numeric strings to float64.
func Float(value any) (any, error) {
	if value == nil {
		return nil, fmt.Errorf("cannot convert nil to float64")
	}
	if n, ok := value.(json.Number); ok {
		value = string(n)
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), nil
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert string %q to float64: %w", v.String(), err)
		}
		return f, nil
	case reflect.Bool:
		if v.Bool() {
			return 1.0, nil
		}
		return 0.0, nil
	}

	return nil, fmt.Errorf("cannot convert type %T to float64", value)
}

// String renders common types as a string.
// Nil becomes the empty string, not a "None"-style placeholder, so a missing
// value never turns into non-empty text.
func String(value any) (any, error) {
	if value == nil {
		return "", nil
	}
	if s, ok := value.(string); ok {
		return s, nil
	}

	switch v := value.(type) {
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(value).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(value).Uint(), 10), nil
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(value).Float(), 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case error:
		return v.Error(), nil
	default:
		return nil, fmt.Errorf("cannot convert type %T to string", value)
	}
}

// Bool reports the truthiness of a value: zero numbers, empty strings and
// empty collections are false, nil is false, everything else is true.
// Use ParseBool to interpret words such as "off".
func Bool(value any) (any, error) {
	if value == nil {
		return false, nil
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return v.Float() != 0, nil
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return v.Len() > 0, nil
	case reflect.Ptr, reflect.Interface, reflect.Func:
		return !v.IsNil(), nil
	}
	return true, nil
}

// ParseBool interprets true/t/yes/y/on/1 and false/f/no/n/off/0/"" in any case.
func ParseBool(value any) (any, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("cannot parse type %T as bool", value)
	}
	if b, found := validBoolStr[strings.ToLower(strings.TrimSpace(s))]; found {
		return b, nil
	}
	return nil, fmt.Errorf("cannot parse string %q as bool", s)
}

// ParseNone maps none/null/nil in any case to nil and rejects everything else.
func ParseNone(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("cannot parse type %T as none", value)
	}
	if validNoneStr[strings.ToLower(strings.TrimSpace(s))] {
		return nil, nil
	}
	return nil, fmt.Errorf("cannot parse string %q as none", s)
}

// Guess converts a string into its most probable type, trying int, float,
// none and bool in that order. Unrecognized strings and non-strings are returned unchanged.
func Guess(value any) (any, error) {
	if _, ok := value.(string); !ok {
		return value, nil
	}
	for _, fn := range []Func{Int, Float, ParseNone, ParseBool} {
		if out, err := fn(value); err == nil {
			return out, nil
		}
	}
	return value, nil
}

// Strip trims leading and trailing white space from a string.
func Strip(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("cannot strip type %T", value)
	}
	return strings.TrimSpace(s), nil
}

// Lower lower-cases a string.
func Lower(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("cannot lower-case type %T", value)
	}
	return strings.ToLower(s), nil
}

// Upper upper-cases a string.
func Upper(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("cannot upper-case type %T", value)
	}
	return strings.ToUpper(s), nil
}

// Duration converts a duration string ("2m30s") or integer nanoseconds to time.Duration.
func Duration(value any) (any, error) {
	switch v := value.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("cannot convert string %q to duration: %w", v, err)
		}
		return d, nil
	}
	n, err := Int(value)
	if err != nil {
		return nil, fmt.Errorf("cannot convert type %T to duration", value)
	}
	return time.Duration(n.(int)), nil
}

// Split returns a caster that splits a string on sep into a []string.
// Slices of strings pass through; an empty string yields an empty slice.
func Split(sep string) Func {
	return func(value any) (any, error) {
		switch v := value.(type) {
		case []string:
			return v, nil
		case string:
			if v == "" {
				return []string{}, nil
			}
			parts := strings.Split(v, sep)
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts, nil
		}
		return nil, fmt.Errorf("cannot split type %T", value)
	}
}

// sameFunc reports whether two Funcs refer to the same function.
func sameFunc(a, b Func) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
