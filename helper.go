// FILE: lixenwraith/datacast/helper.go
package datacast

import (
	"encoding/json"
	"strings"
)

// flattenMap converts a nested map[string]any to a flat map[string]any with dot-notation keys.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		newKey := key
		if prefix != "" {
			newKey = prefix + "." + key
		}

		// Non-empty tables are flattened; empty tables stay leaf values
		if nestedMap, isMap := value.(map[string]any); isMap && len(nestedMap) > 0 {
			for subKey, subValue := range flattenMap(nestedMap, newKey) {
				flat[subKey] = subValue
			}
		} else {
			flat[newKey] = value
		}
	}

	return flat
}

// setNestedValue sets a value in a nested map using a dot-notation key.
// It creates intermediate maps if they don't exist.
// If a segment exists but is not a map, it will be overwritten by a new map.
func setNestedValue(nested map[string]any, key string, value any) {
	segments := strings.Split(key, ".")
	current := nested

	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]

		next, exists := current[segment]
		if nextMap, isMap := next.(map[string]any); exists && isMap {
			current = nextMap
			continue
		}
		newMap := make(map[string]any)
		current[segment] = newMap
		current = newMap
	}

	current[segments[len(segments)-1]] = value
}

// nestMap turns a flat dot-notation map back into nested tables.
func nestMap(flat map[string]any) map[string]any {
	nested := make(map[string]any, len(flat))
	for key, value := range flat {
		setNestedValue(nested, key, value)
	}
	return nested
}

// normalizeNumbers replaces json.Number values with int, or float64 when not integral.
func normalizeNumbers(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		for k, elem := range v {
			v[k] = normalizeNumbers(elem)
		}
		return v
	case []any:
		for i, elem := range v {
			v[i] = normalizeNumbers(elem)
		}
		return v
	}
	return value
}
