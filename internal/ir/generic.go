package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToGeneric converts an arbitrary Go value into the map/slice/json.Number
// tree produced by decoding its JSON encoding.
func ToGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T: %w", v, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("re-decode %T: %w", v, err)
	}
	return out, nil
}

// IsGeneric reports whether v is already part of a generic JSON tree: nil,
// a scalar, a map[string]any or a []any. Nested values are not inspected.
func IsGeneric(v any) bool {
	switch v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		map[string]any, []any:
		return true
	default:
		return false
	}
}

// Clone returns a deep copy of a generic JSON tree. Objects and lists are
// copied at every level; any other value is shared.
func Clone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if val == nil {
			return val
		}
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = Clone(elem)
		}
		return out
	case []any:
		if val == nil {
			return val
		}
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	default:
		return v
	}
}
