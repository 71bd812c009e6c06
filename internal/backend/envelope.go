package backend

import (
	"bytes"
	"encoding/json"
)

// The backend is loose about response shapes: list endpoints sometimes
// return a bare array and sometimes wrap it ({"data": [...]},
// {"messages": [...]}, {"orders": [...]}). These two decoders are the single
// normalization boundary; nothing downstream branches on shape.

func decodeList[T any](raw json.RawMessage, keys ...string) ([]T, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	for _, key := range append(keys, "data") {
		inner, ok := wrapped[key]
		if !ok {
			continue
		}
		var out []T
		if err := json.Unmarshal(inner, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	// Wrapped object with none of the known keys: treat as empty rather
	// than failing the whole surface.
	return nil, nil
}

func decodeObject[T any](raw json.RawMessage, keys ...string) (T, error) {
	var zero T

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return zero, err
	}
	for _, key := range append(keys, "data") {
		if inner, ok := wrapped[key]; ok {
			var out T
			if err := json.Unmarshal(inner, &out); err != nil {
				return zero, err
			}
			return out, nil
		}
	}

	// Bare object.
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, err
	}
	return out, nil
}
