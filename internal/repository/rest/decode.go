package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// envelopeKeys are the wrapper keys the backend may nest a payload under.
var envelopeKeys = []string{"data", "results", "items"}

// decodeList decodes a bare JSON array or an array nested under one of
// keys (or the common envelope keys).
func decodeList[T any](body []byte, keys ...string) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []T{}, nil
	}

	var out []T
	if body[0] == '[' {
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return out, nil
	}

	raw, err := unwrap(body, keys)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// decodeObject decodes an object that may be nested under one of keys.
// An empty body leaves dst untouched and reports false.
func decodeObject(body []byte, dst any, keys ...string) (bool, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return false, nil
	}
	raw, err := unwrap(body, keys)
	if err != nil {
		raw = body
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode object: %w", err)
	}
	return true, nil
}

func unwrap(body []byte, keys []string) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	for _, k := range append(keys, envelopeKeys...) {
		if raw, ok := fields[k]; ok && len(bytes.TrimSpace(raw)) > 0 && string(raw) != "null" {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("decode envelope: none of %v present", append(keys, envelopeKeys...))
}

// wireID sends numeric ids as JSON numbers, which integer-keyed backends require.
func wireID(id *string) any {
	if id == nil {
		return nil
	}
	if n, err := strconv.ParseInt(*id, 10, 64); err == nil && strconv.FormatInt(n, 10) == *id {
		return json.Number(*id)
	}
	return *id
}
