package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// flexID decodes an id sent either as a JSON number or a JSON string.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = flexID(n.String())
	return nil
}

// ptr returns nil for an absent or empty id.
func (id *flexID) ptr() *string {
	if id == nil || *id == "" {
		return nil
	}
	s := string(*id)
	return &s
}

// firstID returns the first id that is set.
func firstID(ids ...*flexID) *flexID {
	for _, id := range ids {
		if id != nil && *id != "" {
			return id
		}
	}
	return nil
}
