package httputil

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OptionalID tracks presence and value of an id field in a JSON PATCH body (RFC 7396).
// A *string cannot tell "absent" from "null":
//   - Present=false: field absent (leave as is)
//   - Present=true, Value=nil: field is null (move to root level)
//   - Present=true, Value=&"12": field holds an id, sent as a string or a number
type OptionalID struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called when the field is present.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Present = true

	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			// empty string also means root level
			o.Value = nil
			return nil
		}
		o.Value = &s
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string, number or null")
	}
	s := n.String()
	o.Value = &s
	return nil
}
