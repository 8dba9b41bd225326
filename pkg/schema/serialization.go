package schema

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON writes the schema as attribute names mapped to type names,
// e.g. {"turbo":"bool?"}.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	names := make(map[string]string, len(s))
	for attr, t := range s {
		if t == nil {
			return nil, fmt.Errorf("attribute %s: nil type", attr)
		}
		names[attr] = t.Name()
	}
	return json.Marshal(names)
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var names map[string]string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if names == nil {
		*s = nil
		return nil
	}
	parsed, err := ParseTypeMap(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
