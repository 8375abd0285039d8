package schema

import (
	"encoding/json"
	"fmt"
)

// TypeMap flattens the schema into type strings, the form ParseTypeMap
// reads. Records with declared fields become dotted keys.
func (s Schema) TypeMap() (map[string]string, error) {
	out := make(map[string]string, len(s))
	if err := s.flatten("", out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s Schema) flatten(prefix string, out map[string]string) error {
	for key, typ := range s {
		if typ == nil {
			return fmt.Errorf("field %s%s: type is nil", prefix, key)
		}
		if obj, ok := typ.(*ObjectType); ok && len(obj.fields) > 0 {
			if err := obj.fields.flatten(prefix+key+".", out); err != nil {
				return err
			}
			continue
		}
		out[prefix+key] = typ.Name()
	}
	return nil
}

// MarshalJSON serializes the schema as a map of field names to type strings.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	raw, err := s.TypeMap()
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

// UnmarshalJSON deserializes the schema from a map of field names to type strings.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}

	if string(data) == "null" {
		*s = nil
		return nil
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := ParseTypeMap(raw)
	if err != nil {
		return err
	}

	*s = parsed
	return nil
}

// UnmarshalYAML lets configuration files declare schemas as type maps.
func (s *Schema) UnmarshalYAML(unmarshal func(any) error) error {
	var raw map[string]string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseTypeMap(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
