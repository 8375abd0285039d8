package schema

import (
	"errors"
	"sort"
)

// Schema is a map of field names to their expected types.
// Example: {"filter": String(), "page": Int(), "tags": Slice(String())}
type Schema map[string]Type

// Validate checks if data conforms to the schema. Keys not named by the
// schema are allowed. It returns an *AggregateError carrying every failure,
// ordered by key.
func Validate(schema Schema, data map[string]any) error {
	if errs := validate(schema, data, ""); len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateFields validates only specific top-level fields against the schema.
// Fields the schema does not declare are reported.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	var errs []*ValidationError
	for _, name := range fields {
		if _, ok := schema[name]; !ok {
			errs = append(errs, &ValidationError{Key: name, Reason: "not defined in schema"})
			continue
		}
		errs = append(errs, validate(Schema{name: schema[name]}, data, "")...)
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func validate(schema Schema, data map[string]any, prefix string) []*ValidationError {
	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []*ValidationError
	for _, name := range keys {
		fieldType := schema[name]
		key := prefix + name

		value, exists := data[name]
		if !exists || value == nil {
			if _, optional := fieldType.(*OptionalType); optional {
				continue
			}
			errs = append(errs, &ValidationError{Key: key, Reason: "required"})
			continue
		}

		if obj, ok := fieldType.(*ObjectType); ok {
			m, isMap := value.(map[string]any)
			if !isMap {
				errs = append(errs, &ValidationError{Key: key, Reason: "expected object", Value: value})
				continue
			}
			errs = append(errs, validate(obj.fields, m, key+".")...)
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			// Optional objects report nested failures under their own keys.
			var aggr *AggregateError
			if errors.As(err, &aggr) {
				for _, e := range aggr.Errors {
					errs = append(errs, &ValidationError{Key: key + "." + e.Key, Reason: e.Reason, Value: e.Value})
				}
				continue
			}
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}
	return errs
}
