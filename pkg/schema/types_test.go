package schema

import (
	"fmt"
	"strings"
	"testing"
)

func TestStringType(t *testing.T) {
	typ := String()

	if typ.Name() != "string" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "string")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{"hello", false},
		{"", false},
		{42, true},
		{3.14, true},
		{true, true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestIntType(t *testing.T) {
	typ := Int()

	if typ.Name() != "int" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "int")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{42, false},
		{int8(42), false},
		{int16(42), false},
		{int32(42), false},
		{int64(42), false},
		{float64(42), false},     // whole number
		{float64(42.5), true},    // not whole
		{"42", true},
		{true, true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestFloatType(t *testing.T) {
	typ := Float()

	if typ.Name() != "float" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "float")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{3.14, false},
		{float32(3.14), false},
		{42, false},
		{int64(42), false},
		{"3.14", true},
		{true, true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestBoolType(t *testing.T) {
	typ := Bool()

	if typ.Name() != "bool" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "bool")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{true, false},
		{false, false},
		{1, true},
		{"true", true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestSliceType(t *testing.T) {
	stringSlice := Slice(String())
	intSlice := Slice(Int())
	stringStringSlice := Slice(Slice(String()))

	tests := []struct {
		typ     Type
		value   any
		wantErr bool
		desc    string
	}{
		// String slices
		{stringSlice, []string{"a", "b"}, false, "string slice"},
		{stringSlice, []string{}, false, "empty string slice"},
		{stringSlice, []interface{}{"a", "b"}, false, "any slice with strings"},
		{stringSlice, []int{1, 2}, true, "slice of ints when expecting strings"},
		{stringSlice, "not a slice", true, "string instead of slice"},
		// Int slices
		{intSlice, []int{1, 2, 3}, false, "int slice"},
		{intSlice, []interface{}{1, 2, 3}, false, "any slice with ints"},
		{intSlice, []interface{}{1, "2", 3}, true, "mixed slice"},
		// Nested slices
		{stringStringSlice, [][]string{{"a"}, {"b"}}, false, "nested string slice"},
		{stringStringSlice, [][]string{{"a"}, {"b", "c"}}, false, "nested string slice different lengths"},
	}

	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate(%v) error = %v, wantErr %v", tt.desc, tt.value, err, tt.wantErr)
		}
	}
}

func TestCustomType(t *testing.T) {
	evenNumber := Custom("even", func(v any) error {
		i, ok := v.(int)
		if !ok {
			return ErrCustomValidation("not an int")
		}
		if i%2 != 0 {
			return ErrCustomValidation("not even")
		}
		return nil
	})

	if evenNumber.Name() != "even" {
		t.Errorf("Name() = %q, want %q", evenNumber.Name(), "even")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{2, false},
		{4, false},
		{1, true},
		{3, true},
		{"2", true},
	}

	for _, tt := range tests {
		err := evenNumber.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantErr  bool
		wantName string
	}{
		{"string", false, "string"},
		{"int", false, "int"},
		{"float", false, "float"},
		{"bool", false, "bool"},
		{"[string]", false, "[string]"},
		{"[int]", false, "[int]"},
		{"[[string]]", false, "[[string]]"},
		{"any", false, "any"},
		{"object", false, "object"},
		{"string?", false, "string?"},
		{"[int]?", false, "[int]?"},
		{"{bool}", false, "{bool}"},
		{"{[string]}", false, "{[string]}"},
		{"invalid", true, ""},
		{"invalid?", true, ""},
		{"[invalid]", true, ""},
	}

	for _, tt := range tests {
		typ, err := ParseType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && typ.Name() != tt.wantName {
			t.Errorf("ParseType(%q) Name() = %q, want %q", tt.input, typ.Name(), tt.wantName)
		}
	}
}

func TestParseTypeMap(t *testing.T) {
	typeMap := map[string]string{
		"api_key": "string",
		"retries": "int",
		"timeout": "float",
		"enabled": "bool",
		"tags":    "[string]",
	}

	schema, err := ParseTypeMap(typeMap)
	if err != nil {
		t.Fatalf("ParseTypeMap() error = %v", err)
	}

	if len(schema) != len(typeMap) {
		t.Errorf("ParseTypeMap() len = %d, want %d", len(schema), len(typeMap))
	}

	if schema["api_key"].Name() != "string" {
		t.Error("api_key type should be string")
	}
	if schema["retries"].Name() != "int" {
		t.Error("retries type should be int")
	}
	if schema["tags"].Name() != "[string]" {
		t.Error("tags type should be [string]")
	}
}

func TestParseTypeMap_Dotted(t *testing.T) {
	schema, err := ParseTypeMap(map[string]string{
		"ui":          "object",
		"ui.filter":   "string",
		"ui.page":     "int?",
		"config.time": "string",
	})
	if err != nil {
		t.Fatalf("ParseTypeMap() error = %v", err)
	}

	ui, ok := schema["ui"].(*ObjectType)
	if !ok {
		t.Fatalf("ui should be an object, got %T", schema["ui"])
	}
	if ui.fields["filter"].Name() != "string" || ui.fields["page"].Name() != "int?" {
		t.Errorf("unexpected ui fields: %v", ui.fields)
	}
	if _, ok := schema["config"].(*ObjectType); !ok {
		t.Errorf("config should be created as an object, got %T", schema["config"])
	}

	tree := map[string]any{
		"ui":     map[string]any{"filter": "SHOW_ALL"},
		"config": map[string]any{"time": "noon"},
	}
	if err := Validate(schema, tree); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParseTypeMap_Conflict(t *testing.T) {
	_, err := ParseTypeMap(map[string]string{
		"ui":        "string",
		"ui.filter": "string",
	})
	if err == nil {
		t.Fatal("ParseTypeMap() should reject a scalar with children")
	}
}

func TestTypeMapRoundTrip(t *testing.T) {
	in := map[string]string{
		"loading":   "bool",
		"ui.filter": "string",
		"tags":      "[string]",
		"error":     "any?",
	}
	schema, err := ParseTypeMap(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := schema.TypeMap()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("TypeMap() = %v, want %v", out, in)
	}
	for k, v := range in {
		if out[k] != v {
			t.Errorf("TypeMap()[%q] = %q, want %q", k, out[k], v)
		}
	}
}

func TestOptionalType(t *testing.T) {
	typ := Optional(Optional(Int()))
	if typ.Name() != "int?" {
		t.Errorf("Name() = %q, want int?", typ.Name())
	}
	if err := typ.Validate(nil); err != nil {
		t.Errorf("Validate(nil) error = %v", err)
	}
	if err := typ.Validate("x"); err == nil {
		t.Error("Validate(\"x\") should fail")
	}
}

func TestMapType(t *testing.T) {
	typ := Map(Object(Schema{"id": String()}))
	ok := map[string]any{"1": map[string]any{"id": "1"}, "2": map[string]any{"id": "2"}}
	if err := typ.Validate(ok); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := typ.Validate(map[string]any{}); err != nil {
		t.Errorf("empty map error = %v", err)
	}
	bad := map[string]any{"1": map[string]any{"id": "1"}, "2": map[string]any{}}
	if err := typ.Validate(bad); err == nil || !strings.Contains(err.Error(), `key "2"`) {
		t.Errorf("Validate() error = %v, want failure at key 2", err)
	}
}

func TestObjectType(t *testing.T) {
	typ := Object(Schema{"filter": String()})
	if err := typ.Validate(map[string]any{"filter": "SHOW_ALL"}); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := typ.Validate(map[string]any{}); err == nil {
		t.Error("missing nested field should fail")
	}
	if err := typ.Validate([]any{}); err == nil {
		t.Error("non-object should fail")
	}
	if err := Object(nil).Validate(map[string]any{"x": 1}); err != nil {
		t.Errorf("nil schema should accept any record, got %v", err)
	}
}

func TestParseTypeMapError(t *testing.T) {
	typeMap := map[string]string{
		"api_key": "invalid",
	}

	_, err := ParseTypeMap(typeMap)
	if err == nil {
		t.Fatal("ParseTypeMap() should return error for invalid type")
	}
}

// Helper function for custom validators
func ErrCustomValidation(msg string) error {
	return fmt.Errorf("%s", msg)
}
