package schema

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func todosSchema() Schema {
	return Schema{
		"ids":      Slice(String()),
		"entities": Object(nil),
		"loading":  Bool(),
		"error":    Optional(Any()),
		"ui": Object(Schema{
			"filter": String(),
			"page":   Optional(Int()),
		}),
	}
}

func TestValidate_Success(t *testing.T) {
	data := map[string]any{
		"ids":      []any{"1", "2"},
		"entities": map[string]any{"1": map[string]any{"id": "1"}},
		"loading":  false,
		"error":    nil,
		"ui":       map[string]any{"filter": "SHOW_ALL"},
		"extra":    "keys outside the schema are allowed",
	}
	if err := Validate(todosSchema(), data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_ReportsDottedKeysInOrder(t *testing.T) {
	data := map[string]any{
		"ids":      []any{"1", 2},
		"entities": map[string]any{},
		"ui":       map[string]any{"page": 1.5},
	}

	err := Validate(todosSchema(), data)
	if err == nil {
		t.Fatal("Validate() should fail")
	}

	var got []string
	for _, e := range ValidationErrors(err) {
		got = append(got, e.Key)
	}
	want := []string{"ids", "loading", "ui.filter", "ui.page"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestValidate_RequiredReason(t *testing.T) {
	err := Validate(Schema{"loading": Bool()}, map[string]any{})
	errs := ValidationErrors(err)
	if len(errs) != 1 {
		t.Fatalf("Validate() = %d errors, want 1", len(errs))
	}
	if errs[0].Reason != "required" || errs[0].Value != nil {
		t.Errorf("unexpected error: %+v", errs[0])
	}
}

func TestValidate_NilIsMissing(t *testing.T) {
	if err := Validate(Schema{"error": Any()}, map[string]any{"error": nil}); err == nil {
		t.Error("nil should not satisfy a required key")
	}
}

func TestValidate_OptionalObjectNested(t *testing.T) {
	schema := Schema{"config": Optional(Object(Schema{"time": String()}))}

	if err := Validate(schema, map[string]any{}); err != nil {
		t.Errorf("absent optional object error = %v", err)
	}

	errs := ValidationErrors(Validate(schema, map[string]any{"config": map[string]any{"time": 1}}))
	if len(errs) != 1 || errs[0].Key != "config.time" {
		t.Errorf("errors = %v, want one at config.time", errs)
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	if err := Validate(Schema{}, map[string]any{"anything": 1}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if err := Validate(nil, nil); err != nil {
		t.Errorf("Validate(nil) error = %v, want nil", err)
	}
}

func TestValidateFields(t *testing.T) {
	data := map[string]any{"loading": "yes", "ids": []any{}}

	if err := ValidateFields(todosSchema(), data, "ids"); err != nil {
		t.Errorf("ValidateFields(ids) error = %v", err)
	}
	if err := ValidateFields(todosSchema(), data); err != nil {
		t.Errorf("ValidateFields() with no fields error = %v", err)
	}

	errs := ValidationErrors(ValidateFields(todosSchema(), data, "loading", "unknown"))
	if len(errs) != 2 {
		t.Fatalf("ValidateFields() = %d errors, want 2", len(errs))
	}
	if errs[1].Key != "unknown" || errs[1].Reason != "not defined in schema" {
		t.Errorf("unexpected error: %+v", errs[1])
	}
}

func TestValidationError_String(t *testing.T) {
	err := &ValidationError{Key: "ui.page", Reason: "expected int", Value: "2"}
	if got := err.Error(); got != `field "ui.page": expected int (got string)` {
		t.Errorf("Error() = %q", got)
	}

	err = &ValidationError{Key: "loading", Reason: "required"}
	if got := err.Error(); got != `field "loading": required` {
		t.Errorf("Error() = %q", got)
	}
}

func TestAggregateError(t *testing.T) {
	aggr := &AggregateError{Errors: []*ValidationError{
		{Key: "a", Reason: "required"},
		{Key: "b", Reason: "required"},
	}}
	if !strings.HasPrefix(aggr.Error(), "2 validation errors:") {
		t.Errorf("Error() = %q", aggr.Error())
	}

	var ve *ValidationError
	if !errors.As(aggr, &ve) || ve.Key != "a" {
		t.Errorf("errors.As should reach the first failure, got %v", ve)
	}

	wrapped := fmt.Errorf("commit: %w", aggr)
	if len(ValidationErrors(wrapped)) != 2 {
		t.Error("ValidationErrors should unwrap")
	}
	if ValidationErrors(errors.New("other")) != nil {
		t.Error("ValidationErrors should be nil for other errors")
	}
}
