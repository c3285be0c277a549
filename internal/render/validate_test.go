package render

import (
	"testing"

	"github.com/opsdeck/backoffice/internal/pagedef"
)

func TestValidateRequired(t *testing.T) {
	schema := []pagedef.FieldSchema{
		{DataIndex: "name", Title: "Name", Rules: []pagedef.Rule{{Required: true}}},
		{DataIndex: "tags", Title: "Tags", Rules: []pagedef.Rule{{Required: true}}},
	}
	res := Validate(schema, map[string]any{"name": "", "tags": []any{}})
	if res.OK() {
		t.Fatal("expected failures for empty values")
	}
	if len(res.Errors) != 2 {
		t.Fatalf("errors = %d, want 2", len(res.Errors))
	}
	if res.Errors[0].Message != "Name is required" {
		t.Errorf("message = %q", res.Errors[0].Message)
	}

	res = Validate(schema, map[string]any{"name": "a", "tags": []any{"x"}})
	if !res.OK() {
		t.Errorf("unexpected errors: %+v", res.Errors)
	}
}

func TestValidatePattern(t *testing.T) {
	schema := []pagedef.FieldSchema{
		{DataIndex: "code", Title: "Code", Rules: []pagedef.Rule{
			{Pattern: `^[A-Z]{3}$`, Message: "three capital letters"},
		}},
	}
	res := Validate(schema, map[string]any{"code": "abc"})
	if res.OK() {
		t.Fatal("expected pattern failure")
	}
	if res.Errors[0].Message != "three capital letters" {
		t.Errorf("message = %q", res.Errors[0].Message)
	}

	// Empty optional values skip the pattern.
	if res := Validate(schema, map[string]any{}); !res.OK() {
		t.Errorf("absent optional value failed: %+v", res.Errors)
	}
}

func TestValidateBrokenPattern(t *testing.T) {
	schema := []pagedef.FieldSchema{
		{DataIndex: "v", Title: "V", Rules: []pagedef.Rule{{Pattern: `([`}}},
	}
	if res := Validate(schema, map[string]any{"v": "anything"}); !res.OK() {
		t.Errorf("broken pattern must not block submission: %+v", res.Errors)
	}
}

func TestValidateSkipsHidden(t *testing.T) {
	schema := []pagedef.FieldSchema{
		{DataIndex: "secret", Title: "Secret", HideInForm: true, Rules: []pagedef.Rule{{Required: true}}},
	}
	if res := Validate(schema, map[string]any{}); !res.OK() {
		t.Errorf("hidden field validated: %+v", res.Errors)
	}
}
