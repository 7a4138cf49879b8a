package mcp

import (
	"reflect"
	"testing"
)

func TestAsString(t *testing.T) {
	args := map[string]any{"name": "web", "count": 3}
	if AsString(args, "name") != "web" {
		t.Fatalf("expected string value")
	}
	if AsString(args, "count") != "" {
		t.Fatalf("non-string should yield empty")
	}
	if AsStringDefault(args, "absent", "fallback") != "fallback" {
		t.Fatalf("expected fallback")
	}
}

func TestAsInt(t *testing.T) {
	args := map[string]any{"a": 4, "b": float64(5), "c": "6", "d": "junk"}
	if AsInt(args, "a", 0) != 4 || AsInt(args, "b", 0) != 5 || AsInt(args, "c", 0) != 6 {
		t.Fatalf("coercion failed")
	}
	if AsInt(args, "d", 9) != 9 || AsInt(args, "absent", 9) != 9 {
		t.Fatalf("expected fallback")
	}
}

func TestAsBool(t *testing.T) {
	args := map[string]any{"a": true, "b": "true", "c": "yes"}
	if !AsBool(args, "a") || !AsBool(args, "b") {
		t.Fatalf("expected true")
	}
	if AsBool(args, "c") || AsBool(args, "absent") {
		t.Fatalf("expected false")
	}
}

func TestAsStringSlice(t *testing.T) {
	args := map[string]any{
		"list":   []any{"a", 1},
		"scalar": "solo",
		"empty":  "",
	}
	if !reflect.DeepEqual(AsStringSlice(args, "list"), []string{"a", "1"}) {
		t.Fatalf("list coercion failed: %v", AsStringSlice(args, "list"))
	}
	if !reflect.DeepEqual(AsStringSlice(args, "scalar"), []string{"solo"}) {
		t.Fatalf("scalar wrap failed")
	}
	if AsStringSlice(args, "empty") != nil || AsStringSlice(args, "absent") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestAsMapSlice(t *testing.T) {
	args := map[string]any{
		"rules": []any{
			map[string]any{"port": 80},
			"junk",
			map[string]any{"port": 443},
		},
	}
	rules := AsMapSlice(args, "rules")
	if len(rules) != 2 || rules[1]["port"] != 443 {
		t.Fatalf("unexpected rules: %v", rules)
	}
}

func TestParamSchemaRequiredNames(t *testing.T) {
	schema := ParamSchema{
		"b_required": {Type: "string", Required: true},
		"a_required": {Type: "string", Required: true},
		"optional":   {Type: "string"},
	}
	names := schema.RequiredNames()
	if !reflect.DeepEqual(names, []string{"a_required", "b_required"}) {
		t.Fatalf("expected sorted required names, got %v", names)
	}
}

func TestParamSchemaJSONSchema(t *testing.T) {
	schema := ParamSchema{
		"tags": {Type: "array", Items: &ParamSpec{Type: "string"}},
		"name": {Type: "string", Required: true, Enum: []string{"a", "b"}},
	}
	out := schema.JSONSchema()
	if out["type"] != "object" {
		t.Fatalf("expected object schema")
	}
	required := out["required"].([]string)
	if len(required) != 1 || required[0] != "name" {
		t.Fatalf("unexpected required: %v", required)
	}
	props := out["properties"].(map[string]any)
	tags := props["tags"].(map[string]any)
	items := tags["items"].(map[string]any)
	if items["type"] != "string" {
		t.Fatalf("unexpected items schema: %v", items)
	}
}
