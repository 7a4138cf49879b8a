package mcp

import (
	"reflect"
	"testing"
)

func TestNormalizeIntegralFloats(t *testing.T) {
	n := NewNormalizer(nil)
	out := n.Normalize("tool", map[string]any{
		"count":  float64(5),
		"ratio":  1.5,
		"nested": map[string]any{"limit": float64(10)},
		"list":   []any{float64(1), float64(2)},
	})
	if out["count"] != 5 {
		t.Fatalf("expected int 5, got %T %v", out["count"], out["count"])
	}
	if out["ratio"] != 1.5 {
		t.Fatalf("non-integral float should survive: %v", out["ratio"])
	}
	nested := out["nested"].(map[string]any)
	if nested["limit"] != 10 {
		t.Fatalf("expected nested int, got %T", nested["limit"])
	}
	list := out["list"].([]any)
	if list[0] != 1 || list[1] != 2 {
		t.Fatalf("expected list ints, got %v", list)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	n := NewNormalizer(nil)
	in := map[string]any{"count": float64(5)}
	n.Normalize("tool", in)
	if _, ok := in["count"].(float64); !ok {
		t.Fatalf("input map mutated")
	}
}

func TestNormalizeFiltersKeepsValidEntries(t *testing.T) {
	n := NewNormalizer(nil)
	out := n.Normalize("ec2_list_instances", map[string]any{
		"filters": []any{
			map[string]any{"Name": "state", "Values": []any{"running"}},
			"bogus",
			map[string]any{"Name": "missing-values"},
			map[string]any{"Name": "vpc-id", "Values": []any{"vpc-1"}},
		},
	})
	filters := out["filters"].([]any)
	if len(filters) != 2 {
		t.Fatalf("expected two surviving filters, got %v", filters)
	}
	first := filters[0].(map[string]any)
	second := filters[1].(map[string]any)
	if first["Name"] != "state" || second["Name"] != "vpc-id" {
		t.Fatalf("expected order preserved, got %v", filters)
	}
}

func TestNormalizeFiltersMapWithAmazonOwner(t *testing.T) {
	n := NewNormalizer(nil)
	out := n.Normalize("ec2_search_amis", map[string]any{
		"filters": map[string]any{"owner": "amazon"},
	})
	filters, ok := out["filters"].([]any)
	if !ok || len(filters) != 2 {
		t.Fatalf("expected default filter pair, got %v", out["filters"])
	}
	first := filters[0].(map[string]any)
	if first["Name"] != "state" {
		t.Fatalf("expected state filter first, got %v", first)
	}
	second := filters[1].(map[string]any)
	if second["Name"] != "architecture" {
		t.Fatalf("expected architecture filter second, got %v", second)
	}
}

func TestNormalizeFiltersDropsGarbage(t *testing.T) {
	n := NewNormalizer(nil)
	out := n.Normalize("tool", map[string]any{"filters": "not-a-list"})
	if _, present := out["filters"]; present {
		t.Fatalf("malformed filters should be removed, got %v", out["filters"])
	}
	out = n.Normalize("tool", map[string]any{"filters": []any{"junk", 42}})
	if _, present := out["filters"]; present {
		t.Fatalf("all-invalid filters should be removed, got %v", out["filters"])
	}
}

func TestNormalizeOwners(t *testing.T) {
	n := NewNormalizer(nil)

	out := n.Normalize("tool", map[string]any{"owners": "amazon"})
	if !reflect.DeepEqual(out["owners"], []string{"amazon"}) {
		t.Fatalf("scalar owner should be wrapped: %v", out["owners"])
	}

	out = n.Normalize("tool", map[string]any{"owners": []any{"amazon", "self"}})
	if !reflect.DeepEqual(out["owners"], []string{"amazon", "self"}) {
		t.Fatalf("list owners should be stringified: %v", out["owners"])
	}

	out = n.Normalize("tool", map[string]any{"owners": map[string]any{"Name": "owner"}})
	if !reflect.DeepEqual(out["owners"], []string{"amazon"}) {
		t.Fatalf("object owners should fall back to amazon: %v", out["owners"])
	}
}

func TestNormalizeNilArgs(t *testing.T) {
	n := NewNormalizer(nil)
	out := n.Normalize("tool", nil)
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty map for nil args, got %v", out)
	}
}
