package mcp

import "fmt"

// Normalizer repairs the argument shapes language models commonly get
// wrong before dispatch. It is strictly best-effort: malformed input is
// fixed or dropped with a warning, never rejected.
type Normalizer struct {
	warn func(format string, args ...any)
}

func NewNormalizer(warn func(format string, args ...any)) *Normalizer {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	return &Normalizer{warn: warn}
}

// Normalize returns a repaired copy of args. The input map is not mutated.
func (n *Normalizer) Normalize(tool string, args map[string]any) map[string]any {
	if args == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(args))
	for key, value := range args {
		out[key] = normalizeValue(value)
	}
	if raw, ok := out["filters"]; ok {
		filters, keep := n.repairFilters(tool, raw)
		if keep {
			out["filters"] = filters
		} else {
			delete(out, "filters")
		}
	}
	if raw, ok := out["owners"]; ok {
		out["owners"] = n.repairOwners(tool, raw)
	}
	return out
}

// normalizeValue converts integral float64 values (the JSON decoder's
// representation of every number) to int, recursing through containers.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
		return v
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}

// repairFilters keeps only entries shaped like {Name, Values} EC2 filters,
// preserving order. Models frequently emit a filters map or bare strings;
// a lone map hinting at amazon-owned images becomes the conventional
// default filter pair. An empty result removes the key entirely.
func (n *Normalizer) repairFilters(tool string, raw any) ([]any, bool) {
	list, ok := raw.([]any)
	if !ok {
		if m, isMap := raw.(map[string]any); isMap && hintsAmazonOwner(m) {
			n.warn("tool %s: filters map replaced with default amazon image filters", tool)
			return defaultAmazonFilters(), true
		}
		n.warn("tool %s: dropping malformed filters of type %T", tool, raw)
		return nil, false
	}
	kept := make([]any, 0, len(list))
	for _, entry := range list {
		m, isMap := entry.(map[string]any)
		if !isMap {
			n.warn("tool %s: dropping non-object filter entry %v", tool, entry)
			continue
		}
		name, hasName := m["Name"]
		values, hasValues := m["Values"]
		if !hasName || !hasValues {
			n.warn("tool %s: dropping filter entry missing Name/Values: %v", tool, m)
			continue
		}
		kept = append(kept, map[string]any{"Name": name, "Values": values})
	}
	if len(kept) == 0 {
		n.warn("tool %s: no valid filter entries remain, removing filters", tool)
		return nil, false
	}
	return kept, true
}

// repairOwners coerces the owners argument to a string list. A scalar is
// wrapped, a list is stringified element-wise, and a map (the model
// confusing owners with a filter object) falls back to ["amazon"].
func (n *Normalizer) repairOwners(tool string, raw any) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprintf("%v", item))
			}
		}
		return out
	case map[string]any:
		n.warn("tool %s: owners given as object, assuming [\"amazon\"]", tool)
		return []string{"amazon"}
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}

func hintsAmazonOwner(m map[string]any) bool {
	for _, key := range []string{"owner", "owners", "Owner", "Owners"} {
		if value, ok := m[key]; ok {
			if s, isStr := value.(string); isStr && s == "amazon" {
				return true
			}
		}
	}
	return false
}

func defaultAmazonFilters() []any {
	return []any{
		map[string]any{"Name": "state", "Values": []any{"available"}},
		map[string]any{"Name": "architecture", "Values": []any{"x86_64"}},
	}
}
