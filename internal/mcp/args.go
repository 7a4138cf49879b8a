package mcp

import (
	"fmt"
	"strconv"
)

// Argument coercion helpers. Handlers read model-supplied map[string]any
// arguments; these accept the loose types that survive JSON decoding and
// normalization.

func AsString(args map[string]any, key string) string {
	if value, ok := args[key]; ok {
		if s, isStr := value.(string); isStr {
			return s
		}
	}
	return ""
}

func AsStringDefault(args map[string]any, key, fallback string) string {
	if s := AsString(args, key); s != "" {
		return s
	}
	return fallback
}

func AsInt(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func AsBool(args map[string]any, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

func AsStringSlice(args map[string]any, key string) []string {
	switch v := args[key].(type) {
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
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

func AsMap(args map[string]any, key string) map[string]any {
	if value, ok := args[key].(map[string]any); ok {
		return value
	}
	return nil
}

func AsMapSlice(args map[string]any, key string) []map[string]any {
	list, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, isMap := item.(map[string]any); isMap {
			out = append(out, m)
		}
	}
	return out
}
