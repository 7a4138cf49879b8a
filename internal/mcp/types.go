package mcp

import (
	"context"
	"sort"

	"awspanel/internal/audit"
	awsx "awspanel/internal/aws"
	"awspanel/internal/config"
	"awspanel/internal/redact"
)

type ToolSafety string

const (
	SafetyReadOnly    ToolSafety = "read_only"
	SafetyWrite       ToolSafety = "write"
	SafetyDestructive ToolSafety = "destructive"
)

type ToolHandler func(ctx context.Context, req ToolRequest) (ToolResult, error)

// ParamSpec describes one named parameter of a tool. Array parameters carry
// an Items spec, object parameters a nested Properties schema.
type ParamSpec struct {
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
	Required    bool        `json:"required,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
	Items       *ParamSpec  `json:"items,omitempty"`
	Properties  ParamSchema `json:"properties,omitempty"`
	Default     any         `json:"default,omitempty"`
}

// ParamSchema maps parameter names to their specs.
type ParamSchema map[string]ParamSpec

// RequiredNames returns the sorted names of all required parameters.
func (s ParamSchema) RequiredNames() []string {
	var names []string
	for name, spec := range s {
		if spec.Required {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// JSONSchema projects the schema into a plain JSON-schema object map, the
// shape the MCP SDK expects as a tool input schema.
func (s ParamSchema) JSONSchema() map[string]any {
	properties := map[string]any{}
	for name, spec := range s {
		properties[name] = spec.jsonSchema()
	}
	out := map[string]any{"type": "object", "properties": properties}
	if required := s.RequiredNames(); len(required) > 0 {
		out["required"] = required
	}
	return out
}

func (p ParamSpec) jsonSchema() map[string]any {
	out := map[string]any{"type": p.Type}
	if p.Description != "" {
		out["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		out["enum"] = p.Enum
	}
	if p.Items != nil {
		out["items"] = p.Items.jsonSchema()
	}
	if len(p.Properties) > 0 {
		props := map[string]any{}
		for name, spec := range p.Properties {
			props[name] = spec.jsonSchema()
		}
		out["properties"] = props
	}
	if p.Default != nil {
		out["default"] = p.Default
	}
	return out
}

type ToolSpec struct {
	Name        string
	Description string
	Category    string
	Parameters  ParamSchema
	Safety      ToolSafety
	Handler     ToolHandler
}

type ToolInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  ParamSchema `json:"parameters"`
}

type ToolRequest struct {
	Arguments map[string]any
	Context   ToolContext
}

type ToolResult struct {
	Data any
}

// ToolCallResult is one dispatched call: the tool name, the normalized
// arguments it ran with and the payload it produced. Err is set for
// operation failures and unknown names; the payload always carries a
// serializable error description in that case.
type ToolCallResult struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"args"`
	Result    any            `json:"result"`
	Err       error          `json:"-"`
}

type ToolContext struct {
	Config     *config.Config
	AWS        *awsx.ClientSet
	Redactor   *redact.Redactor
	Audit      *audit.Logger
	Registry   Registry
	Dispatcher *Dispatcher
}

type ToolsetContext = ToolContext
