// Package sdk is the stable surface for out-of-tree toolsets. It re-exports
// the types a toolset needs to register tools and talk to AWS without
// importing internal packages directly.
package sdk

import (
	awsx "awspanel/internal/aws"
	"awspanel/internal/mcp"
	"awspanel/internal/redact"
)

// Core toolset interfaces and types.
type Toolset = mcp.Toolset

type ToolsetContext = mcp.ToolsetContext

type ToolSpec = mcp.ToolSpec

type ToolHandler = mcp.ToolHandler

type ToolSafety = mcp.ToolSafety

type ToolRequest = mcp.ToolRequest

type ToolResult = mcp.ToolResult

type ParamSpec = mcp.ParamSpec

type ParamSchema = mcp.ParamSchema

type Registry = mcp.Registry

type Resolver = mcp.Resolver

const (
	SafetyReadOnly    = mcp.SafetyReadOnly
	SafetyWrite       = mcp.SafetyWrite
	SafetyDestructive = mcp.SafetyDestructive
)

// Toolset registration for plugin discovery.
func RegisterToolset(id string, factory mcp.ToolsetFactory) error {
	return mcp.RegisterToolset(id, factory)
}

func MustRegisterToolset(id string, factory mcp.ToolsetFactory) {
	mcp.MustRegisterToolset(id, factory)
}

func RegisteredToolsets() []string {
	return mcp.RegisteredToolsets()
}

// AWS helpers.
type ClientSet = awsx.ClientSet

type Redactor = redact.Redactor

// Argument coercion helpers, tolerant of the loose types model output
// arrives with.
func AsString(args map[string]any, key string) string {
	return mcp.AsString(args, key)
}

func AsStringDefault(args map[string]any, key, fallback string) string {
	return mcp.AsStringDefault(args, key, fallback)
}

func AsInt(args map[string]any, key string, fallback int) int {
	return mcp.AsInt(args, key, fallback)
}

func AsBool(args map[string]any, key string) bool {
	return mcp.AsBool(args, key)
}

func AsStringSlice(args map[string]any, key string) []string {
	return mcp.AsStringSlice(args, key)
}
