package mcp

import (
	"context"
	"errors"
)

// ErrUnknownTool is returned by a Resolver when the requested name is not
// one of its operations. The dispatcher treats it as "keep looking"; any
// other error stops the category fallback.
var ErrUnknownTool = errors.New("unknown tool")

// Resolver is a category's dispatch-by-name surface. Toolsets expose their
// operations in whatever shape is natural and adapt it to this interface.
type Resolver interface {
	Dispatch(ctx context.Context, name string, req ToolRequest) (ToolResult, error)
}

// SpecListResolver dispatches over an ordered slice of specs. This is the
// adapter the registry installs automatically for every registered category.
type SpecListResolver []ToolSpec

func (r SpecListResolver) Dispatch(ctx context.Context, name string, req ToolRequest) (ToolResult, error) {
	for _, spec := range r {
		if spec.Name == name {
			return spec.Handler(ctx, req)
		}
	}
	return ToolResult{}, ErrUnknownTool
}

// SpecMapResolver dispatches over a name-keyed spec map.
type SpecMapResolver map[string]ToolSpec

func (r SpecMapResolver) Dispatch(ctx context.Context, name string, req ToolRequest) (ToolResult, error) {
	spec, ok := r[name]
	if !ok {
		return ToolResult{}, ErrUnknownTool
	}
	return spec.Handler(ctx, req)
}

// EntryPointResolver wraps a category that exposes a single call-by-name
// entry point instead of enumerable specs.
type EntryPointResolver func(ctx context.Context, name string, req ToolRequest) (ToolResult, error)

func (r EntryPointResolver) Dispatch(ctx context.Context, name string, req ToolRequest) (ToolResult, error) {
	return r(ctx, name, req)
}
