package mcp

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"awspanel/internal/audit"
)

// ErrToolNotFound marks a dispatch whose name matched neither the flat
// registry nor any category resolver.
var ErrToolNotFound = errors.New("tool not found")

// Dispatcher routes a tool call by name: normalize the arguments, try the
// flat registry, then fall back through category resolvers in registration
// order. Operation failures and handler panics become structured result
// payloads, never propagated errors.
type Dispatcher struct {
	registry   *ToolRegistry
	normalizer *Normalizer
	toolCtx    ToolContext
}

func NewDispatcher(reg *ToolRegistry, norm *Normalizer, toolCtx ToolContext) *Dispatcher {
	if norm == nil {
		norm = NewNormalizer(nil)
	}
	return &Dispatcher{registry: reg, normalizer: norm, toolCtx: toolCtx}
}

func (d *Dispatcher) Execute(ctx context.Context, name string, raw map[string]any) ToolCallResult {
	start := time.Now()
	args := d.normalizer.Normalize(name, raw)
	req := ToolRequest{Arguments: args, Context: d.toolCtx}

	call := ToolCallResult{Tool: name, Arguments: args}
	spec, found := d.registry.Lookup(name)
	if found {
		result, err := d.invoke(ctx, spec.Handler, req)
		call.Result, call.Err = resultPayload(result, err)
		d.logDispatch(spec.Category, call, time.Since(start))
		return call
	}

	for _, entry := range d.registry.resolvers() {
		result, err := d.dispatchCategory(ctx, entry.resolver, name, req)
		if errors.Is(err, ErrUnknownTool) {
			continue
		}
		call.Result, call.Err = resultPayload(result, err)
		d.logDispatch(entry.id, call, time.Since(start))
		return call
	}

	call.Err = fmt.Errorf("%w: %s", ErrToolNotFound, name)
	call.Result = map[string]any{
		"error":           fmt.Sprintf("Tool '%s' not found", name),
		"available_tools": d.registry.Names(),
	}
	d.logDispatch("", call, time.Since(start))
	return call
}

func (d *Dispatcher) invoke(ctx context.Context, handler ToolHandler, req ToolRequest) (result ToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return handler(ctx, req)
}

func (d *Dispatcher) dispatchCategory(ctx context.Context, resolver Resolver, name string, req ToolRequest) (result ToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return resolver.Dispatch(ctx, name, req)
}

// resultPayload folds an operation error into the serializable payload.
// The orchestrator and the HTTP surface both consume the payload form.
func resultPayload(result ToolResult, err error) (any, error) {
	if err != nil {
		return map[string]any{"success": false, "error": classifyError(err)}, err
	}
	return result.Data, nil
}

func (d *Dispatcher) logDispatch(category string, call ToolCallResult, elapsed time.Duration) {
	if d.toolCtx.Audit == nil {
		return
	}
	event := audit.Event{
		Timestamp:  time.Now().UTC(),
		Tool:       call.Tool,
		Category:   category,
		Outcome:    "success",
		DurationMs: elapsed.Milliseconds(),
	}
	if call.Err != nil {
		event.Outcome = "error"
		event.Error = call.Err.Error()
	}
	d.toolCtx.Audit.Log(event)
}
