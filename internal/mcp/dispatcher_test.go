package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestDispatcher(t *testing.T, reg *ToolRegistry) *Dispatcher {
	t.Helper()
	return NewDispatcher(reg, NewNormalizer(nil), ToolContext{})
}

func TestDispatcherFlatHit(t *testing.T) {
	reg := NewRegistry(nil)
	spec := ToolSpec{
		Name:   "say_hello",
		Safety: SafetyReadOnly,
		Handler: func(ctx context.Context, req ToolRequest) (ToolResult, error) {
			return ToolResult{Data: map[string]any{"success": true, "greeting": "hello"}}, nil
		},
	}
	if err := reg.Register("misc", []ToolSpec{spec}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	d := newTestDispatcher(t, reg)
	call := d.Execute(context.Background(), "say_hello", nil)
	if call.Err != nil {
		t.Fatalf("unexpected error: %v", call.Err)
	}
	data := call.Result.(map[string]any)
	if data["greeting"] != "hello" {
		t.Fatalf("unexpected result: %v", call.Result)
	}
}

func TestDispatcherNormalizesBeforeHandler(t *testing.T) {
	reg := NewRegistry(nil)
	var seen any
	spec := ToolSpec{
		Name:   "capture",
		Safety: SafetyReadOnly,
		Handler: func(ctx context.Context, req ToolRequest) (ToolResult, error) {
			seen = req.Arguments["limit"]
			return ToolResult{}, nil
		},
	}
	if err := reg.Register("misc", []ToolSpec{spec}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	d := newTestDispatcher(t, reg)
	d.Execute(context.Background(), "capture", map[string]any{"limit": float64(7)})
	if seen != 7 {
		t.Fatalf("expected normalized int, got %T %v", seen, seen)
	}
}

func TestDispatcherCategoryFallbackOrder(t *testing.T) {
	reg := NewRegistry(nil)
	reg.RegisterResolver("first", EntryPointResolver(func(ctx context.Context, name string, req ToolRequest) (ToolResult, error) {
		return ToolResult{}, ErrUnknownTool
	}))
	reg.RegisterResolver("second", EntryPointResolver(func(ctx context.Context, name string, req ToolRequest) (ToolResult, error) {
		if name == "hidden_op" {
			return ToolResult{Data: "found-in-second"}, nil
		}
		return ToolResult{}, ErrUnknownTool
	}))
	d := newTestDispatcher(t, reg)
	call := d.Execute(context.Background(), "hidden_op", nil)
	if call.Err != nil {
		t.Fatalf("unexpected error: %v", call.Err)
	}
	if call.Result != "found-in-second" {
		t.Fatalf("expected fallback hit, got %v", call.Result)
	}
}

func TestDispatcherNotFound(t *testing.T) {
	reg := NewRegistry(nil)
	spec := ToolSpec{
		Name:   "only_tool",
		Safety: SafetyReadOnly,
		Handler: func(ctx context.Context, req ToolRequest) (ToolResult, error) {
			return ToolResult{}, nil
		},
	}
	if err := reg.Register("misc", []ToolSpec{spec}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	d := newTestDispatcher(t, reg)
	call := d.Execute(context.Background(), "no_such_tool", nil)
	if !errors.Is(call.Err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", call.Err)
	}
	payload := call.Result.(map[string]any)
	if payload["error"] != "Tool 'no_such_tool' not found" {
		t.Fatalf("unexpected error message: %v", payload["error"])
	}
	available := payload["available_tools"].([]string)
	if len(available) != 1 || available[0] != "only_tool" {
		t.Fatalf("expected available tools listed, got %v", available)
	}
}

func TestDispatcherFoldsOperationError(t *testing.T) {
	reg := NewRegistry(nil)
	spec := ToolSpec{
		Name:   "always_fails",
		Safety: SafetyReadOnly,
		Handler: func(ctx context.Context, req ToolRequest) (ToolResult, error) {
			return ToolResult{}, errors.New("instance_id is required")
		},
	}
	if err := reg.Register("misc", []ToolSpec{spec}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	d := newTestDispatcher(t, reg)
	call := d.Execute(context.Background(), "always_fails", nil)
	if call.Err == nil {
		t.Fatalf("expected error surfaced on call")
	}
	payload := call.Result.(map[string]any)
	if payload["success"] != false {
		t.Fatalf("expected success false, got %v", payload)
	}
	detail := payload["error"].(ErrorDetail)
	if detail.Code != "invalid_request" {
		t.Fatalf("unexpected classification: %+v", detail)
	}
}

func TestDispatcherRecoversPanic(t *testing.T) {
	reg := NewRegistry(nil)
	spec := ToolSpec{
		Name:   "panics",
		Safety: SafetyReadOnly,
		Handler: func(ctx context.Context, req ToolRequest) (ToolResult, error) {
			panic("boom")
		},
	}
	if err := reg.Register("misc", []ToolSpec{spec}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	d := newTestDispatcher(t, reg)
	call := d.Execute(context.Background(), "panics", nil)
	if call.Err == nil || !strings.Contains(call.Err.Error(), "boom") {
		t.Fatalf("expected panic converted to error, got %v", call.Err)
	}
	payload := call.Result.(map[string]any)
	if payload["success"] != false {
		t.Fatalf("expected failure payload, got %v", payload)
	}
}
