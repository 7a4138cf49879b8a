package mcp

import (
	"context"
	"errors"
	"testing"
)

func TestSpecListResolverUnknownName(t *testing.T) {
	r := SpecListResolver{echoSpec("known", SafetyReadOnly)}
	if _, err := r.Dispatch(context.Background(), "unknown", ToolRequest{}); !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestSpecMapResolverDispatch(t *testing.T) {
	r := SpecMapResolver{
		"lookup_me": echoSpec("lookup_me", SafetyReadOnly),
	}
	result, err := r.Dispatch(context.Background(), "lookup_me", ToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Data != "lookup_me" {
		t.Fatalf("unexpected result: %v", result.Data)
	}
	if _, err := r.Dispatch(context.Background(), "missing", ToolRequest{}); !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestDispatcherFallsBackToSpecMapResolver(t *testing.T) {
	reg := NewRegistry(nil)
	reg.RegisterResolver("dynamic", SpecMapResolver{
		"mapped_op": echoSpec("mapped_op", SafetyReadOnly),
	})
	d := NewDispatcher(reg, NewNormalizer(nil), ToolContext{})

	call := d.Execute(context.Background(), "mapped_op", nil)
	if call.Err != nil {
		t.Fatalf("unexpected error: %v", call.Err)
	}
	if call.Result != "mapped_op" {
		t.Fatalf("unexpected result: %v", call.Result)
	}
}
