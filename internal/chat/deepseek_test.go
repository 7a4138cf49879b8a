package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"awspanel/internal/config"
	"awspanel/internal/mcp"
)

func TestDeepSeekSchemaLowercaseWithEnums(t *testing.T) {
	schema, err := deepseekSchema(mcp.ParamSchema{
		"states": {
			Type:  "array",
			Items: &mcp.ParamSpec{Type: "string", Enum: []string{"running", "stopped"}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schema["type"] != "object" {
		t.Fatalf("expected lowercase object, got %v", schema["type"])
	}
	props := schema["properties"].(map[string]any)
	items := props["states"].(map[string]any)["items"].(map[string]any)
	if _, present := items["enum"]; !present {
		t.Fatalf("enums must survive inside items: %v", items)
	}
}

func TestDeepSeekEncodeToolsWrapsFunctions(t *testing.T) {
	p := NewDeepSeekProvider(config.ProviderConfig{}, nil)
	declarations := p.encodeTools([]mcp.ToolInfo{
		{Name: "probe", Description: "a probe", Parameters: mcp.ParamSchema{"x": {Type: "string"}}},
	})
	if len(declarations) != 1 {
		t.Fatalf("unexpected declaration count: %d", len(declarations))
	}
	if declarations[0]["type"] != "function" {
		t.Fatalf("expected function wrapper, got %v", declarations[0])
	}
	function := declarations[0]["function"].(map[string]any)
	if function["name"] != "probe" {
		t.Fatalf("unexpected function: %v", function)
	}
}

func TestDeepSeekEncodeHistoryPerCallToolMessages(t *testing.T) {
	p := NewDeepSeekProvider(config.ProviderConfig{}, nil)
	messages := p.encodeHistory([]Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleModel, ToolCalls: []ToolCall{
			{ID: "c1", Name: "probe_a", Arguments: map[string]any{"x": 1}},
			{ID: "c2", Name: "probe_b", Arguments: map[string]any{}},
		}},
		{Role: RoleTool, ToolResponses: []ToolResponse{
			{ID: "c1", Name: "probe_a", Result: map[string]any{"success": true}},
			{ID: "c2", Name: "probe_b", Result: map[string]any{"success": true}},
		}},
	})
	// One user, one assistant, then one tool message per response.
	if len(messages) != 4 {
		t.Fatalf("unexpected message count: %d", len(messages))
	}
	assistant := messages[1]
	calls := assistant["tool_calls"].([]map[string]any)
	if len(calls) != 2 {
		t.Fatalf("expected two tool_calls, got %v", calls)
	}
	args, ok := calls[0]["function"].(map[string]any)["arguments"].(string)
	if !ok {
		t.Fatalf("arguments must be a JSON string")
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(args), &decoded); err != nil {
		t.Fatalf("arguments not valid JSON: %v", err)
	}
	first := messages[2]
	if first["role"] != "tool" || first["tool_call_id"] != "c1" {
		t.Fatalf("unexpected tool message: %v", first)
	}
	second := messages[3]
	if second["tool_call_id"] != "c2" {
		t.Fatalf("unexpected tool message: %v", second)
	}
}

func TestDeepSeekSendParsesToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {
				"content": "",
				"tool_calls": [
					{"id": "call_1", "function": {"name": "probe_a", "arguments": "{\"region\": \"eu-west-1\"}"}},
					{"id": "call_2", "function": {"name": "probe_b", "arguments": "not json"}}
				]
			}}]
		}`))
	}))
	defer srv.Close()

	p := NewDeepSeekProvider(config.ProviderConfig{Model: "deepseek-chat", BaseURL: srv.URL, APIKey: "test-key"}, nil)
	turn, err := p.Send(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turn.ToolCalls) != 2 {
		t.Fatalf("expected two tool calls, got %d", len(turn.ToolCalls))
	}
	if turn.ToolCalls[0].Arguments["region"] != "eu-west-1" {
		t.Fatalf("unexpected arguments: %v", turn.ToolCalls[0].Arguments)
	}
	// Malformed argument strings degrade to an empty map.
	if len(turn.ToolCalls[1].Arguments) != 0 {
		t.Fatalf("expected empty arguments, got %v", turn.ToolCalls[1].Arguments)
	}
}

func TestDeepSeekSendNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	p := NewDeepSeekProvider(config.ProviderConfig{Model: "deepseek-chat", BaseURL: srv.URL}, nil)
	if _, err := p.Send(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}
