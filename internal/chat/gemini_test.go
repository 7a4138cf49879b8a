package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"awspanel/internal/config"
	"awspanel/internal/mcp"
)

func TestGeminiSchemaUppercaseTypes(t *testing.T) {
	schema, err := geminiSchema(mcp.ParamSchema{
		"name":  {Type: "string", Required: true},
		"count": {Type: "integer"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schema["type"] != "OBJECT" {
		t.Fatalf("expected OBJECT, got %v", schema["type"])
	}
	props := schema["properties"].(map[string]any)
	if props["name"].(map[string]any)["type"] != "STRING" {
		t.Fatalf("unexpected property type: %v", props["name"])
	}
	if props["count"].(map[string]any)["type"] != "INTEGER" {
		t.Fatalf("unexpected property type: %v", props["count"])
	}
	required := schema["required"].([]string)
	if len(required) != 1 || required[0] != "name" {
		t.Fatalf("unexpected required: %v", required)
	}
}

func TestGeminiSchemaDropsEnumInsideItems(t *testing.T) {
	schema, err := geminiSchema(mcp.ParamSchema{
		"states": {
			Type:  "array",
			Items: &mcp.ParamSpec{Type: "string", Enum: []string{"running", "stopped"}},
		},
		"mode": {Type: "string", Enum: []string{"fast", "slow"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	props := schema["properties"].(map[string]any)
	items := props["states"].(map[string]any)["items"].(map[string]any)
	if _, present := items["enum"]; present {
		t.Fatalf("enum must be dropped inside items: %v", items)
	}
	mode := props["mode"].(map[string]any)
	if _, present := mode["enum"]; !present {
		t.Fatalf("top-level enum must survive: %v", mode)
	}
}

func TestGeminiEncodeToolsSkipsBadSchema(t *testing.T) {
	p := NewGeminiProvider(config.ProviderConfig{}, nil)
	declarations := p.encodeTools([]mcp.ToolInfo{
		{Name: "good", Parameters: mcp.ParamSchema{"x": {Type: "string"}}},
		{Name: "bad", Parameters: mcp.ParamSchema{"x": {Type: "uuid"}}},
	})
	if len(declarations) != 1 || declarations[0]["name"] != "good" {
		t.Fatalf("expected only the translatable tool, got %v", declarations)
	}
}

func TestGeminiEncodeHistoryToolResponses(t *testing.T) {
	p := NewGeminiProvider(config.ProviderConfig{}, nil)
	contents := p.encodeHistory([]Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleModel, Content: "calling", ToolCalls: []ToolCall{{ID: "c1", Name: "probe", Arguments: map[string]any{}}}},
		{Role: RoleTool, ToolResponses: []ToolResponse{{ID: "c1", Name: "probe", Result: map[string]any{"success": true}}}},
	})
	if len(contents) != 3 {
		t.Fatalf("unexpected content count: %d", len(contents))
	}
	// Tool results ride in a user-role content with functionResponse parts.
	toolMsg := contents[2]
	if toolMsg["role"] != "user" {
		t.Fatalf("tool responses must use user role, got %v", toolMsg["role"])
	}
	parts := toolMsg["parts"].([]map[string]any)
	fr := parts[0]["functionResponse"].(map[string]any)
	if fr["name"] != "probe" {
		t.Fatalf("unexpected functionResponse: %v", fr)
	}
	modelParts := contents[1]["parts"].([]map[string]any)
	if len(modelParts) != 2 {
		t.Fatalf("model turn should carry text and functionCall parts: %v", modelParts)
	}
}

func TestGeminiSendParsesFunctionCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"parts": [
				{"text": "checking"},
				{"functionCall": {"name": "probe_a", "args": {"region": "us-east-1"}}}
			]}}]
		}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider(config.ProviderConfig{Model: "test-model", BaseURL: srv.URL}, nil)
	turn, err := p.Send(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if turn.Text != "checking" {
		t.Fatalf("unexpected text: %q", turn.Text)
	}
	if len(turn.ToolCalls) != 1 {
		t.Fatalf("expected one tool call, got %d", len(turn.ToolCalls))
	}
	call := turn.ToolCalls[0]
	if call.Name != "probe_a" || call.ID == "" {
		t.Fatalf("unexpected call: %+v", call)
	}
	if call.Arguments["region"] != "us-east-1" {
		t.Fatalf("unexpected arguments: %v", call.Arguments)
	}
}

func TestGeminiSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewGeminiProvider(config.ProviderConfig{Model: "test-model", BaseURL: srv.URL}, nil)
	if _, err := p.Send(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}
