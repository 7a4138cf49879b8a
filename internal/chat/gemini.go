package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"awspanel/internal/config"
	"awspanel/internal/mcp"
)

// GeminiProvider speaks the generativelanguage REST dialect: history as
// contents with role/parts, tool calls as functionCall parts, tool results
// as functionResponse parts, declarations under a single tools entry.
type GeminiProvider struct {
	model   string
	apiKey  string
	baseURL string
	client  *resty.Client
	warn    func(format string, args ...any)
}

func NewGeminiProvider(cfg config.ProviderConfig, warn func(format string, args ...any)) *GeminiProvider {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(1 * time.Second)
	client.SetRetryMaxWaitTime(5 * time.Second)

	return &GeminiProvider{
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		warn:    warn,
	}
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Send(ctx context.Context, history []Message, tools []mcp.ToolInfo) (ModelTurn, error) {
	request := map[string]any{"contents": p.encodeHistory(history)}
	if declarations := p.encodeTools(tools); len(declarations) > 0 {
		request["tools"] = []map[string]any{{"functionDeclarations": declarations}}
	}

	response, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		Post(p.baseURL + "/models/" + p.model + ":generateContent?key=" + p.apiKey)
	if err != nil {
		return ModelTurn{}, fmt.Errorf("gemini request: %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		return ModelTurn{}, fmt.Errorf("gemini api status %d: %s", response.StatusCode(), response.String())
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text         string `json:"text"`
					FunctionCall *struct {
						Name string         `json:"name"`
						Args map[string]any `json:"args"`
					} `json:"functionCall"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return ModelTurn{}, fmt.Errorf("gemini response: %w", err)
	}
	if len(result.Candidates) == 0 {
		return ModelTurn{}, fmt.Errorf("gemini api returned no candidates")
	}

	var turn ModelTurn
	var texts []string
	for i, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
		if part.FunctionCall != nil {
			args := part.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			turn.ToolCalls = append(turn.ToolCalls, ToolCall{
				ID:        fmt.Sprintf("call-%d", i),
				Name:      part.FunctionCall.Name,
				Arguments: args,
			})
		}
	}
	turn.Text = strings.Join(texts, "\n")
	return turn, nil
}

func (p *GeminiProvider) encodeHistory(history []Message) []map[string]any {
	contents := make([]map[string]any, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case RoleTool:
			parts := make([]map[string]any, 0, len(msg.ToolResponses))
			for _, resp := range msg.ToolResponses {
				parts = append(parts, map[string]any{
					"functionResponse": map[string]any{
						"name":     resp.Name,
						"response": map[string]any{"result": resp.Result},
					},
				})
			}
			contents = append(contents, map[string]any{"role": "user", "parts": parts})
		case RoleModel:
			parts := []map[string]any{}
			if msg.Content != "" {
				parts = append(parts, map[string]any{"text": msg.Content})
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, map[string]any{
					"functionCall": map[string]any{"name": call.Name, "args": call.Arguments},
				})
			}
			contents = append(contents, map[string]any{"role": "model", "parts": parts})
		default:
			contents = append(contents, map[string]any{
				"role":  "user",
				"parts": []map[string]any{{"text": msg.Content}},
			})
		}
	}
	return contents
}

func (p *GeminiProvider) encodeTools(tools []mcp.ToolInfo) []map[string]any {
	declarations := make([]map[string]any, 0, len(tools))
	for _, tool := range tools {
		schema, err := geminiSchema(tool.Parameters)
		if err != nil {
			p.warn("gemini: skipping tool %s: %v", tool.Name, err)
			continue
		}
		declaration := map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
		}
		if schema != nil {
			declaration["parameters"] = schema
		}
		declarations = append(declarations, declaration)
	}
	return declarations
}

// geminiSchema projects a parameter schema into Gemini's OpenAPI subset.
// Types are uppercase enum values; enums inside array item schemas are
// rejected by the API and dropped here.
func geminiSchema(params mcp.ParamSchema) (map[string]any, error) {
	if len(params) == 0 {
		return nil, nil
	}
	properties := map[string]any{}
	for name, spec := range params {
		prop, err := geminiProperty(spec, false)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		properties[name] = prop
	}
	schema := map[string]any{"type": "OBJECT", "properties": properties}
	if required := params.RequiredNames(); len(required) > 0 {
		schema["required"] = required
	}
	return schema, nil
}

func geminiProperty(spec mcp.ParamSpec, inItems bool) (map[string]any, error) {
	kind, err := geminiType(spec.Type)
	if err != nil {
		return nil, err
	}
	prop := map[string]any{"type": kind}
	if spec.Description != "" {
		prop["description"] = spec.Description
	}
	if len(spec.Enum) > 0 && !inItems {
		prop["enum"] = spec.Enum
	}
	if spec.Items != nil {
		items, err := geminiProperty(*spec.Items, true)
		if err != nil {
			return nil, err
		}
		prop["items"] = items
	}
	if len(spec.Properties) > 0 {
		nested := map[string]any{}
		for name, child := range spec.Properties {
			childProp, err := geminiProperty(child, false)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			nested[name] = childProp
		}
		prop["properties"] = nested
	}
	return prop, nil
}

func geminiType(kind string) (string, error) {
	switch kind {
	case "string":
		return "STRING", nil
	case "integer":
		return "INTEGER", nil
	case "number":
		return "NUMBER", nil
	case "boolean":
		return "BOOLEAN", nil
	case "array":
		return "ARRAY", nil
	case "object":
		return "OBJECT", nil
	default:
		return "", fmt.Errorf("unsupported parameter type %q", kind)
	}
}
