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

// DeepSeekProvider speaks the OpenAI-compatible chat completions dialect:
// assistant messages with tool_calls, per-call tool messages keyed by
// tool_call_id, function declarations wrapped in {type: "function"}.
type DeepSeekProvider struct {
	model   string
	apiKey  string
	baseURL string
	client  *resty.Client
	warn    func(format string, args ...any)
}

func NewDeepSeekProvider(cfg config.ProviderConfig, warn func(format string, args ...any)) *DeepSeekProvider {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(1 * time.Second)
	client.SetRetryMaxWaitTime(5 * time.Second)

	return &DeepSeekProvider{
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		warn:    warn,
	}
}

func (p *DeepSeekProvider) Name() string {
	return "deepseek"
}

func (p *DeepSeekProvider) Send(ctx context.Context, history []Message, tools []mcp.ToolInfo) (ModelTurn, error) {
	request := map[string]any{
		"model":    p.model,
		"messages": p.encodeHistory(history),
	}
	if declarations := p.encodeTools(tools); len(declarations) > 0 {
		request["tools"] = declarations
	}

	response, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+p.apiKey).
		SetBody(request).
		Post(p.baseURL + "/chat/completions")
	if err != nil {
		return ModelTurn{}, fmt.Errorf("deepseek request: %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		return ModelTurn{}, fmt.Errorf("deepseek api status %d: %s", response.StatusCode(), response.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content   string `json:"content"`
				ToolCalls []struct {
					ID       string `json:"id"`
					Function struct {
						Name      string `json:"name"`
						Arguments string `json:"arguments"`
					} `json:"function"`
				} `json:"tool_calls"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return ModelTurn{}, fmt.Errorf("deepseek response: %w", err)
	}
	if len(result.Choices) == 0 {
		return ModelTurn{}, fmt.Errorf("deepseek api returned no choices")
	}

	message := result.Choices[0].Message
	turn := ModelTurn{Text: message.Content}
	for _, call := range message.ToolCalls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				p.warn("deepseek: malformed arguments for %s, using empty: %v", call.Function.Name, err)
				args = map[string]any{}
			}
		}
		turn.ToolCalls = append(turn.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	return turn, nil
}

func (p *DeepSeekProvider) encodeHistory(history []Message) []map[string]any {
	messages := make([]map[string]any, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case RoleModel:
			entry := map[string]any{"role": "assistant", "content": msg.Content}
			if len(msg.ToolCalls) > 0 {
				calls := make([]map[string]any, 0, len(msg.ToolCalls))
				for _, call := range msg.ToolCalls {
					args, err := json.Marshal(call.Arguments)
					if err != nil {
						args = []byte("{}")
					}
					calls = append(calls, map[string]any{
						"id":   call.ID,
						"type": "function",
						"function": map[string]any{
							"name":      call.Name,
							"arguments": string(args),
						},
					})
				}
				entry["tool_calls"] = calls
			}
			messages = append(messages, entry)
		case RoleTool:
			for _, resp := range msg.ToolResponses {
				content, err := json.Marshal(resp.Result)
				if err != nil {
					content = []byte(fmt.Sprintf("%v", resp.Result))
				}
				messages = append(messages, map[string]any{
					"role":         "tool",
					"tool_call_id": resp.ID,
					"content":      string(content),
				})
			}
		default:
			messages = append(messages, map[string]any{"role": "user", "content": msg.Content})
		}
	}
	return messages
}

func (p *DeepSeekProvider) encodeTools(tools []mcp.ToolInfo) []map[string]any {
	declarations := make([]map[string]any, 0, len(tools))
	for _, tool := range tools {
		schema, err := deepseekSchema(tool.Parameters)
		if err != nil {
			p.warn("deepseek: skipping tool %s: %v", tool.Name, err)
			continue
		}
		function := map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
		}
		if schema != nil {
			function["parameters"] = schema
		}
		declarations = append(declarations, map[string]any{
			"type":     "function",
			"function": function,
		})
	}
	return declarations
}

// deepseekSchema emits standard JSON schema with lowercase types and
// enums kept everywhere, including inside array item schemas.
func deepseekSchema(params mcp.ParamSchema) (map[string]any, error) {
	if len(params) == 0 {
		return nil, nil
	}
	properties := map[string]any{}
	for name, spec := range params {
		prop, err := deepseekProperty(spec)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		properties[name] = prop
	}
	schema := map[string]any{"type": "object", "properties": properties}
	if required := params.RequiredNames(); len(required) > 0 {
		schema["required"] = required
	}
	return schema, nil
}

func deepseekProperty(spec mcp.ParamSpec) (map[string]any, error) {
	switch spec.Type {
	case "string", "integer", "number", "boolean", "array", "object":
	default:
		return nil, fmt.Errorf("unsupported parameter type %q", spec.Type)
	}
	prop := map[string]any{"type": spec.Type}
	if spec.Description != "" {
		prop["description"] = spec.Description
	}
	if len(spec.Enum) > 0 {
		prop["enum"] = spec.Enum
	}
	if spec.Items != nil {
		items, err := deepseekProperty(*spec.Items)
		if err != nil {
			return nil, err
		}
		prop["items"] = items
	}
	if len(spec.Properties) > 0 {
		nested := map[string]any{}
		for name, child := range spec.Properties {
			childProp, err := deepseekProperty(child)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			nested[name] = childProp
		}
		prop["properties"] = nested
	}
	return prop, nil
}
