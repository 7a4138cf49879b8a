package chat

import (
	"context"

	"awspanel/internal/mcp"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

// Message is one conversation turn in provider-neutral form. Model turns
// may carry tool calls; tool turns carry the batched responses for the
// calls of the preceding model turn.
type Message struct {
	Role          Role
	Content       string
	ToolCalls     []ToolCall
	ToolResponses []ToolResponse
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

type ToolResponse struct {
	ID     string
	Name   string
	Result any
}

// ModelTurn is one model reply: any text produced plus the tool calls
// requested in the same turn.
type ModelTurn struct {
	Text      string
	ToolCalls []ToolCall
}

// Provider is one LLM backend. Each implementation owns its wire format
// and its schema dialect; the orchestrator never sees either.
type Provider interface {
	Name() string
	Send(ctx context.Context, history []Message, tools []mcp.ToolInfo) (ModelTurn, error)
}
