package chat

import (
	"context"
	"fmt"
	"strings"

	"awspanel/internal/mcp"
)

// Orchestrator runs the bounded tool-calling loop: send the conversation
// to the provider, dispatch every tool call it requests, feed the batched
// results back, and repeat until the model answers in plain text or the
// round cap is reached.
type Orchestrator struct {
	providers  map[string]Provider
	defaultive string
	registry   *mcp.ToolRegistry
	dispatcher *mcp.Dispatcher
	store      *Store
	maxRounds  int
	warn       func(format string, args ...any)
}

type OrchestratorOptions struct {
	Providers       map[string]Provider
	DefaultProvider string
	Registry        *mcp.ToolRegistry
	Dispatcher      *mcp.Dispatcher
	Store           *Store
	MaxToolRounds   int
	Warn            func(format string, args ...any)
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = 5
	}
	if opts.Warn == nil {
		opts.Warn = func(string, ...any) {}
	}
	return &Orchestrator{
		providers:  opts.Providers,
		defaultive: opts.DefaultProvider,
		registry:   opts.Registry,
		dispatcher: opts.Dispatcher,
		store:      opts.Store,
		maxRounds:  opts.MaxToolRounds,
		warn:       opts.Warn,
	}
}

// Reply is the outcome of one user message: the model's final text and
// every tool call dispatched along the way, in execution order.
type Reply struct {
	Text        string
	ToolResults []mcp.ToolCallResult
	Provider    string
}

// HandleMessage drives one user message to completion. A provider failure
// aborts without persisting anything; tool failures are fed back to the
// model and the loop continues.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID, text string) (Reply, error) {
	provider, err := o.providerFor(sessionID)
	if err != nil {
		return Reply{}, err
	}
	tools := o.registry.List()

	working := o.store.Snapshot(sessionID)
	working = append(working, Message{Role: RoleUser, Content: text})

	var texts []string
	var results []mcp.ToolCallResult
	for round := 0; round < o.maxRounds; round++ {
		turn, err := provider.Send(ctx, working, tools)
		if err != nil {
			return Reply{}, fmt.Errorf("provider %s: %w", provider.Name(), err)
		}
		if turn.Text != "" {
			texts = append(texts, turn.Text)
		}
		if len(turn.ToolCalls) == 0 {
			break
		}

		working = append(working, Message{Role: RoleModel, Content: turn.Text, ToolCalls: turn.ToolCalls})
		responses := make([]ToolResponse, 0, len(turn.ToolCalls))
		for _, call := range turn.ToolCalls {
			result := o.dispatcher.Execute(ctx, call.Name, call.Arguments)
			results = append(results, result)
			responses = append(responses, ToolResponse{ID: call.ID, Name: call.Name, Result: result.Result})
		}
		working = append(working, Message{Role: RoleTool, ToolResponses: responses})
	}

	reply := strings.Join(texts, "\n\n")
	if reply == "" {
		reply = "I could not produce an answer for that request."
	}
	o.store.Append(sessionID, text, reply)
	return Reply{Text: reply, ToolResults: results, Provider: provider.Name()}, nil
}

// ProviderName reports the provider a session resolves to.
func (o *Orchestrator) ProviderName(sessionID string) string {
	if override := o.store.ProviderFor(sessionID); override != "" {
		return override
	}
	return o.defaultive
}

// SetProvider validates and applies a session provider override.
func (o *Orchestrator) SetProvider(sessionID, name string) error {
	if _, ok := o.providers[name]; !ok {
		return fmt.Errorf("unknown provider %q", name)
	}
	o.store.SetProvider(sessionID, name)
	return nil
}

func (o *Orchestrator) providerFor(sessionID string) (Provider, error) {
	name := o.ProviderName(sessionID)
	provider, ok := o.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return provider, nil
}
